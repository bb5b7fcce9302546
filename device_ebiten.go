package luctisity

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
)

// DefaultShaderSource is the Kage fragment program drawables render with. The
// sampled texel is multiplied by the premultiplied Color uniform.
var DefaultShaderSource = []byte(`//kage:unit pixels

package main

var Color vec4

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	return imageSrc0At(srcPos) * vec4(Color.rgb*Color.a, Color.a)
}
`)

// EbitenDevice is a Device drawing onto an ebiten image. Ebitengine exposes
// no vertex stage, so the Transform uniform is applied to the quad on the CPU
// and the result mapped from device space to target pixels (y up).
type EbitenDevice struct {
	width, height int
	target        *ebiten.Image

	// reused per draw
	verts   []ebiten.Vertex
	indices []uint16
}

type ebitenProgram struct {
	shader *ebiten.Shader
}

type ebitenVertexArray struct {
	verts []Vertex
}

func (va *ebitenVertexArray) Len() int { return len(va.verts) }

type ebitenTexture struct {
	img *ebiten.Image
}

func (t *ebitenTexture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// NewEbitenDevice creates a device for a canvas of the given size. Until Bind
// is called, drawing goes to an offscreen image of that size.
func NewEbitenDevice(width, height int) *EbitenDevice {
	return &EbitenDevice{
		width:  width,
		height: height,
		target: ebiten.NewImage(width, height),
	}
}

// Bind sets the image subsequent draws target, usually the screen passed to
// ebiten.Game.Draw.
func (d *EbitenDevice) Bind(target *ebiten.Image) {
	if target != nil {
		d.target = target
	}
}

// Target returns the currently bound image.
func (d *EbitenDevice) Target() *ebiten.Image { return d.target }

func (d *EbitenDevice) Size() (int, int) {
	if d.target != nil {
		b := d.target.Bounds()
		return b.Dx(), b.Dy()
	}
	return d.width, d.height
}

func (d *EbitenDevice) CompileProgram(src []byte) (Program, error) {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, errors.Wrap(err, "compile fragment program")
	}
	return &ebitenProgram{shader: s}, nil
}

func (d *EbitenDevice) NewVertexArray(verts []Vertex) (VertexArray, error) {
	if len(verts)%3 != 0 {
		return nil, errors.Errorf("vertex count %d is not a multiple of 3", len(verts))
	}
	cp := make([]Vertex, len(verts))
	copy(cp, verts)
	return &ebitenVertexArray{verts: cp}, nil
}

func (d *EbitenDevice) NewTexture(img image.Image) Texture {
	if e, ok := img.(*ebiten.Image); ok {
		return &ebitenTexture{img: e}
	}
	return &ebitenTexture{img: ebiten.NewImageFromImage(img)}
}

func (d *EbitenDevice) Clear() {
	d.target.Fill(color.Black)
}

func (d *EbitenDevice) DrawTriangles(p Program, va VertexArray, tex Texture, u Uniforms, count int) {
	prog, ok := p.(*ebitenProgram)
	if !ok || prog == nil {
		return
	}
	arr, ok := va.(*ebitenVertexArray)
	if !ok || arr == nil {
		return
	}
	t, ok := tex.(*ebitenTexture)
	if !ok || t == nil {
		return
	}
	if count > len(arr.verts) {
		count = len(arr.verts)
	}
	w, h := d.Size()
	tw, th := t.Size()
	d.verts = d.verts[:0]
	d.indices = d.indices[:0]
	for i := 0; i < count; i++ {
		d.verts = append(d.verts, deviceVertex(arr.verts[i], u.Transform, w, h, tw, th))
		d.indices = append(d.indices, uint16(i))
	}

	op := &ebiten.DrawTrianglesShaderOptions{}
	op.Images[0] = t.img
	op.Uniforms = map[string]any{
		"Color": []float32{float32(u.Color.R), float32(u.Color.G), float32(u.Color.B), float32(u.Color.A)},
	}
	d.target.DrawTrianglesShader(d.verts, d.indices, prog.shader, op)
}

// deviceVertex runs the vertex stage for one quad corner: transform into
// device space, then map [-1, 1] to target pixels with y up.
func deviceVertex(v Vertex, m Mat3, w, h, tw, th int) ebiten.Vertex {
	nx, ny := m.Apply(float64(v.X), float64(v.Y))
	return ebiten.Vertex{
		DstX:   float32((nx + 1) * 0.5 * float64(w)),
		DstY:   float32((1 - ny) * 0.5 * float64(h)),
		SrcX:   v.U * float32(tw),
		SrcY:   v.V * float32(th),
		ColorR: 1,
		ColorG: 1,
		ColorB: 1,
		ColorA: 1,
	}
}
