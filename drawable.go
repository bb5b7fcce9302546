package luctisity

// TextureSource resolves texture keys for a device. Catalog implements it.
type TextureSource interface {
	Texture(dev Device, key string) (Texture, error)
}

// Drawable is one renderable 2D entity. Its transform state is kept in
// authoring units:
//
//   - X, Y: pixels, origin at the canvas corner (bottom-left, y up)
//   - Rotation: degrees, counter-clockwise
//   - ScaleX, ScaleY: percent, 100 is identity
//   - R, G, B: tint channels in 0-255
//   - Opacity: 0-100
//
// Fields may be written directly; every frame recomposes the transform.
type Drawable struct {
	// Name identifies the drawable for task targeting. Not required to be unique.
	Name string

	X, Y           float64
	Rotation       float64
	ScaleX, ScaleY float64
	R, G, B        float64
	Opacity        float64

	dev    Device
	assets TextureSource

	textureKey string
	texture    Texture
	width      float64
	height     float64
}

// NewDrawable creates a drawable bound to textureKey. If the key cannot be
// resolved the drawable has no renderable state until a later SetTexture
// succeeds.
func NewDrawable(name, textureKey string, dev Device, assets TextureSource) *Drawable {
	d := &Drawable{
		Name:    name,
		ScaleX:  100,
		ScaleY:  100,
		R:       255,
		G:       255,
		B:       255,
		Opacity: 100,
		dev:     dev,
		assets:  assets,
	}
	d.SetTexture(textureKey)
	return d
}

// SetTexture binds the texture for key and re-derives the intrinsic size from
// its native dimensions. An unknown key is logged and the previous texture
// stays bound.
func (d *Drawable) SetTexture(key string) {
	if d.assets == nil {
		Logger().Warn("drawable has no texture source", "drawable", d.Name, "key", key)
		return
	}
	tex, err := d.assets.Texture(d.dev, key)
	if err != nil {
		Logger().Warn("texture not bound", "drawable", d.Name, "key", key, "err", err)
		return
	}
	w, h := tex.Size()
	d.textureKey = key
	d.texture = tex
	d.width = float64(w)
	d.height = float64(h)
}

// TextureKey returns the key of the last successfully bound texture.
func (d *Drawable) TextureKey() string { return d.textureKey }

// Size returns the intrinsic size in pixels of the bound texture.
func (d *Drawable) Size() (w, h float64) { return d.width, d.height }

// SetPosition sets X and Y.
func (d *Drawable) SetPosition(x, y float64) {
	d.X = x
	d.Y = y
}

// SetScale sets ScaleX and ScaleY in percent.
func (d *Drawable) SetScale(sx, sy float64) {
	d.ScaleX = sx
	d.ScaleY = sy
}

// SetColor sets the tint channels (0-255) and opacity (0-100).
func (d *Drawable) SetColor(r, g, b, opacity float64) {
	d.R, d.G, d.B, d.Opacity = r, g, b, opacity
}

// Transform composes the matrix taking the unit quad to device space:
//
//	translate(position in NDC) * scale(canvas compensation) *
//	rotate(radians) * scale(intrinsic size) * scale(author scale)
//
// Translation and compensation act in device space; rotation and scale act in
// local pixel space, so the drawable rotates about its own center. Without a
// device there is no canvas to map into and the result is Identity.
func (d *Drawable) Transform() Mat3 {
	if d.dev == nil {
		return Identity
	}
	w, h := d.dev.Size()
	hw, hh := float64(w)/2, float64(h)/2
	nx, ny := PositionToNDC(d.X, d.Y, hw, hh)
	cx, cy := CanvasCompensation(hw, hh)
	return Identity.
		Translate(nx, ny).
		Scale(cx, cy).
		Rotate(RotationToRadians(d.Rotation)).
		Scale(d.width, d.height).
		Scale(ScaleToMultiplier(d.ScaleX), ScaleToMultiplier(d.ScaleY))
}

// Tint returns the unit color uniform.
func (d *Drawable) Tint() Color {
	return ColorToUnit(d.R, d.G, d.B, d.Opacity)
}

// Render draws the drawable with the shared program and quad. A drawable with
// no bound texture draws nothing.
func (d *Drawable) Render(p Program, quad VertexArray) {
	if d.texture == nil || d.dev == nil {
		return
	}
	d.dev.DrawTriangles(p, quad, d.texture, Uniforms{Transform: d.Transform(), Color: d.Tint()}, len(QuadVertices))
}
