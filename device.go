package luctisity

import "image"

// Vertex is one corner of the shared quad: a position in local unit space and
// a texture coordinate in [0, 1] (v grows downward in the image).
type Vertex struct {
	X, Y float32
	U, V float32
}

// QuadVertices is the unit quad every drawable renders with: two triangles
// centered on the origin, UV-mapped corner to corner.
var QuadVertices = []Vertex{
	{X: -0.5, Y: 0.5, U: 0, V: 0},
	{X: 0.5, Y: -0.5, U: 1, V: 1},
	{X: -0.5, Y: -0.5, U: 0, V: 1},
	{X: -0.5, Y: 0.5, U: 0, V: 0},
	{X: 0.5, Y: 0.5, U: 1, V: 0},
	{X: 0.5, Y: -0.5, U: 1, V: 1},
}

// Program is a compiled shader program owned by a Device.
type Program interface{}

// VertexArray is vertex data uploaded to a Device.
type VertexArray interface {
	Len() int
}

// Texture is an image uploaded to a Device.
type Texture interface {
	Size() (w, h int)
}

// Uniforms are the per-draw values a program reads: the 3x3 transform from
// local quad space to device space and the unit tint color.
type Uniforms struct {
	Transform Mat3
	Color     Color
}

// Device is the graphics context boundary. Implementations own a drawing
// surface with an opaque backbuffer.
type Device interface {
	// Size returns the backbuffer size in pixels.
	Size() (w, h int)
	// CompileProgram compiles and links a program from its fragment source.
	CompileProgram(src []byte) (Program, error)
	NewVertexArray(verts []Vertex) (VertexArray, error)
	NewTexture(img image.Image) Texture
	// Clear fills the backbuffer with opaque black.
	Clear()
	// DrawTriangles draws the first count vertices of va as triangles.
	DrawTriangles(p Program, va VertexArray, tex Texture, u Uniforms, count int)
}
