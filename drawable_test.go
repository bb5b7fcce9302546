package luctisity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDrawableDefaults(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	d := NewDrawable("hero", "man", dev, testTextures())

	assert.Equal(t, "hero", d.Name)
	assert.Equal(t, "man", d.TextureKey())
	w, h := d.Size()
	assert.Equal(t, 64.0, w)
	assert.Equal(t, 32.0, h)
	assert.Equal(t, 100.0, d.ScaleX)
	assert.Equal(t, 100.0, d.ScaleY)
	assert.Equal(t, ColorWhite, d.Tint())
}

func TestDrawableWithoutDevice(t *testing.T) {
	d := NewDrawable("ghost", "man", nil, nil)
	d.SetPosition(10, 20)
	d.Rotation = 45

	assert.NotPanics(t, func() { d.Render(nil, nil) })
	assert.Equal(t, Identity, d.Transform())
}

func TestSetTextureRederivesSize(t *testing.T) {
	d := NewDrawable("hero", "man", newRecordingDevice(640, 360), testTextures())
	d.SetTexture("troll")
	w, h := d.Size()
	assert.Equal(t, "troll", d.TextureKey())
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 120.0, h)
}

func TestSetTextureUnknownKeepsPrevious(t *testing.T) {
	logs := captureLogs(t)
	d := NewDrawable("hero", "man", newRecordingDevice(640, 360), testTextures())
	d.SetTexture("ghost")

	assert.Equal(t, "man", d.TextureKey())
	w, _ := d.Size()
	assert.Equal(t, 64.0, w)
	assert.Contains(t, logs.String(), "texture not bound")
	assert.Contains(t, logs.String(), "key=ghost")
}

func TestUnknownInitialTextureDrawsNothing(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	d := NewDrawable("hero", "ghost", dev, testTextures())
	d.Render(&fakeProgram{}, &fakeVertexArray{n: 6})
	assert.Empty(t, dev.draws)

	d.SetTexture("man")
	d.Render(&fakeProgram{}, &fakeVertexArray{n: 6})
	require.Len(t, dev.draws, 1)
	assert.Equal(t, 6, dev.draws[0].count)
}

func TestTransformCentered(t *testing.T) {
	d := NewDrawable("hero", "man", newRecordingDevice(640, 360), testTextures())
	d.SetPosition(320, 180)

	m := d.Transform()
	assertPoint(t, m, 0, 0, 0, 0)
	// Corner of the unit quad lands half the texture size away, in NDC.
	assertPoint(t, m, 0.5, 0.5, 32.0/320, 16.0/180)
}

func TestTransformScalePercent(t *testing.T) {
	d := NewDrawable("hero", "man", newRecordingDevice(640, 360), testTextures())
	d.SetPosition(320, 180)
	d.SetScale(200, 50)
	assertPoint(t, d.Transform(), 0.5, 0.5, 64.0/320, 8.0/180)
}

func TestTransformRotatesAboutCenter(t *testing.T) {
	d := NewDrawable("hero", "man", newRecordingDevice(640, 360), testTextures())
	d.SetPosition(160, 90)
	d.Rotation = 90

	m := d.Transform()
	cx, cy := PositionToNDC(160, 90, 320, 180)
	assertPoint(t, m, 0, 0, cx, cy)
	// (32, 0) pixels rotated a quarter turn is (0, 32) pixels.
	assertPoint(t, m, 0.5, 0, cx, cy+32.0/180)
}

func TestRenderUploadsTint(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	d := NewDrawable("hero", "man", dev, testTextures())
	d.SetColor(255, 0, 0, 50)
	d.Render(&fakeProgram{}, &fakeVertexArray{n: 6})

	require.Len(t, dev.draws, 1)
	assert.Equal(t, Color{R: 1, G: 0, B: 0, A: 0.5}, dev.draws[0].uniforms.Color)
	assert.Equal(t, d.Transform(), dev.draws[0].uniforms.Transform)
}
