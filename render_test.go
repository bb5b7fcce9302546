package luctisity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderManagerInit(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	require.True(t, rm.Init(dev))
	assert.True(t, rm.Ready())
	assert.Same(t, dev, rm.Device())
	assert.Len(t, dev.compiled, 1)
	assert.GreaterOrEqual(t, dev.clears, 1)
}

func TestRenderManagerInitNilDevice(t *testing.T) {
	rm := NewRenderManager()
	assert.False(t, rm.Init(nil))
	assert.False(t, rm.Ready())
}

func TestRenderManagerInitShaderFailure(t *testing.T) {
	logs := captureLogs(t)
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	rm.SetShaderSource([]byte("syntax error"))
	rm.AddDrawable(NewDrawable("hero", "man", dev, testTextures()))

	assert.False(t, rm.Init(dev))
	assert.False(t, rm.Ready())
	assert.Contains(t, logs.String(), "fragment shader")

	rm.Render()
	assert.Empty(t, dev.draws)
}

func TestRenderBeforeInitIsInert(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	rm.AddDrawable(NewDrawable("hero", "man", dev, testTextures()))
	rm.Render()
	assert.Empty(t, dev.draws)
	assert.Zero(t, dev.clears)
}

func TestAddDrawableIdempotent(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	d := NewDrawable("hero", "man", dev, testTextures())
	rm.AddDrawable(d)
	rm.AddDrawable(d)
	assert.Equal(t, 1, rm.Len())
}

func TestRenderDrawsInInsertionOrder(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	require.True(t, rm.Init(dev))
	clears := dev.clears

	man := NewDrawable("man", "man", dev, testTextures())
	troll := NewDrawable("troll", "troll", dev, testTextures())
	rm.AddDrawable(troll)
	rm.AddDrawable(man)
	rm.Render()

	assert.Equal(t, clears+1, dev.clears)
	require.Len(t, dev.draws, 2)
	assert.Equal(t, "troll", dev.draws[0].tex.(*fakeTexture).key)
	assert.Equal(t, "man", dev.draws[1].tex.(*fakeTexture).key)
}

func TestRemoveAndFind(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	a := NewDrawable("a", "man", dev, testTextures())
	b := NewDrawable("b", "troll", dev, testTextures())
	rm.AddDrawable(a)
	rm.AddDrawable(b)

	assert.Same(t, b, rm.Find("b"))
	assert.Nil(t, rm.Find("c"))

	assert.True(t, rm.RemoveDrawable(a))
	assert.False(t, rm.RemoveDrawable(a))
	assert.Equal(t, []*Drawable{b}, rm.Drawables())

	// Re-adding after removal appends at the end.
	rm.AddDrawable(a)
	assert.Equal(t, []*Drawable{b, a}, rm.Drawables())
}

func TestDrawablesReturnsCopy(t *testing.T) {
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	rm.AddDrawable(NewDrawable("a", "man", dev, testTextures()))
	list := rm.Drawables()
	list[0] = nil
	assert.NotNil(t, rm.Drawables()[0])
}

func BenchmarkRender100Drawables(b *testing.B) {
	dev := newRecordingDevice(640, 360)
	rm := NewRenderManager()
	require.True(b, rm.Init(dev))
	assets := testTextures()
	for i := 0; i < 100; i++ {
		d := NewDrawable("d", "man", dev, assets)
		d.SetPosition(float64(i*6), float64(i*3))
		d.Rotation = float64(i)
		rm.AddDrawable(d)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dev.draws = dev.draws[:0]
		rm.Render()
	}
}
