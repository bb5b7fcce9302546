package luctisity

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test JSON fixtures ---

const singlePageJSON = `{
  "frames": {
    "hero.png": {
      "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 64, "h": 64},
      "sourceSize": {"w": 64, "h": 64}
    },
    "enemy.png": {
      "frame": {"x": 64, "y": 0, "w": 32, "h": 48},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 32, "h": 48},
      "sourceSize": {"w": 32, "h": 48}
    },
    "trimmed.png": {
      "frame": {"x": 100, "y": 50, "w": 60, "h": 58},
      "rotated": false,
      "trimmed": true,
      "spriteSourceSize": {"x": 2, "y": 3, "w": 60, "h": 58},
      "sourceSize": {"w": 64, "h": 64}
    },
    "rotated.png": {
      "frame": {"x": 200, "y": 0, "w": 48, "h": 32},
      "rotated": true,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 48, "h": 32},
      "sourceSize": {"w": 32, "h": 48}
    }
  },
  "meta": {
    "image": "atlas.png",
    "size": {"w": 1024, "h": 1024}
  }
}`

const multiPageJSON = `{
  "textures": [
    {
      "image": "atlas-0.png",
      "frames": {
        "page0_sprite.png": {
          "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
          "rotated": false,
          "trimmed": false,
          "spriteSourceSize": {"x": 0, "y": 0, "w": 64, "h": 64},
          "sourceSize": {"w": 64, "h": 64}
        }
      }
    },
    {
      "image": "atlas-1.png",
      "frames": {
        "page1_sprite.png": {
          "frame": {"x": 10, "y": 20, "w": 50, "h": 50},
          "rotated": false,
          "trimmed": false,
          "spriteSourceSize": {"x": 0, "y": 0, "w": 50, "h": 50},
          "sourceSize": {"w": 50, "h": 50}
        }
      }
    }
  ]
}`

// --- ParseAtlas tests ---

func TestParseAtlas_SinglePage(t *testing.T) {
	atlas, err := ParseAtlas([]byte(singlePageJSON))
	require.NoError(t, err)
	assert.Len(t, atlas.Regions, 4)
	assert.Equal(t, []string{"atlas.png"}, atlas.PageImages)

	hero := atlas.Regions["hero.png"]
	assert.Equal(t, AtlasRegion{Width: 64, Height: 64, OriginalW: 64, OriginalH: 64}, hero)

	enemy := atlas.Regions["enemy.png"]
	assert.Equal(t, 64, enemy.X)
	assert.Equal(t, 32, enemy.Width)
	assert.Equal(t, 48, enemy.Height)
}

func TestParseAtlas_TrimmedRegion(t *testing.T) {
	atlas, err := ParseAtlas([]byte(singlePageJSON))
	require.NoError(t, err)

	r := atlas.Regions["trimmed.png"]
	assert.Equal(t, 2, r.OffsetX)
	assert.Equal(t, 3, r.OffsetY)
	assert.Equal(t, 64, r.OriginalW)
	assert.Equal(t, 60, r.Width)
	assert.Equal(t, 58, r.Height)
}

func TestParseAtlas_RotatedRegion(t *testing.T) {
	atlas, err := ParseAtlas([]byte(singlePageJSON))
	require.NoError(t, err)

	r := atlas.Regions["rotated.png"]
	assert.True(t, r.Rotated)
	// In the page, rotated regions store w/h as the rotated dimensions.
	assert.Equal(t, 48, r.Width)
	assert.Equal(t, 32, r.Height)
}

func TestParseAtlas_MultiPage(t *testing.T) {
	atlas, err := ParseAtlas([]byte(multiPageJSON))
	require.NoError(t, err)
	assert.Equal(t, []string{"atlas-0.png", "atlas-1.png"}, atlas.PageImages)
	assert.Equal(t, 0, atlas.Regions["page0_sprite.png"].Page)

	r1 := atlas.Regions["page1_sprite.png"]
	assert.Equal(t, 1, r1.Page)
	assert.Equal(t, 10, r1.X)
	assert.Equal(t, 20, r1.Y)
}

func TestParseAtlas_InvalidJSON(t *testing.T) {
	_, err := ParseAtlas([]byte(`{invalid`))
	assert.Error(t, err)
}

func TestParseAtlas_NoFramesOrTextures(t *testing.T) {
	_, err := ParseAtlas([]byte(`{"meta":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither")
}

// --- Extract tests ---

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestExtract_PlainRegion(t *testing.T) {
	page := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	page.Set(2, 1, red)
	r := AtlasRegion{X: 2, Y: 1, Width: 3, Height: 2, OriginalW: 3, OriginalH: 2}

	img := r.Extract(page)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, red, img.At(0, 0))
}

func TestExtract_TrimmedRegionRestoresMargins(t *testing.T) {
	page := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	page.Set(0, 0, red)
	r := AtlasRegion{Width: 2, Height: 2, OriginalW: 6, OriginalH: 5, OffsetX: 2, OffsetY: 3}

	img := r.Extract(page)
	assert.Equal(t, image.Rect(0, 0, 6, 5), img.Bounds())
	assert.Equal(t, red, img.At(2, 3))
	assert.Equal(t, color.NRGBA{}, img.At(0, 0))
}

func TestExtract_RotatedRegion(t *testing.T) {
	// Sprite is 2 wide, 3 tall; stored clockwise it occupies 3x2 in the page.
	page := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	// Sprite top-left ends up at the page top-right after a clockwise turn.
	page.Set(2, 0, red)
	// Sprite bottom-left ends up at the page top-left.
	page.Set(0, 0, blue)
	r := AtlasRegion{Width: 3, Height: 2, Rotated: true}

	img := r.Extract(page)
	assert.Equal(t, image.Rect(0, 0, 2, 3), img.Bounds())
	assert.Equal(t, red, img.At(0, 0))
	assert.Equal(t, blue, img.At(0, 2))
}

// --- Benchmarks ---

func BenchmarkParseAtlas_SinglePage(b *testing.B) {
	data := []byte(singlePageJSON)
	for i := 0; i < b.N; i++ {
		_, _ = ParseAtlas(data)
	}
}
