package luctisity

import (
	"encoding/json"
	"image"
	"image/draw"

	"github.com/pkg/errors"
)

// AtlasRegion describes a named sub-rectangle within an atlas page.
type AtlasRegion struct {
	Page      int  // atlas page index
	X, Y      int  // top-left corner of the sub-image rect within the page
	Width     int  // width of the sub-image rect (may differ from OriginalW if trimmed)
	Height    int  // height of the sub-image rect (may differ from OriginalH if trimmed)
	OriginalW int  // untrimmed sprite width as authored
	OriginalH int  // untrimmed sprite height as authored
	OffsetX   int  // horizontal trim offset
	OffsetY   int  // vertical trim offset
	Rotated   bool // stored 90 degrees clockwise in the page
}

// Atlas is a parsed TexturePacker sheet.
type Atlas struct {
	// PageImages lists the page image file names in page order. Empty for
	// the hash format, which names its page in "meta".
	PageImages []string
	Regions    map[string]AtlasRegion
}

// ParseAtlas parses TexturePacker JSON data. Supports both the hash format
// (single "frames" object) and the array format ("textures" array with
// per-page frame lists).
func ParseAtlas(jsonData []byte) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Image string `json:"image"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, errors.Wrap(err, "parse atlas JSON")
	}

	atlas := &Atlas{Regions: make(map[string]AtlasRegion)}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
		if probe.Meta.Image != "" {
			atlas.PageImages = []string{probe.Meta.Image}
		}
	default:
		return nil, errors.New("atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func parseHashFrames(raw json.RawMessage, page int, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return errors.Wrap(err, "parse atlas frames")
	}
	for name, f := range frames {
		atlas.Regions[name] = frameToRegion(f, page)
	}
	return nil
}

func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return errors.Wrap(err, "parse atlas textures array")
	}
	for i, tex := range textures {
		atlas.PageImages = append(atlas.PageImages, tex.Image)
		for name, f := range tex.Frames {
			atlas.Regions[name] = frameToRegion(f, i)
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page int) AtlasRegion {
	return AtlasRegion{
		Page:      page,
		X:         f.Frame.X,
		Y:         f.Frame.Y,
		Width:     f.Frame.W,
		Height:    f.Frame.H,
		OriginalW: f.SourceSize.W,
		OriginalH: f.SourceSize.H,
		OffsetX:   f.SpriteSourceSize.X,
		OffsetY:   f.SpriteSourceSize.Y,
		Rotated:   f.Rotated,
	}
}

// Extract copies a region out of its page image, undoing rotation and
// restoring trimmed transparent margins, so the result has the authored size.
func (r AtlasRegion) Extract(page image.Image) image.Image {
	// Width and Height are page dimensions; a rotated sprite is Height wide.
	pw, ph := r.Width, r.Height
	src := image.Rect(r.X, r.Y, r.X+pw, r.Y+ph).Add(page.Bounds().Min)

	w, h := r.OriginalW, r.OriginalH
	if w == 0 || h == 0 {
		w, h = pw, ph
		if r.Rotated {
			w, h = ph, pw
		}
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if !r.Rotated {
		dst := image.Rect(r.OffsetX, r.OffsetY, r.OffsetX+r.Width, r.OffsetY+r.Height)
		draw.Draw(out, dst, page, src.Min, draw.Src)
		return out
	}
	// Stored clockwise: page pixel (px, py) maps to sprite pixel (py, pw-1-px).
	for py := 0; py < ph; py++ {
		for px := 0; px < pw; px++ {
			c := page.At(src.Min.X+px, src.Min.Y+py)
			out.Set(r.OffsetX+py, r.OffsetY+pw-1-px, c)
		}
	}
	return out
}
