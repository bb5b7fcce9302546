package luctisity

import (
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"io"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gogpu/gg"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"github.com/pkg/errors"
)

// Lookup-miss errors. Callers log them and carry on.
var (
	ErrUnknownTexture = errors.New("unknown texture")
	ErrUnknownSound   = errors.New("unknown sound")
)

// Catalog maps symbolic keys to decoded textures and sounds. It is filled at
// startup and read afterwards; the audio manager snapshots its sound keys.
type Catalog struct {
	images   map[string]image.Image
	uploaded map[Device]map[string]Texture
	sounds   map[string]*beep.Buffer
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		images:   make(map[string]image.Image),
		uploaded: make(map[Device]map[string]Texture),
		sounds:   make(map[string]*beep.Buffer),
	}
}

// AddImage registers img under key, replacing any previous image.
func (c *Catalog) AddImage(key string, img image.Image) {
	c.images[key] = img
	for _, textures := range c.uploaded {
		delete(textures, key)
	}
}

// AddSound registers a decoded sound under key.
func (c *Catalog) AddSound(key string, buf *beep.Buffer) {
	c.sounds[key] = buf
}

// Image returns the decoded image for key.
func (c *Catalog) Image(key string) (image.Image, error) {
	img, ok := c.images[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTexture, "key %q", key)
	}
	return img, nil
}

// Texture returns the texture for key on dev, uploading it on first use.
func (c *Catalog) Texture(dev Device, key string) (Texture, error) {
	if dev == nil {
		return nil, errors.New("no graphics device")
	}
	if t, ok := c.uploaded[dev][key]; ok {
		return t, nil
	}
	img, err := c.Image(key)
	if err != nil {
		return nil, err
	}
	t := dev.NewTexture(img)
	if c.uploaded[dev] == nil {
		c.uploaded[dev] = make(map[string]Texture)
	}
	c.uploaded[dev][key] = t
	return t, nil
}

// Sound returns the decoded buffer for key.
func (c *Catalog) Sound(key string) (*beep.Buffer, error) {
	buf, ok := c.sounds[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSound, "key %q", key)
	}
	return buf, nil
}

// TextureKeys returns all texture keys, sorted.
func (c *Catalog) TextureKeys() []string { return sortedKeys(c.images) }

// SoundKeys returns all sound keys, sorted.
func (c *Catalog) SoundKeys() []string { return sortedKeys(c.sounds) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Loading ---

// LoadCatalog decodes every asset named in cfg from fsys. Paths are relative
// to cfg.Dir inside fsys. Procedural tones are rendered at sampleRate.
func LoadCatalog(fsys fs.FS, cfg AssetsConfig, sampleRate int) (*Catalog, error) {
	if cfg.Dir != "" && cfg.Dir != "." {
		sub, err := fs.Sub(fsys, cfg.Dir)
		if err != nil {
			return nil, errors.Wrapf(err, "assets dir %q", cfg.Dir)
		}
		fsys = sub
	}

	c := NewCatalog()
	for _, key := range sortedKeys(cfg.Textures) {
		img, err := decodeImage(fsys, cfg.Textures[key])
		if err != nil {
			return nil, errors.Wrapf(err, "texture %q", key)
		}
		c.AddImage(key, img)
	}
	for _, p := range cfg.Atlases {
		if err := c.loadAtlas(fsys, p); err != nil {
			return nil, errors.Wrapf(err, "atlas %q", p)
		}
	}
	for _, key := range sortedKeys(cfg.Procedural) {
		if err := c.AddProcedural(key, cfg.Procedural[key]); err != nil {
			return nil, errors.Wrapf(err, "procedural texture %q", key)
		}
	}
	for _, key := range sortedKeys(cfg.Sounds) {
		buf, err := decodeSound(fsys, cfg.Sounds[key])
		if err != nil {
			return nil, errors.Wrapf(err, "sound %q", key)
		}
		c.AddSound(key, buf)
	}
	for _, key := range sortedKeys(cfg.Tones) {
		if err := c.AddTone(key, cfg.Tones[key], beep.SampleRate(sampleRate)); err != nil {
			return nil, errors.Wrapf(err, "tone %q", key)
		}
	}
	return c, nil
}

func decodeImage(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return img, nil
}

// loadAtlas registers every region of a TexturePacker sheet as a texture
// keyed by its frame name. Page images resolve relative to the JSON file.
func (c *Catalog) loadAtlas(fsys fs.FS, jsonPath string) error {
	data, err := fs.ReadFile(fsys, jsonPath)
	if err != nil {
		return errors.WithStack(err)
	}
	atlas, err := ParseAtlas(data)
	if err != nil {
		return err
	}
	pages := make([]image.Image, len(atlas.PageImages))
	for i, name := range atlas.PageImages {
		pages[i], err = decodeImage(fsys, path.Join(path.Dir(jsonPath), name))
		if err != nil {
			return errors.Wrapf(err, "page %d", i)
		}
	}
	for name, r := range atlas.Regions {
		if r.Page >= len(pages) {
			return errors.Errorf("region %q references missing page %d", name, r.Page)
		}
		c.AddImage(name, r.Extract(pages[r.Page]))
	}
	return nil
}

func decodeSound(fsys fs.FS, name string) (*beep.Buffer, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, errors.Errorf("unsupported sound format %q", ext)
	}
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	defer s.Close()

	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "stream %s", name)
	}
	return buf, nil
}

// --- Procedural assets ---

// AddProcedural renders a placeholder shape and registers it under key.
func (c *Catalog) AddProcedural(key string, p ProceduralTexture) error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Errorf("invalid size %dx%d", p.Width, p.Height)
	}
	w, h := float64(p.Width), float64(p.Height)

	dc := gg.NewContext(p.Width, p.Height)
	defer dc.Close()

	col := gg.Hex("#ffffff")
	if p.Color != "" {
		col = gg.Hex(p.Color)
	}
	dc.SetRGBA(col.R, col.G, col.B, col.A)

	switch p.Shape {
	case "circle":
		dc.DrawCircle(w/2, h/2, math.Min(w, h)/2)
	case "ellipse":
		dc.DrawEllipse(w/2, h/2, w/2, h/2)
	case "rounded":
		dc.DrawRoundedRectangle(0, 0, w, h, math.Min(w, h)/8)
	case "rect", "":
		dc.DrawRectangle(0, 0, w, h)
	default:
		return errors.Errorf("unknown shape %q", p.Shape)
	}
	if err := dc.Fill(); err != nil {
		return errors.Wrap(err, "fill")
	}
	c.AddImage(key, dc.Image())
	return nil
}

// AddTone renders a short synthesized tone and registers it as a sound.
func (c *Catalog) AddTone(key string, t ToneConfig, sr beep.SampleRate) error {
	if t.Freq <= 0 || t.Freq >= float64(sr)/2 {
		return errors.Errorf("frequency %v out of range for %d Hz", t.Freq, sr)
	}
	dur := time.Duration(t.DurationMs) * time.Millisecond
	if dur <= 0 {
		dur = 200 * time.Millisecond
	}

	var (
		tone beep.Streamer
		err  error
	)
	switch t.Wave {
	case "sine", "":
		tone, err = generators.SineTone(sr, t.Freq)
	case "square":
		tone, err = generators.SquareTone(sr, t.Freq)
	case "triangle":
		tone, err = generators.TriangleTone(sr, t.Freq)
	case "saw":
		tone, err = generators.SawtoothTone(sr, t.Freq)
	default:
		return errors.Errorf("unknown wave %q", t.Wave)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	n := sr.N(dur)
	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buf.Append(&envelope{s: beep.Take(n, tone), total: n, fade: sr.N(10 * time.Millisecond), gain: toneGain(t.Gain)})
	c.AddSound(key, buf)
	return nil
}

func toneGain(g float64) float64 {
	if g <= 0 {
		return 0.3
	}
	return clamp(g, 0, 1)
}

// envelope applies a linear fade in and out to a finite streamer so tones
// don't click at their edges.
type envelope struct {
	s     beep.Streamer
	pos   int
	total int
	fade  int
	gain  float64
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := e.gain
		if e.fade > 0 {
			if e.pos < e.fade {
				g *= float64(e.pos) / float64(e.fade)
			}
			if rem := e.total - e.pos; rem < e.fade {
				g *= float64(rem) / float64(e.fade)
			}
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }
