package luctisity

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config is the engine configuration, usually read from a TOML file.
type Config struct {
	Canvas    CanvasConfig     `toml:"canvas"`
	Audio     AudioConfig      `toml:"audio"`
	Log       LogConfig        `toml:"log"`
	Assets    AssetsConfig     `toml:"assets"`
	Channels  []ChannelConfig  `toml:"channels"`
	Drawables []DrawableConfig `toml:"drawables"`
	// Script is a path to an action script for the script package.
	Script string `toml:"script,omitempty"`
}

type CanvasConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	// FPS caps the rate of accepted frames. Zero or negative is uncapped.
	FPS float64 `toml:"fps"`
}

type AudioConfig struct {
	// Backend is "ebiten", "speaker" or "none".
	Backend    string `toml:"backend"`
	SampleRate int    `toml:"sample_rate"`
	BufferMs   int    `toml:"buffer_ms"`
}

// BufferDuration returns the output buffer length.
func (a AudioConfig) BufferDuration() time.Duration {
	return time.Duration(a.BufferMs) * time.Millisecond
}

type LogConfig struct {
	Level string `toml:"level"`
	// Debug enables per-frame stats.
	Debug bool `toml:"debug"`
}

// SlogLevel parses Level, defaulting to info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "log level %q", l.Level)
	}
	return level, nil
}

type AssetsConfig struct {
	Dir        string                       `toml:"dir"`
	Textures   map[string]string            `toml:"textures"`
	Sounds     map[string]string            `toml:"sounds"`
	Atlases    []string                     `toml:"atlases"`
	Procedural map[string]ProceduralTexture `toml:"procedural"`
	Tones      map[string]ToneConfig        `toml:"tones"`
}

// ProceduralTexture describes a placeholder shape drawn at load time.
type ProceduralTexture struct {
	// Shape is "rect", "rounded", "circle" or "ellipse".
	Shape  string `toml:"shape"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// Color is a hex string such as "#ff8800" or "f80c".
	Color string `toml:"color"`
}

// ToneConfig describes a synthesized sound.
type ToneConfig struct {
	// Wave is "sine", "square", "triangle" or "saw".
	Wave       string  `toml:"wave"`
	Freq       float64 `toml:"freq"`
	DurationMs int     `toml:"duration_ms"`
	Gain       float64 `toml:"gain"`
}

// ChannelConfig creates a channel at startup. Nil effect fields are left at
// their defaults.
type ChannelConfig struct {
	ID     string   `toml:"id"`
	Volume *float64 `toml:"volume"`
	Pitch  *float64 `toml:"pitch"`
	Speed  *float64 `toml:"speed"`
	Pan    *float64 `toml:"pan"`
	Reverb *float64 `toml:"reverb"`
	Sounds []string `toml:"sounds"`
}

// DrawableConfig places a drawable at startup.
type DrawableConfig struct {
	Name     string   `toml:"name"`
	Texture  string   `toml:"texture"`
	X        float64  `toml:"x"`
	Y        float64  `toml:"y"`
	Rotation float64  `toml:"rotation"`
	ScaleX   *float64 `toml:"scale_x"`
	ScaleY   *float64 `toml:"scale_y"`
	Opacity  *float64 `toml:"opacity"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Canvas: CanvasConfig{Width: 640, Height: 360, Title: "luctisity", FPS: -1},
		Audio:  AudioConfig{Backend: "ebiten", SampleRate: 48000, BufferMs: 100},
		Log:    LogConfig{Level: "info"},
		Assets: AssetsConfig{Dir: "."},
	}
}

// DecodeConfig decodes TOML data over DefaultConfig and validates the result.
// Unknown keys are rejected.
func DecodeConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := DecodeConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	switch c.Audio.Backend {
	case "ebiten", "speaker", "none":
	default:
		return errors.Errorf("unknown audio backend %q", c.Audio.Backend)
	}
	if c.Audio.SampleRate <= 0 {
		return errors.Errorf("sample rate %d must be positive", c.Audio.SampleRate)
	}
	if c.Audio.BufferMs <= 0 {
		return errors.Errorf("buffer_ms %d must be positive", c.Audio.BufferMs)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i, ch := range c.Channels {
		if ch.ID == "" {
			return errors.Errorf("channel %d has no id", i)
		}
		if seen[ch.ID] {
			return errors.Errorf("channel %q declared twice", ch.ID)
		}
		seen[ch.ID] = true
	}
	for i, d := range c.Drawables {
		if d.Texture == "" {
			return errors.Errorf("drawable %d (%q) has no texture", i, d.Name)
		}
	}
	return nil
}

// ApplyChannels creates each configured channel on am, applies its volume
// and effects, and routes its sounds.
func ApplyChannels(am *AudioManager, channels []ChannelConfig) {
	for _, ch := range channels {
		am.CreateChannel(ch.ID)
		if ch.Volume != nil {
			am.SetChannelVolume(ch.ID, *ch.Volume)
		}
		am.SetChannelEffects(ch.ID, EffectsPatch{Pitch: ch.Pitch, Speed: ch.Speed, Pan: ch.Pan, Reverb: ch.Reverb})
		for _, s := range ch.Sounds {
			am.ConnectSoundToChannel(s, ch.ID)
		}
	}
}

// SpawnDrawables creates each configured drawable and adds it to rm.
func SpawnDrawables(rm *RenderManager, dev Device, assets TextureSource, drawables []DrawableConfig) []*Drawable {
	out := make([]*Drawable, 0, len(drawables))
	for _, dc := range drawables {
		d := NewDrawable(dc.Name, dc.Texture, dev, assets)
		d.SetPosition(dc.X, dc.Y)
		d.Rotation = dc.Rotation
		if dc.ScaleX != nil {
			d.ScaleX = *dc.ScaleX
		}
		if dc.ScaleY != nil {
			d.ScaleY = *dc.ScaleY
		}
		if dc.Opacity != nil {
			d.Opacity = *dc.Opacity
		}
		rm.AddDrawable(d)
		out = append(out, d)
	}
	return out
}
