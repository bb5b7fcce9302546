package luctisity

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/pkg/errors"
)

// ErrNoAudioOutput is returned when the host has no audio capability.
var ErrNoAudioOutput = errors.New("no audio output")

// Output is the audio context boundary: a device that pulls stereo samples
// from one streamer. Output implementations pull from their own goroutine
// while holding the lock, so graph mutations must happen between Lock and
// Unlock.
type Output interface {
	SampleRate() beep.SampleRate
	// Start begins pulling from s. It fails if no device is available.
	Start(s beep.Streamer) error
	// Suspended reports whether output is paused, for example because the
	// host has not seen any user interaction yet.
	Suspended() bool
	Resume() error
	Lock()
	Unlock()
	Close() error
}

// NewOutput creates the output named by cfg.Backend.
func NewOutput(cfg AudioConfig) Output {
	switch cfg.Backend {
	case "ebiten":
		return NewEbitenOutput(cfg.SampleRate, cfg.BufferDuration())
	case "speaker":
		return NewSpeakerOutput(cfg.SampleRate, cfg.BufferDuration())
	default:
		return NullOutput{Rate: beep.SampleRate(cfg.SampleRate)}
	}
}

// --- Ebitengine ---

// EbitenOutput plays through the Ebitengine audio context as 32-bit float PCM.
type EbitenOutput struct {
	sampleRate beep.SampleRate
	buffer     time.Duration

	mu      sync.Mutex
	ctx     *audio.Context
	player  *audio.Player
	src     beep.Streamer
	scratch [][2]float64
}

// NewEbitenOutput creates an output at sampleRate. The audio context is
// created on Start, or reused if the process already has one.
func NewEbitenOutput(sampleRate int, buffer time.Duration) *EbitenOutput {
	return &EbitenOutput{sampleRate: beep.SampleRate(sampleRate), buffer: buffer}
}

func (o *EbitenOutput) SampleRate() beep.SampleRate { return o.sampleRate }

func (o *EbitenOutput) Start(s beep.Streamer) error {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(int(o.sampleRate))
	} else if ctx.SampleRate() != int(o.sampleRate) {
		return errors.Errorf("audio context runs at %d Hz, want %d", ctx.SampleRate(), o.sampleRate)
	}

	o.mu.Lock()
	o.ctx = ctx
	o.src = s
	o.mu.Unlock()

	p, err := ctx.NewPlayerF32(&pcmReader{o: o})
	if err != nil {
		return errors.Wrap(err, "create audio player")
	}
	if o.buffer > 0 {
		p.SetBufferSize(o.buffer)
	}
	p.Play()
	o.player = p
	return nil
}

func (o *EbitenOutput) Suspended() bool {
	return o.ctx == nil || !o.ctx.IsReady() || o.player == nil || !o.player.IsPlaying()
}

func (o *EbitenOutput) Resume() error {
	if o.player == nil {
		return ErrNoAudioOutput
	}
	if !o.player.IsPlaying() {
		o.player.Play()
	}
	return nil
}

func (o *EbitenOutput) Lock()   { o.mu.Lock() }
func (o *EbitenOutput) Unlock() { o.mu.Unlock() }

func (o *EbitenOutput) Close() error {
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return errors.WithStack(err)
}

// pcmReader encodes the streamed graph as little-endian float32 stereo frames.
type pcmReader struct {
	o *EbitenOutput
}

const f32FrameSize = 8

func (r *pcmReader) Read(p []byte) (int, error) {
	frames := len(p) / f32FrameSize
	if frames == 0 {
		return 0, nil
	}
	o := r.o
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.scratch) < frames {
		o.scratch = make([][2]float64, frames)
	}
	buf := o.scratch[:frames]
	n := 0
	if o.src != nil {
		n, _ = o.src.Stream(buf)
	}
	for i := n; i < frames; i++ {
		buf[i] = [2]float64{}
	}
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*f32FrameSize:], math.Float32bits(float32(s[0])))
		binary.LittleEndian.PutUint32(p[i*f32FrameSize+4:], math.Float32bits(float32(s[1])))
	}
	return frames * f32FrameSize, nil
}

// --- beep speaker ---

// SpeakerOutput plays through the beep speaker package. Only one may be
// started per process.
type SpeakerOutput struct {
	sampleRate beep.SampleRate
	buffer     time.Duration
	started    bool
	suspended  bool
}

func NewSpeakerOutput(sampleRate int, buffer time.Duration) *SpeakerOutput {
	return &SpeakerOutput{sampleRate: beep.SampleRate(sampleRate), buffer: buffer}
}

func (o *SpeakerOutput) SampleRate() beep.SampleRate { return o.sampleRate }

func (o *SpeakerOutput) Start(s beep.Streamer) error {
	if err := speaker.Init(o.sampleRate, o.sampleRate.N(o.buffer)); err != nil {
		return errors.Wrap(err, "init speaker")
	}
	speaker.Play(s)
	o.started = true
	return nil
}

func (o *SpeakerOutput) Suspended() bool { return !o.started || o.suspended }

// Suspend pauses the device until Resume.
func (o *SpeakerOutput) Suspend() error {
	if !o.started {
		return ErrNoAudioOutput
	}
	if err := speaker.Suspend(); err != nil {
		return errors.Wrap(err, "suspend speaker")
	}
	o.suspended = true
	return nil
}

func (o *SpeakerOutput) Resume() error {
	if !o.started {
		return ErrNoAudioOutput
	}
	if !o.suspended {
		return nil
	}
	if err := speaker.Resume(); err != nil {
		return errors.Wrap(err, "resume speaker")
	}
	o.suspended = false
	return nil
}

func (o *SpeakerOutput) Lock()   { speaker.Lock() }
func (o *SpeakerOutput) Unlock() { speaker.Unlock() }

func (o *SpeakerOutput) Close() error {
	if o.started {
		speaker.Close()
		o.started = false
	}
	return nil
}

// --- none ---

// NullOutput stands for a host without audio. Start always fails, so
// AudioManager.InitAudio reports false.
type NullOutput struct {
	Rate beep.SampleRate
}

func (n NullOutput) SampleRate() beep.SampleRate {
	if n.Rate == 0 {
		return 48000
	}
	return n.Rate
}

func (NullOutput) Start(beep.Streamer) error { return ErrNoAudioOutput }
func (NullOutput) Suspended() bool           { return true }
func (NullOutput) Resume() error             { return ErrNoAudioOutput }
func (NullOutput) Lock()                     {}
func (NullOutput) Unlock()                   {}
func (NullOutput) Close() error              { return nil }
