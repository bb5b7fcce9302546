package luctisity

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// resampleQuality is the beep resampler quality used for playback rate.
const resampleQuality = 4

// Minimum factors accepted for pitch and speed.
const (
	minPitch = 0.1
	minSpeed = 0.1
)

// Reverb input scaling: wet mix is value*reverbWetScale, decay is value
// seconds, both clamped.
const (
	reverbWetScale = 0.8
	minDecay       = 0.1
	maxDecay       = 10
)

// SoundSource lists and resolves decoded sounds. Catalog implements it.
type SoundSource interface {
	SoundKeys() []string
	Sound(key string) (*beep.Buffer, error)
}

// Effects is the accumulated effect record of a channel.
type Effects struct {
	// Pitch is a frequency factor; 2 is an octave up.
	Pitch float64
	// Speed is the playback rate of every routed track.
	Speed float64
	// Pan is the stereo position. The pan stage clamps it to [-1, 1].
	Pan float64
	// Reverb sets both wet mix and decay; 0 is dry.
	Reverb float64
}

// DefaultEffects is the record new channels start from.
var DefaultEffects = Effects{Pitch: 1, Speed: 1, Pan: 0, Reverb: 0}

// EffectsPatch is a partial effect update. Nil fields are left untouched.
type EffectsPatch struct {
	Pitch  *float64
	Speed  *float64
	Pan    *float64
	Reverb *float64
}

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

// ChannelParams are the stage parameters derived from a channel's effects.
type ChannelParams struct {
	Volume    float64
	Pan       float64
	Semitones float64
	Wet       float64
	Decay     float64
}

// TrackState is a snapshot of one track.
type TrackState struct {
	ID      string
	Channel string // empty when unrouted
	Rate    float64
	Playing bool
	Looping bool
}

// Track is the playable source for one catalog sound.
type Track struct {
	id        string
	src       *trackSource
	resampler *beep.Resampler
	baseRatio float64
	rate      float64
	channel   *Channel
}

func (t *Track) setRate(rate float64) {
	t.rate = rate
	t.resampler.SetRatio(t.baseRatio * rate)
}

// Channel is a mixing bus with a fixed stage order:
// volume -> pan -> pitch -> reverb -> output.
type Channel struct {
	id      string
	input   *mixBus
	volume  *effects.Gain
	pan     *effects.Pan
	pitch   *pitchShifter
	reverb  *reverb
	effects Effects
	tracks  []*Track
}

func newChannel(id string, sr beep.SampleRate) *Channel {
	ch := &Channel{id: id, input: &mixBus{}, effects: DefaultEffects}
	ch.volume = &effects.Gain{Streamer: ch.input, Gain: 0}
	ch.pan = &effects.Pan{Streamer: ch.volume, Pan: 0}
	ch.pitch = newPitchShifter(ch.pan, sr)
	ch.reverb = newReverb(ch.pitch, sr)
	return ch
}

// output is the last stage of the chain.
func (ch *Channel) output() beep.Streamer { return ch.reverb }

func (ch *Channel) removeTrack(t *Track) {
	for i, o := range ch.tracks {
		if o == t {
			ch.tracks = append(ch.tracks[:i], ch.tracks[i+1:]...)
			break
		}
	}
	ch.input.Remove(t.resampler)
}

func (ch *Channel) addTrack(t *Track) {
	ch.input.Add(t.resampler)
	ch.tracks = append(ch.tracks, t)
	t.channel = ch
	t.setRate(math.Max(ch.effects.Speed, minSpeed))
}

// AudioManager owns the mixing graph: one track per catalog sound, one
// channel per caller-assigned id, all summed into the output.
type AudioManager struct {
	out    Output
	sounds SoundSource
	master *mixBus

	tracks   map[string]*Track
	channels map[string]*Channel
	order    []string // channel ids in creation order
	ready    bool
}

// NewAudioManager creates a manager that plays through out and takes its
// sounds from sounds. Nothing happens until InitAudio.
func NewAudioManager(out Output, sounds SoundSource) *AudioManager {
	return &AudioManager{
		out:      out,
		sounds:   sounds,
		master:   &mixBus{},
		tracks:   make(map[string]*Track),
		channels: make(map[string]*Channel),
	}
}

// InitAudio starts the output and creates one track per catalog sound. It
// returns false, after logging, when no output is available. The set of
// tracks is fixed afterwards.
func (am *AudioManager) InitAudio() bool {
	if am.ready {
		return true
	}
	if am.out == nil {
		Logger().Error("audio init failed", "err", ErrNoAudioOutput)
		return false
	}
	if err := am.out.Start(am.master); err != nil {
		Logger().Error("audio init failed", "err", err)
		return false
	}

	am.out.Lock()
	defer am.out.Unlock()

	outRate := am.out.SampleRate()
	if am.sounds != nil {
		for _, key := range am.sounds.SoundKeys() {
			buf, err := am.sounds.Sound(key)
			if err != nil {
				Logger().Warn("sound not loaded", "sound", key, "err", err)
				continue
			}
			src := newTrackSource(buf)
			base := float64(buf.Format().SampleRate) / float64(outRate)
			am.tracks[key] = &Track{
				id:        key,
				src:       src,
				resampler: beep.ResampleRatio(resampleQuality, base, src),
				baseRatio: base,
				rate:      1,
			}
		}
	}
	am.ready = true
	Logger().Info("audio initialized", "sample_rate", int(outRate), "tracks", len(am.tracks))
	return true
}

// Ready reports whether InitAudio succeeded.
func (am *AudioManager) Ready() bool { return am.ready }

// CreateChannel builds a channel with default effects and connects it to the
// output. Creating an id that already exists re-seeds it: a fresh chain takes
// the old one's place, its effects reset to defaults, and every track routed
// to the old chain moves to the new one.
func (am *AudioManager) CreateChannel(id string) {
	if am.out == nil {
		return
	}
	am.out.Lock()
	defer am.out.Unlock()

	ch := newChannel(id, am.out.SampleRate())
	old, exists := am.channels[id]
	am.channels[id] = ch
	if !exists {
		am.order = append(am.order, id)
		am.master.Add(ch.output())
		return
	}

	am.master.Replace(old.output(), ch.output())
	moved := old.tracks
	old.tracks = nil
	for _, t := range moved {
		old.input.Remove(t.resampler)
		ch.addTrack(t)
	}
	Logger().Info("channel re-seeded", "channel", id, "tracks", len(moved))
}

// ConnectSoundToChannel routes sound to channel, leaving any previous
// channel first. The track immediately takes the channel's current speed.
// Unknown ids are a logged no-op.
func (am *AudioManager) ConnectSoundToChannel(sound, channel string) {
	t, ok := am.tracks[sound]
	if !ok {
		Logger().Warn("sound not found", "sound", sound)
		return
	}
	ch, ok := am.channels[channel]
	if !ok {
		Logger().Warn("channel not found", "channel", channel)
		return
	}

	am.out.Lock()
	defer am.out.Unlock()
	if t.channel != nil {
		t.channel.removeTrack(t)
	}
	ch.addTrack(t)
}

// SetChannelEffects merges patch into the channel's effects and re-derives
// the stage parameter of each field present in patch. Absent fields leave
// their stages untouched.
func (am *AudioManager) SetChannelEffects(id string, patch EffectsPatch) {
	ch, ok := am.channels[id]
	if !ok {
		Logger().Warn("channel not found", "channel", id)
		return
	}

	am.out.Lock()
	defer am.out.Unlock()

	if patch.Pan != nil {
		ch.effects.Pan = *patch.Pan
		ch.pan.Pan = clamp(*patch.Pan, -1, 1)
	}
	if patch.Pitch != nil {
		ch.effects.Pitch = *patch.Pitch
		ch.pitch.SetSemitones(PitchToSemitones(*patch.Pitch))
	}
	if patch.Speed != nil {
		ch.effects.Speed = *patch.Speed
		rate := math.Max(*patch.Speed, minSpeed)
		for _, t := range ch.tracks {
			t.setRate(rate)
		}
	}
	if patch.Reverb != nil {
		ch.effects.Reverb = *patch.Reverb
		ch.reverb.Set(ReverbParams(*patch.Reverb))
	}
}

// PitchToSemitones converts a frequency factor to semitones. The factor is
// floored at 0.1 first.
func PitchToSemitones(factor float64) float64 {
	return math.Log(math.Max(factor, minPitch)) * math.Log2E * 12
}

// ReverbParams derives wet mix and decay seconds from a reverb amount.
func ReverbParams(v float64) (wet, decay float64) {
	return clamp(v*reverbWetScale, 0, 1), clamp(v, minDecay, maxDecay)
}

// SetChannelVolume sets the channel gain; 1 is unity. No clamping.
func (am *AudioManager) SetChannelVolume(id string, volume float64) {
	ch, ok := am.channels[id]
	if !ok {
		Logger().Warn("channel not found", "channel", id)
		return
	}
	am.out.Lock()
	ch.volume.Gain = volume - 1
	am.out.Unlock()
}

// PlaySound plays sound once from the start.
func (am *AudioManager) PlaySound(id string) { am.queueSound(id, false) }

// PlaySoundLoop plays sound from the start, looping.
func (am *AudioManager) PlaySoundLoop(id string) { am.queueSound(id, true) }

func (am *AudioManager) queueSound(id string, loop bool) {
	if am.out != nil && am.ready && am.out.Suspended() {
		if err := am.out.Resume(); err != nil {
			Logger().Warn("audio resume failed", "err", err)
		}
	}
	t, ok := am.tracks[id]
	if !ok {
		Logger().Warn("sound not found", "sound", id)
		return
	}
	am.out.Lock()
	t.src.play(loop)
	am.out.Unlock()
}

// StopSound stops sound. Stopping a stopped or unknown sound is a no-op.
func (am *AudioManager) StopSound(id string) {
	t, ok := am.tracks[id]
	if !ok {
		return
	}
	am.out.Lock()
	t.src.stop()
	am.out.Unlock()
}

// StopAllSounds stops every track.
func (am *AudioManager) StopAllSounds() {
	if len(am.tracks) == 0 {
		return
	}
	am.out.Lock()
	defer am.out.Unlock()
	for _, t := range am.tracks {
		t.src.stop()
	}
}

// ChannelEffects returns the accumulated effects record of a channel.
func (am *AudioManager) ChannelEffects(id string) (Effects, bool) {
	ch, ok := am.channels[id]
	if !ok {
		return Effects{}, false
	}
	return ch.effects, true
}

// ChannelParams returns the parameters currently applied to a channel's stages.
func (am *AudioManager) ChannelParams(id string) (ChannelParams, bool) {
	ch, ok := am.channels[id]
	if !ok {
		return ChannelParams{}, false
	}
	am.out.Lock()
	defer am.out.Unlock()
	return ChannelParams{
		Volume:    ch.volume.Gain + 1,
		Pan:       ch.pan.Pan,
		Semitones: ch.pitch.Semitones(),
		Wet:       ch.reverb.Wet(),
		Decay:     ch.reverb.Decay(),
	}, true
}

// ChannelTracks returns the ids of the sounds routed to a channel, in
// routing order.
func (am *AudioManager) ChannelTracks(id string) []string {
	ch, ok := am.channels[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(ch.tracks))
	for i, t := range ch.tracks {
		ids[i] = t.id
	}
	return ids
}

// Channels returns channel ids in creation order.
func (am *AudioManager) Channels() []string {
	out := make([]string, len(am.order))
	copy(out, am.order)
	return out
}

// Track returns a snapshot of the track for sound id.
func (am *AudioManager) Track(id string) (TrackState, bool) {
	t, ok := am.tracks[id]
	if !ok {
		return TrackState{}, false
	}
	am.out.Lock()
	defer am.out.Unlock()
	st := TrackState{ID: id, Rate: t.rate, Playing: t.src.playing, Looping: t.src.loop}
	if t.channel != nil {
		st.Channel = t.channel.id
	}
	return st, true
}

// Close stops all sounds and releases the output.
func (am *AudioManager) Close() error {
	am.StopAllSounds()
	if am.out == nil {
		return nil
	}
	return am.out.Close()
}
