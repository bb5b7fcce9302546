package luctisity

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// mixBus sums an ordered list of inputs. Unlike beep.Mixer it never drops an
// input that runs dry and always reports ok, so the graph downstream stays
// alive while nothing is playing.
type mixBus struct {
	inputs []beep.Streamer
	buf    [][2]float64
}

func (m *mixBus) Add(s beep.Streamer) {
	m.inputs = append(m.inputs, s)
}

func (m *mixBus) Remove(s beep.Streamer) {
	for i, in := range m.inputs {
		if in == s {
			m.inputs = append(m.inputs[:i], m.inputs[i+1:]...)
			return
		}
	}
}

// Replace swaps old for s in place, keeping its position. If old is not an
// input, s is appended.
func (m *mixBus) Replace(old, s beep.Streamer) {
	for i, in := range m.inputs {
		if in == old {
			m.inputs[i] = s
			return
		}
	}
	m.Add(s)
}

func (m *mixBus) Len() int { return len(m.inputs) }

func (m *mixBus) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	if len(m.buf) < len(samples) {
		m.buf = make([][2]float64, len(samples))
	}
	for _, in := range m.inputs {
		buf := m.buf[:len(samples)]
		n, _ := in.Stream(buf)
		for i := 0; i < n; i++ {
			samples[i][0] += buf[i][0]
			samples[i][1] += buf[i][1]
		}
	}
	return len(samples), true
}

func (m *mixBus) Err() error { return nil }

// trackSource plays a decoded buffer from the start, optionally looping.
// While stopped it streams silence.
type trackSource struct {
	buf     *beep.Buffer
	s       beep.StreamSeeker
	playing bool
	loop    bool
}

func newTrackSource(buf *beep.Buffer) *trackSource {
	return &trackSource{buf: buf}
}

// play restarts from position 0.
func (t *trackSource) play(loop bool) {
	t.s = t.buf.Streamer(0, t.buf.Len())
	t.loop = loop
	t.playing = t.buf.Len() > 0
}

func (t *trackSource) stop() {
	t.playing = false
}

func (t *trackSource) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for t.playing && filled < len(samples) {
		n, ok := t.s.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			if !t.loop {
				t.playing = false
				break
			}
			if err := t.s.Seek(0); err != nil {
				t.playing = false
			}
		}
	}
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (t *trackSource) Err() error { return nil }

// pitchWindow is the delay-line window of the pitch shifter.
const pitchWindow = 50 * time.Millisecond

// pitchShifter changes pitch without changing duration. Two read taps sweep
// a delay line in opposite phase and are crossfaded with sin^2 gains, which
// sum to one.
type pitchShifter struct {
	Streamer beep.Streamer

	semitones float64
	ratio     float64
	window    float64
	ring      [][2]float64
	w         int
	phase     float64
}

func newPitchShifter(s beep.Streamer, sr beep.SampleRate) *pitchShifter {
	window := sr.N(pitchWindow)
	return &pitchShifter{
		Streamer: s,
		ratio:    1,
		window:   float64(window),
		ring:     make([][2]float64, window+2),
	}
}

func (p *pitchShifter) SetSemitones(st float64) {
	p.semitones = st
	p.ratio = math.Pow(2, st/12)
}

func (p *pitchShifter) Semitones() float64 { return p.semitones }

func (p *pitchShifter) Stream(samples [][2]float64) (int, bool) {
	n, ok := p.Streamer.Stream(samples)
	step := (1 - p.ratio) / p.window
	for i := 0; i < n; i++ {
		p.ring[p.w] = samples[i]
		if p.semitones != 0 {
			p.phase += step
			p.phase -= math.Floor(p.phase)
			ph2 := p.phase + 0.5
			ph2 -= math.Floor(ph2)
			g1 := math.Sin(math.Pi * p.phase)
			g2 := math.Sin(math.Pi * ph2)
			a := p.tap(p.phase * p.window)
			b := p.tap(ph2 * p.window)
			samples[i][0] = g1*g1*a[0] + g2*g2*b[0]
			samples[i][1] = g1*g1*a[1] + g2*g2*b[1]
		}
		p.w = (p.w + 1) % len(p.ring)
	}
	return n, ok
}

// tap reads the delay line d samples behind the write head, interpolating.
func (p *pitchShifter) tap(d float64) [2]float64 {
	l := len(p.ring)
	pos := float64(p.w) - d
	for pos < 0 {
		pos += float64(l)
	}
	i0 := int(pos) % l
	i1 := (i0 + 1) % l
	f := pos - math.Floor(pos)
	a, b := p.ring[i0], p.ring[i1]
	return [2]float64{a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f}
}

func (p *pitchShifter) Err() error { return p.Streamer.Err() }

var (
	combDelays    = []time.Duration{29700 * time.Microsecond, 37100 * time.Microsecond, 41100 * time.Microsecond, 43700 * time.Microsecond}
	allpassDelays = []time.Duration{5 * time.Millisecond, 1700 * time.Microsecond}
)

const allpassGain = 0.7

// delayLine is a feedback delay used as either a comb or an allpass filter.
type delayLine struct {
	buf      [][2]float64
	pos      int
	delay    time.Duration
	feedback float64
}

func (d *delayLine) comb(x [2]float64) [2]float64 {
	y := d.buf[d.pos]
	d.buf[d.pos] = [2]float64{x[0] + y[0]*d.feedback, x[1] + y[1]*d.feedback}
	d.pos = (d.pos + 1) % len(d.buf)
	return y
}

func (d *delayLine) allpass(x [2]float64) [2]float64 {
	b := d.buf[d.pos]
	var y [2]float64
	for c := 0; c < 2; c++ {
		v := x[c] + b[c]*d.feedback
		y[c] = b[c] - v*d.feedback
		d.buf[d.pos][c] = v
	}
	d.pos = (d.pos + 1) % len(d.buf)
	return y
}

// reverb is a Schroeder reverberator: four parallel combs into two series
// allpasses, mixed with the dry signal. Wet zero bypasses it.
type reverb struct {
	Streamer beep.Streamer

	wet       float64
	decay     float64
	combs     []*delayLine
	allpasses []*delayLine
}

func newReverb(s beep.Streamer, sr beep.SampleRate) *reverb {
	r := &reverb{Streamer: s}
	for _, d := range combDelays {
		r.combs = append(r.combs, &delayLine{buf: make([][2]float64, max(sr.N(d), 1)), delay: d})
	}
	for _, d := range allpassDelays {
		r.allpasses = append(r.allpasses, &delayLine{buf: make([][2]float64, max(sr.N(d), 1)), delay: d, feedback: allpassGain})
	}
	r.Set(0, 0.1)
	return r
}

// Set updates the wet mix in [0, 1] and the decay time in seconds, the time
// for the tail to fall by 60 dB.
func (r *reverb) Set(wet, decay float64) {
	r.wet = wet
	r.decay = decay
	for _, c := range r.combs {
		c.feedback = math.Pow(10, -3*c.delay.Seconds()/decay)
	}
}

func (r *reverb) Wet() float64   { return r.wet }
func (r *reverb) Decay() float64 { return r.decay }

func (r *reverb) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.Streamer.Stream(samples)
	if r.wet == 0 {
		return n, ok
	}
	scale := 1 / float64(len(r.combs))
	for i := 0; i < n; i++ {
		x := samples[i]
		var acc [2]float64
		for _, c := range r.combs {
			y := c.comb(x)
			acc[0] += y[0] * scale
			acc[1] += y[1] * scale
		}
		for _, a := range r.allpasses {
			acc = a.allpass(acc)
		}
		samples[i][0] = x[0]*(1-r.wet) + acc[0]*r.wet
		samples[i][1] = x[1]*(1-r.wet) + acc[1]*r.wet
	}
	return n, ok
}

func (r *reverb) Err() error { return r.Streamer.Err() }
