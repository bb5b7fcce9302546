package luctisity

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates one or more float64 fields of a Drawable together.
// Create one with the constructors below and either call Update(dt) each
// frame or hand it to an Animator.
type TweenGroup struct {
	tweens []*gween.Tween
	fields []*float64
	ends   []float64
	target *Drawable
	onDone func()
	Done   bool
}

func newTweenGroup(d *Drawable) *TweenGroup {
	return &TweenGroup{target: d}
}

func (g *TweenGroup) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	g.tweens = append(g.tweens, gween.New(float32(*field), float32(to), duration, fn))
	g.fields = append(g.fields, field)
	g.ends = append(g.ends, to)
}

// Target returns the animated drawable.
func (g *TweenGroup) Target() *Drawable { return g.target }

// OnDone sets a callback run once when the group finishes. It is not run for
// a group that is stopped.
func (g *TweenGroup) OnDone(fn func()) *TweenGroup {
	g.onDone = fn
	return g
}

// Stop ends the group where it is.
func (g *TweenGroup) Stop() {
	g.Done = true
	g.onDone = nil
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. A finished tween leaves its field at the exact end value, even with
// a zero duration.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i, tw := range g.tweens {
		val, finished := tw.Update(dt)
		if finished {
			*g.fields[i] = g.ends[i]
			continue
		}
		*g.fields[i] = float64(val)
		allDone = false
	}
	g.Done = allDone
	if g.Done && g.onDone != nil {
		fn := g.onDone
		g.onDone = nil
		fn()
	}
}

// TweenPosition animates X and Y to (toX, toY).
func TweenPosition(d *Drawable, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(d)
	g.add(&d.X, toX, duration, fn)
	g.add(&d.Y, toY, duration, fn)
	return g
}

// TweenScale animates ScaleX and ScaleY, in percent.
func TweenScale(d *Drawable, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(d)
	g.add(&d.ScaleX, toSX, duration, fn)
	g.add(&d.ScaleY, toSY, duration, fn)
	return g
}

// TweenRotation animates Rotation, in degrees.
func TweenRotation(d *Drawable, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(d)
	g.add(&d.Rotation, to, duration, fn)
	return g
}

// TweenOpacity animates Opacity (0-100).
func TweenOpacity(d *Drawable, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(d)
	g.add(&d.Opacity, to, duration, fn)
	return g
}

// TweenColor animates the tint channels (0-255).
func TweenColor(d *Drawable, r, gr, b float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(d)
	g.add(&d.R, r, duration, fn)
	g.add(&d.G, gr, duration, fn)
	g.add(&d.B, b, duration, fn)
	return g
}

// TweenFields animates the named fields of d. Known names are x, y,
// rotation, scale_x, scale_y, opacity, r, g and b.
func TweenFields(d *Drawable, to map[string]float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	g := newTweenGroup(d)
	names := make([]string, 0, len(to))
	for name := range to {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := d.field(name)
		if f == nil {
			return nil, errors.Errorf("unknown tween field %q", name)
		}
		g.add(f, to[name], duration, fn)
	}
	return g, nil
}

// TweenFieldNames lists the names TweenFields accepts.
var TweenFieldNames = []string{"x", "y", "rotation", "scale_x", "scale_y", "opacity", "r", "g", "b"}

func (d *Drawable) field(name string) *float64 {
	switch name {
	case "x":
		return &d.X
	case "y":
		return &d.Y
	case "rotation":
		return &d.Rotation
	case "scale_x":
		return &d.ScaleX
	case "scale_y":
		return &d.ScaleY
	case "opacity":
		return &d.Opacity
	case "r":
		return &d.R
	case "g":
		return &d.G
	case "b":
		return &d.B
	}
	return nil
}

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"inBack":     ease.InBack,
	"outBack":    ease.OutBack,
	"outBounce":  ease.OutBounce,
	"outElastic": ease.OutElastic,
}

// Easing returns the easing function with the given name, or linear.
func Easing(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	if !ok {
		return ease.Linear, false
	}
	return fn, true
}

// Animator advances every running TweenGroup once per frame and drops the
// finished ones.
type Animator struct {
	groups []*TweenGroup
}

// NewAnimator returns an empty animator.
func NewAnimator() *Animator { return &Animator{} }

// Add starts driving g.
func (a *Animator) Add(g *TweenGroup) {
	if g != nil && !g.Done {
		a.groups = append(a.groups, g)
	}
}

// StopTarget stops every group animating d.
func (a *Animator) StopTarget(d *Drawable) {
	for _, g := range a.groups {
		if g.target == d {
			g.Stop()
		}
	}
}

// Update advances all groups by dt seconds.
func (a *Animator) Update(dt float64) {
	// Groups added by OnDone callbacks start next frame.
	running := a.groups
	a.groups = nil
	kept := running[:0]
	for _, g := range running {
		g.Update(float32(dt))
		if !g.Done {
			kept = append(kept, g)
		}
	}
	a.groups = append(kept, a.groups...)
}

// Len returns the number of running groups.
func (a *Animator) Len() int { return len(a.groups) }
