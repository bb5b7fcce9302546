package luctisity

import "time"

// RenderManager owns the shared program and quad and runs the per-frame
// clear and draw pass over an insertion-ordered set of drawables.
type RenderManager struct {
	dev       Device
	program   Program
	quad      VertexArray
	shaderSrc []byte
	ready     bool

	drawables []*Drawable
	members   map[*Drawable]struct{}

	debug bool
	stats frameStats
}

// NewRenderManager creates a manager using DefaultShaderSource.
func NewRenderManager() *RenderManager {
	return &RenderManager{
		shaderSrc: DefaultShaderSource,
		members:   make(map[*Drawable]struct{}),
	}
}

// SetShaderSource replaces the fragment source compiled by Init. It has no
// effect after a successful Init.
func (rm *RenderManager) SetShaderSource(src []byte) {
	if rm.ready {
		return
	}
	rm.shaderSrc = src
}

// SetDebug enables per-frame timing logs at debug level.
func (rm *RenderManager) SetDebug(enabled bool) { rm.debug = enabled }

// Init acquires dev, clears it to black, compiles the program and uploads the
// shared quad. On any failure it logs and returns false; the manager then
// stays inert and callers are expected to show a fallback instead of retrying.
func (rm *RenderManager) Init(dev Device) bool {
	if dev == nil {
		Logger().Error("render init failed", "stage", "context", "err", "no graphics device")
		return false
	}
	dev.Clear()

	program, err := dev.CompileProgram(rm.shaderSrc)
	if err != nil {
		Logger().Error("render init failed", "stage", "fragment shader", "err", err)
		return false
	}
	quad, err := dev.NewVertexArray(QuadVertices)
	if err != nil {
		Logger().Error("render init failed", "stage", "vertex array", "err", err)
		return false
	}

	rm.dev = dev
	rm.program = program
	rm.quad = quad
	rm.ready = true
	w, h := dev.Size()
	Logger().Info("render initialized", "width", w, "height", h)

	rm.Render()
	return true
}

// Ready reports whether Init succeeded.
func (rm *RenderManager) Ready() bool { return rm.ready }

// Device returns the device passed to a successful Init, or nil.
func (rm *RenderManager) Device() Device { return rm.dev }

// Render clears the backbuffer and draws each drawable in insertion order.
// It does nothing before a successful Init.
func (rm *RenderManager) Render() {
	if !rm.ready {
		return
	}
	var start time.Time
	if rm.debug {
		start = time.Now()
	}

	rm.dev.Clear()
	for _, d := range rm.drawables {
		d.Render(rm.program, rm.quad)
	}

	if rm.debug {
		rm.stats.renderTime = time.Since(start)
		rm.stats.drawableCount = len(rm.drawables)
	}
}

// AddDrawable appends d to the draw list. Adding a drawable that is already
// present is a no-op.
func (rm *RenderManager) AddDrawable(d *Drawable) {
	if d == nil {
		return
	}
	if _, ok := rm.members[d]; ok {
		return
	}
	rm.members[d] = struct{}{}
	rm.drawables = append(rm.drawables, d)
}

// RemoveDrawable removes d and reports whether it was present.
func (rm *RenderManager) RemoveDrawable(d *Drawable) bool {
	if _, ok := rm.members[d]; !ok {
		return false
	}
	delete(rm.members, d)
	for i, o := range rm.drawables {
		if o == d {
			rm.drawables = append(rm.drawables[:i], rm.drawables[i+1:]...)
			break
		}
	}
	return true
}

// Find returns the first drawable added with the given name, or nil.
func (rm *RenderManager) Find(name string) *Drawable {
	for _, d := range rm.drawables {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Drawables returns a copy of the draw list in draw order.
func (rm *RenderManager) Drawables() []*Drawable {
	out := make([]*Drawable, len(rm.drawables))
	copy(out, rm.drawables)
	return out
}

// Len returns the number of drawables in the draw list.
func (rm *RenderManager) Len() int { return len(rm.drawables) }
