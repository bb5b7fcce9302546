package luctisity

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// frameGate decides which host frame callbacks do work. With a positive
// interval a poll is accepted once waiting for the next poll would overshoot
// the interval, measured from the last accepted frame.
type frameGate struct {
	interval time.Duration
	polled   bool
	lastPoll time.Time
	lastRun  time.Time
}

func newFrameGate(fps float64) frameGate {
	var g frameGate
	if fps > 0 {
		g.interval = time.Duration(float64(time.Second) / fps)
	}
	return g
}

// poll reports whether the frame at now runs and the seconds elapsed since
// the previous accepted frame.
func (g *frameGate) poll(now time.Time) (float64, bool) {
	if !g.polled {
		g.polled = true
		g.lastPoll, g.lastRun = now, now
		return 0, true
	}
	sincePoll := now.Sub(g.lastPoll)
	g.lastPoll = now
	delta := now.Sub(g.lastRun)
	if g.interval > 0 && delta < g.interval-sincePoll {
		return 0, false
	}
	g.lastRun = now
	return delta.Seconds(), true
}

// overlay is a prompter that draws over the frame and reads input.
type overlay interface {
	Update()
	Draw(screen *ebiten.Image)
}

// GameConfig wires a Game.
type GameConfig struct {
	// Device receives the screen each Draw when it can bind ebiten images,
	// as EbitenDevice does.
	Device Device
	Render *RenderManager
	Bridge *TaskBridge
	// FPS throttles processing; zero or negative runs every host frame.
	FPS           float64
	Width, Height int
	// Debug logs per-frame stats and prints FPS in the corner.
	Debug bool
	// Clock defaults to the bridge's timer clock.
	Clock Clock
	// OnUpdate runs after the bridge each accepted frame.
	OnUpdate func(dt float64)
	// ScreenshotDir receives captures, default "screenshots".
	ScreenshotDir string
}

// Game drives the engine from ebiten's frame callbacks. Each accepted Update
// fires due timers, advances tweens and ticks the bridge; Draw renders the
// drawable set and any prompt overlay.
type Game struct {
	cfg     GameConfig
	clock   Clock
	gate    frameGate
	started bool
	frame   uint64
	stats   frameStats
	shots   []string
}

// NewGame creates a frame driver and registers the screenshot task on the
// bridge. Render and Bridge are required.
func NewGame(cfg GameConfig) *Game {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 360
	}
	clock := cfg.Clock
	if clock == nil {
		clock = cfg.Bridge.Timers().Clock()
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	cfg.Render.SetDebug(cfg.Debug)
	g := &Game{cfg: cfg, clock: clock, gate: newFrameGate(cfg.FPS)}
	cfg.Bridge.Handle(TaskScreenshot, screenshotTask(g))
	return g
}

// Frames returns the number of accepted frames.
func (g *Game) Frames() uint64 { return g.frame }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt, ok := g.gate.poll(g.clock.Now())
	if !ok {
		return nil
	}
	b := g.cfg.Bridge
	if ov, ok := b.Prompter().(overlay); ok {
		ov.Update()
	}
	if b.Prompter().Blocking() {
		return nil
	}
	g.frame++

	start := time.Now()
	if !g.started {
		g.started = true
		b.Start()
	}
	g.stats.timersFired = b.Timers().Fire()
	b.Animator().Update(dt)
	b.Process(dt)
	if g.cfg.OnUpdate != nil {
		g.cfg.OnUpdate(dt)
	}
	if g.cfg.Debug {
		g.stats.processTime = time.Since(start)
		g.stats.tweensActive = b.Animator().Len()
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if bd, ok := g.cfg.Device.(interface{ Bind(*ebiten.Image) }); ok {
		bd.Bind(screen)
	}
	g.cfg.Render.Render()
	g.flushScreenshots(screen)
	if ov, ok := g.cfg.Bridge.Prompter().(overlay); ok {
		ov.Draw(screen)
	}
	if !g.cfg.Debug {
		return
	}
	rs := g.cfg.Render.stats
	g.stats.renderTime = rs.renderTime
	g.stats.drawableCount = rs.drawableCount
	g.stats.debugLog(g.frame)
	drawFPS(screen)
}

// drawFPS prints FPS and TPS on a translucent box in the top-left corner.
func drawFPS(screen *ebiten.Image) {
	box := ebiten.NewImage(100, 32)
	defer box.Deallocate()
	box.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(box, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	screen.DrawImage(box, nil)
}

// Layout implements ebiten.Game. The canvas keeps its configured size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window titled title and blocks until it closes.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(g)
}
