package luctisity

import "time"

// frameStats holds per-frame timing. Only populated when debug is enabled on
// the render manager or the frame driver.
type frameStats struct {
	processTime   time.Duration
	renderTime    time.Duration
	drawableCount int
	timersFired   int
	tweensActive  int
}

// debugLog reports one frame's stats at debug level.
func (s frameStats) debugLog(frame uint64) {
	Logger().Debug("frame",
		"n", frame,
		"process", s.processTime,
		"render", s.renderTime,
		"total", s.processTime+s.renderTime,
		"drawables", s.drawableCount,
		"timers", s.timersFired,
		"tweens", s.tweensActive,
	)
}
