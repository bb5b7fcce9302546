package luctisity

import "math"

// The conversions below take values in authoring space (pixels, percent,
// degrees, 0-255 channels, 0-100 opacity) to the normalized values the
// render pipeline composes. They are kept separate so each axis of the
// authoring model can be checked on its own.

// RotationToRadians converts degrees to radians.
func RotationToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// ScaleToMultiplier converts a percent scale (100 = identity) to a multiplier.
func ScaleToMultiplier(percent float64) float64 {
	return percent / 100
}

// ColorToUnit converts 0-255 channels and a 0-100 opacity to a unit Color.
func ColorToUnit(r, g, b, opacity float64) Color {
	return Color{R: r / 255, G: g / 255, B: b / 255, A: opacity / 100}
}

// PositionToNDC maps a corner-origin pixel position to [-1, 1] device space.
func PositionToNDC(px, py, halfW, halfH float64) (x, y float64) {
	return px/halfW - 1, py/halfH - 1
}

// CanvasCompensation returns the per-axis scale that turns pixel lengths into
// device-space lengths for a canvas of the given half size.
func CanvasCompensation(halfW, halfH float64) (sx, sy float64) {
	return 1 / halfW, 1 / halfH
}
