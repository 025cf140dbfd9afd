package arena

import "math"

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalize returns the unit vector of (x,y) and its length. A zero-length
// input yields (0,0,0) — callers must handle the degenerate case.
func normalize(x, y float64) (nx, ny, length float64) {
	length = math.Hypot(x, y)
	if length < 1e-9 {
		return 0, 0, 0
	}
	return x / length, y / length, length
}

// limitSpeed scales (vx,vy) down to maxSpeed if it exceeds it.
func limitSpeed(vx, vy, maxSpeed float64) (float64, float64) {
	speed := math.Hypot(vx, vy)
	if speed <= maxSpeed || speed < 1e-9 {
		return vx, vy
	}
	scale := maxSpeed / speed
	return vx * scale, vy * scale
}
