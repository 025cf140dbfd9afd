package arena

import "math/rand"

// BoundaryPolicy defines the arena's spatial limit and the force/damage
// response when a spinner approaches or crosses it. Two implementations
// exist: the circular containment ring and the dual price-curve corridor.
// The policy never eliminates a spinner directly — it records a breach on
// the spinner and the match's terminal check converts it, so that cause
// precedence is resolved in one place.
type BoundaryPolicy interface {
	Name() string

	// Apply enforces the limit for the spinner at index idx (0 or 1).
	// instability is the match's 0→1 duration ramp; it scales edge pressure
	// and boundary damage.
	Apply(s *Spinner, idx int, instability, dt float64, rng *rand.Rand, bus *FeedbackBus)

	// Geometry returns a drawable description of the boundary for rendering
	// and stream consumers. Pure read.
	Geometry() BoundaryGeometry
}

// BoundaryGeometry is a serializable snapshot of the arena limits.
// Ring fills the circle fields; the corridor fills the wall samples.
type BoundaryGeometry struct {
	Kind   string  `json:"kind"` // "ring" or "corridor"
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	Radius  float64 `json:"radius,omitempty"`

	// Wall heights sampled left to right across the arena width.
	TopWall    []float64 `json:"topWall,omitempty"`
	BottomWall []float64 `json:"bottomWall,omitempty"`
}
