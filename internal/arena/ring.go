package arena

import (
	"math"
	"math/rand"
)

// --- Ring tuning constants ---

const (
	// softEdgeFrac is where the containment field starts pushing back,
	// as a fraction of the ring radius.
	softEdgeFrac = 0.82

	// ringRestoringAccel is the inward acceleration at full penetration of
	// the soft band, px/s^2. Scaled up by match instability.
	ringRestoringAccel = 460.0

	// scrapeDamageRate is integrity lost per second at full penetration.
	scrapeDamageRate = 0.055

	// scrapeEventRate is the expected scrape feedback events per second at
	// full penetration depth.
	scrapeEventRate = 9.0
)

// RingBoundary is the circular containment field. Spinners grinding against
// the soft edge take scrape damage; anything thrown half a body-length past
// the ring is out.
type RingBoundary struct {
	width, height float64
	cx, cy        float64
	radius        float64
}

// NewRingBoundary builds a centred ring filling the arena with a small gap.
func NewRingBoundary(width, height float64) *RingBoundary {
	r := math.Min(width, height)/2 - 12
	return &RingBoundary{
		width:  width,
		height: height,
		cx:     width / 2,
		cy:     height / 2,
		radius: r,
	}
}

func (rb *RingBoundary) Name() string { return "ring" }

// Center reports the ring centre, used by movement intent for orbit headings.
func (rb *RingBoundary) Center() (float64, float64) { return rb.cx, rb.cy }

// Radius reports the containment radius.
func (rb *RingBoundary) Radius() float64 { return rb.radius }

func (rb *RingBoundary) Apply(s *Spinner, _ int, instability, dt float64, rng *rand.Rand, bus *FeedbackBus) {
	dx := s.X - rb.cx
	dy := s.Y - rb.cy
	nx, ny, dist := normalize(dx, dy)

	// Past the ring by more than half a body: out. The terminal check turns
	// this into the elimination so cause precedence stays in one place.
	if dist > rb.radius+s.Radius*0.5 {
		s.breach = CauseRingOut
		return
	}

	soft := rb.radius * softEdgeFrac
	if dist <= soft {
		s.timeNearBoundary = 0
		return
	}

	// Inside the soft band: push back in, grind the hull down.
	depth01 := clamp01((dist - soft) / (rb.radius - soft))
	pressure := 1 + instability*0.5

	accel := ringRestoringAccel * depth01 * pressure
	s.VX -= nx * accel * dt
	s.VY -= ny * accel * dt

	s.timeNearBoundary += dt
	s.damage(scrapeDamageRate * depth01 * pressure * dt)

	if rng.Float64() < scrapeEventRate*depth01*dt {
		bus.publish(BoundaryScrapeEvent{
			X: rb.cx + nx*rb.radius, Y: rb.cy + ny*rb.radius,
			NX: -nx, NY: -ny,
			Depth01: depth01,
		})
	}
}

func (rb *RingBoundary) Geometry() BoundaryGeometry {
	return BoundaryGeometry{
		Kind:    "ring",
		Width:   rb.width,
		Height:  rb.height,
		CenterX: rb.cx,
		CenterY: rb.cy,
		Radius:  rb.radius,
	}
}
