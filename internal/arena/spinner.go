package arena

import "math"

// --- Spinner tuning constants ---

const (
	massBase        = 0.8 // lightest possible hull
	massSpan        = 1.4 // extra mass at full resilience/volume
	radiusMin       = 20.0
	radiusSpan      = 10.0
	maxSpeedBase    = 140.0
	maxSpeedSpan    = 280.0
	angularRateBase = 12.0 // rad/s visual rotation floor
	angularRateSpan = 40.0

	// spinOutThreshold is the angular momentum below which a spinner can no
	// longer stay upright and dies even with a full hull.
	spinOutThreshold = 0.6

	// Natural per-second decay applied during Fighting, as a fraction of the
	// spinner's base angular rate. Tuned so an untouched spinner lasts a bit
	// over two minutes.
	spinDecayFrac        = 0.0075
	angularRateDecayFrac = 0.004
)

// Pose is a spawn position plus initial velocity and heading.
type Pose struct {
	X, Y    float64
	VX, VY  float64
	Heading float64
}

// Spinner is a combatant whose physical parameters derive from ticker
// telemetry. Derived parameters are computed once at creation and stay
// constant for the match; only the simulation state below them mutates.
type Spinner struct {
	ID     string `json:"id"`
	Ticker string `json:"ticker"`

	Traits Traits `json:"-"`

	// Derived physical parameters (constant per match).
	Mass            float64 `json:"mass"`
	Radius          float64 `json:"radius"`
	MaxSpeed        float64 `json:"maxSpeed"`
	BaseAngularRate float64 `json:"baseAngularRate"`
	Stability       float64 `json:"stability"`

	// Mutable simulation state.
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	VX          float64 `json:"vx"`
	VY          float64 `json:"vy"`
	Heading     float64 `json:"heading"`
	AngularRate float64 `json:"angularRate"`
	Integrity   float64 `json:"integrity"` // hull health, 0-1
	Spin        float64 `json:"spin"`      // angular momentum, 0-BaseAngularRate
	Alive       bool    `json:"alive"`

	Cause EliminationCause `json:"-"`

	// timeNearBoundary accumulates seconds spent inside the soft edge band.
	// Reset whenever the spinner returns to the safe interior.
	timeNearBoundary float64

	// breach is set by the boundary policy when the spinner is pushed past
	// the legal limit; the terminal check converts it to an elimination.
	breach EliminationCause

	// crossover window latches, one per opponent crossover (corridor only).
	crossoverInside []bool
	crossoverClock  float64
}

// NewSpinner derives a combatant from a telemetry record. Pure: identical
// inputs always yield identical parameters. Every blend below is monotonic —
// more thrust never slows a spinner, more chop never steadies one.
func NewSpinner(id, ticker string, rec TelemetryRecord, pose Pose) *Spinner {
	tr := rec.Resolve()

	s := &Spinner{
		ID:     id,
		Ticker: ticker,
		Traits: tr,

		Mass:            massBase + massSpan*(0.75*tr.HullResilience+0.25*tr.VolumeReliability),
		Radius:          radiusMin + radiusSpan*(0.6*tr.HullResilience+0.4*(1-tr.ManeuverStability)),
		MaxSpeed:        maxSpeedBase + maxSpeedSpan*(0.55*tr.ThrustPotential+0.45*(1-tr.ChopSensitivity)),
		BaseAngularRate: angularRateBase + angularRateSpan*tr.ThrustPotential,
		Stability: clamp01(0.55*tr.ManeuverStability + 0.25*tr.SignalClarity +
			0.20*tr.VolumeReliability - 0.35*tr.ChopSensitivity),

		X:       pose.X,
		Y:       pose.Y,
		VX:      pose.VX,
		VY:      pose.VY,
		Heading: pose.Heading,

		Integrity: 1.0,
		Alive:     true,
	}
	s.Spin = s.BaseAngularRate
	s.AngularRate = s.BaseAngularRate
	return s
}

// Speed returns the current velocity magnitude.
func (s *Spinner) Speed() float64 {
	return math.Hypot(s.VX, s.VY)
}

// damage reduces integrity, clamped at zero. Dead spinners take no damage.
func (s *Spinner) damage(amount float64) {
	if !s.Alive || amount <= 0 {
		return
	}
	s.Integrity = math.Max(0, s.Integrity-amount)
}

// drainSpin reduces angular momentum, clamped at zero.
func (s *Spinner) drainSpin(amount float64) {
	if !s.Alive || amount <= 0 {
		return
	}
	s.Spin = math.Max(0, s.Spin-amount)
}

// restore applies a support effect (corridor bullish crossover): integrity
// and spin climb back toward their caps. The only path by which either value
// increases mid-match.
func (s *Spinner) restore(integrity, spin float64) {
	if !s.Alive {
		return
	}
	s.Integrity = math.Min(1.0, s.Integrity+integrity)
	s.Spin = math.Min(s.BaseAngularRate, s.Spin+spin)
}

// eliminate marks the spinner dead with the given cause. Idempotent: the
// first cause sticks, later calls in the same or following ticks are no-ops.
// Returns true only on the transition.
func (s *Spinner) eliminate(cause EliminationCause) bool {
	if !s.Alive {
		return false
	}
	s.Alive = false
	s.Cause = cause
	return true
}
