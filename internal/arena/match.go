package arena

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// --- Match tuning constants ---

const (
	// maxStepSeconds clamps a single simulation step. A stalled frame (tab
	// backgrounded, debugger attached) must not explode the integration.
	maxStepSeconds = 0.033

	defaultCountdownSeconds = 3.0

	// instabilityRampSeconds is how long a fight takes to reach full arena
	// instability (edge flicker, corridor stress, boundary damage scaling).
	instabilityRampSeconds = 120.0

	// Movement intent.
	intentAccelBase = 520.0 // px/s^2 before thrust scaling
	dragBase        = 0.25  // 1/s baseline velocity bleed
	dragChopCoef    = 1.4   // extra drag per unit chop^2

	// Hit pause: a heavy impact briefly dilates feedback-layer time. Physics
	// integration is never dilated.
	hitPauseThreshold = 0.55
	hitPauseDuration  = 0.12
	hitPauseScale     = 0.25

	// Initial shove applied at spawn, as a fraction of max speed.
	spawnSpeedFrac = 0.35
)

// Phase is the match lifecycle state. Linear; only Rematch re-enters
// Countdown.
type Phase int

const (
	PhaseCountdown Phase = iota
	PhaseFighting
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseFighting:
		return "fighting"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Variant selects the boundary policy at match construction.
type Variant int

const (
	VariantRing Variant = iota
	VariantCorridor
)

func (v Variant) String() string {
	switch v {
	case VariantRing:
		return "ring"
	case VariantCorridor:
		return "corridor"
	default:
		return "unknown"
	}
}

// ParseVariant maps the CLI/config label to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "ring":
		return VariantRing, nil
	case "corridor":
		return VariantCorridor, nil
	default:
		return 0, fmt.Errorf("unknown arena variant %q (ring, corridor)", s)
	}
}

// MatchConfig is the fixed arena setup. Zero values are replaced by
// defaults in StartMatch.
type MatchConfig struct {
	Width     float64
	Height    float64
	Variant   Variant
	Seed      int64
	Countdown float64 // seconds; 0 means the default, negative skips it
}

// DefaultMatchConfig is the dashboard's standard arena.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Width:     960,
		Height:    640,
		Variant:   VariantRing,
		Seed:      1,
		Countdown: defaultCountdownSeconds,
	}
}

// Match owns the two spinners and drives the simulation. It is a plain value
// object owned by the caller — no package-level singleton. One Step per
// frame; Close stops the match cooperatively.
type Match struct {
	id       string
	cfg      MatchConfig
	tickers  [2]string
	records  [2]TelemetryRecord
	spinners [2]*Spinner
	boundary BoundaryPolicy

	bus *FeedbackBus
	rng *rand.Rand

	phase          Phase
	elapsed        float64
	fightElapsed   float64
	countdownLeft  float64
	instability    float64
	winnerID       string
	draw           bool
	hitPauseLeft   float64
	active         bool
	impactsApplied int
}

// StartMatch validates the configuration, resolves telemetry for both
// tickers, and returns a match sitting in Countdown. This is the only
// fallible surface: once a match exists, nothing in a running fight errors.
func StartMatch(adapter TelemetryAdapter, tickerA, tickerB string, cfg MatchConfig) (*Match, error) {
	if adapter == nil {
		return nil, fmt.Errorf("start match: nil telemetry adapter")
	}
	if tickerA == "" || tickerB == "" {
		return nil, fmt.Errorf("start match: both ticker symbols are required")
	}
	if cfg.Width == 0 {
		cfg.Width = DefaultMatchConfig().Width
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultMatchConfig().Height
	}
	if cfg.Width < 200 || cfg.Height < 200 {
		return nil, fmt.Errorf("start match: arena %gx%g is too small", cfg.Width, cfg.Height)
	}
	if cfg.Countdown == 0 {
		cfg.Countdown = defaultCountdownSeconds
	}
	if cfg.Variant != VariantRing && cfg.Variant != VariantCorridor {
		return nil, fmt.Errorf("start match: unknown variant %d", cfg.Variant)
	}

	recA, err := adapter.Telemetry(tickerA)
	if err != nil {
		return nil, fmt.Errorf("start match: resolve %s: %w", tickerA, err)
	}
	recB, err := adapter.Telemetry(tickerB)
	if err != nil {
		return nil, fmt.Errorf("start match: resolve %s: %w", tickerB, err)
	}

	m := &Match{
		id:      uuid.NewString(),
		cfg:     cfg,
		tickers: [2]string{tickerA, tickerB},
		records: [2]TelemetryRecord{recA, recB},
		bus:     &FeedbackBus{},
		rng:     rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- game simulation
		active:  true,
	}
	m.reset()
	return m, nil
}

// reset (re)creates boundary and spinners from the stored telemetry and
// drops the match back into Countdown. Shared by construction and Rematch.
func (m *Match) reset() {
	traits := [2]Traits{m.records[0].Resolve(), m.records[1].Resolve()}
	switch m.cfg.Variant {
	case VariantCorridor:
		m.boundary = NewCorridorBoundary(m.cfg.Width, m.cfg.Height, traits, m.rng)
	default:
		m.boundary = NewRingBoundary(m.cfg.Width, m.cfg.Height)
	}

	poses := m.startPoses()
	for i := 0; i < 2; i++ {
		id := fmt.Sprintf("%s#%d", m.tickers[i], i)
		m.spinners[i] = NewSpinner(id, m.tickers[i], m.records[i], poses[i])
	}

	m.phase = PhaseCountdown
	m.elapsed = 0
	m.fightElapsed = 0
	m.countdownLeft = math.Max(0, m.cfg.Countdown)
	if m.countdownLeft == 0 {
		m.phase = PhaseFighting
	}
	m.instability = 0
	m.winnerID = ""
	m.draw = false
	m.hitPauseLeft = 0
	m.impactsApplied = 0
}

// startPoses places the combatants. Positions are deterministic per variant;
// the initial shove direction comes from the seeded RNG, so identical
// telemetry still produces varied openings.
func (m *Match) startPoses() [2]Pose {
	var poses [2]Pose
	switch m.cfg.Variant {
	case VariantCorridor:
		poses[0] = Pose{X: m.cfg.Width * 0.25, Y: m.cfg.Height * 0.45}
		poses[1] = Pose{X: m.cfg.Width * 0.75, Y: m.cfg.Height * 0.55}
	default:
		rb := m.boundary.(*RingBoundary)
		cx, cy := rb.Center()
		r := rb.Radius() * 0.55
		poses[0] = Pose{X: cx - r, Y: cy}
		poses[1] = Pose{X: cx + r, Y: cy}
	}
	for i := range poses {
		ang := m.rng.Float64() * 2 * math.Pi
		speed := spawnSpeedFrac * maxSpeedBase
		poses[i].VX = math.Cos(ang) * speed
		poses[i].VY = math.Sin(ang) * speed
		poses[i].Heading = ang
	}
	return poses
}

// --- Accessors ---

func (m *Match) ID() string                { return m.id }
func (m *Match) Phase() Phase              { return m.phase }
func (m *Match) Elapsed() float64          { return m.elapsed }
func (m *Match) Instability() float64      { return m.instability }
func (m *Match) Boundary() BoundaryPolicy  { return m.boundary }
func (m *Match) Spinners() [2]*Spinner     { return m.spinners }
func (m *Match) CountdownLeft() float64    { return m.countdownLeft }
func (m *Match) Config() MatchConfig       { return m.cfg }
func (m *Match) Tickers() (string, string) { return m.tickers[0], m.tickers[1] }

// ImpactCount reports how many spinner-on-spinner collisions have resolved
// with impulse application since the last reset.
func (m *Match) ImpactCount() int { return m.impactsApplied }

// Winner reports the surviving spinner's ID. ok is false while the match is
// running and on a draw.
func (m *Match) Winner() (string, bool) {
	if m.phase != PhaseEnded || m.draw {
		return "", false
	}
	return m.winnerID, true
}

// Draw reports whether the match ended in simultaneous elimination.
func (m *Match) Draw() bool { return m.phase == PhaseEnded && m.draw }

// Subscribe registers a feedback listener for simulation events.
func (m *Match) Subscribe(fn func(Event)) { m.bus.Subscribe(fn) }

// FeedbackTimeScale is the time-dilation factor cosmetic consumers should
// apply to their own updates. 1 except during a hit pause. The physics step
// never uses it.
func (m *Match) FeedbackTimeScale() float64 {
	if m.hitPauseLeft > 0 {
		return hitPauseScale
	}
	return 1
}

// Active reports whether the match loop should keep scheduling steps.
func (m *Match) Active() bool { return m.active }

// Close stops the match. Cooperative and immediate: the next Step is a no-op
// and no background work survives.
func (m *Match) Close() { m.active = false }

// Rematch rebuilds both spinners from the same telemetry with fresh poses
// and corridor phases, and restarts the countdown. Fully replaces previous
// match state.
func (m *Match) Rematch() {
	m.active = true
	m.reset()
}

// Step advances the simulation by dt seconds of real time. dt is clamped to
// maxStepSeconds; non-positive dt is ignored.
func (m *Match) Step(dt float64) {
	if !m.active || dt <= 0 {
		return
	}
	if dt > maxStepSeconds {
		dt = maxStepSeconds
	}

	if m.hitPauseLeft > 0 {
		m.hitPauseLeft = math.Max(0, m.hitPauseLeft-dt)
	}
	m.elapsed += dt

	switch m.phase {
	case PhaseCountdown:
		m.stepCountdown(dt)
	case PhaseFighting:
		m.stepFighting(dt)
	case PhaseEnded:
		// Entities are frozen; nothing to do.
	}
}

func (m *Match) stepCountdown(dt float64) {
	prev := int(math.Ceil(m.countdownLeft))
	m.countdownLeft -= dt
	now := int(math.Ceil(m.countdownLeft))
	if now < prev && now > 0 {
		m.bus.publish(CountdownEvent{SecondsLeft: now})
	}
	if m.countdownLeft <= 0 {
		m.countdownLeft = 0
		m.phase = PhaseFighting
		m.bus.publish(CountdownEvent{SecondsLeft: 0})
	}
}

func (m *Match) stepFighting(dt float64) {
	m.fightElapsed += dt
	m.instability = clamp01(m.fightElapsed / instabilityRampSeconds)

	// (a)+(b)+(c) intent, velocity, position.
	for _, s := range m.spinners {
		if !s.Alive {
			continue
		}
		m.applyIntent(s, dt)
		s.X += s.VX * dt
		s.Y += s.VY * dt
	}

	// (d) boundary containment.
	for i, s := range m.spinners {
		if !s.Alive {
			continue
		}
		m.boundary.Apply(s, i, m.instability, dt, m.rng, m.bus)
	}

	// (e) pairwise collision, once per tick.
	if impact01 := ResolveCollision(m.spinners[0], m.spinners[1], m.bus); impact01 > 0 {
		m.impactsApplied++
		if impact01 >= hitPauseThreshold {
			m.hitPauseLeft = hitPauseDuration
		}
	}

	// (f) natural spin and rotation decay.
	for _, s := range m.spinners {
		if !s.Alive {
			continue
		}
		s.drainSpin(s.BaseAngularRate * spinDecayFrac * dt)
		s.AngularRate = math.Max(0, s.AngularRate-s.BaseAngularRate*angularRateDecayFrac*dt)
		s.Heading += s.AngularRate * dt
	}

	// (g) terminal conditions, checked in cause-precedence order.
	for _, s := range m.spinners {
		if !s.Alive {
			continue
		}
		switch {
		case s.Integrity <= 0:
			m.finish(s, CauseDestroyed)
		case s.breach != CauseNone:
			m.finish(s, s.breach)
		case s.Spin < spinOutThreshold:
			m.finish(s, CauseSpinOut)
		}
	}

	m.checkEnd()
}

// applyIntent computes the regime-driven movement intent and integrates
// velocity with chop-scaled exponential drag.
func (m *Match) applyIntent(s *Spinner, dt float64) {
	cx, cy := m.cfg.Width/2, m.cfg.Height/2
	if rb, ok := m.boundary.(*RingBoundary); ok {
		cx, cy = rb.Center()
	}
	nx, ny, dist := normalize(s.X-cx, s.Y-cy)
	if dist == 0 {
		ang := m.rng.Float64() * 2 * math.Pi
		nx, ny = math.Cos(ang), math.Sin(ang)
	}
	// Counterclockwise orbit tangent.
	tx, ty := -ny, nx

	accel := intentAccelBase * (0.6 + 0.8*s.Traits.ThrustPotential)
	var ax, ay float64
	switch s.Traits.Regime {
	case RegimeTrend:
		// Commit to the orbit heading.
		ax, ay = tx*accel, ty*accel
	case RegimeRange:
		// Orbit with a centripetal pull back toward the middle.
		ax = (tx*0.6 - nx*0.7) * accel
		ay = (ty*0.6 - ny*0.7) * accel
	case RegimeChaotic:
		// Weak orbit plus a large random shove.
		ang := m.rng.Float64() * 2 * math.Pi
		ax = (tx*0.35 + math.Cos(ang)*1.25) * accel
		ay = (ty*0.35 + math.Sin(ang)*1.25) * accel
	}

	s.VX += ax * dt
	s.VY += ay * dt

	chop := s.Traits.ChopSensitivity
	decay := math.Exp(-(dragBase + dragChopCoef*chop*chop) * dt)
	s.VX *= decay
	s.VY *= decay
	s.VX, s.VY = limitSpeed(s.VX, s.VY, s.MaxSpeed)
}

// finish eliminates a spinner and publishes the event. No-op if already dead.
func (m *Match) finish(s *Spinner, cause EliminationCause) {
	if s.eliminate(cause) {
		m.bus.publish(EliminatedEvent{SpinnerID: s.ID, Cause: cause})
	}
}

// checkEnd transitions to Ended once the living count drops to one or zero.
// Simultaneous elimination is a draw — no priority winner is inferred, even
// when the two causes differ.
func (m *Match) checkEnd() {
	living := 0
	var survivor *Spinner
	for _, s := range m.spinners {
		if s.Alive {
			living++
			survivor = s
		}
	}
	if living > 1 {
		return
	}
	m.phase = PhaseEnded
	if survivor != nil {
		m.winnerID = survivor.ID
	} else {
		m.draw = true
	}
	m.bus.publish(MatchEndedEvent{WinnerID: m.winnerID, Draw: m.draw})
}
