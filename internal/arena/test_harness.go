package arena

import (
	"fmt"
	"math"
)

// MatchSim is a headless fixed-step harness around Match, used by tests and
// the headless report tool. It bridges feedback events into a MatchLog and
// supports deterministic seeding.
type MatchSim struct {
	Match *Match
	Log   *MatchLog

	tick int
	dt   float64
}

// simOption configures a MatchSim before the match is started.
type simOption struct {
	fn func(*simConfig)
}

type simConfig struct {
	cfg       MatchConfig
	tickers   [2]string
	telemetry StaticTelemetry
	verbose   bool
	dt        float64
}

// SimOption is a builder option for NewMatchSim.
type SimOption = simOption

// WithArenaSize sets the arena dimensions.
func WithArenaSize(w, h float64) SimOption {
	return simOption{func(c *simConfig) {
		c.cfg.Width = w
		c.cfg.Height = h
	}}
}

// WithVariant selects the boundary policy.
func WithVariant(v Variant) SimOption {
	return simOption{func(c *simConfig) { c.cfg.Variant = v }}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return simOption{func(c *simConfig) { c.cfg.Seed = seed }}
}

// WithCountdown overrides the countdown duration. Most tests skip it.
func WithCountdown(seconds float64) SimOption {
	return simOption{func(c *simConfig) { c.cfg.Countdown = seconds }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return simOption{func(c *simConfig) { c.verbose = v }}
}

// WithFixedStep overrides the per-tick dt (default 1/60 s).
func WithFixedStep(dt float64) SimOption {
	return simOption{func(c *simConfig) { c.dt = dt }}
}

// WithSpinner registers telemetry for one combatant. The first call fills
// slot A, the second slot B.
func WithSpinner(ticker string, rec TelemetryRecord) SimOption {
	return simOption{func(c *simConfig) {
		c.telemetry[ticker] = rec
		if c.tickers[0] == "" {
			c.tickers[0] = ticker
		} else if c.tickers[1] == "" {
			c.tickers[1] = ticker
		}
	}}
}

// NewMatchSim builds a harness from the options. Defaults: 960x640 ring
// arena, seed 1, no countdown, two neutral-telemetry combatants AAA and BBB.
// Panics on invalid configuration — the harness is for controlled runs.
func NewMatchSim(opts ...SimOption) *MatchSim {
	c := simConfig{
		cfg:       DefaultMatchConfig(),
		telemetry: StaticTelemetry{},
		dt:        1.0 / 60,
	}
	c.cfg.Countdown = -1 // harness runs start fighting immediately
	for _, o := range opts {
		o.fn(&c)
	}
	if c.tickers[0] == "" {
		c.tickers[0] = "AAA"
		c.telemetry["AAA"] = TelemetryRecord{}
	}
	if c.tickers[1] == "" {
		c.tickers[1] = "BBB"
		c.telemetry["BBB"] = TelemetryRecord{}
	}

	m, err := StartMatch(c.telemetry, c.tickers[0], c.tickers[1], c.cfg)
	if err != nil {
		panic(fmt.Sprintf("NewMatchSim: %v", err))
	}

	sim := &MatchSim{
		Match: m,
		Log:   NewMatchLog(c.verbose),
		dt:    c.dt,
	}
	m.Subscribe(sim.record)
	return sim
}

// record bridges feedback events into the structured log.
func (sim *MatchSim) record(ev Event) {
	switch e := ev.(type) {
	case ImpactEvent:
		sim.Log.Add(sim.tick, "--", "impact", "resolved",
			fmt.Sprintf("impact01=%.3f at (%.0f,%.0f)", e.Impact01, e.X, e.Y), e.Impact01)
	case BurstEvent:
		sim.Log.Add(sim.tick, "--", "impact", "burst",
			fmt.Sprintf("impact01=%.3f", e.Impact01), e.Impact01)
	case BoundaryScrapeEvent:
		sim.Log.Add(sim.tick, "--", "boundary", "scrape",
			fmt.Sprintf("depth01=%.3f", e.Depth01), e.Depth01)
	case CrossoverEvent:
		key := "bearish"
		if e.Bullish {
			key = "bullish"
		}
		sim.Log.Add(sim.tick, e.SpinnerID, "crossover", key,
			fmt.Sprintf("strength=%.3f", e.Strength), e.Strength)
	case EliminatedEvent:
		sim.Log.Add(sim.tick, e.SpinnerID, "eliminated", e.Cause.String(), "", 0)
	case MatchEndedEvent:
		val := "winner=" + e.WinnerID
		if e.Draw {
			val = "draw"
		}
		sim.Log.Add(sim.tick, "--", "match", "ended", val, 0)
	case CountdownEvent:
		sim.Log.Add(sim.tick, "--", "match", "countdown",
			fmt.Sprintf("%ds", e.SecondsLeft), float64(e.SecondsLeft))
	}
}

// RunTicks advances the simulation n fixed steps.
func (sim *MatchSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		sim.stepOnce()
	}
}

// RunUntil advances up to maxTicks, stopping early when predicate returns
// true. Returns the tick at which it was satisfied, or -1.
func (sim *MatchSim) RunUntil(predicate func(*MatchSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		sim.stepOnce()
		if predicate(sim) {
			return sim.tick
		}
	}
	return -1
}

func (sim *MatchSim) stepOnce() {
	sim.tick++
	sim.Match.Step(sim.dt)

	if sim.Log.verbose {
		for _, s := range sim.Match.Spinners() {
			sim.Log.AddVerbose(sim.tick, s.ID, "state", "position",
				fmt.Sprintf("(%.1f,%.1f)", s.X, s.Y), 0)
			sim.Log.AddVerbose(sim.tick, s.ID, "state", "integrity",
				fmt.Sprintf("%.4f", s.Integrity), s.Integrity)
			sim.Log.AddVerbose(sim.tick, s.ID, "state", "spin",
				fmt.Sprintf("%.4f", s.Spin), s.Spin)
			sim.Log.AddVerbose(sim.tick, s.ID, "state", "speed",
				fmt.Sprintf("%.1f", s.Speed()), s.Speed())
		}
	}
}

// CurrentTick returns the fixed-step tick counter.
func (sim *MatchSim) CurrentTick() int { return sim.tick }

// SpinnerState is a lightweight copy of a spinner's state at a tick.
type SpinnerState struct {
	ID        string
	X, Y      float64
	VX, VY    float64
	Integrity float64
	Spin      float64
	Alive     bool
	Cause     EliminationCause
}

// Snapshot captures both spinners' state.
func (sim *MatchSim) Snapshot() [2]SpinnerState {
	var out [2]SpinnerState
	for i, s := range sim.Match.Spinners() {
		out[i] = SpinnerState{
			ID: s.ID, X: s.X, Y: s.Y, VX: s.VX, VY: s.VY,
			Integrity: s.Integrity, Spin: s.Spin, Alive: s.Alive, Cause: s.Cause,
		}
	}
	return out
}

// Momentum returns the combined momentum vector of both living spinners.
func (sim *MatchSim) Momentum() (px, py float64) {
	for _, s := range sim.Match.Spinners() {
		if !s.Alive {
			continue
		}
		px += s.Mass * s.VX
		py += s.Mass * s.VY
	}
	return px, py
}

// Separation returns the centre distance between the two spinners.
func (sim *MatchSim) Separation() float64 {
	sp := sim.Match.Spinners()
	return math.Hypot(sp[1].X-sp[0].X, sp[1].Y-sp[0].Y)
}
