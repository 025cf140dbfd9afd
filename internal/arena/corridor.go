package arena

import (
	"math"
	"math/rand"
)

// --- Corridor tuning constants ---

const (
	curveSamples = 60 // samples spanning the arena width

	// Curve shape: amplitude follows chop, wavelength follows persistence.
	curveAmpBase = 26.0 // px, calmest possible ticker
	curveAmpSpan = 64.0 // extra px at full chop
	curveFreqMin = 1.2  // full waves across the arena, most persistent
	curveFreqMax = 4.6  // least persistent

	// Wall baselines as fractions of arena height.
	topWallFrac    = 0.20
	bottomWallFrac = 0.80

	corridorRestitution = 0.6
	wallDamageBase      = 0.065 // integrity lost at reference impact speed
	wallRefSpeed        = 340.0 // px/s impact that counts as impact01 = 1

	// Crossover status-effect windows.
	crossoverTolerance    = 0.035 // normalized x half-width of a window
	crossoverTickInterval = 0.5   // seconds between status rolls while inside
	crossoverTickChance   = 0.7
	crossoverIntegrityAmt = 0.012
	crossoverSpinAmt      = 0.45
)

// crossover is a zero-crossing of a market curve, precomputed at generation
// time. Bullish crossings buff whoever lingers near them, bearish ones drain.
type crossover struct {
	t        float64 // normalized x position, 0-1
	bullish  bool    // crossing direction was upward
	strength float64 // 0-1, steepness of the crossing
}

// marketCurve is a spinner's telemetry-derived 1D price-like curve. It is not
// the owner's wall — it shapes the *opponent's* boundary.
type marketCurve struct {
	samples    []float64 // signed offsets around the wall baseline, px
	amplitude  float64
	crossovers []crossover
}

// newMarketCurve derives a curve from traits: choppier tickers swing wider,
// persistent ones stretch their waves out. Phase comes from the match RNG so
// a rematch reshapes the corridor.
func newMarketCurve(tr Traits, rng *rand.Rand) *marketCurve {
	amp := curveAmpBase + curveAmpSpan*tr.ChopSensitivity
	persistence := clamp01(0.5*tr.MACDPersistence + 0.5*tr.TrendAdherence)
	freq := curveFreqMin + (curveFreqMax-curveFreqMin)*(1-persistence)
	phase1 := rng.Float64() * 2 * math.Pi
	phase2 := rng.Float64() * 2 * math.Pi

	c := &marketCurve{
		samples:   make([]float64, curveSamples),
		amplitude: amp,
	}
	for i := range c.samples {
		t := float64(i) / float64(curveSamples-1)
		// Dominant wave plus a weaker out-of-phase harmonic so the curve
		// reads as a price series, not a sine.
		c.samples[i] = amp * (0.72*math.Sin(2*math.Pi*freq*t+phase1) +
			0.28*math.Sin(2*math.Pi*freq*2.3*t+phase2))
	}
	c.findCrossovers()
	return c
}

// findCrossovers locates zero-crossings once at generation time.
func (c *marketCurve) findCrossovers() {
	for i := 0; i+1 < len(c.samples); i++ {
		a, b := c.samples[i], c.samples[i+1]
		if a == 0 || a*b >= 0 {
			continue
		}
		// Interpolate the crossing position between the two samples.
		frac := a / (a - b)
		t := (float64(i) + frac) / float64(len(c.samples)-1)
		c.crossovers = append(c.crossovers, crossover{
			t:        t,
			bullish:  b > a,
			strength: clamp01(math.Abs(b-a) / (c.amplitude * 0.5)),
		})
	}
}

// sampleAt returns the curve offset at normalized position t, linearly
// interpolated between samples.
func (c *marketCurve) sampleAt(t float64) float64 {
	t = clamp01(t)
	pos := t * float64(len(c.samples)-1)
	i := int(pos)
	if i >= len(c.samples)-1 {
		return c.samples[len(c.samples)-1]
	}
	frac := pos - float64(i)
	return c.samples[i]*(1-frac) + c.samples[i+1]*frac
}

// CorridorBoundary squeezes the fight between two telemetry-derived curves.
// Spinner 0 fights under a top wall shaped by spinner 1's curve; spinner 1
// fights above a bottom wall shaped by spinner 0's curve — an asymmetric
// corridor where each combatant's market behaviour is the other's cage.
type CorridorBoundary struct {
	width, height float64
	curves        [2]*marketCurve
}

// NewCorridorBoundary precomputes both curves from the combatants' traits.
func NewCorridorBoundary(width, height float64, traits [2]Traits, rng *rand.Rand) *CorridorBoundary {
	return &CorridorBoundary{
		width:  width,
		height: height,
		curves: [2]*marketCurve{
			newMarketCurve(traits[0], rng),
			newMarketCurve(traits[1], rng),
		},
	}
}

func (cb *CorridorBoundary) Name() string { return "corridor" }

// topWallY is the wall constraining spinner 0, shaped by spinner 1's curve.
func (cb *CorridorBoundary) topWallY(t float64) float64 {
	return cb.height*topWallFrac + cb.curves[1].sampleAt(t)
}

// bottomWallY is the wall constraining spinner 1, shaped by spinner 0's curve.
func (cb *CorridorBoundary) bottomWallY(t float64) float64 {
	return cb.height*bottomWallFrac + cb.curves[0].sampleAt(t)
}

func (cb *CorridorBoundary) Apply(s *Spinner, idx int, instability, dt float64, rng *rand.Rand, bus *FeedbackBus) {
	t := clamp01(s.X / cb.width)

	// Side walls: plain reflection, no damage.
	if s.X-s.Radius < 0 {
		s.X = s.Radius
		if s.VX < 0 {
			s.VX = -s.VX * corridorRestitution
		}
	} else if s.X+s.Radius > cb.width {
		s.X = cb.width - s.Radius
		if s.VX > 0 {
			s.VX = -s.VX * corridorRestitution
		}
	}

	if idx == 0 {
		wallY := cb.topWallY(t)
		// Forced a half body past the wall line: through the curve, out.
		if s.Y < wallY-s.Radius*0.5 {
			s.breach = CauseCorridorBreach
			return
		}
		if s.Y-s.Radius < wallY {
			s.Y = wallY + s.Radius
			if s.VY < 0 {
				cb.wallHit(s, wallY, -s.VY, instability, bus)
				s.VY = -s.VY * corridorRestitution
			}
		}
		// Far side is the arena floor.
		if s.Y+s.Radius > cb.height {
			s.Y = cb.height - s.Radius
			if s.VY > 0 {
				s.VY = -s.VY * corridorRestitution
			}
		}
	} else {
		wallY := cb.bottomWallY(t)
		if s.Y > wallY+s.Radius*0.5 {
			s.breach = CauseCorridorBreach
			return
		}
		if s.Y+s.Radius > wallY {
			s.Y = wallY - s.Radius
			if s.VY > 0 {
				cb.wallHit(s, wallY, s.VY, instability, bus)
				s.VY = -s.VY * corridorRestitution
			}
		}
		if s.Y-s.Radius < 0 {
			s.Y = s.Radius
			if s.VY < 0 {
				s.VY = -s.VY * corridorRestitution
			}
		}
	}

	cb.updateCrossovers(s, idx, t, dt, rng, bus)
}

// wallHit applies curve-wall impact damage and emits the impact event.
func (cb *CorridorBoundary) wallHit(s *Spinner, wallY, impactSpeed, instability float64, bus *FeedbackBus) {
	impact01 := clamp01(impactSpeed / wallRefSpeed)
	s.damage(wallDamageBase * impact01 * (1 + instability*0.5))
	bus.publish(ImpactEvent{X: s.X, Y: wallY, Impact01: impact01})
}

// updateCrossovers tracks which opponent crossover windows the spinner sits
// inside. Entering a window fires one CrossoverEvent; while inside, a status
// roll runs every crossoverTickInterval seconds — bullish windows restore
// spin and hull, bearish ones drain them. Leaving re-arms the window.
func (cb *CorridorBoundary) updateCrossovers(s *Spinner, idx int, t, dt float64, rng *rand.Rand, bus *FeedbackBus) {
	curve := cb.curves[1-idx]
	if len(s.crossoverInside) != len(curve.crossovers) {
		s.crossoverInside = make([]bool, len(curve.crossovers))
	}

	anyInside := false
	for k, x := range curve.crossovers {
		inside := math.Abs(t-x.t) <= crossoverTolerance
		if inside && !s.crossoverInside[k] {
			bus.publish(CrossoverEvent{SpinnerID: s.ID, Bullish: x.bullish, Strength: x.strength})
			s.crossoverClock = 0
		}
		s.crossoverInside[k] = inside
		if inside {
			anyInside = true
		}
	}
	if !anyInside {
		s.crossoverClock = 0
		return
	}

	s.crossoverClock += dt
	for s.crossoverClock >= crossoverTickInterval {
		s.crossoverClock -= crossoverTickInterval
		if rng.Float64() >= crossoverTickChance {
			continue
		}
		for k, x := range curve.crossovers {
			if !s.crossoverInside[k] {
				continue
			}
			if x.bullish {
				s.restore(crossoverIntegrityAmt*x.strength, crossoverSpinAmt*x.strength)
			} else {
				s.damage(crossoverIntegrityAmt * (0.5 + x.strength))
				s.drainSpin(crossoverSpinAmt * (0.5 + x.strength))
			}
		}
	}
}

func (cb *CorridorBoundary) Geometry() BoundaryGeometry {
	top := make([]float64, curveSamples)
	bottom := make([]float64, curveSamples)
	for i := range top {
		t := float64(i) / float64(curveSamples-1)
		top[i] = cb.topWallY(t)
		bottom[i] = cb.bottomWallY(t)
	}
	return BoundaryGeometry{
		Kind:       "corridor",
		Width:      cb.width,
		Height:     cb.height,
		TopWall:    top,
		BottomWall: bottom,
	}
}
