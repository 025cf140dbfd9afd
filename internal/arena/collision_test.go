package arena

import (
	"math"
	"testing"
)

// overlappingPair builds two spinners overlapping head-on along the x axis,
// so the collision normal is (1,0) and the tangential component is zero.
func overlappingPair(recA, recB TelemetryRecord, vxA, vxB float64) (*Spinner, *Spinner) {
	a := NewSpinner("a#0", "a", recA, Pose{X: 100, Y: 100, VX: vxA})
	b := NewSpinner("b#1", "b", recB, Pose{X: 100, Y: 100, VX: vxB})
	// Place with slight overlap.
	b.X = a.X + a.Radius + b.Radius - 2
	b.Y = a.Y
	return a, b
}

func TestResolveCollision_MomentumConserved(t *testing.T) {
	// Head-on: no tangential relative velocity, so the friction impulse is
	// zero and plain impulse conservation must hold exactly.
	recA := fullRecord(0.5, 0.9, 0.9, 0.1, 0.5, 0.9, RegimeTrend) // heavy, stable
	recB := fullRecord(0.5, 0.2, 0.1, 0.8, 0.5, 0.2, RegimeRange) // light, twitchy
	a, b := overlappingPair(recA, recB, 120, -80)

	pxBefore := a.Mass*a.VX + b.Mass*b.VX
	pyBefore := a.Mass*a.VY + b.Mass*b.VY

	bus := &FeedbackBus{}
	if impact := ResolveCollision(a, b, bus); impact <= 0 {
		t.Fatal("expected a resolved collision")
	}

	pxAfter := a.Mass*a.VX + b.Mass*b.VX
	pyAfter := a.Mass*a.VY + b.Mass*b.VY
	if math.Abs(pxAfter-pxBefore) > 1e-9 || math.Abs(pyAfter-pyBefore) > 1e-9 {
		t.Errorf("momentum not conserved: (%v,%v) → (%v,%v)",
			pxBefore, pyBefore, pxAfter, pyAfter)
	}
}

func TestResolveCollision_RestitutionAlongNormal(t *testing.T) {
	rec := fullRecord(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, RegimeTrend)
	a, b := overlappingPair(rec, rec, 100, -100)

	vnBefore := b.VX - a.VX // normal is +x
	bus := &FeedbackBus{}
	ResolveCollision(a, b, bus)
	vnAfter := b.VX - a.VX

	e := restitutionBase + restitutionSpan*(a.Stability+b.Stability)/2
	want := -e * vnBefore
	if math.Abs(vnAfter-want) > 1e-9 {
		t.Errorf("normal relative velocity after = %v, want %v (e=%v)", vnAfter, want, e)
	}
}

func TestResolveCollision_SeparatesBodies(t *testing.T) {
	rec := fullRecord(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, RegimeTrend)
	a, b := overlappingPair(rec, rec, 50, -50)

	ResolveCollision(a, b, &FeedbackBus{})
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	if dist < a.Radius+b.Radius-1e-9 {
		t.Errorf("bodies still overlap after resolution: dist=%v radiusSum=%v",
			dist, a.Radius+b.Radius)
	}
}

func TestResolveCollision_SkipsSeparating(t *testing.T) {
	rec := fullRecord(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, RegimeTrend)
	a, b := overlappingPair(rec, rec, -50, 50) // overlapping but flying apart

	integA, spinA := a.Integrity, a.Spin
	if impact := ResolveCollision(a, b, &FeedbackBus{}); impact != 0 {
		t.Errorf("separating bodies should skip impulse, got impact=%v", impact)
	}
	if a.Integrity != integA || a.Spin != spinA {
		t.Error("separating bodies should take no damage")
	}
}

func TestResolveCollision_CoincidentCentersDegenerate(t *testing.T) {
	rec := fullRecord(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, RegimeTrend)
	a := NewSpinner("a#0", "a", rec, Pose{X: 100, Y: 100, VX: 50})
	b := NewSpinner("b#1", "b", rec, Pose{X: 100, Y: 100, VX: -50})

	if impact := ResolveCollision(a, b, &FeedbackBus{}); impact != 0 {
		t.Errorf("coincident centres must skip resolution, got impact=%v", impact)
	}
	if math.IsNaN(a.X) || math.IsNaN(a.VX) {
		t.Error("degenerate case produced NaN state")
	}
}

func TestResolveCollision_NoCollisionWhenApart(t *testing.T) {
	rec := fullRecord(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, RegimeTrend)
	a := NewSpinner("a#0", "a", rec, Pose{X: 100, Y: 100})
	b := NewSpinner("b#1", "b", rec, Pose{X: 500, Y: 100})
	if impact := ResolveCollision(a, b, &FeedbackBus{}); impact != 0 {
		t.Errorf("distant bodies collided: impact=%v", impact)
	}
}

func TestResolveCollision_SymmetricDamage(t *testing.T) {
	// Mirror of the dashboard's opening scenario: identical telemetry,
	// opposite velocities of equal magnitude. The first contact must leave
	// both spinners with identical remaining integrity and spin.
	rec := fullRecord(0.6, 0.5, 0.5, 0.4, 0.5, 0.5, RegimeTrend)
	a, b := overlappingPair(rec, rec, 150, -150)

	ResolveCollision(a, b, &FeedbackBus{})
	if a.Integrity != b.Integrity {
		t.Errorf("asymmetric integrity after symmetric hit: %v vs %v", a.Integrity, b.Integrity)
	}
	if a.Spin != b.Spin {
		t.Errorf("asymmetric spin after symmetric hit: %v vs %v", a.Spin, b.Spin)
	}
	if a.Integrity >= 1 {
		t.Error("symmetric hit should still cost integrity")
	}
}

func TestResolveCollision_ResilienceScalesDamage(t *testing.T) {
	// A full-resilience tank against a glass cannon: same impact01 hits
	// both, so across repeated contacts the tank must bleed integrity
	// strictly slower.
	tankRec := fullRecord(0, 0.5, 1, 0, 0.5, 0.5, RegimeRange)
	glassRec := fullRecord(1, 0.5, 0, 1, 0.5, 0.5, RegimeChaotic)

	tank, glass := overlappingPair(tankRec, glassRec, 100, -100)
	bus := &FeedbackBus{}
	for i := 0; i < 50 && tank.Alive && glass.Alive; i++ {
		// Reset the approach each round for equal impact exposure.
		glass.X = tank.X + tank.Radius + glass.Radius - 2
		glass.Y = tank.Y
		tank.VX, tank.VY = 100, 0
		glass.VX, glass.VY = -100, 0
		ResolveCollision(tank, glass, bus)
	}

	tankLoss := 1 - tank.Integrity
	glassLoss := 1 - glass.Integrity
	if tankLoss >= glassLoss {
		t.Errorf("high-resilience hull lost %.4f but low-resilience lost %.4f", tankLoss, glassLoss)
	}
}

func TestResolveCollision_BurstOnKill(t *testing.T) {
	rec := fullRecord(0.5, 0.5, 0, 0.5, 0.5, 0.5, RegimeTrend)
	a, b := overlappingPair(rec, rec, 400, -400)
	a.Integrity = 0.001
	b.Integrity = 0.001

	var bursts, impacts int
	bus := &FeedbackBus{}
	bus.Subscribe(func(ev Event) {
		switch ev.(type) {
		case BurstEvent:
			bursts++
		case ImpactEvent:
			impacts++
		}
	})
	ResolveCollision(a, b, bus)
	if impacts != 1 {
		t.Errorf("impacts = %d, want 1", impacts)
	}
	if bursts != 1 {
		t.Errorf("killing blow should emit one burst, got %d", bursts)
	}
}

func TestResolveCollision_DeadBodiesIgnored(t *testing.T) {
	rec := fullRecord(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, RegimeTrend)
	a, b := overlappingPair(rec, rec, 100, -100)
	a.eliminate(CauseSpinOut)
	x, vx := b.X, b.VX
	if impact := ResolveCollision(a, b, &FeedbackBus{}); impact != 0 {
		t.Errorf("dead body collided: impact=%v", impact)
	}
	if b.X != x || b.VX != vx {
		t.Error("live body mutated by collision with a dead one")
	}
}
