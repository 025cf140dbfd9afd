package arena

import "math"

// --- Collision tuning constants ---

const (
	// referenceImpulse is the normal impulse that counts as a full-intensity
	// hit (impact01 = 1). Tuned against two mid-mass spinners meeting at
	// top speed.
	referenceImpulse = 650.0

	// restitutionBase/restitutionSpan map average stability to bounce:
	// stable spinners deflect cleanly, unstable ones absorb the hit.
	restitutionBase = 0.2
	restitutionSpan = 0.5

	// frictionCoefBase scales the tangential impulse clamp; instability of
	// either body adds grip, turning clean bounces into glancing smears.
	frictionCoefBase = 0.25

	// Damage scaling at impact01 = 1.
	impactDamageBase    = 0.16 // integrity, before resilience scaling
	impactSpinDrainBase = 3.2  // angular momentum, before resilience scaling
)

// ResolveCollision detects and resolves overlap between the two spinners.
// Positional correction splits the penetration by inverse mass; the impulse
// pass then handles restitution and tangential friction. Dead spinners are
// ignored. Returns the normalized impact magnitude (0 when no collision or
// when the bodies were already separating).
func ResolveCollision(a, b *Spinner, bus *FeedbackBus) float64 {
	if !a.Alive || !b.Alive {
		return 0
	}

	dx := b.X - a.X
	dy := b.Y - a.Y
	nx, ny, dist := normalize(dx, dy)
	radiusSum := a.Radius + b.Radius
	if dist >= radiusSum || dist == 0 {
		// dist == 0 means coincident centres — no normal can be computed,
		// so skip this tick and let movement separate them.
		return 0
	}

	invMassA := 1 / a.Mass
	invMassB := 1 / b.Mass
	invMassSum := invMassA + invMassB

	// Positional correction: resolve the full penetration in one step,
	// split proportionally to inverse mass.
	penetration := radiusSum - dist
	a.X -= nx * penetration * (invMassA / invMassSum)
	a.Y -= ny * penetration * (invMassA / invMassSum)
	b.X += nx * penetration * (invMassB / invMassSum)
	b.Y += ny * penetration * (invMassB / invMassSum)

	// Relative velocity along the normal. Positive = separating, in which
	// case the positional fix above already did everything needed.
	rvx := b.VX - a.VX
	rvy := b.VY - a.VY
	vn := rvx*nx + rvy*ny
	if vn > 0 {
		return 0
	}

	e := restitutionBase + restitutionSpan*(a.Stability+b.Stability)/2
	j := -(1 + e) * vn / invMassSum
	a.VX -= nx * j * invMassA
	a.VY -= ny * j * invMassA
	b.VX += nx * j * invMassB
	b.VY += ny * j * invMassB

	// Tangential friction: clamp the tangent impulse by a coefficient that
	// grows as either body loses stability — glancing deflection, not a
	// pure elastic bounce.
	tx, ty := -ny, nx
	vt := rvx*tx + rvy*ty
	jt := -vt / invMassSum
	friction := frictionCoefBase * (1 - (a.Stability+b.Stability)/2)
	maxFriction := math.Abs(j) * friction
	jt = clamp(jt, -maxFriction, maxFriction)
	a.VX -= tx * jt * invMassA
	a.VY -= ty * jt * invMassA
	b.VX += tx * jt * invMassB
	b.VY += ty * jt * invMassB

	impact01 := clamp01(math.Abs(j) / referenceImpulse)
	applyImpactDamage(a, impact01)
	applyImpactDamage(b, impact01)

	midX := a.X + nx*a.Radius
	midY := a.Y + ny*a.Radius
	bus.publish(ImpactEvent{X: midX, Y: midY, Impact01: impact01})

	// A killing blow gets the louder burst signal. Elimination itself is
	// marked by the terminal check so cause precedence stays consistent.
	if a.Integrity <= 0 || b.Integrity <= 0 {
		bus.publish(BurstEvent{X: midX, Y: midY, Impact01: impact01})
	}
	return impact01
}

// applyImpactDamage converts impact magnitude into hull and spin loss.
// Resilient hulls shrug off integrity damage and hold their spin.
func applyImpactDamage(s *Spinner, impact01 float64) {
	hull := s.Traits.HullResilience
	s.damage(impactDamageBase * impact01 * (1.15 - 0.8*hull))
	s.drainSpin(impactSpinDrainBase * impact01 * (1 + 2*(1-hull)))
}
