package arena

import (
	"math"
	"testing"
)

func fullRecord(thrust, maneuver, hull, chop, clarity, volume float64, regime RegimeBias) TelemetryRecord {
	return TelemetryRecord{
		ThrustPotential:   Trait(thrust),
		ManeuverStability: Trait(maneuver),
		HullResilience:    Trait(hull),
		ChopSensitivity:   Trait(chop),
		SignalClarity:     Trait(clarity),
		VolumeReliability: Trait(volume),
		RegimeBias:        regime,
	}
}

func TestNewSpinner_Deterministic(t *testing.T) {
	rec := fullRecord(0.7, 0.4, 0.6, 0.3, 0.8, 0.5, RegimeTrend)
	a := NewSpinner("x#0", "x", rec, Pose{X: 100, Y: 100})
	b := NewSpinner("x#0", "x", rec, Pose{X: 100, Y: 100})

	if a.Mass != b.Mass || a.Radius != b.Radius || a.MaxSpeed != b.MaxSpeed ||
		a.BaseAngularRate != b.BaseAngularRate || a.Stability != b.Stability {
		t.Errorf("identical telemetry produced different parameters: %+v vs %+v", a, b)
	}
}

func TestNewSpinner_NeutralDefaults(t *testing.T) {
	// An empty record must resolve every trait to 0.5.
	s := NewSpinner("n#0", "n", TelemetryRecord{}, Pose{})
	tr := s.Traits
	for name, v := range map[string]float64{
		"thrust":  tr.ThrustPotential,
		"mnvr":    tr.ManeuverStability,
		"hull":    tr.HullResilience,
		"chop":    tr.ChopSensitivity,
		"clarity": tr.SignalClarity,
		"volume":  tr.VolumeReliability,
	} {
		if v != 0.5 {
			t.Errorf("trait %s = %v, want neutral 0.5", name, v)
		}
	}
}

func TestNewSpinner_ParameterRanges(t *testing.T) {
	lo := NewSpinner("lo#0", "lo", fullRecord(0, 1, 0, 1, 0, 0, RegimeRange), Pose{})
	hi := NewSpinner("hi#0", "hi", fullRecord(1, 0, 1, 0, 1, 1, RegimeTrend), Pose{})

	if lo.Mass < massBase || hi.Mass > massBase+massSpan {
		t.Errorf("mass out of range: lo=%v hi=%v", lo.Mass, hi.Mass)
	}
	if lo.MaxSpeed < maxSpeedBase || hi.MaxSpeed > maxSpeedBase+maxSpeedSpan {
		t.Errorf("maxSpeed out of range: lo=%v hi=%v", lo.MaxSpeed, hi.MaxSpeed)
	}
	if lo.Stability < 0 || lo.Stability > 1 || hi.Stability < 0 || hi.Stability > 1 {
		t.Errorf("stability out of [0,1]: lo=%v hi=%v", lo.Stability, hi.Stability)
	}
	if lo.Spin != lo.BaseAngularRate {
		t.Errorf("spin starts at %v, want base angular rate %v", lo.Spin, lo.BaseAngularRate)
	}
	if lo.Integrity != 1 || !lo.Alive {
		t.Errorf("fresh spinner not at full integrity and alive")
	}
}

func TestNewSpinner_ThrustMonotone(t *testing.T) {
	prev := -1.0
	for thrust := 0.0; thrust <= 1.0; thrust += 0.1 {
		s := NewSpinner("m#0", "m", fullRecord(thrust, 0.5, 0.5, 0.5, 0.5, 0.5, RegimeTrend), Pose{})
		if s.MaxSpeed < prev {
			t.Fatalf("maxSpeed decreased as thrust rose: %v at thrust=%.1f", s.MaxSpeed, thrust)
		}
		prev = s.MaxSpeed
	}
}

func TestNewSpinner_ChopMonotone(t *testing.T) {
	prev := 2.0
	for chop := 0.0; chop <= 1.0; chop += 0.1 {
		s := NewSpinner("m#0", "m", fullRecord(0.5, 0.5, 0.5, chop, 0.5, 0.5, RegimeRange), Pose{})
		if s.Stability > prev {
			t.Fatalf("stability increased as chop rose: %v at chop=%.1f", s.Stability, chop)
		}
		prev = s.Stability
	}
}

func TestResolve_ClampsOutOfRange(t *testing.T) {
	rec := TelemetryRecord{
		ThrustPotential: Trait(1.7),
		ChopSensitivity: Trait(-0.4),
	}
	tr := rec.Resolve()
	if tr.ThrustPotential != 1 || tr.ChopSensitivity != 0 {
		t.Errorf("out-of-range traits not clamped: %+v", tr)
	}
}

func TestDamageAndDrain_ClampAtZero(t *testing.T) {
	s := NewSpinner("d#0", "d", TelemetryRecord{}, Pose{})
	s.damage(5)
	s.drainSpin(s.BaseAngularRate * 3)
	if s.Integrity != 0 || s.Spin != 0 {
		t.Errorf("integrity=%v spin=%v, want both clamped to 0", s.Integrity, s.Spin)
	}
}

func TestRestore_CapsAtMaxima(t *testing.T) {
	s := NewSpinner("r#0", "r", TelemetryRecord{}, Pose{})
	s.damage(0.3)
	s.drainSpin(2)
	s.restore(5, 100)
	if s.Integrity != 1 {
		t.Errorf("integrity=%v, want capped at 1", s.Integrity)
	}
	if s.Spin != s.BaseAngularRate {
		t.Errorf("spin=%v, want capped at base rate %v", s.Spin, s.BaseAngularRate)
	}
}

func TestEliminate_FirstCauseSticks(t *testing.T) {
	s := NewSpinner("e#0", "e", TelemetryRecord{}, Pose{})
	if !s.eliminate(CauseRingOut) {
		t.Fatal("first eliminate should report the transition")
	}
	if s.eliminate(CauseDestroyed) {
		t.Error("second eliminate should be a no-op")
	}
	if s.Cause != CauseRingOut {
		t.Errorf("cause = %v, want the first cause to stick", s.Cause)
	}
	// Dead spinners take no further damage or drain.
	s.Integrity = 0.7
	s.damage(0.5)
	s.drainSpin(1)
	if s.Integrity != 0.7 {
		t.Errorf("dead spinner took damage")
	}
}

func TestRegimeBias_JSONRoundTrip(t *testing.T) {
	for _, r := range []RegimeBias{RegimeTrend, RegimeRange, RegimeChaotic} {
		data, err := r.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %v: %v", r, err)
		}
		var back RegimeBias
		if err := back.UnmarshalJSON(data); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != r {
			t.Errorf("round trip %v → %v", r, back)
		}
	}
	var bad RegimeBias
	if err := bad.UnmarshalJSON([]byte(`"sideways"`)); err == nil {
		t.Error("unknown regime label should fail to parse")
	}
}

func TestSpeed(t *testing.T) {
	s := NewSpinner("s#0", "s", TelemetryRecord{}, Pose{VX: 3, VY: 4})
	if math.Abs(s.Speed()-5) > 1e-12 {
		t.Errorf("speed = %v, want 5", s.Speed())
	}
}
