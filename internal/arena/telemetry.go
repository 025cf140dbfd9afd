package arena

import (
	"encoding/json"
	"fmt"
	"os"
)

// neutralTrait is substituted for any telemetry field the dashboard did not
// supply. 0.5 is the midpoint of every normalized trait range.
const neutralTrait = 0.5

// RegimeBias classifies a ticker's recent market behaviour. It steers the
// spinner's movement intent each tick.
type RegimeBias int

const (
	RegimeTrend RegimeBias = iota // persistent directional drift
	RegimeRange                   // mean-reverting chop around a level
	RegimeChaotic                 // no exploitable structure
)

func (r RegimeBias) String() string {
	switch r {
	case RegimeTrend:
		return "trend"
	case RegimeRange:
		return "range"
	case RegimeChaotic:
		return "chaotic"
	default:
		return "unknown"
	}
}

// UnmarshalJSON accepts the string labels the telemetry generator emits.
func (r *RegimeBias) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "trend":
		*r = RegimeTrend
	case "range":
		*r = RegimeRange
	case "chaotic":
		*r = RegimeChaotic
	default:
		return fmt.Errorf("unknown regime bias %q", s)
	}
	return nil
}

// MarshalJSON emits the same string labels UnmarshalJSON accepts.
func (r RegimeBias) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// TelemetryRecord is the raw per-ticker input supplied by the dashboard's
// telemetry pipeline. Every trait field is optional; nil means "not derived"
// and defaults to neutral. No validation happens beyond default substitution —
// out-of-range values are clamped when the record is resolved.
type TelemetryRecord struct {
	ThrustPotential   *float64   `json:"thrustPotential,omitempty"`
	ManeuverStability *float64   `json:"maneuverStability,omitempty"`
	HullResilience    *float64   `json:"hullResilience,omitempty"`
	ChopSensitivity   *float64   `json:"chopSensitivity,omitempty"`
	SignalClarity     *float64   `json:"signalClarity,omitempty"`
	VolumeReliability *float64   `json:"volumeReliability,omitempty"`
	RegimeBias        RegimeBias `json:"regimeBias"`

	// Corridor-variant curve shaping. Optional like the rest.
	MACDPersistence *float64 `json:"macdPersistence,omitempty"`
	TrendAdherence  *float64 `json:"trendAdherence,omitempty"`
}

// Traits is a TelemetryRecord with defaults applied and every value clamped
// to [0,1]. It is snapshotted into the spinner at creation and never mutated.
type Traits struct {
	ThrustPotential   float64
	ManeuverStability float64
	HullResilience    float64
	ChopSensitivity   float64
	SignalClarity     float64
	VolumeReliability float64
	MACDPersistence   float64
	TrendAdherence    float64
	Regime            RegimeBias
}

// Resolve applies neutral defaults for missing fields and clamps the rest.
func (r TelemetryRecord) Resolve() Traits {
	return Traits{
		ThrustPotential:   traitOrNeutral(r.ThrustPotential),
		ManeuverStability: traitOrNeutral(r.ManeuverStability),
		HullResilience:    traitOrNeutral(r.HullResilience),
		ChopSensitivity:   traitOrNeutral(r.ChopSensitivity),
		SignalClarity:     traitOrNeutral(r.SignalClarity),
		VolumeReliability: traitOrNeutral(r.VolumeReliability),
		MACDPersistence:   traitOrNeutral(r.MACDPersistence),
		TrendAdherence:    traitOrNeutral(r.TrendAdherence),
		Regime:            r.RegimeBias,
	}
}

func traitOrNeutral(p *float64) float64 {
	if p == nil {
		return neutralTrait
	}
	return clamp01(*p)
}

// Trait is a convenience constructor for optional record fields.
func Trait(v float64) *float64 { return &v }

// TelemetryAdapter resolves a ticker symbol to its derived telemetry. The
// simulation core only ever reads from an already-resolved in-memory snapshot;
// implementations must not block mid-match.
type TelemetryAdapter interface {
	Telemetry(ticker string) (TelemetryRecord, error)
}

// StaticTelemetry is a fixed in-memory adapter used by tests and the headless
// tools.
type StaticTelemetry map[string]TelemetryRecord

func (st StaticTelemetry) Telemetry(ticker string) (TelemetryRecord, error) {
	rec, ok := st[ticker]
	if !ok {
		return TelemetryRecord{}, fmt.Errorf("no telemetry for ticker %q", ticker)
	}
	return rec, nil
}

// SampleTelemetry is a small built-in ticker set so the tools run without a
// generated telemetry file. Values mirror the shapes the generator produces.
func SampleTelemetry() StaticTelemetry {
	return StaticTelemetry{
		"NVDA": {
			ThrustPotential:   Trait(0.88),
			ManeuverStability: Trait(0.45),
			HullResilience:    Trait(0.52),
			ChopSensitivity:   Trait(0.61),
			SignalClarity:     Trait(0.70),
			VolumeReliability: Trait(0.80),
			RegimeBias:        RegimeTrend,
			MACDPersistence:   Trait(0.72),
			TrendAdherence:    Trait(0.81),
		},
		"KO": {
			ThrustPotential:   Trait(0.22),
			ManeuverStability: Trait(0.85),
			HullResilience:    Trait(0.90),
			ChopSensitivity:   Trait(0.15),
			SignalClarity:     Trait(0.55),
			VolumeReliability: Trait(0.75),
			RegimeBias:        RegimeRange,
			MACDPersistence:   Trait(0.40),
			TrendAdherence:    Trait(0.35),
		},
		"GME": {
			ThrustPotential:   Trait(0.95),
			ManeuverStability: Trait(0.12),
			HullResilience:    Trait(0.30),
			ChopSensitivity:   Trait(0.92),
			SignalClarity:     Trait(0.18),
			VolumeReliability: Trait(0.25),
			RegimeBias:        RegimeChaotic,
			MACDPersistence:   Trait(0.15),
			TrendAdherence:    Trait(0.10),
		},
		"MSFT": {
			ThrustPotential:   Trait(0.60),
			ManeuverStability: Trait(0.72),
			HullResilience:    Trait(0.68),
			ChopSensitivity:   Trait(0.30),
			SignalClarity:     Trait(0.77),
			VolumeReliability: Trait(0.85),
			RegimeBias:        RegimeTrend,
			MACDPersistence:   Trait(0.66),
			TrendAdherence:    Trait(0.60),
		},
	}
}

// LoadTelemetryFile reads a ticker→record JSON object, the format produced by
// the dashboard's telemetry generator.
func LoadTelemetryFile(path string) (StaticTelemetry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read telemetry file: %w", err)
	}
	var st StaticTelemetry
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse telemetry file %s: %w", path, err)
	}
	return st, nil
}
