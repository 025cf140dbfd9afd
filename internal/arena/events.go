package arena

// EliminationCause labels why a spinner died. When several conditions trigger
// in the same tick the displayed cause follows the precedence
// Destroyed > RingOut/CorridorBreach > SpinOut.
type EliminationCause int

const (
	CauseNone EliminationCause = iota
	CauseDestroyed                // integrity depleted
	CauseRingOut                  // thrown past the containment ring
	CauseCorridorBreach           // forced through a corridor wall
	CauseSpinOut                  // angular momentum depleted
)

func (c EliminationCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseDestroyed:
		return "destroyed"
	case CauseRingOut:
		return "ring_out"
	case CauseCorridorBreach:
		return "corridor_breach"
	case CauseSpinOut:
		return "spin_out"
	default:
		return "unknown"
	}
}

// Event is a simulation occurrence published for cosmetic consumers
// (particles, shake, audio). Events are fire-and-forget: the core never
// waits on or reads back from a listener.
type Event interface {
	eventKind() string
}

// ImpactEvent fires on every resolved spinner-on-spinner or wall collision.
// Impact01 scales cosmetic intensity and matches the gameplay damage scalar.
type ImpactEvent struct {
	X, Y     float64
	Impact01 float64
}

// BurstEvent fires when a collision destroys a spinner outright. It is a
// distinct, higher-intensity signal than a normal impact.
type BurstEvent struct {
	X, Y     float64
	Impact01 float64
}

// BoundaryScrapeEvent fires probabilistically while a spinner grinds against
// the soft edge of the containment field.
type BoundaryScrapeEvent struct {
	X, Y    float64
	NX, NY  float64 // inward unit normal at the contact
	Depth01 float64 // normalized penetration into the soft band
}

// EliminatedEvent fires exactly once per spinner death.
type EliminatedEvent struct {
	SpinnerID string
	Cause     EliminationCause
}

// MatchEndedEvent fires once when the living count drops to one or zero.
// Draw is true for simultaneous elimination; WinnerID is empty in that case.
type MatchEndedEvent struct {
	WinnerID string
	Draw     bool
}

// CrossoverEvent fires when a spinner enters an opponent crossover window
// (corridor variant only) — once per entry, not re-triggered while inside.
type CrossoverEvent struct {
	SpinnerID string
	Bullish   bool
	Strength  float64
}

// CountdownEvent fires each whole second of the pre-fight countdown.
type CountdownEvent struct {
	SecondsLeft int
}

func (ImpactEvent) eventKind() string         { return "impact" }
func (BurstEvent) eventKind() string          { return "burst" }
func (BoundaryScrapeEvent) eventKind() string { return "boundary_scrape" }
func (EliminatedEvent) eventKind() string     { return "eliminated" }
func (MatchEndedEvent) eventKind() string     { return "match_ended" }
func (CrossoverEvent) eventKind() string      { return "crossover" }
func (CountdownEvent) eventKind() string      { return "countdown" }

// FeedbackBus fans simulation events out to subscribed listeners. Listeners
// run synchronously on the simulation goroutine, so they must be cheap; heavy
// consumers should copy the event and defer work to their own loop.
type FeedbackBus struct {
	listeners []func(Event)
}

// Subscribe registers a listener for all events.
func (b *FeedbackBus) Subscribe(fn func(Event)) {
	b.listeners = append(b.listeners, fn)
}

func (b *FeedbackBus) publish(ev Event) {
	for _, fn := range b.listeners {
		fn(ev)
	}
}
