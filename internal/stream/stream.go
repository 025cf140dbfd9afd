// Package stream publishes drawable match state to websocket spectators.
// It is a read-only consumer of the simulation core: no inbound message
// mutates a match.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/spincap/spinner-arena/internal/arena"
)

// SpinnerFrame is the drawable slice of one spinner's state.
type SpinnerFrame struct {
	ID          string  `json:"id"`
	Ticker      string  `json:"ticker"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	Heading     float64 `json:"heading"`
	AngularRate float64 `json:"angularRate"`
	Integrity   float64 `json:"integrity"`
	Spin        float64 `json:"spin"`
	Alive       bool    `json:"alive"`
	Cause       string  `json:"cause,omitempty"`
}

// EventFrame is a feedback event flattened for the wire.
type EventFrame struct {
	Kind      string  `json:"kind"`
	SpinnerID string  `json:"spinnerId,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Impact01  float64 `json:"impact01,omitempty"`
	Bullish   bool    `json:"bullish,omitempty"`
	Strength  float64 `json:"strength,omitempty"`
	Cause     string  `json:"cause,omitempty"`
	WinnerID  string  `json:"winnerId,omitempty"`
	Draw      bool    `json:"draw,omitempty"`
	Seconds   int     `json:"seconds,omitempty"`
}

// Frame is one broadcast tick: full drawable state plus the events that
// fired since the previous frame.
type Frame struct {
	MatchID     string                 `json:"matchId"`
	Phase       string                 `json:"phase"`
	Elapsed     float64                `json:"elapsed"`
	Instability float64                `json:"instability"`
	Countdown   float64                `json:"countdown,omitempty"`
	Boundary    arena.BoundaryGeometry `json:"boundary"`
	Spinners    [2]SpinnerFrame        `json:"spinners"`
	Events      []EventFrame           `json:"events,omitempty"`
}

// Snapshot flattens the match into a Frame. events are drained by the caller
// (see Hub.Attach for the usual wiring).
func Snapshot(m *arena.Match, events []EventFrame) Frame {
	f := Frame{
		MatchID:     m.ID(),
		Phase:       m.Phase().String(),
		Elapsed:     m.Elapsed(),
		Instability: m.Instability(),
		Countdown:   m.CountdownLeft(),
		Boundary:    m.Boundary().Geometry(),
		Events:      events,
	}
	for i, s := range m.Spinners() {
		sf := SpinnerFrame{
			ID:          s.ID,
			Ticker:      s.Ticker,
			X:           s.X,
			Y:           s.Y,
			Radius:      s.Radius,
			Heading:     s.Heading,
			AngularRate: s.AngularRate,
			Integrity:   s.Integrity,
			Spin:        s.Spin,
			Alive:       s.Alive,
		}
		if !s.Alive {
			sf.Cause = s.Cause.String()
		}
		f.Spinners[i] = sf
	}
	return f
}

// FlattenEvent converts a feedback event to its wire form.
func FlattenEvent(ev arena.Event) EventFrame {
	switch e := ev.(type) {
	case arena.ImpactEvent:
		return EventFrame{Kind: "impact", X: e.X, Y: e.Y, Impact01: e.Impact01}
	case arena.BurstEvent:
		return EventFrame{Kind: "burst", X: e.X, Y: e.Y, Impact01: e.Impact01}
	case arena.BoundaryScrapeEvent:
		return EventFrame{Kind: "scrape", X: e.X, Y: e.Y, Impact01: e.Depth01}
	case arena.EliminatedEvent:
		return EventFrame{Kind: "eliminated", SpinnerID: e.SpinnerID, Cause: e.Cause.String()}
	case arena.MatchEndedEvent:
		return EventFrame{Kind: "match_ended", WinnerID: e.WinnerID, Draw: e.Draw}
	case arena.CrossoverEvent:
		return EventFrame{Kind: "crossover", SpinnerID: e.SpinnerID, Bullish: e.Bullish, Strength: e.Strength}
	case arena.CountdownEvent:
		return EventFrame{Kind: "countdown", Seconds: e.SecondsLeft}
	default:
		return EventFrame{Kind: "unknown"}
	}
}

// Hub fans frames out to connected spectators.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}

	pending []EventFrame
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*subscriber]struct{})}
}

// Attach subscribes the hub to the match's feedback bus so events are
// buffered into the next frame. Call once per match (or rematch keeps the
// same bus, so once per Match value).
func (h *Hub) Attach(m *arena.Match) {
	m.Subscribe(func(ev arena.Event) {
		h.mu.Lock()
		h.pending = append(h.pending, FlattenEvent(ev))
		h.mu.Unlock()
	})
}

// Broadcast snapshots the match, drains buffered events into the frame, and
// sends it to every spectator. Dead connections are dropped.
func (h *Hub) Broadcast(m *arena.Match) {
	h.mu.Lock()
	events := h.pending
	h.pending = nil
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	if len(subs) == 0 {
		return
	}
	payload, err := json.Marshal(Snapshot(m, events))
	if err != nil {
		log.Printf("stream: marshal frame: %v", err)
		return
	}
	for _, s := range subs {
		s.mu.Lock()
		err := s.conn.WriteMessage(websocket.TextMessage, payload)
		s.mu.Unlock()
		if err != nil {
			h.drop(s)
		}
	}
}

// SubscriberCount reports the number of connected spectators.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) drop(s *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, s)
	h.mu.Unlock()
	_ = s.conn.Close()
}

// Handler upgrades HTTP requests to spectator websocket connections.
// Inbound messages are read and discarded — spectators cannot steer the
// match.
func (h *Hub) Handler() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 8192,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("stream: upgrade failed: %v", err)
			return
		}
		s := &subscriber{conn: conn}
		h.mu.Lock()
		h.subscribers[s] = struct{}{}
		h.mu.Unlock()

		// Drain (and ignore) inbound messages until the peer goes away.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					h.drop(s)
					return
				}
			}
		}()
	}
}
