package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/spincap/spinner-arena/internal/arena"
	"github.com/spincap/spinner-arena/internal/stream"
)

const (
	stepInterval  = time.Second / 60
	framesPerSend = 3 // broadcast at 20 Hz
	rematchDelay  = 4 * time.Second
)

func main() {
	var addr, tickerA, tickerB, variantName, telemetryPath string
	var seed int64
	flag.StringVar(&addr, "addr", ":8090", "listen address")
	flag.StringVar(&tickerA, "a", "NVDA", "ticker for spinner A")
	flag.StringVar(&tickerB, "b", "KO", "ticker for spinner B")
	flag.StringVar(&variantName, "variant", "ring", "arena variant (ring, corridor)")
	flag.StringVar(&telemetryPath, "telemetry", "", "telemetry JSON file (default: built-in sample set)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "simulation RNG seed")
	flag.Parse()

	variant, err := arena.ParseVariant(variantName)
	if err != nil {
		log.Fatal(err)
	}
	var adapter arena.TelemetryAdapter = arena.SampleTelemetry()
	if telemetryPath != "" {
		adapter, err = arena.LoadTelemetryFile(telemetryPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	cfg := arena.DefaultMatchConfig()
	cfg.Variant = variant
	cfg.Seed = seed
	match, err := arena.StartMatch(adapter, tickerA, tickerB, cfg)
	if err != nil {
		log.Fatal(err)
	}

	hub := stream.NewHub()
	hub.Attach(match)
	http.HandleFunc("/ws", hub.Handler())

	go func() {
		log.Printf("arena-server: %s vs %s (%s) on %s", tickerA, tickerB, variant, addr)
		log.Fatal(http.ListenAndServe(addr, nil))
	}()

	ticker := time.NewTicker(stepInterval)
	defer ticker.Stop()

	frame := 0
	var endedAt time.Time
	last := time.Now()
	for now := range ticker.C {
		dt := now.Sub(last).Seconds()
		last = now
		if !match.Active() {
			return
		}
		match.Step(dt)

		if match.Phase() == arena.PhaseEnded {
			if endedAt.IsZero() {
				endedAt = now
				if id, ok := match.Winner(); ok {
					log.Printf("match ended: winner=%s", id)
				} else {
					log.Printf("match ended: draw")
				}
			} else if now.Sub(endedAt) >= rematchDelay {
				endedAt = time.Time{}
				match.Rematch()
				log.Printf("rematch started")
			}
		}

		frame++
		if frame%framesPerSend == 0 {
			hub.Broadcast(match)
		}
	}
}
