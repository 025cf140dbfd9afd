package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spincap/spinner-arena/internal/arena"
)

type runStats struct {
	runIndex int
	seed     int64

	winner     string // ticker#slot, or "" on a draw/timeout
	draw       bool
	finished   bool
	endTick    int
	seconds    float64
	impacts    int
	bursts     int
	scrapes    int
	crossovers int
	causes     map[string]int // spinner ID → cause label
}

func main() {
	var runs, ticks int
	var seedBase, seedStep int64
	var variantName, tickerA, tickerB, telemetryPath string

	flag.IntVar(&runs, "runs", 10, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 18000, "max ticks per run (60/s)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&variantName, "variant", "ring", "arena variant (ring, corridor)")
	flag.StringVar(&tickerA, "a", "NVDA", "ticker for spinner A")
	flag.StringVar(&tickerB, "b", "KO", "ticker for spinner B")
	flag.StringVar(&telemetryPath, "telemetry", "", "telemetry JSON file (default: built-in sample set)")
	flag.Parse()

	if runs <= 0 || ticks <= 0 {
		fmt.Println("error: -runs and -ticks must be > 0")
		os.Exit(1)
	}
	variant, err := arena.ParseVariant(variantName)
	if err != nil {
		log.Fatal(err)
	}

	telemetry := arena.SampleTelemetry()
	if telemetryPath != "" {
		telemetry, err = arena.LoadTelemetryFile(telemetryPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	recA, err := telemetry.Telemetry(tickerA)
	if err != nil {
		log.Fatal(err)
	}
	recB, err := telemetry.Telemetry(tickerB)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("variant=%s %s vs %s runs=%d max_ticks=%d seed_base=%d seed_step=%d\n\n",
		variant, tickerA, tickerB, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runOne(i+1, seed, ticks, variant, tickerA, recA, tickerB, recB)
		all = append(all, stats)
		printRun(stats)
	}
	printAggregate(all, ticks)
}

func runOne(runIndex int, seed int64, maxTicks int, variant arena.Variant,
	tickerA string, recA arena.TelemetryRecord, tickerB string, recB arena.TelemetryRecord) runStats {

	sim := arena.NewMatchSim(
		arena.WithVariant(variant),
		arena.WithSeed(seed),
		arena.WithSpinner(tickerA, recA),
		arena.WithSpinner(tickerB, recB),
	)
	endTick := sim.RunUntil(func(s *arena.MatchSim) bool {
		return s.Match.Phase() == arena.PhaseEnded
	}, maxTicks)

	stats := runStats{
		runIndex: runIndex,
		seed:     seed,
		causes:   map[string]int{},
		endTick:  endTick,
		finished: endTick >= 0,
	}
	if winner, ok := sim.Match.Winner(); ok {
		stats.winner = winner
	}
	stats.draw = sim.Match.Draw()
	if stats.finished {
		stats.seconds = float64(endTick) / 60
	}

	tallyEvents(sim.Log.Entries(), &stats)
	return stats
}

// tallyEvents folds the structured match log into per-run counters.
func tallyEvents(entries []arena.MatchLogEntry, stats *runStats) {
	for _, e := range entries {
		switch e.Category {
		case "impact":
			if e.Key == "burst" {
				stats.bursts++
			} else {
				stats.impacts++
			}
		case "boundary":
			stats.scrapes++
		case "crossover":
			stats.crossovers++
		case "eliminated":
			stats.causes[e.Key]++
		}
	}
}

// outcomeLabel classifies a finished (or timed-out) run for the report line.
func outcomeLabel(s runStats) string {
	switch {
	case s.draw:
		return "draw"
	case s.winner != "":
		return "winner=" + s.winner
	default:
		return "timeout"
	}
}

func printRun(s runStats) {
	fmt.Printf("run %2d seed=%-6d %-24s", s.runIndex, s.seed, outcomeLabel(s))
	if s.finished {
		fmt.Printf(" t=%6.1fs", s.seconds)
	} else {
		fmt.Printf(" t=   ---")
	}
	fmt.Printf(" impacts=%-4d bursts=%-2d scrapes=%-4d crossovers=%-3d causes=%v\n",
		s.impacts, s.bursts, s.scrapes, s.crossovers, s.causes)
}

func printAggregate(all []runStats, maxTicks int) {
	wins := map[string]int{}
	causes := map[string]int{}
	draws, timeouts := 0, 0
	var totalSeconds float64
	finished := 0

	for _, s := range all {
		switch {
		case !s.finished:
			timeouts++
		case s.draw:
			draws++
		default:
			wins[s.winner]++
		}
		if s.finished {
			finished++
			totalSeconds += s.seconds
		}
		for c, n := range s.causes {
			causes[c] += n
		}
	}

	fmt.Printf("\n=== Aggregate (%d runs) ===\n", len(all))
	winners := make([]string, 0, len(wins))
	for w := range wins {
		winners = append(winners, w)
	}
	sort.Strings(winners)
	for _, w := range winners {
		fmt.Printf("  %-12s %d wins (%.0f%%)\n", w, wins[w], 100*float64(wins[w])/float64(len(all)))
	}
	fmt.Printf("  draws=%d timeouts=%d (max %d ticks)\n", draws, timeouts, maxTicks)
	if finished > 0 {
		fmt.Printf("  mean match length: %.1fs\n", totalSeconds/float64(finished))
	}
	causeNames := make([]string, 0, len(causes))
	for c := range causes {
		causeNames = append(causeNames, c)
	}
	sort.Strings(causeNames)
	fmt.Printf("  elimination causes:")
	for _, c := range causeNames {
		fmt.Printf(" %s=%d", c, causes[c])
	}
	fmt.Println()
}
