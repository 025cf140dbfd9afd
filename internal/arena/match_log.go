package arena

import (
	"fmt"
	"strings"
)

// MatchLogEntry is one recorded event during a headless simulation run.
type MatchLogEntry struct {
	Tick     int
	Spinner  string  // spinner ID, or "--" for match-level events
	Category string  // impact, boundary, crossover, eliminated, match, state
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] AAPL#0  impact   resolved   impact01=0.41
func (e MatchLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-8s %-10s %-14s %s",
		e.Tick, e.Spinner, e.Category, e.Key, e.Value)
}

// MatchLog collects structured events during a headless simulation run.
// Unbounded and machine-readable; tests filter it for invariant checks.
type MatchLog struct {
	entries []MatchLogEntry
	verbose bool
}

// NewMatchLog creates a MatchLog. If verbose is true, per-tick state entries
// (position, integrity, spin) are also recorded.
func NewMatchLog(verbose bool) *MatchLog {
	return &MatchLog{verbose: verbose}
}

// Add records a new entry.
func (ml *MatchLog) Add(tick int, spinner, category, key, value string, numVal float64) {
	ml.entries = append(ml.entries, MatchLogEntry{
		Tick:     tick,
		Spinner:  spinner,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (ml *MatchLog) AddVerbose(tick int, spinner, category, key, value string, numVal float64) {
	if !ml.verbose {
		return
	}
	ml.Add(tick, spinner, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (ml *MatchLog) Entries() []MatchLogEntry {
	return ml.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (ml *MatchLog) Filter(category, key string) []MatchLogEntry {
	var out []MatchLogEntry
	for _, e := range ml.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSpinner returns all entries for one spinner ID.
func (ml *MatchLog) FilterSpinner(id string) []MatchLogEntry {
	var out []MatchLogEntry
	for _, e := range ml.entries {
		if e.Spinner == id {
			out = append(out, e)
		}
	}
	return out
}

// Dump renders the whole log, one line per entry. Debug aid.
func (ml *MatchLog) Dump() string {
	var b strings.Builder
	for _, e := range ml.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
