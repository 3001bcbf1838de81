// Package ledger is the append-only record of glitches, failures,
// incidents, and per-node health history that query projections read.
package ledger

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// incidentNamespace is a fixed namespace UUID used to derive deterministic
// incident IDs from (tick, roots) via UUIDv3 (MD5), so that two runs with
// identical inputs and seed produce byte-identical incident IDs — a
// random UUIDv4 per incident would break that determinism guarantee.
var incidentNamespace = uuid.MustParse("6f6e9b0a-6e4e-4f0f-9b4b-000000000001")

// GlitchEvent records one random perturbation.
type GlitchEvent struct {
	Tick      int
	Service   string
	OldHealth float64
	NewHealth float64
}

// FailureEvent records one node crossing below threshold.
type FailureEvent struct {
	Tick    int
	Service string
	Health  float64
}

// Incident is one tick's RCA result, written once per tick in which a
// newly-failed set triggered root-cause analysis.
type Incident struct {
	ID       string
	Tick     int
	Roots    []string
	Impacted map[string][]string
	Priority string
}

// HistorySample is one node's health snapshot taken at tick start, before
// any mutation that tick.
type HistorySample struct {
	Tick     int
	Health   float64
	IsFailed bool
}

// Ledger is the append-only store for a single simulation run. Zero value
// is ready to use.
type Ledger struct {
	glitches  []GlitchEvent
	failures  []FailureEvent
	incidents []Incident
	history   map[string][]HistorySample
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{history: make(map[string][]HistorySample)}
}

// RecordGlitch appends a glitch event.
func (l *Ledger) RecordGlitch(e GlitchEvent) { l.glitches = append(l.glitches, e) }

// RecordFailure appends a failure event.
func (l *Ledger) RecordFailure(e FailureEvent) { l.failures = append(l.failures, e) }

// RecordIncident appends an RCA incident, stamping it with a UUIDv3
// derived from its tick and roots, so identical runs produce identical
// incident IDs.
func (l *Ledger) RecordIncident(tick int, roots []string, impacted map[string][]string, priority string) Incident {
	id := uuid.NewMD5(incidentNamespace, []byte(fmt.Sprintf("%d:%s", tick, strings.Join(roots, ",")))).String()
	inc := Incident{
		ID:       id,
		Tick:     tick,
		Roots:    roots,
		Impacted: impacted,
		Priority: priority,
	}
	l.incidents = append(l.incidents, inc)
	return inc
}

// RecordHistory appends one node's tick-start snapshot.
func (l *Ledger) RecordHistory(service string, sample HistorySample) {
	if l.history == nil {
		l.history = make(map[string][]HistorySample)
	}
	l.history[service] = append(l.history[service], sample)
}

// Glitches returns every recorded glitch event, in insertion order.
func (l *Ledger) Glitches() []GlitchEvent { return l.glitches }

// Failures returns every recorded failure event, in insertion order.
func (l *Ledger) Failures() []FailureEvent { return l.failures }

// Incidents returns every recorded incident, in insertion order.
func (l *Ledger) Incidents() []Incident { return l.incidents }

// History returns the health-sample history for a node.
func (l *Ledger) History(service string) []HistorySample { return l.history[service] }

// Services returns the set of service names with recorded history.
func (l *Ledger) Services() []string {
	out := make([]string, 0, len(l.history))
	for name := range l.history {
		out = append(out, name)
	}
	return out
}
