// Package query implements the read-only diagnostic projections over the
// event ledger and current graph state: why-failing, last-N-ticks, and
// top-impacted.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jihwankim/cascadesim/pkg/graph"
	"github.com/jihwankim/cascadesim/pkg/ledger"
)

// Engine answers diagnostic queries without ever mutating engine state.
type Engine struct {
	graph     *graph.Graph
	ledger    *ledger.Ledger
	threshold float64
	tick      int
}

// New creates a query engine over a graph and ledger as of the current tick.
func New(g *graph.Graph, l *ledger.Ledger, threshold float64, tick int) *Engine {
	return &Engine{graph: g, ledger: l, threshold: threshold, tick: tick}
}

// WhyFailing explains a node's current status. Returns an error-shaped
// string (never a Go error) if name doesn't resolve.
func (e *Engine) WhyFailing(name string) string {
	n, ok := e.graph.Node(name)
	if !ok {
		return fmt.Sprintf("[ERROR] Service '%s' not found.", name)
	}

	if n.Health >= e.threshold {
		return fmt.Sprintf("[OK] %s is currently healthy (health=%.2f)", name, n.Health)
	}

	failedAt := "unknown"
	if n.FailedAtTick > 0 {
		failedAt = fmt.Sprintf("%d", n.FailedAtTick)
	}

	var failedDeps []string
	for dep := range e.graph.Deps(name) {
		d, ok := e.graph.Node(dep)
		if ok && d.Health < e.threshold {
			failedDeps = append(failedDeps, dep)
		}
	}
	sort.Strings(failedDeps)

	var b strings.Builder
	fmt.Fprintf(&b, "\n[QUERY] WHY IS %s FAILING?\n%s\n\n", strings.ToUpper(name), strings.Repeat("=", 60))
	fmt.Fprintf(&b, "Current Health: %.2f (threshold: %.2f)\n", n.Health, e.threshold)
	fmt.Fprintf(&b, "Failed at Tick: %s\n\n", failedAt)

	if len(failedDeps) == 0 {
		fmt.Fprintf(&b, "[ROOT CAUSE] %s failed independently\n", name)
		if g := lastGlitch(e.ledger, name); g != nil {
			fmt.Fprintf(&b, "   Glitch at tick %d: %.2f -> %.2f\n", g.Tick, g.OldHealth, g.NewHealth)
		}
	} else {
		fmt.Fprintf(&b, "[CASCADE FAILURE] %s failed due to upstream dependencies\n\n", name)
		b.WriteString("Failed Dependencies:\n")
		for _, dep := range failedDeps {
			d, _ := e.graph.Node(dep)
			fmt.Fprintf(&b, "  - %s: health=%.2f, failed at tick %d\n", dep, d.Health, d.FailedAtTick)
		}
	}

	blast := e.graph.SortedRDeps(name)
	if len(blast) > 0 {
		fmt.Fprintf(&b, "\n[BLAST RADIUS] %d services depend on this\n", len(blast))
		fmt.Fprintf(&b, "   Dependents: %s\n", strings.Join(blast, ", "))
	}

	return b.String()
}

func lastGlitch(l *ledger.Ledger, service string) *ledger.GlitchEvent {
	var last *ledger.GlitchEvent
	for i := range l.Glitches() {
		g := l.Glitches()[i]
		if g.Service == service {
			last = &g
		}
	}
	return last
}

// LastNTicks summarizes ticks [max(1, T-n+1), T]: per-tick glitch/failure
// events and incident root-cause summaries, plus totals.
func (e *Engine) LastNTicks(n int) string {
	start := e.tick - n + 1
	if start < 1 {
		start = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n[QUERY] SUMMARY: Last %d Ticks (%d to %d)\n%s\n", n, start, e.tick, strings.Repeat("=", 60))

	totalGlitches, totalFailures := 0, 0
	for t := start; t <= e.tick; t++ {
		var tickGlitches []ledger.GlitchEvent
		for _, g := range e.ledger.Glitches() {
			if g.Tick == t {
				tickGlitches = append(tickGlitches, g)
			}
		}
		var tickFailures []ledger.FailureEvent
		for _, f := range e.ledger.Failures() {
			if f.Tick == t {
				tickFailures = append(tickFailures, f)
			}
		}
		var tickIncidents []ledger.Incident
		for _, inc := range e.ledger.Incidents() {
			if inc.Tick == t {
				tickIncidents = append(tickIncidents, inc)
			}
		}

		totalGlitches += len(tickGlitches)
		totalFailures += len(tickFailures)

		if len(tickGlitches) == 0 && len(tickFailures) == 0 && len(tickIncidents) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n[TICK %d]\n", t)
		for _, g := range tickGlitches {
			fmt.Fprintf(&b, "  [GLITCH] %s (%.2f -> %.2f)\n", g.Service, g.OldHealth, g.NewHealth)
		}
		for _, f := range tickFailures {
			fmt.Fprintf(&b, "  [FAILURE] %s (health=%.2f)\n", f.Service, f.Health)
		}
		for _, inc := range tickIncidents {
			fmt.Fprintf(&b, "  [ROOT CAUSE] %s\n", strings.Join(inc.Roots, ", "))
		}
	}

	fmt.Fprintf(&b, "\n[STATISTICS]\n")
	fmt.Fprintf(&b, "  Total Glitches: %d\n", totalGlitches)
	fmt.Fprintf(&b, "  Total Failures: %d\n", totalFailures)

	return b.String()
}

type impactScore struct {
	name        string
	failures    int
	degradation float64
	avg         float64
	current     float64
}

// TopImpacted ranks nodes by (failures desc, degradation desc), showing
// the top ten in a fixed-width table.
func (e *Engine) TopImpacted() string {
	var scores []impactScore
	for _, name := range e.graph.Order() {
		history := e.ledger.History(name)
		n, _ := e.graph.Node(name)

		initial := 1.0
		if len(history) > 0 {
			initial = history[0].Health
		}
		failures := 0
		sum := 0.0
		for _, h := range history {
			if h.IsFailed {
				failures++
			}
			sum += h.Health
		}
		avg := 1.0
		if len(history) > 0 {
			avg = sum / float64(len(history))
		}

		scores = append(scores, impactScore{
			name:        name,
			failures:    failures,
			degradation: initial - n.Health,
			avg:         avg,
			current:     n.Health,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].failures != scores[j].failures {
			return scores[i].failures > scores[j].failures
		}
		return scores[i].degradation > scores[j].degradation
	})

	var b strings.Builder
	fmt.Fprintf(&b, "\n[QUERY] TOP IMPACTED SERVICES\n%s\n\n", strings.Repeat("=", 60))
	b.WriteString("Rank | Service    | Failures | Degradation | Avg Health | Current\n")
	b.WriteString("-----+------------+----------+-------------+------------+---------\n")

	limit := len(scores)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		s := scores[i]
		fmt.Fprintf(&b, "%4d | %-10s | %8d | %11.2f | %10.2f | %7.2f\n",
			i+1, s.name, s.failures, s.degradation, s.avg, s.current)
	}

	return b.String()
}
