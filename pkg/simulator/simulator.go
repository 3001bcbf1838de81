// Package simulator orchestrates one cascadesim run: it owns the tick
// counter and the single injected RNG, and drives the per-tick pipeline
// across graph, glitch, recovery, propagate, rca, and ledger.
package simulator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jihwankim/cascadesim/pkg/config"
	"github.com/jihwankim/cascadesim/pkg/glitch"
	"github.com/jihwankim/cascadesim/pkg/graph"
	"github.com/jihwankim/cascadesim/pkg/ledger"
	"github.com/jihwankim/cascadesim/pkg/propagate"
	"github.com/jihwankim/cascadesim/pkg/rca"
	"github.com/jihwankim/cascadesim/pkg/recovery"
	"github.com/jihwankim/cascadesim/pkg/simmetrics"
)

// Tracer receives narrated events as the simulator runs. *tracelog.Sink
// satisfies this; tests can substitute a recording stub.
type Tracer interface {
	Log(tag, format string, args ...interface{})
}

// Result summarizes a completed run.
type Result struct {
	Ticks      int
	StartTime  time.Time
	EndTime    time.Time
	FinalState map[string]float64
}

// Simulator wires the algorithmic packages into the seven-phase per-tick
// pipeline: snapshot, glitch, recovery, propagate, classify, transition,
// rca.
type Simulator struct {
	graph    *graph.Graph
	cfg      *config.Config
	glitch   *glitch.Source
	recovery *recovery.Scheduler
	ledger   *ledger.Ledger
	metrics  *simmetrics.Registry
	trace    Tracer
	runID    string

	tick int
}

// New assembles a Simulator over an already-built graph. rng is the
// single randomness source for the whole run, shared by the glitch
// source so a fixed seed reproduces an identical run end to end. runID
// identifies this run in the [BOOT] trace line; it may be empty.
func New(g *graph.Graph, cfg *config.Config, rng glitch.RNG, l *ledger.Ledger, m *simmetrics.Registry, trace Tracer, runID string) *Simulator {
	return &Simulator{
		graph:  g,
		cfg:    cfg,
		glitch: glitch.New(rng, cfg.Threshold),
		recovery: &recovery.Scheduler{
			// cooldown is configured the moment the field is present in
			// the input, regardless of its value: an explicit 0 means
			// instant recovery, not "recovery disabled".
			Enabled:   cfg.Cooldown != nil,
			Threshold: cfg.Threshold,
			HealTo:    cfg.HealTo,
		},
		ledger:  l,
		metrics: m,
		trace:   trace,
		runID:   runID,
	}
}

// Run drives cfg.Ticks ticks, returning early if ctx is cancelled between
// ticks. There is no intra-tick concurrency; ctx exists solely as a
// cooperative stop signal, per the teacher's orchestrator idiom.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{StartTime: start}

	s.logHeader(start)

	for i := 0; i < s.cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			res.EndTime = time.Now()
			res.Ticks = s.tick
			return res, fmt.Errorf("simulator: run cancelled at tick %d: %w", s.tick, ctx.Err())
		default:
		}

		s.tick++
		s.runTick()
	}

	res.EndTime = time.Now()
	res.Ticks = s.tick
	res.FinalState = s.snapshotHealth()

	if s.trace != nil {
		s.trace.Log("END", "run complete at %s", res.EndTime.UTC().Format(time.RFC3339))
	}

	return res, nil
}

// logHeader writes the run banner, any cycle warnings, and the [BOOT]
// line before the first tick runs.
func (s *Simulator) logHeader(start time.Time) {
	if s.trace == nil {
		return
	}

	s.trace.Log("RUN", "ticks=%d threshold=%.2f seed=%d start=%s", s.cfg.Ticks, s.cfg.Threshold, s.cfg.Seed, start.UTC().Format(time.RFC3339))

	for _, cycle := range s.graph.Cycles() {
		s.trace.Log("WARN", "Cycle detected: %s (RCA may be approximate)", strings.Join(cycle, " -> "))
	}

	s.trace.Log("BOOT", "run=%s loaded %d services", s.runID, len(s.graph.Nodes()))
}

// runTick executes the seven phases, in order, for the current tick.
func (s *Simulator) runTick() {
	if s.trace != nil {
		s.trace.Log(fmt.Sprintf("TICK %d", s.tick), "%s", time.Now().Format("15:04:05"))
	}

	baseline := s.snapshot()
	s.phaseGlitch()
	s.phaseRecovery()
	s.phasePropagate(baseline)

	failed := s.failedNodes()
	if len(failed) == 0 {
		s.logAllHealthy()
		s.phaseMetrics()
		return
	}

	newlyFailed := s.phaseTransition(failed)
	if len(newlyFailed) > 0 {
		s.phaseRCA(failed)
	}
	s.phaseMetrics()
}

// snapshot records the tick-start health of every node to the ledger and
// returns the baseline map propagate needs.
func (s *Simulator) snapshot() map[string]float64 {
	baseline := make(map[string]float64, len(s.graph.Nodes()))
	for _, n := range s.graph.Nodes() {
		baseline[n.Name] = n.Health
		s.ledger.RecordHistory(n.Name, ledger.HistorySample{
			Tick:     s.tick,
			Health:   n.Health,
			IsFailed: n.IsFailed,
		})
	}
	return baseline
}

func (s *Simulator) phaseGlitch() {
	event, ok := s.glitch.Apply(s.graph)
	if !ok {
		return
	}
	s.ledger.RecordGlitch(ledger.GlitchEvent{
		Tick:      s.tick,
		Service:   event.Service,
		OldHealth: event.OldHealth,
		NewHealth: event.NewHealth,
	})
	if s.metrics != nil {
		s.metrics.GlitchesTotal.Inc()
	}
	if s.trace != nil {
		s.trace.Log("GLITCH", "%s health %.2f -> %.2f (random glitch)", event.Service, event.OldHealth, event.NewHealth)
	}
}

func (s *Simulator) phaseRecovery() {
	result := s.recovery.Tick(s.graph)
	for _, heal := range result.Heals {
		if s.metrics != nil {
			s.metrics.HealsTotal.Inc()
		}
		if s.trace != nil {
			s.trace.Log("HEAL", "%s -> health %.2f at T=%d", heal.Service, heal.Health, s.tick)
		}

		steps := result.Ripple[heal.Service]
		if len(steps) == 0 {
			continue
		}
		if s.trace != nil {
			s.trace.Log("RECOVERY", "upstream recovery after %s heal:", heal.Service)
			for _, step := range steps {
				s.trace.Log("RECOVERY", "  - %s %.2f -> %.2f", step.Service, step.OldHealth, step.NewHealth)
			}
		}
	}
}

func (s *Simulator) phasePropagate(baseline map[string]float64) {
	propagate.Propagate(s.graph, baseline, s.cfg.Threshold, s.cfg.Alpha)
}

// failedNodes returns the names of every node currently below threshold,
// in topology insertion order.
func (s *Simulator) failedNodes() []string {
	var failed []string
	for _, n := range s.graph.Nodes() {
		if n.Health < s.cfg.Threshold {
			failed = append(failed, n.Name)
		}
	}
	return failed
}

// logAllHealthy emits the single [INFO] line for a tick in which no
// node is below threshold.
func (s *Simulator) logAllHealthy() {
	if s.trace == nil {
		return
	}
	nodes := s.graph.Nodes()
	if len(nodes) == 0 {
		return
	}
	min := nodes[0]
	for _, n := range nodes[1:] {
		if n.Health < min.Health {
			min = n
		}
	}
	s.trace.Log("INFO", "All services healthy (min health=%.2f on %s)", min.Health, min.Name)
}

// phaseTransition marks every node in failed that wasn't already failed,
// stamping FailedAtTick and arming its recovery timer, and records a
// FailureEvent for each. Returns the names that transitioned this tick.
func (s *Simulator) phaseTransition(failed []string) []string {
	var newlyFailed []string
	cooldown := -1
	if s.cfg.Cooldown != nil {
		cooldown = s.cfg.CooldownTicks()
	}

	for _, name := range failed {
		n, ok := s.graph.Node(name)
		if !ok || n.IsFailed {
			continue
		}

		n.IsFailed = true
		n.FailedAtTick = s.tick
		n.RecoveryTimer = cooldown
		newlyFailed = append(newlyFailed, name)

		s.ledger.RecordFailure(ledger.FailureEvent{Tick: s.tick, Service: name, Health: n.Health})
		if s.trace != nil {
			s.trace.Log("ALERT", "%s fell below threshold (%.2f < %.2f)", name, n.Health, s.cfg.Threshold)
		}
	}

	return newlyFailed
}

// phaseRCA runs root-cause analysis against the full current failed set
// (not just the newly-failed ones), so pre-existing failures surface as
// upstream causes, and narrates it as [INFO]/[BLAST]/[PRIORITY]/
// [SUGGESTION] lines.
func (s *Simulator) phaseRCA(failed []string) {
	result := rca.Analyze(s.graph, failed, s.graph.Order(), s.tick)
	if len(result.Roots) == 0 {
		return
	}

	if s.trace != nil && result.Fallback {
		s.trace.Log("INFO", "No clear root cause; prioritizing lowest health service.")
	}

	if s.trace != nil {
		for _, root := range result.Roots {
			impacted := result.Blast[root]
			if len(impacted) == 0 {
				continue
			}
			s.trace.Log("BLAST", "due to %s -> impacted: [%s]", root, strings.Join(impacted, ", "))
		}

		s.trace.Log("PRIORITY", "roots={%s}, order=[%s]", strings.Join(result.Roots, ", "), strings.Join(result.Priority, ", "))
		s.trace.Log("SUGGESTION", "Remediate %s first", result.Priority[0])
	}

	priority := strings.Join(result.Priority, ", ")
	s.ledger.RecordIncident(s.tick, result.Roots, result.Blast, priority)
	if s.metrics != nil {
		s.metrics.IncidentsTotal.Inc()
	}
}

func (s *Simulator) phaseMetrics() {
	if s.metrics == nil {
		return
	}
	failed := 0
	sum := 0.0
	nodes := s.graph.Nodes()
	for _, n := range nodes {
		if n.IsFailed {
			failed++
		}
		sum += n.Health
	}
	mean := 1.0
	if len(nodes) > 0 {
		mean = sum / float64(len(nodes))
	}
	s.metrics.SetTick(failed, mean)
}

func (s *Simulator) snapshotHealth() map[string]float64 {
	out := make(map[string]float64, len(s.graph.Nodes()))
	for _, n := range s.graph.Nodes() {
		out[n.Name] = n.Health
	}
	return out
}

// Graph exposes the underlying graph for post-run querying.
func (s *Simulator) Graph() *graph.Graph { return s.graph }

// Ledger exposes the underlying ledger for post-run querying.
func (s *Simulator) Ledger() *ledger.Ledger { return s.ledger }

// Tick returns the current (or final) tick number.
func (s *Simulator) Tick() int { return s.tick }
