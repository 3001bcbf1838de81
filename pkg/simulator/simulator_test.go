package simulator_test

import (
	"context"
	"testing"

	"github.com/jihwankim/cascadesim/pkg/config"
	"github.com/jihwankim/cascadesim/pkg/glitch"
	"github.com/jihwankim/cascadesim/pkg/graph"
	"github.com/jihwankim/cascadesim/pkg/ledger"
	"github.com/jihwankim/cascadesim/pkg/simulator"
)

// scripted is a deterministic RNG stub for testing the pipeline without
// relying on math/rand's sequence.
type scripted struct {
	ints   []int
	floats []float64
	i, j   int
}

func (s *scripted) Intn(n int) int {
	v := s.ints[s.i%len(s.ints)]
	s.i++
	if v >= n {
		v = 0
	}
	return v
}

func (s *scripted) Float64() float64 {
	v := s.floats[s.j%len(s.floats)]
	s.j++
	return v
}

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build([]graph.NodeDescriptor{
		{Name: "A", Health: 1.0},
		{Name: "B", DependsOn: []string{"A"}, Health: 1.0},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestRun_CompletesConfiguredTicks(t *testing.T) {
	g := buildGraph(t)
	cfg := config.DefaultConfig()
	cfg.Ticks = 5
	rng := &scripted{ints: []int{0}, floats: []float64{0.3}}

	sim := simulator.New(g, cfg, rng, ledger.New(), nil, nil, "")
	res, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Ticks != 5 {
		t.Errorf("Ticks = %d, want 5", res.Ticks)
	}
}

func TestRun_RecordsFailureAndIncident(t *testing.T) {
	g := buildGraph(t)
	cfg := config.DefaultConfig()
	cfg.Ticks = 1
	cfg.Threshold = 0.7
	rng := &scripted{ints: []int{0}, floats: []float64{0.9}} // forces a large delta on node A

	l := ledger.New()
	sim := simulator.New(g, cfg, rng, l, nil, nil, "")
	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(l.Failures()) == 0 {
		t.Error("expected at least one failure event")
	}
	if len(l.Incidents()) == 0 {
		t.Error("expected at least one incident")
	}
}

func TestRun_CancelledContextStopsEarly(t *testing.T) {
	g := buildGraph(t)
	cfg := config.DefaultConfig()
	cfg.Ticks = 100
	rng := &scripted{ints: []int{0}, floats: []float64{0.0}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := simulator.New(g, cfg, rng, ledger.New(), nil, nil, "")
	res, err := sim.Run(ctx)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
	if res.Ticks != 0 {
		t.Errorf("expected 0 ticks run before cancellation, got %d", res.Ticks)
	}
}

func TestRun_DeterministicAcrossIdenticalSeeds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ticks = 20

	run := func() []ledger.FailureEvent {
		g, _ := graph.Build([]graph.NodeDescriptor{
			{Name: "A", Health: 1.0},
			{Name: "B", DependsOn: []string{"A"}, Health: 1.0},
			{Name: "C", DependsOn: []string{"B"}, Health: 1.0},
		})
		l := ledger.New()
		rng := glitch.Default(cfg.Seed)
		sim := simulator.New(g, cfg, rng, l, nil, nil, "")
		sim.Run(context.Background())
		return l.Failures()
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("failure counts differ across identical seeds: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("failure %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
