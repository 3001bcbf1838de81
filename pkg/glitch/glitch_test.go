package glitch_test

import (
	"testing"

	"github.com/jihwankim/cascadesim/pkg/glitch"
	"github.com/jihwankim/cascadesim/pkg/graph"
)

// scripted returns a fixed Intn index and Float64 value, for deterministic
// assertions on the exact delta math.
type scripted struct {
	intn    int
	float64 float64
}

func (s scripted) Intn(n int) int   { return s.intn }
func (s scripted) Float64() float64 { return s.float64 }

func TestApply_SelectsEligibleAndAppliesDelta(t *testing.T) {
	g, err := graph.Build([]graph.NodeDescriptor{
		{Name: "A", Health: 1.0},
		{Name: "B", Health: 0.3}, // below threshold, ineligible
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := glitch.New(scripted{intn: 0, float64: 0.5}, 0.7)
	ev, ok := src.Apply(g)
	if !ok {
		t.Fatal("expected a glitch to be applied")
	}
	if ev.Service != "A" {
		t.Fatalf("expected victim A (only eligible node), got %s", ev.Service)
	}
	wantDelta := 0.2 + 0.5*(0.5-0.2)
	wantNew := 1.0 - wantDelta
	if ev.NewHealth != wantNew {
		t.Errorf("expected new health %.4f, got %.4f", wantNew, ev.NewHealth)
	}
}

func TestApply_NoEligibleNodes(t *testing.T) {
	g, err := graph.Build([]graph.NodeDescriptor{{Name: "A", Health: 0.1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := glitch.New(scripted{}, 0.7)
	if _, ok := src.Apply(g); ok {
		t.Fatal("expected no glitch when no node is eligible")
	}
}

func TestApply_ClampsAtZero(t *testing.T) {
	g, err := graph.Build([]graph.NodeDescriptor{{Name: "A", Health: 0.7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := glitch.New(scripted{intn: 0, float64: 1.0}, 0.7)
	ev, ok := src.Apply(g)
	if !ok {
		t.Fatal("expected a glitch")
	}
	if ev.NewHealth < 0 {
		t.Errorf("expected clamped non-negative health, got %v", ev.NewHealth)
	}
}
