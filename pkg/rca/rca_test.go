package rca_test

import (
	"reflect"
	"testing"

	"github.com/jihwankim/cascadesim/pkg/graph"
	"github.com/jihwankim/cascadesim/pkg/rca"
)

func TestAnalyze_RootAndBlastRadius(t *testing.T) {
	g, err := graph.Build([]graph.NodeDescriptor{
		{Name: "A", Health: 0.4},
		{Name: "B", Health: 0.5, DependsOn: []string{"A"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := g.Node("A")
	a.IsFailed = true
	b, _ := g.Node("B")
	b.IsFailed = true

	res := rca.Analyze(g, []string{"A", "B"}, g.Order(), 2)
	if !reflect.DeepEqual(res.Roots, []string{"A"}) {
		t.Fatalf("expected root A, got %v", res.Roots)
	}
	if !reflect.DeepEqual(res.Blast["A"], []string{"B"}) {
		t.Fatalf("expected blast radius [B], got %v", res.Blast["A"])
	}
}

func TestAnalyze_IndependentFailureNoBlast(t *testing.T) {
	g, err := graph.Build([]graph.NodeDescriptor{{Name: "X", Health: 0.4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, _ := g.Node("X")
	x.IsFailed = true

	res := rca.Analyze(g, []string{"X"}, g.Order(), 1)
	if len(res.Roots) != 1 || res.Roots[0] != "X" {
		t.Fatalf("expected root X, got %v", res.Roots)
	}
	if len(res.Blast["X"]) != 0 {
		t.Fatalf("expected empty blast radius, got %v", res.Blast["X"])
	}
}

func TestAnalyze_CycleOfFailuresFallback(t *testing.T) {
	g, err := graph.Build([]graph.NodeDescriptor{
		{Name: "A", Health: 0.3, DependsOn: []string{"B"}},
		{Name: "B", Health: 0.2, DependsOn: []string{"A"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := g.Node("A")
	a.IsFailed = true
	b, _ := g.Node("B")
	b.IsFailed = true

	res := rca.Analyze(g, []string{"A", "B"}, g.Order(), 3)
	if !res.Fallback {
		t.Fatal("expected fallback to trigger for a cycle of failures")
	}
	if len(res.Roots) != 1 || res.Roots[0] != "B" {
		t.Fatalf("expected fallback root B (lowest health), got %v", res.Roots)
	}
}

func TestAnalyze_PriorityByDescendingBlastRadius(t *testing.T) {
	g, err := graph.Build([]graph.NodeDescriptor{
		{Name: "Small", Health: 0.3},
		{Name: "SmallDep", Health: 0.5, DependsOn: []string{"Small"}},
		{Name: "Big", Health: 0.3},
		{Name: "BigDep1", Health: 0.5, DependsOn: []string{"Big"}},
		{Name: "BigDep2", Health: 0.5, DependsOn: []string{"Big"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, n := range []string{"Small", "SmallDep", "Big", "BigDep1", "BigDep2"} {
		s, _ := g.Node(n)
		s.IsFailed = true
	}

	res := rca.Analyze(g, []string{"Small", "SmallDep", "Big", "BigDep1", "BigDep2"}, g.Order(), 1)
	if res.Priority[0] != "Big" {
		t.Fatalf("expected Big (larger blast radius) prioritized first, got %v", res.Priority)
	}
}
