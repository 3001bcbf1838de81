// Package rca performs reverse root-cause analysis on the current set of
// failed nodes: root identification, blast-radius computation, and
// remediation priority ordering.
package rca

import (
	"sort"

	"github.com/jihwankim/cascadesim/pkg/graph"
)

// Result is one tick's RCA outcome.
type Result struct {
	Tick     int
	Roots    []string            // discovery order
	Priority []string            // roots sorted by descending blast radius
	Blast    map[string][]string // root -> transitively dependent names
	Fallback bool                // true if RCA fell back to lowest-health-in-cycle
}

// Analyze computes root causes, blast radii, and priority for the given
// failure set. failed must be every node currently below threshold (not
// only newly-failed ones), so pre-existing failures surface as upstream
// causes. order is the topology insertion order, used to break ties
// deterministically.
func Analyze(g *graph.Graph, failed []string, order []string, tick int) *Result {
	failedSet := make(map[string]bool, len(failed))
	for _, f := range failed {
		failedSet[f] = true
	}

	var roots []string
	for _, name := range orderedSubset(order, failed) {
		if isRoot(g, name, failedSet) {
			roots = append(roots, name)
		}
	}

	fallback := false
	if len(roots) == 0 && len(failed) > 0 {
		fallback = true
		roots = []string{lowestHealth(g, orderedSubset(order, failed))}
	}

	blast := make(map[string][]string, len(roots))
	for _, r := range roots {
		blast[r] = blastRadius(g, r)
	}

	priority := append([]string(nil), roots...)
	sort.SliceStable(priority, func(i, j int) bool {
		return len(blast[priority[i]]) > len(blast[priority[j]])
	})

	return &Result{
		Tick:     tick,
		Roots:    roots,
		Priority: priority,
		Blast:    blast,
		Fallback: fallback,
	}
}

func orderedSubset(order []string, subset []string) []string {
	in := make(map[string]bool, len(subset))
	for _, s := range subset {
		in[s] = true
	}
	out := make([]string, 0, len(subset))
	for _, name := range order {
		if in[name] {
			out = append(out, name)
		}
	}
	return out
}

// isRoot holds iff none of name's existing dependencies are currently failed.
func isRoot(g *graph.Graph, name string, failedSet map[string]bool) bool {
	for dep := range g.Deps(name) {
		if _, ok := g.Node(dep); !ok {
			continue
		}
		if failedSet[dep] {
			return false
		}
	}
	return true
}

// lowestHealth returns the lowest-health node among candidates, breaking
// ties by the candidates' given (insertion) order.
func lowestHealth(g *graph.Graph, candidates []string) string {
	best := candidates[0]
	bestHealth, _ := healthOf(g, best)
	for _, name := range candidates[1:] {
		h, _ := healthOf(g, name)
		if h < bestHealth {
			best = name
			bestHealth = h
		}
	}
	return best
}

func healthOf(g *graph.Graph, name string) (float64, bool) {
	n, ok := g.Node(name)
	if !ok {
		return 0, false
	}
	return n.Health, true
}

// blastRadius is a BFS over reverse adjacency from root, excluding root
// itself: every node transitively dependent on it, healthy or not.
func blastRadius(g *graph.Graph, root string) []string {
	visited := map[string]bool{root: true}
	queue := []string{root}
	var impacted []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range g.SortedRDeps(current) {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			impacted = append(impacted, dependent)
			queue = append(queue, dependent)
		}
	}
	return impacted
}
