// Package propagate computes the per-tick fixed point of degradation
// flowing from unhealthy dependencies to their dependents.
package propagate

import (
	"github.com/jihwankim/cascadesim/pkg/graph"
)

const convergenceTolerance = 1e-3

// Propagate iterates the degradation rule to a fixed point:
//
//	health(s) = max(0, baseline(s) - sum_{d in deps(s), health(d) < threshold} alpha*(threshold-health(d)))
//
// baseline is the tick's snapshot, held fixed across sweeps; health(d) on
// the right-hand side is the current, iteratively refined value. Nodes
// with no dependencies are left untouched. Bounded at len(nodes) sweeps,
// which also bounds cycles to an approximation rather than non-termination.
// Returns the number of sweeps actually run.
func Propagate(g *graph.Graph, baseline map[string]float64, threshold, alpha float64) int {
	nodes := g.Nodes()
	sweeps := 0

	for i := 0; i < len(nodes); i++ {
		sweeps++
		changed := false

		for _, s := range nodes {
			deps := g.Deps(s.Name)
			if len(deps) == 0 {
				continue
			}

			degradation := 0.0
			for dep := range deps {
				d, ok := g.Node(dep)
				if !ok || d.Health >= threshold {
					continue
				}
				degradation += alpha * (threshold - d.Health)
			}
			if degradation <= 0 {
				continue
			}

			newHealth := clamp01(baseline[s.Name] - degradation)
			if abs(newHealth-s.Health) > convergenceTolerance {
				s.Health = newHealth
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return sweeps
}

func clamp01(h float64) float64 {
	if h < 0 {
		return 0
	}
	if h > 1 {
		return 1
	}
	return h
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
