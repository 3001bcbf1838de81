// Package recovery implements cooldown-based healing and the upstream
// ripple recovery that follows it.
package recovery

import "github.com/jihwankim/cascadesim/pkg/graph"

// HealEvent records a node healed in this tick.
type HealEvent struct {
	Service string
	Health  float64
}

// RippleStep records one node bumped by upstream ripple recovery.
type RippleStep struct {
	Service   string
	OldHealth float64
	NewHealth float64
}

// Result is the outcome of one Scheduler.Tick call.
type Result struct {
	Heals  []HealEvent
	Ripple map[string][]RippleStep // keyed by the healed node that triggered it
}

// Scheduler manages recovery timers. It is only active when cooldown is
// configured; zero value with Enabled=false is a no-op.
type Scheduler struct {
	Enabled   bool
	Threshold float64
	HealTo    float64
}

// Tick decrements active recovery timers, heals nodes reaching zero, and
// ripple-recovers dependents of each healed node. Running Tick twice in a
// row with no intervening mutation is idempotent: every timer is already
// -1 the second time, so nothing changes.
func (s *Scheduler) Tick(g *graph.Graph) Result {
	res := Result{Ripple: make(map[string][]RippleStep)}
	if !s.Enabled {
		return res
	}

	var toHeal []*graph.Service
	for _, n := range g.Nodes() {
		if n.IsFailed && n.RecoveryTimer > 0 {
			n.RecoveryTimer--
		}
		if n.RecoveryTimer == 0 {
			toHeal = append(toHeal, n)
		}
	}

	for _, n := range toHeal {
		n.Health = s.HealTo
		n.IsFailed = false
		n.RecoveryTimer = -1
		res.Heals = append(res.Heals, HealEvent{Service: n.Name, Health: n.Health})

		steps := s.propagateRecovery(g, n.Name)
		if len(steps) > 0 {
			res.Ripple[n.Name] = steps
		}
	}

	return res
}

// propagateRecovery is a BFS over reverse adjacency starting at the
// healed node, visiting each dependent at most once regardless of
// whether it receives a health bump.
func (s *Scheduler) propagateRecovery(g *graph.Graph, healed string) []RippleStep {
	var steps []RippleStep
	visited := map[string]bool{healed: true}
	queue := []string{healed}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dependent := range g.SortedRDeps(current) {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			queue = append(queue, dependent)

			dep, _ := g.Node(dependent)
			if !s.allDepsHealthy(g, dep) || dep.Health >= s.HealTo {
				continue
			}

			old := dep.Health
			improvement := (s.HealTo - old) * 0.5
			dep.Health = min1(old + improvement)
			steps = append(steps, RippleStep{Service: dependent, OldHealth: old, NewHealth: dep.Health})

			if dep.Health >= s.Threshold {
				dep.IsFailed = false
				dep.RecoveryTimer = -1
			}
		}
	}

	return steps
}

func (s *Scheduler) allDepsHealthy(g *graph.Graph, n *graph.Service) bool {
	for dep := range g.Deps(n.Name) {
		d, ok := g.Node(dep)
		if !ok {
			continue
		}
		if d.Health < s.Threshold {
			return false
		}
	}
	return true
}

func min1(h float64) float64 {
	if h > 1 {
		return 1
	}
	return h
}
