// Package graph implements the immutable dependency-graph model: services,
// forward/reverse adjacency, cycle detection, and name resolution.
package graph

// Service is a single node in the dependency graph. Name is immutable
// identity; the remaining fields are mutated exclusively by the
// simulation engine.
type Service struct {
	Name string

	Health float64

	IsFailed bool

	// FailedAtTick is -1 if the node has never failed in this run.
	FailedAtTick int

	// RecoveryTimer is -1 when no cooldown is active.
	RecoveryTimer int

	// DependsOn is the set of this node's direct dependency names,
	// including any that don't resolve to a node in the graph.
	DependsOn map[string]struct{}
}

func newService(name string, dependsOn []string, health float64) *Service {
	deps := make(map[string]struct{}, len(dependsOn))
	for _, d := range dependsOn {
		deps[d] = struct{}{}
	}
	return &Service{
		Name:          name,
		Health:        clamp01(health),
		FailedAtTick:  -1,
		RecoveryTimer: -1,
		DependsOn:     deps,
	}
}

// clamp01 enforces the 0<=health<=1 invariant unconditionally; values
// outside the range never reach an observable point.
func clamp01(h float64) float64 {
	if h < 0 {
		return 0
	}
	if h > 1 {
		return 1
	}
	return h
}
