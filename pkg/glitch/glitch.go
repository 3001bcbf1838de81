// Package glitch implements the per-tick random perturbation source:
// exactly one eligible node is chosen per tick and nudged below its
// current health by a uniformly sampled delta.
package glitch

import (
	"math/rand"

	"github.com/jihwankim/cascadesim/pkg/graph"
)

const (
	minDelta = 0.2
	maxDelta = 0.5
)

// RNG is the minimal randomness surface the glitch source consumes,
// injectable so tests can substitute a scripted sequence instead of a
// live generator.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

// Default wraps a seeded *rand.Rand, giving bit-identical draw sequences
// for identical seeds.
func Default(seed int64) RNG {
	return rand.New(rand.NewSource(seed)) //nolint:gosec
}

// Event describes the single glitch applied in a tick, if any.
type Event struct {
	Service   string
	OldHealth float64
	NewHealth float64
}

// Source draws victim selection and delta from rng in that fixed order,
// so two runs with the same seed produce identical glitches.
type Source struct {
	rng       RNG
	threshold float64
}

// New creates a glitch source over rng, eligible nodes are those with
// health at or above threshold.
func New(rng RNG, threshold float64) *Source {
	return &Source{rng: rng, threshold: threshold}
}

// Apply selects uniformly among eligible nodes and applies a random
// delta, returning the event and true, or false if no node is eligible.
func (s *Source) Apply(g *graph.Graph) (Event, bool) {
	nodes := g.Nodes()
	eligible := make([]*graph.Service, 0, len(nodes))
	for _, n := range nodes {
		if n.Health >= s.threshold {
			eligible = append(eligible, n)
		}
	}
	if len(eligible) == 0 {
		return Event{}, false
	}

	victim := eligible[s.rng.Intn(len(eligible))]
	delta := minDelta + s.rng.Float64()*(maxDelta-minDelta)

	old := victim.Health
	victim.Health = clamp01(old - delta)

	return Event{Service: victim.Name, OldHealth: old, NewHealth: victim.Health}, true
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
