package graph

import (
	"fmt"
	"sort"
	"strings"
)

// NodeDescriptor is the external shape of one topology entry, as read by
// pkg/topology from the input file.
type NodeDescriptor struct {
	Name      string   `json:"name" yaml:"name"`
	DependsOn []string `json:"depends_on" yaml:"depends_on"`
	Health    float64  `json:"health" yaml:"health"`
}

// Graph is the immutable (post-construction) topology: nodes plus forward
// and reverse adjacency. Node health/failure state is mutable; the shape
// of the graph itself never changes after Build.
type Graph struct {
	nodes map[string]*Service
	deps  map[string]map[string]struct{}
	rdeps map[string]map[string]struct{}

	caseFold map[string]string

	// order preserves topology-file insertion order, used as the
	// deterministic tie-break when no other ordering is specified
	// (RCA's cycle-of-failures fallback, substitute order when the
	// topology isn't a DAG).
	order []string

	topoOrder []string // nil if the graph isn't a DAG
	cycles    [][]string
}

// ErrDuplicateService is returned by Build when two descriptors share a name.
type ErrDuplicateService struct{ Name string }

func (e *ErrDuplicateService) Error() string {
	return fmt.Sprintf("duplicate service name: %s", e.Name)
}

// Build constructs a Graph from a topology descriptor sequence. Dangling
// dependency names (references to nodes absent from descriptors) are kept
// in DependsOn but never appear in rdeps and are ignored by every
// algorithm that walks the graph.
func Build(descriptors []NodeDescriptor) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]*Service, len(descriptors)),
		deps:     make(map[string]map[string]struct{}, len(descriptors)),
		rdeps:    make(map[string]map[string]struct{}, len(descriptors)),
		caseFold: make(map[string]string, len(descriptors)),
		order:    make([]string, 0, len(descriptors)),
	}

	for _, d := range descriptors {
		if _, exists := g.nodes[d.Name]; exists {
			return nil, &ErrDuplicateService{Name: d.Name}
		}
		svc := newService(d.Name, d.DependsOn, d.Health)
		g.nodes[d.Name] = svc
		g.deps[d.Name] = svc.DependsOn
		g.caseFold[strings.ToLower(d.Name)] = d.Name
		g.order = append(g.order, d.Name)
	}

	for name, deps := range g.deps {
		for dep := range deps {
			if _, ok := g.nodes[dep]; !ok {
				continue
			}
			if g.rdeps[dep] == nil {
				g.rdeps[dep] = make(map[string]struct{})
			}
			g.rdeps[dep][name] = struct{}{}
		}
	}

	g.topoOrder = g.topologicalSort()
	if g.topoOrder == nil {
		g.cycles = g.findCycles()
	}

	return g, nil
}

// Node returns the service by canonical name.
func (g *Graph) Node(name string) (*Service, bool) {
	s, ok := g.nodes[name]
	return s, ok
}

// Nodes returns every service in topology insertion order.
func (g *Graph) Nodes() []*Service {
	out := make([]*Service, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Order returns the topology-file insertion order of node names.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Deps returns the dependency name set for a node (includes dangling names).
func (g *Graph) Deps(name string) map[string]struct{} {
	return g.deps[name]
}

// RDeps returns the set of direct dependents of a node.
func (g *Graph) RDeps(name string) map[string]struct{} {
	return g.rdeps[name]
}

// SortedRDeps returns the direct dependents of a node in a deterministic
// (lexical) order, for BFS walks whose visitation order must be
// reproducible across runs with identical input.
func (g *Graph) SortedRDeps(name string) []string {
	deps := g.rdeps[name]
	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// TopoOrder returns the topological linearization, or nil if the graph
// contains a cycle.
func (g *Graph) TopoOrder() []string {
	return g.topoOrder
}

// Cycles returns the simple cycles discovered when no topological order
// exists. Empty when the graph is a DAG.
func (g *Graph) Cycles() [][]string {
	return g.cycles
}

// Resolve maps a user-supplied token to a canonical service name: trailing
// punctuation in "?.!,;:" is stripped, the result is trimmed, then matched
// exactly or (failing that) case-insensitively.
func (g *Graph) Resolve(token string) (string, bool) {
	cleaned := strings.TrimRight(strings.TrimSpace(token), "?.!,;:")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", false
	}
	if _, ok := g.nodes[cleaned]; ok {
		return cleaned, true
	}
	canonical, ok := g.caseFold[strings.ToLower(cleaned)]
	return canonical, ok
}

// topologicalSort runs Kahn's algorithm using in-degree over valid
// dependencies only (dangling names never contribute to in-degree).
func (g *Graph) topologicalSort() []string {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = 0
	}
	for name, deps := range g.deps {
		for dep := range deps {
			if _, ok := g.nodes[dep]; ok {
				inDegree[name]++
			}
		}
	}

	queue := make([]string, 0)
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	sorted := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		sorted = append(sorted, u)

		dependents := make([]string, 0, len(g.rdeps[u]))
		for v := range g.rdeps[u] {
			dependents = append(dependents, v)
		}
		sort.Strings(dependents)
		for _, v := range dependents {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil
	}
	return sorted
}

// findCycles runs a DFS with a recursion stack; whenever a neighbor is
// found on the stack, the stack slice from its first occurrence to the
// end is recorded as a cycle, canonicalized by sorted-slice identity to
// deduplicate.
func (g *Graph) findCycles() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	var cycles [][]string
	seen := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)

		neighbors := make([]string, 0, len(g.deps[name]))
		for dep := range g.deps[name] {
			if _, ok := g.nodes[dep]; ok {
				neighbors = append(neighbors, dep)
			}
		}
		sort.Strings(neighbors)

		for _, next := range neighbors {
			if onStack[next] {
				idx := indexOf(stack, next)
				cycle := append(append([]string(nil), stack[idx:]...), next)
				key := cycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			} else if !visited[next] {
				visit(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[name] = false
	}

	for _, name := range g.order {
		if !visited[name] {
			visit(name)
		}
	}
	return cycles
}

func indexOf(stack []string, name string) int {
	for i, s := range stack {
		if s == name {
			return i
		}
	}
	return 0
}

// cycleKey canonicalizes a cycle (minus its repeated closing element) by
// sorted identity, so "A -> B -> A" and "B -> A -> B" dedupe to one entry.
func cycleKey(cycle []string) string {
	members := append([]string(nil), cycle[:len(cycle)-1]...)
	sort.Strings(members)
	return strings.Join(members, ",")
}
