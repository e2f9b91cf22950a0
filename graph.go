package alloy

import (
	"fmt"
	"sort"
	"strings"
)

// dependencyGraph is a directed graph over the lifecycle-managed subset of
// the registry. An edge A -> B means A's construction requires B, possibly
// through non-lifecycle intermediaries. Only lifecycle-managed nodes
// participate in ordering; non-lifecycle dependencies are materialized by
// the resolver as a side effect of construction.
type dependencyGraph struct {
	nodes []*Declaration
	edges map[ComponentKey][]ComponentKey
}

// buildDependencyGraph collects every lifecycle-managed declaration under
// the active profile, except scoped ones, which belong to request scopes
// rather than container startup. Missing or ambiguous dependency keys
// surface here, before any initialization runs.
func buildDependencyGraph(reg *registry, profile Profile) (*dependencyGraph, error) {
	g := &dependencyGraph{
		edges: make(map[ComponentKey][]ComponentKey),
	}

	lifecycle := make(map[ComponentKey]*Declaration)
	for _, d := range reg.active(profile) {
		if d.Lifecycle && d.Scope != ScopeScoped {
			lifecycle[d.Key] = d
			g.nodes = append(g.nodes, d)
		}
	}

	// reach returns the lifecycle keys reachable from key through direct
	// dependencies and non-lifecycle intermediaries. visiting breaks walks
	// over non-lifecycle cycles; those are resolution-time failures, not
	// graph-time ones.
	memo := make(map[ComponentKey][]ComponentKey)
	visiting := make(map[ComponentKey]bool)
	var reach func(key ComponentKey) ([]ComponentKey, error)
	reach = func(key ComponentKey) ([]ComponentKey, error) {
		if cached, ok := memo[key]; ok {
			return cached, nil
		}
		if visiting[key] {
			return nil, nil
		}
		visiting[key] = true
		defer delete(visiting, key)

		decl, err := reg.lookup(key, profile)
		if err != nil {
			return nil, err
		}

		var out []ComponentKey
		seen := make(map[ComponentKey]struct{})
		for _, dep := range decl.Dependencies {
			if _, ok := lifecycle[dep]; ok {
				if _, dup := seen[dep]; !dup {
					seen[dep] = struct{}{}
					out = append(out, dep)
				}
				continue
			}
			indirect, err := reach(dep)
			if err != nil {
				return nil, err
			}
			for _, k := range indirect {
				if _, dup := seen[k]; !dup {
					seen[k] = struct{}{}
					out = append(out, k)
				}
			}
		}
		memo[key] = out
		return out, nil
	}

	for _, node := range g.nodes {
		deps, err := reach(node.Key)
		if err != nil {
			return nil, err
		}
		g.edges[node.Key] = deps
	}
	return g, nil
}

// topoOrder computes a topological order with Kahn's algorithm: repeatedly
// remove nodes whose dependencies are all ordered, in registration order
// for determinism. A shortfall means the remainder forms at least one
// cycle; the error names the unresolved set.
func (g *dependencyGraph) topoOrder() ([]*Declaration, error) {
	inDegree := make(map[ComponentKey]int, len(g.nodes))
	dependents := make(map[ComponentKey][]*Declaration, len(g.nodes))
	byKey := make(map[ComponentKey]*Declaration, len(g.nodes))

	for _, node := range g.nodes {
		byKey[node.Key] = node
		inDegree[node.Key] = len(g.edges[node.Key])
	}
	for _, node := range g.nodes {
		for _, dep := range g.edges[node.Key] {
			dependents[dep] = append(dependents[dep], node)
		}
	}

	queue := make([]*Declaration, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node.Key] == 0 {
			queue = append(queue, node)
		}
	}

	order := make([]*Declaration, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range dependents[node.Key] {
			inDegree[dependent.Key]--
			if inDegree[dependent.Key] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) < len(g.nodes) {
		ordered := make(map[ComponentKey]struct{}, len(order))
		for _, node := range order {
			ordered[node.Key] = struct{}{}
		}
		var unresolved []string
		for _, node := range g.nodes {
			if _, ok := ordered[node.Key]; !ok {
				unresolved = append(unresolved, keyName(node.Key))
			}
		}
		return nil, &CircularDependencyError{Keys: unresolved}
	}
	return order, nil
}

// DotGraph renders the lifecycle dependency graph in dot format, useful
// for inspecting start order during development.
func (c *Container) DotGraph() (string, error) {
	c.mu.Lock()
	g, err := buildDependencyGraph(c.registry, c.profile)
	c.mu.Unlock()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("digraph alloy {\n  rankdir=TB;\n")
	for _, node := range g.nodes {
		fmt.Fprintf(&b, "  %q;\n", keyName(node.Key))
	}
	var lines []string
	for _, node := range g.nodes {
		for _, dep := range g.edges[node.Key] {
			lines = append(lines, fmt.Sprintf("  %q -> %q;\n", keyName(node.Key), keyName(dep)))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		b.WriteString(line)
	}
	b.WriteString("}\n")
	return b.String(), nil
}
