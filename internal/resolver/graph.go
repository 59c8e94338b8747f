// Package resolver implements the stages that run between the two media
// variables passes: custom media expansion, custom property substitution and
// calc() reduction.
package resolver

import (
	"fmt"
	"slices"

	"bennypowers.dev/mediavars/internal/collections"
)

// DependencyGraph represents a directed graph of named definitions
type DependencyGraph struct {
	// adjacency list: name -> names it depends on
	dependencies map[string][]string
	// reverse lookup: name -> names that depend on it
	dependents map[string][]string
	// all definition names in the graph
	nodes collections.Set[string]
}

// BuildDependencyGraph builds a dependency graph from definitions. refs
// extracts the names a value refers to; references to names without a
// definition are not edges.
func BuildDependencyGraph(defs map[string]string, refs func(string) []string) *DependencyGraph {
	graph := &DependencyGraph{
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
		nodes:        collections.NewSet[string](),
	}

	for name := range defs {
		graph.nodes.Add(name)
	}

	for _, name := range graph.sortedNodes() {
		for _, dep := range refs(defs[name]) {
			if !graph.nodes.Has(dep) || slices.Contains(graph.dependencies[name], dep) {
				continue
			}
			graph.dependencies[name] = append(graph.dependencies[name], dep)
			graph.dependents[dep] = append(graph.dependents[dep], name)
		}
	}

	return graph
}

// sortedNodes returns node names in lexical order so traversals are stable
func (g *DependencyGraph) sortedNodes() []string {
	return collections.Sorted(g.nodes)
}

// GetDependencies returns the names the given definition depends on
func (g *DependencyGraph) GetDependencies(name string) []string {
	if deps, ok := g.dependencies[name]; ok {
		return deps
	}
	return []string{}
}

// GetDependents returns the names that depend on the given definition
func (g *DependencyGraph) GetDependents(name string) []string {
	if deps, ok := g.dependents[name]; ok {
		return deps
	}
	return []string{}
}

// Remove deletes a definition and every edge touching it
func (g *DependencyGraph) Remove(name string) {
	for _, dependent := range g.dependents[name] {
		g.dependencies[dependent] = slices.DeleteFunc(g.dependencies[dependent], func(dep string) bool {
			return dep == name
		})
	}
	for _, dep := range g.dependencies[name] {
		g.dependents[dep] = slices.DeleteFunc(g.dependents[dep], func(d string) bool {
			return d == name
		})
	}
	delete(g.dependencies, name)
	delete(g.dependents, name)
	g.nodes.Delete(name)
}

// HasCycle returns true if the graph contains a circular dependency
func (g *DependencyGraph) HasCycle() bool {
	return g.FindCycle() != nil
}

// FindCycle returns the cycle path if one exists, or nil if no cycle.
// The path starts and ends with the same name.
func (g *DependencyGraph) FindCycle() []string {
	visited := collections.NewSet[string]()
	recStack := collections.NewSet[string]()

	for _, node := range g.sortedNodes() {
		if cycle := g.findCycleDFS(node, visited, recStack, nil); cycle != nil {
			return cycle
		}
	}

	return nil
}

// findCycleDFS finds a cycle and returns the path
func (g *DependencyGraph) findCycleDFS(node string, visited, recStack collections.Set[string], path []string) []string {
	if recStack.Has(node) {
		// node was pushed onto path when it entered recStack
		cycleStart := slices.Index(path, node)
		if cycleStart == -1 {
			panic(fmt.Sprintf("cycle detection invariant violated: node %q in recStack but not in path %v", node, path))
		}
		return append(slices.Clone(path[cycleStart:]), node)
	}
	if visited.Has(node) {
		return nil
	}

	visited.Add(node)
	recStack.Add(node)
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	recStack.Delete(node)
	return nil
}

// TopologicalSort returns names in dependency order (dependencies first)
// Returns error if graph contains a cycle
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, NewCircularReferenceError("definition", cycle)
	}

	visited := collections.NewSet[string]()
	result := []string{}

	for _, node := range g.sortedNodes() {
		if !visited.Has(node) {
			g.topologicalSortDFS(node, visited, &result)
		}
	}

	return result, nil
}

// topologicalSortDFS performs DFS for topological sort
func (g *DependencyGraph) topologicalSortDFS(node string, visited collections.Set[string], stack *[]string) {
	visited.Add(node)

	for _, dep := range g.dependencies[node] {
		if !visited.Has(dep) {
			g.topologicalSortDFS(dep, visited, stack)
		}
	}

	*stack = append(*stack, node)
}

// breakCycles removes every definition taking part in a reference cycle
// from graph and defs, calling report once per cycle. It returns the
// removed names.
func breakCycles(graph *DependencyGraph, defs map[string]string, kind string, report func(err error, chain []string)) collections.Set[string] {
	removed := collections.NewSet[string]()
	for cycle := graph.FindCycle(); cycle != nil; cycle = graph.FindCycle() {
		report(NewCircularReferenceError(kind, cycle), cycle)
		for _, name := range cycle[:len(cycle)-1] {
			graph.Remove(name)
			delete(defs, name)
			removed.Add(name)
		}
	}
	return removed
}
