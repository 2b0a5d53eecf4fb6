package registry

import (
	"sort"
	"strings"
)

// dependencyGraph maps view name → names of the views it depends on
type dependencyGraph map[string][]string

// sortedNodes returns graph nodes in name order so every traversal is deterministic
func (g dependencyGraph) sortedNodes() []string {
	nodes := make([]string, 0, len(g))
	for node := range g {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// findCycle returns one dependency cycle as a closed path (first node repeated last), or nil for a DAG.
//
// Strongly connected components are found with Tarjan's algorithm; any component with more than one
// node, or a single node depending on itself, contains a cycle.
func findCycle(graph dependencyGraph) []string {
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			return cyclePath(scc, graph)
		}
	}
	return nil
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, dep := range graph[node] {
		if dep == node {
			return true
		}
	}
	return false
}

func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.sortedNodes() {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cyclePath walks from the smallest node of a cyclic component back to itself
func cyclePath(scc []string, graph dependencyGraph) []string {
	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}
	start := scc[0]

	visited := make(map[string]bool)
	var path []string
	var walk func(string) bool
	walk = func(node string) bool {
		path = append(path, node)
		visited[node] = true
		for _, dep := range graph[node] {
			if !inSCC[dep] {
				continue
			}
			if dep == start {
				path = append(path, start)
				return true
			}
			if !visited[dep] && walk(dep) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if walk(start) {
		return path
	}
	return append([]string(nil), scc...)
}

func formatCycle(path []string) string {
	return strings.Join(path, " -> ")
}

// topologicalSort orders nodes so that dependencies come first (Kahn's algorithm).
// Among nodes that are ready at the same time the smallest name goes first.
func topologicalSort(graph dependencyGraph) []string {
	remaining := make(map[string]int, len(graph))
	dependents := make(map[string][]string, len(graph))
	for node, deps := range graph {
		remaining[node] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], node)
		}
	}

	var ready []string
	for _, node := range graph.sortedNodes() {
		if remaining[node] == 0 {
			ready = append(ready, node)
		}
	}

	order := make([]string, 0, len(graph))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)

		for _, dependent := range dependents[node] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = insertSorted(ready, dependent)
			}
		}
	}

	return order
}

func insertSorted(nodes []string, node string) []string {
	i := sort.SearchStrings(nodes, node)
	nodes = append(nodes, "")
	copy(nodes[i+1:], nodes[i:])
	nodes[i] = node
	return nodes
}
