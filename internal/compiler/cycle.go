package compiler

import (
	"sort"

	"github.com/mikapfl/openscm-units/internal/ir"
	"github.com/mikapfl/openscm-units/internal/units"
)

// FindDefinitionCycles reports units whose definitions refer back to
// themselves, directly or through other units and aliases.
//
// The algorithm:
//  1. Build unit -> referenced unit graph from definitions, resolving aliases
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a cycle
//
// Each cycle is returned as a closed path: ["a", "b", "a"]. Only exact names
// and aliases create edges; a prefixed reference ("kg") cannot point back at
// a unit defined in terms of it without also naming it exactly.
func FindDefinitionCycles(defs *ir.Definitions) [][]string {
	graph := buildDefinitionGraph(defs)

	var cycles [][]string
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, reconstructCyclePath(scc, graph))
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// dependencyGraph maps unit -> units its definition refers to.
type dependencyGraph map[string][]string

func buildDefinitionGraph(defs *ir.Definitions) dependencyGraph {
	canonical := make(map[string]bool, len(defs.Units))
	for _, u := range defs.Units {
		canonical[u.Name] = true
	}
	aliases := make(map[string]string, len(defs.Aliases))
	for _, a := range defs.Aliases {
		aliases[a.Alias] = a.Canonical
	}

	graph := make(dependencyGraph, len(defs.Units))
	for _, u := range defs.Units {
		// Initialize with empty slice if no edges (ensures node exists in graph)
		if graph[u.Name] == nil {
			graph[u.Name] = []string{}
		}
		if u.Definition == "" {
			continue
		}
		names, err := units.Names(u.Definition)
		if err != nil {
			continue // reported by Validate as E206
		}
		for _, name := range names {
			if c, ok := aliases[name]; ok {
				name = c
			}
			if canonical[name] {
				graph[u.Name] = append(graph[u.Name], name)
			}
		}
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of unit names.
// Single-node SCCs without self-loops are NOT cycles. Nodes are visited in
// sorted order so the result is deterministic.
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
		// Set the depth index for v
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

		// If v is a root node, pop the stack and create an SCC
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
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath builds a closed path through an SCC, starting at its
// smallest member.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := append([]string(nil), scc...)
	sort.Strings(members)

	sccSet := make(map[string]bool, len(members))
	for _, node := range members {
		sccSet[node] = true
	}

	start := members[0]
	if len(members) == 1 {
		return []string{start, start}
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)

	// Follow edges within SCC until we return to start
	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
