package topology

import (
	"github.com/dominikbraun/graph"
)

// super is a virtual vertex connected to every boundary-condition pore so
// that a single traversal can test whether all clusters reach a BC pore.
const super = -1

// IsFullyConnected reports whether the network forms a single cluster. If
// bcPores is non-empty the weaker condition is tested instead: every
// cluster must contain at least one of the given pores, since isolated
// clusters without boundary conditions make the transport system singular.
func IsFullyConnected(np int, conns [][2]int, bcPores []int) bool {
	if np == 0 {
		return false
	}
	g := graph.New(graph.IntHash)
	for i := 0; i < np; i++ {
		_ = g.AddVertex(i)
	}
	for _, c := range conns {
		_ = g.AddEdge(c[0], c[1])
	}
	start := 0
	if len(bcPores) > 0 {
		_ = g.AddVertex(super)
		for _, p := range bcPores {
			_ = g.AddEdge(super, p)
		}
		start = super
	}
	reached := 0
	_ = graph.BFS(g, start, func(v int) bool {
		if v != super {
			reached++
		}
		return false
	})
	return reached == np
}

// ConnectedComponents labels each pore with a cluster id and returns the
// labels along with the number of clusters.
func ConnectedComponents(np int, conns [][2]int) ([]int, int) {
	adj := buildAdjacency(np, conns)
	labels := make([]int, np)
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	queue := make([]int, 0, np)
	for seed := 0; seed < np; seed++ {
		if labels[seed] != -1 {
			continue
		}
		labels[seed] = next
		queue = append(queue[:0], seed)
		for len(queue) > 0 {
			v := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			for _, w := range adj[v] {
				if labels[w] == -1 {
					labels[w] = next
					queue = append(queue, w)
				}
			}
		}
		next++
	}
	return labels, next
}

// FindIsolatedPores returns pores belonging to any cluster other than the
// largest one. Trimming these makes the network fully connected.
func FindIsolatedPores(np int, conns [][2]int) []int {
	labels, n := ConnectedComponents(np, conns)
	if n <= 1 {
		return nil
	}
	sizes := make([]int, n)
	for _, l := range labels {
		sizes[l]++
	}
	biggest := 0
	for i, s := range sizes {
		if s > sizes[biggest] {
			biggest = i
		}
	}
	var iso []int
	for p, l := range labels {
		if l != biggest {
			iso = append(iso, p)
		}
	}
	return iso
}

func buildAdjacency(np int, conns [][2]int) [][]int {
	adj := make([][]int, np)
	for _, c := range conns {
		adj[c[0]] = append(adj[c[0]], c[1])
		adj[c[1]] = append(adj[c[1]], c[0])
	}
	return adj
}
