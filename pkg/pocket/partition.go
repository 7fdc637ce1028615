package pocket

import (
	"sort"
)

// Partition splits the adjacency-bearing entities into connected components.
// Components are returned in discovery order (the order of Nodes()), each
// with its members sorted.
//
// Traversal is breadth-first with an explicit queue, so chain length is
// bounded by memory rather than stack depth. Entities are marked visited when
// enqueued, which also makes self-links harmless.
func Partition(adj *Adjacency) [][]string {
	visited := make(map[string]bool, adj.Len())
	components := make([][]string, 0)

	var queue []string
	for _, root := range adj.order {
		if visited[root] {
			continue
		}

		component := make([]string, 0, 1)
		queue = append(queue[:0], root)
		visited[root] = true

		for head := 0; head < len(queue); head++ {
			id := queue[head]
			component = append(component, id)

			for _, n := range adj.neighbors[id] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		sort.Strings(component)
		components = append(components, component)
	}

	return components
}
