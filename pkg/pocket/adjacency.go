package pocket

import (
	"github.com/dd0wney/cluso-pockets/pkg/topology"
)

// Adjacency is the concave-only neighbour relation of a snapshot. It is
// symmetric: every link is stored under both of its entities.
type Adjacency struct {
	order     []string
	neighbors map[string][]string
	links     int
}

// BuildAdjacency registers a link for every edge record carrying at least one
// concave code and ignores the rest.
//
// Nodes() enumerates entities in entity-list order, followed by ids that only
// appear in edge records, in order of first appearance.
func BuildAdjacency(snap *topology.Snapshot) *Adjacency {
	adj := &Adjacency{neighbors: make(map[string][]string)}
	if snap == nil {
		return adj
	}

	type link struct{ a, b string }
	seen := make(map[link]struct{})
	var edgeOnly []string

	touch := func(id string) {
		if _, ok := adj.neighbors[id]; !ok {
			adj.neighbors[id] = nil
			edgeOnly = append(edgeOnly, id)
		}
	}

	for _, rec := range snap.Edges {
		if !rec.HasConcave() {
			continue
		}
		a, b := rec.EntityA, rec.EntityB
		if b < a {
			a, b = b, a
		}
		if _, dup := seen[link{a, b}]; dup {
			continue
		}
		seen[link{a, b}] = struct{}{}

		touch(a)
		touch(b)
		adj.neighbors[a] = append(adj.neighbors[a], b)
		if a != b {
			adj.neighbors[b] = append(adj.neighbors[b], a)
		}
		adj.links++
	}

	listed := make(map[string]struct{}, len(snap.Entities))
	adj.order = make([]string, 0, len(adj.neighbors))
	for _, e := range snap.Entities {
		if _, ok := adj.neighbors[e.EntityID]; ok {
			if _, dup := listed[e.EntityID]; !dup {
				adj.order = append(adj.order, e.EntityID)
				listed[e.EntityID] = struct{}{}
			}
		}
	}
	for _, id := range edgeOnly {
		if _, ok := listed[id]; !ok {
			adj.order = append(adj.order, id)
		}
	}

	return adj
}

// Nodes returns every entity with at least one concave link.
func (a *Adjacency) Nodes() []string {
	return append([]string(nil), a.order...)
}

// Neighbors returns the entities concave-adjacent to id. An entity with a
// self-referential record lists itself.
func (a *Adjacency) Neighbors(id string) []string {
	return append([]string(nil), a.neighbors[id]...)
}

// Adjacent reports whether x and y share a concave link.
func (a *Adjacency) Adjacent(x, y string) bool {
	for _, n := range a.neighbors[x] {
		if n == y {
			return true
		}
	}
	return false
}

// Len returns the number of adjacency-bearing entities.
func (a *Adjacency) Len() int {
	return len(a.order)
}

// Links returns the number of distinct concave entity pairs.
func (a *Adjacency) Links() int {
	return a.links
}
