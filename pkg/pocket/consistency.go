package pocket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-pockets/pkg/topology"
)

// ErrInconsistentTopology reports concave pairs the neighbour graph does not list.
var ErrInconsistentTopology = errors.New("edge table disagrees with adjacency graph")

// NeighborMismatch is a concave pair missing from the neighbour graph.
type NeighborMismatch struct {
	EntityA string `json:"entityA"`
	EntityB string `json:"entityB"`
}

// CheckNeighborGraph returns every concave pair whose entities are not listed
// as neighbours of each other, in either direction. It returns nil when the
// snapshot has no neighbour graph.
func CheckNeighborGraph(snap *topology.Snapshot) []NeighborMismatch {
	if snap == nil || !snap.HasNeighborGraph() {
		return nil
	}

	lists := func(from, to string) bool {
		for _, n := range snap.Neighbors[from] {
			if n == to {
				return true
			}
		}
		return false
	}

	var out []NeighborMismatch
	for _, rec := range snap.Edges {
		if !rec.HasConcave() || rec.EntityA == rec.EntityB {
			continue
		}
		if !lists(rec.EntityA, rec.EntityB) && !lists(rec.EntityB, rec.EntityA) {
			out = append(out, NeighborMismatch{EntityA: rec.EntityA, EntityB: rec.EntityB})
		}
	}
	return out
}

// mismatchError summarises mismatches, naming at most the first five.
func mismatchError(ms []NeighborMismatch) error {
	const shown = 5
	parts := make([]string, 0, shown)
	for i, m := range ms {
		if i == shown {
			break
		}
		parts = append(parts, m.EntityA+"|"+m.EntityB)
	}
	more := ""
	if len(ms) > shown {
		more = fmt.Sprintf(" and %d more", len(ms)-shown)
	}
	return fmt.Errorf("%w: %d concave pairs not neighbours (%s%s)",
		ErrInconsistentTopology, len(ms), strings.Join(parts, ", "), more)
}
