package pocket

import (
	"testing"

	"github.com/dd0wney/cluso-pockets/pkg/topology"
)

// edge is shorthand for a test edge record
type edge struct {
	a, b  string
	codes []topology.CurvatureCode
}

func concave(a, b string) edge { return edge{a, b, []topology.CurvatureCode{topology.Concave}} }
func convex(a, b string) edge  { return edge{a, b, []topology.CurvatureCode{topology.Convex}} }

// newSnapshot builds a snapshot from entity ids and edges
func newSnapshot(ids []string, edges ...edge) *topology.Snapshot {
	snap := &topology.Snapshot{}
	for _, id := range ids {
		snap.Entities = append(snap.Entities, topology.Entity{EntityID: id})
	}
	for _, e := range edges {
		snap.Edges = append(snap.Edges, topology.EdgeRecord{EntityA: e.a, EntityB: e.b, Codes: e.codes})
	}
	return snap
}

func mustAnalyze(t *testing.T, snap *topology.Snapshot, opts ...Option) *Index {
	t.Helper()
	ix, err := Analyze(snap, opts...)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return ix
}

func assertPocket(t *testing.T, ix *Index, id string, want int) {
	t.Helper()
	got, ok := ix.PocketOf(id)
	if !ok {
		t.Errorf("PocketOf(%q) = none, want %d", id, want)
		return
	}
	if got != want {
		t.Errorf("PocketOf(%q) = %d, want %d", id, got, want)
	}
}

func assertNoPocket(t *testing.T, ix *Index, id string) {
	t.Helper()
	if n, ok := ix.PocketOf(id); ok {
		t.Errorf("PocketOf(%q) = %d, want none", id, n)
	}
	if ix.IsInPocket(id) {
		t.Errorf("IsInPocket(%q) = true, want false", id)
	}
}
