package topology

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const threeEntities = `[
	{"entityId": "E1", "entityType": 0, "area": 12.5},
	{"entityId": "E2", "entityType": 1, "centerPoint": [0, 1, 2]},
	{"entityId": "E3", "entityType": 3,
	 "edgeCurveChains": [{"edgeType": 1, "edgeCurves": [{"startPoint": [0,0,0], "endPoint": [1,0,0]}]}]}
]`

func TestDecode_KeyedEdges(t *testing.T) {
	snap, err := Decode(
		strings.NewReader(threeEntities),
		strings.NewReader(`{"E1-E2": [0], "E2-E3": [1, 2]}`),
		nil,
		DecodeOptions{},
	)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := snap.EntityIDs(); !cmp.Equal(got, []string{"E1", "E2", "E3"}) {
		t.Errorf("EntityIDs() = %v", got)
	}

	want := []EdgeRecord{
		{EntityA: "E1", EntityB: "E2", Codes: []CurvatureCode{Concave}},
		{EntityA: "E2", EntityB: "E3", Codes: []CurvatureCode{Convex, Tangential}},
	}
	if diff := cmp.Diff(want, snap.Edges); diff != "" {
		t.Errorf("Edges mismatch (-want +got):\n%s", diff)
	}
	if snap.HasNeighborGraph() {
		t.Error("HasNeighborGraph() = true without neighbor input")
	}
	if snap.Entities[2].EdgeCurveChains[0].EdgeType != EdgeTypeInner {
		t.Errorf("Geometry not carried through: %+v", snap.Entities[2])
	}
}

func TestDecode_RecordEdges(t *testing.T) {
	snap, err := Decode(
		strings.NewReader(`[{"entityId": "a-b"}, {"entityId": "c-d"}]`),
		strings.NewReader(`[{"entityA": "a-b", "entityB": "c-d", "codes": [1, 0]}]`),
		nil,
		DecodeOptions{},
	)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := []EdgeRecord{{EntityA: "a-b", EntityB: "c-d", Codes: []CurvatureCode{Convex, Concave}}}
	if diff := cmp.Diff(want, snap.Edges); diff != "" {
		t.Errorf("Edges mismatch (-want +got):\n%s", diff)
	}
	if !snap.Edges[0].HasConcave() {
		t.Error("HasConcave() = false for mixed record")
	}
}

func TestDecode_DuplicatePairsMerge(t *testing.T) {
	// Literal duplicate key, and the reversed pair, both fold into the first record.
	edges := `{"E1-E2": [1], "E1-E2": [2], "E2-E1": [0], "E2-E3": [1]}`
	snap, err := Decode(strings.NewReader(threeEntities), strings.NewReader(edges), nil, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(snap.Edges) != 2 {
		t.Fatalf("Expected 2 merged records, got %d: %+v", len(snap.Edges), snap.Edges)
	}
	want := EdgeRecord{EntityA: "E1", EntityB: "E2", Codes: []CurvatureCode{Convex, Tangential, Concave}}
	if diff := cmp.Diff(want, snap.Edges[0]); diff != "" {
		t.Errorf("Merged record mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_AmbiguousKeyResolvedByNeighbors(t *testing.T) {
	snap, err := Decode(
		strings.NewReader(`[]`),
		strings.NewReader(`{"x-y-z": [0]}`),
		strings.NewReader(`{"x-y": ["z"], "z": ["x-y"]}`),
		DecodeOptions{},
	)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if snap.Edges[0].EntityA != "x-y" || snap.Edges[0].EntityB != "z" {
		t.Errorf("Unexpected split: %+v", snap.Edges[0])
	}
	if !snap.HasNeighborGraph() {
		t.Error("HasNeighborGraph() = false")
	}
}

func TestDecode_EmptyEdgeTables(t *testing.T) {
	for name, edges := range map[string]string{
		"empty object": `{}`,
		"empty array":  `[]`,
		"null":         `null`,
		"empty file":   ``,
	} {
		t.Run(name, func(t *testing.T) {
			snap, err := Decode(strings.NewReader(threeEntities), strings.NewReader(edges), nil, DecodeOptions{})
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(snap.Edges) != 0 {
				t.Errorf("Expected no edges, got %v", snap.Edges)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		entities  string
		edges     string
		wantErrIs error
	}{
		{"invalid code", threeEntities, `{"E1-E2": [4]}`, ErrInvalidCode},
		{"ambiguous key", `[]`, `{"a-b-c": [0]}`, ErrAmbiguousPairKey},
		{"key without delimiter", threeEntities, `{"E1E2": [0]}`, ErrInvalidPairKey},
		{"record missing side", threeEntities, `[{"entityA": "E1", "codes": [0]}]`, ErrInvalidPairKey},
		{"duplicate entity", `[{"entityId": "E1"}, {"entityId": "E1"}]`, `{}`, ErrDuplicateEntity},
		{"empty entity id", `[{"entityId": ""}]`, `{}`, ErrInvalidEntity},
		{"bad entity type", `[{"entityId": "E1", "entityType": 9}]`, `{}`, ErrInvalidEntity},
		{"bad edge type", `[{"entityId": "E1", "edgeCurveChains": [{"edgeType": 5}]}]`, `{}`, ErrInvalidEntity},
		{"edges not json", threeEntities, `{"E1-E2": "concave"}`, ErrMalformedTopology},
		{"edges wrong shape", threeEntities, `42`, ErrMalformedTopology},
		{"entities not json", `{`, `{}`, ErrMalformedTopology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.entities), strings.NewReader(tt.edges), nil, DecodeOptions{})
			if !errors.Is(err, tt.wantErrIs) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErrIs)
			}
			if !IsMalformed(err) {
				t.Errorf("IsMalformed(%v) = false", err)
			}
		})
	}
}

func TestDecode_NilEntities(t *testing.T) {
	if _, err := Decode(nil, nil, nil, DecodeOptions{}); !errors.Is(err, ErrMissingEntities) {
		t.Errorf("Decode(nil) error = %v, want ErrMissingEntities", err)
	}
}

func TestMalformedTopologyErrorMessage(t *testing.T) {
	err := NewError("edges").Key("a-b-c").Cause(ErrAmbiguousPairKey).Err()
	if !strings.Contains(err.Error(), `"a-b-c"`) {
		t.Errorf("Error() = %q, want key included", err.Error())
	}
	err = NewError("entities").Index(3).Cause(ErrInvalidEntity).Err()
	if !strings.Contains(err.Error(), "record 3") {
		t.Errorf("Error() = %q, want index included", err.Error())
	}
}
