package topology

import (
	"fmt"
)

// CurvatureCode classifies one curve segment shared by two entities.
type CurvatureCode int

const (
	Concave CurvatureCode = iota
	Convex
	Tangential
)

// String returns the dump-format name of the code
func (c CurvatureCode) String() string {
	switch c {
	case Concave:
		return "CONCAVE"
	case Convex:
		return "CONVEX"
	case Tangential:
		return "TANGENTIAL"
	default:
		return fmt.Sprintf("CurvatureCode(%d)", int(c))
	}
}

// Valid reports whether c is one of the three known codes.
func (c CurvatureCode) Valid() bool {
	return c >= Concave && c <= Tangential
}

// EntityType is the surface kind of an entity. It is decoded but never interpreted.
type EntityType int

const (
	EntityTypePlane EntityType = iota
	EntityTypeCylinder
	EntityTypeRotational
	EntityTypeNURBS
)

// EdgeType marks a curve chain as the outer loop or an inner loop of a face.
type EdgeType int

const (
	EdgeTypeOuter EdgeType = iota
	EdgeTypeInner
)

// Entity is a face of the solid. Only EntityID matters to pocket detection;
// the geometric fields are carried through for clients that render them.
type Entity struct {
	EntityID        string           `json:"entityId" validate:"required"`
	EntityType      EntityType       `json:"entityType" validate:"min=0,max=3"`
	CenterUV        []float64        `json:"centerUv,omitempty"`
	CenterPoint     []float64        `json:"centerPoint,omitempty"`
	CenterNormal    []float64        `json:"centerNormal,omitempty"`
	Area            float64          `json:"area,omitempty"`
	MinRadius       float64          `json:"minRadius,omitempty"`
	MinPosRadius    float64          `json:"minPosRadius,omitempty"`
	MinNegRadius    float64          `json:"minNegRadius,omitempty"`
	EdgeCurveChains []EdgeCurveChain `json:"edgeCurveChains,omitempty" validate:"dive"`
}

// EdgeCurveChain is one boundary loop of an entity.
type EdgeCurveChain struct {
	EdgeType   EdgeType    `json:"edgeType" validate:"min=0,max=1"`
	EdgeCurves []EdgeCurve `json:"edgeCurves,omitempty"`
}

// EdgeCurve is a single boundary curve sampled at three points.
type EdgeCurve struct {
	StartPoint       []float64 `json:"startPoint,omitempty"`
	MidPoint         []float64 `json:"midPoint,omitempty"`
	EndPoint         []float64 `json:"endPoint,omitempty"`
	StartPointNormal []float64 `json:"startPointNormal,omitempty"`
}

// EdgeRecord describes the shared boundary of two entities, one code per
// shared curve segment. The pair is unordered.
type EdgeRecord struct {
	EntityA string          `json:"entityA"`
	EntityB string          `json:"entityB"`
	Codes   []CurvatureCode `json:"codes"`
}

// HasConcave reports whether any shared segment is concave.
func (r EdgeRecord) HasConcave() bool {
	for _, c := range r.Codes {
		if c == Concave {
			return true
		}
	}
	return false
}

// pair is the order-independent key of an edge record.
type pair struct{ lo, hi string }

func makePair(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{lo: a, hi: b}
}

// Snapshot is an immutable, fully decoded model topology.
type Snapshot struct {
	// Entities in dump order.
	Entities []Entity
	// Edges in order of first appearance, one record per unordered pair.
	Edges []EdgeRecord
	// Neighbors is the optional full adjacency graph, independent of curvature.
	// Nil when the dump did not include one.
	Neighbors map[string][]string
}

// EntityIDs returns the entity identifiers in dump order.
func (s *Snapshot) EntityIDs() []string {
	ids := make([]string, len(s.Entities))
	for i, e := range s.Entities {
		ids[i] = e.EntityID
	}
	return ids
}

// HasNeighborGraph reports whether the optional adjacency graph was supplied.
func (s *Snapshot) HasNeighborGraph() bool {
	return s.Neighbors != nil
}
