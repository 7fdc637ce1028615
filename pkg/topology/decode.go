package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-pockets/pkg/validation"
)

// DecodeOptions controls how dump contents are interpreted.
type DecodeOptions struct {
	// Delimiter joins the two ids of an edge table key. Defaults to "-".
	Delimiter string
}

// Decode builds a snapshot from the three dump streams. edges and neighbors
// may be nil: a missing edge table yields no edges, a missing neighbor graph
// leaves Snapshot.Neighbors nil.
func Decode(entities, edges, neighbors io.Reader, opts DecodeOptions) (*Snapshot, error) {
	if entities == nil {
		return nil, ErrMissingEntities
	}

	ents, err := DecodeEntities(entities)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Entities: ents}

	if neighbors != nil {
		snap.Neighbors, err = DecodeNeighbors(neighbors)
		if err != nil {
			return nil, err
		}
	}

	if edges != nil {
		parser := NewPairKeyParser(opts.Delimiter, knownIDs(snap))
		snap.Edges, err = DecodeEdges(edges, parser)
		if err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// knownIDs collects every id the dumps declare outside the edge table.
func knownIDs(snap *Snapshot) []string {
	ids := snap.EntityIDs()
	for id, ns := range snap.Neighbors {
		ids = append(ids, id)
		ids = append(ids, ns...)
	}
	return ids
}

// DecodeEntities reads the entity geometry array and validates every record.
func DecodeEntities(r io.Reader) ([]Entity, error) {
	var ents []Entity
	if err := json.NewDecoder(r).Decode(&ents); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, NewError("entities").Cause(fmt.Errorf("decode: %w", err)).Err()
	}

	seen := make(map[string]int, len(ents))
	for i := range ents {
		if err := validation.ValidateStruct(&ents[i]); err != nil {
			return nil, NewError("entities").Index(i).
				Cause(fmt.Errorf("%w: %v", ErrInvalidEntity, err)).Err()
		}
		id := ents[i].EntityID
		if first, dup := seen[id]; dup {
			return nil, NewError("entities").Key(id).
				Cause(fmt.Errorf("%w: records %d and %d", ErrDuplicateEntity, first, i)).Err()
		}
		seen[id] = i
	}
	return ents, nil
}

// DecodeNeighbors reads the curvature-independent adjacency graph.
func DecodeNeighbors(r io.Reader) (map[string][]string, error) {
	graph := make(map[string][]string)
	if err := json.NewDecoder(r).Decode(&graph); err != nil {
		if errors.Is(err, io.EOF) {
			return graph, nil
		}
		return nil, NewError("neighbors").Cause(fmt.Errorf("decode: %w", err)).Err()
	}
	if graph == nil {
		graph = make(map[string][]string)
	}
	return graph, nil
}

// DecodeEdges reads the edge classification table. Two layouts are accepted:
// an object keyed by pair key, or an array of explicit
// {"entityA","entityB","codes"} records. Records naming the same unordered
// pair are merged, including literal duplicate keys in the object layout.
func DecodeEdges(r io.Reader, parser *PairKeyParser) ([]EdgeRecord, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, NewError("edges").Cause(fmt.Errorf("decode: %w", err)).Err()
	}

	table := newEdgeTable()

	switch tok {
	case nil:
		return nil, nil
	case json.Delim('{'):
		if err := decodeKeyedEdges(dec, parser, table); err != nil {
			return nil, err
		}
	case json.Delim('['):
		if err := decodeRecordEdges(dec, table); err != nil {
			return nil, err
		}
	default:
		return nil, NewError("edges").Cause(fmt.Errorf("unexpected token %v", tok)).Err()
	}

	return table.records(), nil
}

func decodeKeyedEdges(dec *json.Decoder, parser *PairKeyParser, table *edgeTable) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return NewError("edges").Cause(fmt.Errorf("decode: %w", err)).Err()
		}
		key, ok := tok.(string)
		if !ok {
			return NewError("edges").Cause(fmt.Errorf("unexpected token %v", tok)).Err()
		}

		var raw []int
		if err := dec.Decode(&raw); err != nil {
			return NewError("edges").Key(key).Cause(fmt.Errorf("decode codes: %w", err)).Err()
		}
		codes, err := toCodes(raw)
		if err != nil {
			return NewError("edges").Key(key).Cause(err).Err()
		}

		a, b, err := parser.Parse(key)
		if err != nil {
			return err
		}
		table.add(a, b, codes)
	}
	if _, err := dec.Token(); err != nil {
		return NewError("edges").Cause(fmt.Errorf("decode: %w", err)).Err()
	}
	return nil
}

// edgeRecordJSON mirrors EdgeRecord with raw codes so range errors are ours.
type edgeRecordJSON struct {
	EntityA string `json:"entityA"`
	EntityB string `json:"entityB"`
	Codes   []int  `json:"codes"`
}

func decodeRecordEdges(dec *json.Decoder, table *edgeTable) error {
	for i := 0; dec.More(); i++ {
		var rec edgeRecordJSON
		if err := dec.Decode(&rec); err != nil {
			return NewError("edges").Index(i).Cause(fmt.Errorf("decode: %w", err)).Err()
		}
		if rec.EntityA == "" || rec.EntityB == "" {
			return NewError("edges").Index(i).Cause(ErrInvalidPairKey).Err()
		}
		codes, err := toCodes(rec.Codes)
		if err != nil {
			return NewError("edges").Index(i).Cause(err).Err()
		}
		table.add(rec.EntityA, rec.EntityB, codes)
	}
	if _, err := dec.Token(); err != nil {
		return NewError("edges").Cause(fmt.Errorf("decode: %w", err)).Err()
	}
	return nil
}

func toCodes(raw []int) ([]CurvatureCode, error) {
	codes := make([]CurvatureCode, len(raw))
	for i, v := range raw {
		c := CurvatureCode(v)
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %d at position %d", ErrInvalidCode, v, i)
		}
		codes[i] = c
	}
	return codes, nil
}

// edgeTable merges records by unordered pair, keeping first-appearance order.
type edgeTable struct {
	order []pair
	byKey map[pair]*EdgeRecord
}

func newEdgeTable() *edgeTable {
	return &edgeTable{byKey: make(map[pair]*EdgeRecord)}
}

func (t *edgeTable) add(a, b string, codes []CurvatureCode) {
	k := makePair(a, b)
	if rec, ok := t.byKey[k]; ok {
		rec.Codes = append(rec.Codes, codes...)
		return
	}
	t.order = append(t.order, k)
	t.byKey[k] = &EdgeRecord{EntityA: a, EntityB: b, Codes: append([]CurvatureCode(nil), codes...)}
}

func (t *edgeTable) records() []EdgeRecord {
	out := make([]EdgeRecord, len(t.order))
	for i, k := range t.order {
		out[i] = *t.byKey[k]
	}
	return out
}
