package pocket

import (
	"time"

	"github.com/google/uuid"
)

// Pocket is one connected group of concave-adjacent entities.
type Pocket struct {
	Index    int      `json:"index"`
	Entities []string `json:"entities"`
	Color    string   `json:"color"`
}

// Size returns the number of member entities.
func (p Pocket) Size() int {
	return len(p.Entities)
}

// Stats summarises one analysis run.
type Stats struct {
	Entities          int `json:"entities"`
	ConcaveLinks      int `json:"concaveLinks"`
	Pockets           int `json:"pockets"`
	EntitiesInPockets int `json:"entitiesInPockets"`
	LargestPocket     int `json:"largestPocket"`
	Singletons        int `json:"singletons"`
}

// Index answers pocket queries for one analysis run. It is never modified
// after NewIndex returns, so any number of goroutines may query it.
type Index struct {
	runID     string
	createdAt time.Time
	pockets   []Pocket
	pocketOf  map[string]int
	stats     Stats
}

// NewIndex numbers the components 0..n-1 in the given order.
// entityCount is the size of the entity list and only feeds Stats.
func NewIndex(components [][]string, entityCount, concaveLinks int) *Index {
	colors := Palette(len(components))

	ix := &Index{
		runID:     uuid.New().String(),
		createdAt: time.Now(),
		pockets:   make([]Pocket, len(components)),
		pocketOf:  make(map[string]int),
		stats: Stats{
			Entities:     entityCount,
			ConcaveLinks: concaveLinks,
			Pockets:      len(components),
		},
	}

	for n, members := range components {
		ix.pockets[n] = Pocket{
			Index:    n,
			Entities: append([]string(nil), members...),
			Color:    colors[n],
		}
		for _, id := range members {
			ix.pocketOf[id] = n
		}

		ix.stats.EntitiesInPockets += len(members)
		if len(members) > ix.stats.LargestPocket {
			ix.stats.LargestPocket = len(members)
		}
		if len(members) == 1 {
			ix.stats.Singletons++
		}
	}

	return ix
}

// PocketCount returns the number of pockets found.
func (ix *Index) PocketCount() int {
	return len(ix.pockets)
}

// PocketOf returns the pocket index of an entity. ok is false when the
// entity is in no pocket, including ids the model never mentioned.
func (ix *Index) PocketOf(entityID string) (n int, ok bool) {
	n, ok = ix.pocketOf[entityID]
	return n, ok
}

// IsInPocket reports whether the entity belongs to any pocket.
func (ix *Index) IsInPocket(entityID string) bool {
	_, ok := ix.pocketOf[entityID]
	return ok
}

// Pocket returns a copy of pocket n.
func (ix *Index) Pocket(n int) (Pocket, bool) {
	if n < 0 || n >= len(ix.pockets) {
		return Pocket{}, false
	}
	return copyPocket(ix.pockets[n]), true
}

// Pockets returns copies of all pockets in index order.
func (ix *Index) Pockets() []Pocket {
	out := make([]Pocket, len(ix.pockets))
	for i, p := range ix.pockets {
		out[i] = copyPocket(p)
	}
	return out
}

// Color returns the display colour for an entity.
func (ix *Index) Color(entityID string) string {
	if n, ok := ix.pocketOf[entityID]; ok {
		return ix.pockets[n].Color
	}
	return NoPocketColor
}

// RunID identifies this analysis run. Pocket numbers are only meaningful
// together with the run that produced them.
func (ix *Index) RunID() string {
	return ix.runID
}

// CreatedAt returns when the index was built.
func (ix *Index) CreatedAt() time.Time {
	return ix.createdAt
}

// Stats returns the run summary.
func (ix *Index) Stats() Stats {
	return ix.stats
}

func copyPocket(p Pocket) Pocket {
	p.Entities = append([]string(nil), p.Entities...)
	return p
}
