package pocket

import (
	"errors"
	"sync/atomic"
)

// ErrNoIndex is returned by query surfaces before the first successful analysis.
var ErrNoIndex = errors.New("no pocket index loaded")

// Holder publishes the current Index to concurrent readers. Store replaces
// the whole index at once, so a reader sees either the old run or the new
// one, never a mix.
type Holder struct {
	current atomic.Pointer[Index]
}

// Current returns the published index, or nil before the first Store.
func (h *Holder) Current() *Index {
	return h.current.Load()
}

// Store publishes ix and returns the index it replaced.
func (h *Holder) Store(ix *Index) *Index {
	return h.current.Swap(ix)
}

// Require returns the published index or ErrNoIndex.
func (h *Holder) Require() (*Index, error) {
	ix := h.current.Load()
	if ix == nil {
		return nil, ErrNoIndex
	}
	return ix, nil
}
