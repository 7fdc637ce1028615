package pocket

import (
	"errors"
	"sync"
	"testing"
)

func TestHolderEmpty(t *testing.T) {
	var h Holder
	if h.Current() != nil {
		t.Fatal("Expected nil index before Store")
	}
	if _, err := h.Require(); !errors.Is(err, ErrNoIndex) {
		t.Fatalf("Require() error = %v, want ErrNoIndex", err)
	}
}

func TestHolderSwap(t *testing.T) {
	var h Holder
	first := NewIndex([][]string{{"a"}}, 1, 0)
	second := NewIndex([][]string{{"a", "b"}, {"c"}}, 3, 1)

	if prev := h.Store(first); prev != nil {
		t.Errorf("First Store returned %v, want nil", prev)
	}
	if prev := h.Store(second); prev != first {
		t.Error("Second Store should return the first index")
	}
	ix, err := h.Require()
	if err != nil {
		t.Fatalf("Require() error = %v", err)
	}
	if ix.PocketCount() != 2 {
		t.Errorf("PocketCount() = %d, want 2", ix.PocketCount())
	}
}

func TestHolderConcurrentReaders(t *testing.T) {
	var h Holder
	h.Store(NewIndex([][]string{{"a"}}, 1, 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if i == 0 && j%50 == 0 {
					h.Store(NewIndex([][]string{{"a"}, {"b"}}, 2, 0))
					continue
				}
				ix := h.Current()
				// Every published index puts "a" in pocket 0
				if n, ok := ix.PocketOf("a"); !ok || n != 0 {
					t.Errorf("PocketOf(a) = %d, %v", n, ok)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
