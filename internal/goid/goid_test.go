package goid

import (
	"sync"
	"testing"
)

func TestCurrentNonZero(t *testing.T) {
	if Current() == 0 {
		t.Fatal("expected non-zero goroutine id")
	}
}

func TestCurrentStable(t *testing.T) {
	a := Current()
	b := Current()
	if a != b {
		t.Fatalf("id changed within one goroutine: %d then %d", a, b)
	}
}

func TestCurrentDistinct(t *testing.T) {
	main := Current()

	const n = 50
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- Current()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{main: true}
	for id := range ids {
		if id == 0 {
			t.Fatal("zero id from spawned goroutine")
		}
		if seen[id] {
			t.Fatalf("duplicate goroutine id %d", id)
		}
		seen[id] = true
	}
}
