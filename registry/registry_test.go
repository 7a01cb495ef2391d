package registry

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
)

type testObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

func TestRegistryBasic(t *testing.T) {
	var alloc handle.Allocator
	reg := New[string](errors.PhaseRegistry)

	h := alloc.Next()
	if err := reg.Insert(h, "test"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	var got string
	err := reg.With(h, func(v string) error {
		got = v
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if got != "test" {
		t.Fatalf("got %q, want %q", got, "test")
	}

	v, ok := reg.Remove(h)
	if !ok || v != "test" {
		t.Fatalf("Remove = (%q, %v), want (test, true)", v, ok)
	}
	if reg.Len() != 0 {
		t.Fatal("expected empty registry after Remove")
	}
}

func TestRemovedHandleNeverResolves(t *testing.T) {
	var alloc handle.Allocator
	reg := New[int](errors.PhaseRegistry)

	h := alloc.Next()
	if err := reg.Insert(h, 1); err != nil {
		t.Fatal(err)
	}
	reg.Remove(h)

	err := reg.With(h, func(int) error { return nil })
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not_found after removal, got %v", err)
	}
	if _, ok := reg.Remove(h); ok {
		t.Fatal("second Remove should fail")
	}
}

func TestInsertDuplicateRejected(t *testing.T) {
	var alloc handle.Allocator
	reg := New[int](errors.PhaseRegistry)

	h := alloc.Next()
	if err := reg.Insert(h, 1); err != nil {
		t.Fatal(err)
	}
	if err := reg.Insert(h, 2); err == nil {
		t.Fatal("duplicate insert must fail")
	}
}

func TestInsertZeroHandleRejected(t *testing.T) {
	reg := New[int](errors.PhaseRegistry)
	if err := reg.Insert(handle.Invalid, 1); err == nil {
		t.Fatal("zero handle must be rejected")
	}
}

func TestObserver(t *testing.T) {
	var alloc handle.Allocator
	reg := New[string](errors.PhaseRegistry)
	obs := &testObserver{}
	reg.Subscribe(obs)

	h := alloc.Next()
	reg.Insert(h, "x")
	reg.Remove(h)

	if len(obs.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated || obs.events[0].Handle != h {
		t.Fatalf("bad created event: %+v", obs.events[0])
	}
	if obs.events[1].Type != EventDropped {
		t.Fatalf("bad dropped event: %+v", obs.events[1])
	}

	reg.Unsubscribe(obs)
	reg.Insert(alloc.Next(), "y")
	if len(obs.events) != 2 {
		t.Fatal("should not receive events after Unsubscribe")
	}
}

type droppable struct {
	dropped *bool
}

func (d droppable) Drop() { *d.dropped = true }

func TestCloseDropsResources(t *testing.T) {
	var alloc handle.Allocator
	reg := New[droppable](errors.PhaseRegistry)

	dropped := false
	reg.Insert(alloc.Next(), droppable{&dropped})

	if err := reg.Close(); err != nil {
		t.Fatal(err)
	}
	if !dropped {
		t.Fatal("Drop not invoked on Close")
	}

	err := reg.Insert(alloc.Next(), droppable{&dropped})
	if !errors.IsKind(err, errors.KindClosed) {
		t.Fatalf("expected closed error after Close, got %v", err)
	}
}

// A With racing a Remove must see either the live resource or a clean
// not-found, never a half-destroyed value.
func TestWithRemoveRace(t *testing.T) {
	var alloc handle.Allocator
	reg := New[*int](errors.PhaseRegistry)

	const iterations = 500
	for i := 0; i < iterations; i++ {
		h := alloc.Next()
		v := 42
		if err := reg.Insert(h, &v); err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := reg.With(h, func(p *int) error {
				if *p != 42 {
					return stderrors.New("observed corrupt value")
				}
				return nil
			})
			if err != nil && !errors.IsKind(err, errors.KindNotFound) {
				t.Errorf("With: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			reg.Remove(h)
		}()
		wg.Wait()
	}
}

func TestConcurrentInsertRemove(t *testing.T) {
	var alloc handle.Allocator
	reg := New[int](errors.PhaseRegistry)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h := alloc.Next()
				if err := reg.Insert(h, i); err != nil {
					t.Errorf("Insert: %v", err)
					return
				}
				if _, ok := reg.Remove(h); !ok {
					t.Error("Remove of own handle failed")
					return
				}
			}
		}()
	}
	wg.Wait()

	if reg.Len() != 0 {
		t.Fatalf("registry leaked %d entries", reg.Len())
	}
}
