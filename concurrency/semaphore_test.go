package concurrency

import (
	"sync"
	"testing"
	"time"

	"github.com/wippyai/native-host/errors"
)

func TestSemaphoreCreateValidation(t *testing.T) {
	sub := New()
	defer sub.Close()

	if _, err := sub.Semaphores().Create(0, 0); !errors.IsKind(err, errors.KindValidation) {
		t.Fatalf("zero max: got %v, want validation", err)
	}
	if _, err := sub.Semaphores().Create(6, 5); !errors.IsKind(err, errors.KindValidation) {
		t.Fatalf("initial > max: got %v, want validation", err)
	}
	if _, err := sub.Semaphores().Create(0, 1); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
}

// createSemaphore(2, 5): two waits succeed, a third immediate wait fails,
// one signal makes the third wait succeed.
func TestSemaphoreWaitSignalSequence(t *testing.T) {
	sub := New()
	defer sub.Close()

	h, err := sub.Semaphores().Create(2, 5)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		ok, err := sub.Semaphores().Wait(h, 0)
		if err != nil || !ok {
			t.Fatalf("wait %d = (%v, %v), want (true, nil)", i, ok, err)
		}
	}

	ok, err := sub.Semaphores().Wait(h, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("third wait should fail with count exhausted")
	}

	prev, err := sub.Semaphores().Signal(h, 1)
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if prev != 0 {
		t.Fatalf("previous count = %d, want 0", prev)
	}

	ok, err = sub.Semaphores().Wait(h, 0)
	if err != nil || !ok {
		t.Fatalf("wait after signal = (%v, %v), want (true, nil)", ok, err)
	}
}

// A signal that would push the count past max is rejected whole and
// leaves the count unchanged.
func TestSemaphoreSignalOverflow(t *testing.T) {
	sub := New()
	defer sub.Close()

	h, _ := sub.Semaphores().Create(2, 3)

	if _, err := sub.Semaphores().Signal(h, 2); !errors.IsKind(err, errors.KindOverflow) {
		t.Fatalf("got %v, want overflow", err)
	}

	// Count unchanged: exactly two waits must still succeed.
	for i := 0; i < 2; i++ {
		ok, err := sub.Semaphores().Wait(h, 0)
		if err != nil || !ok {
			t.Fatalf("wait %d after rejected signal = (%v, %v)", i, ok, err)
		}
	}
	if ok, _ := sub.Semaphores().Wait(h, 0); ok {
		t.Fatal("overflow signal must not release any permit")
	}
}

func TestSemaphoreSignalReturnsPreviousCount(t *testing.T) {
	sub := New()
	defer sub.Close()

	h, _ := sub.Semaphores().Create(1, 5)

	prev, err := sub.Semaphores().Signal(h, 2)
	if err != nil {
		t.Fatal(err)
	}
	if prev != 1 {
		t.Fatalf("prev = %d, want 1", prev)
	}

	c, _ := sub.Semaphores().Count(h)
	if c != 3 {
		t.Fatalf("count = %d, want 3", c)
	}
}

func TestSemaphoreTimedWaitExpires(t *testing.T) {
	sub := New()
	defer sub.Close()

	h, _ := sub.Semaphores().Create(0, 1)

	start := time.Now()
	ok, err := sub.Semaphores().Wait(h, 50*time.Millisecond)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("wait on empty semaphore succeeded")
	}
	if elapsed < 40*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Fatalf("timed wait took %v, want ~50ms", elapsed)
	}
}

func TestSemaphoreBlockingWaitWokenBySignal(t *testing.T) {
	sub := New()
	defer sub.Close()

	h, _ := sub.Semaphores().Create(0, 1)

	woken := make(chan struct{})
	go func() {
		ok, err := sub.Semaphores().Wait(h, Blocking)
		if err == nil && ok {
			close(woken)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := sub.Semaphores().Signal(h, 1); err != nil {
		t.Fatal(err)
	}

	select {
	case <-woken:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking wait not woken by signal")
	}
}

func TestSemaphoreUnknownHandle(t *testing.T) {
	sub := New()
	defer sub.Close()

	if _, err := sub.Semaphores().Wait(777, 0); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("Wait: got %v, want not_found", err)
	}
	if _, err := sub.Semaphores().Signal(777, 1); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("Signal: got %v, want not_found", err)
	}
}

func TestSemaphoreDestroy(t *testing.T) {
	sub := New()
	defer sub.Close()

	h, _ := sub.Semaphores().Create(1, 1)
	if err := sub.Semaphores().Destroy(h); err != nil {
		t.Fatal(err)
	}
	if _, err := sub.Semaphores().Wait(h, 0); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("Wait after Destroy: got %v, want not_found", err)
	}
	if err := sub.Semaphores().Destroy(h); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("second Destroy: got %v, want not_found", err)
	}
}

// The semaphore bounds concurrent holders at max.
func TestSemaphoreBoundsConcurrency(t *testing.T) {
	sub := New()
	defer sub.Close()

	const max = 4
	h, _ := sub.Semaphores().Create(max, max)

	var inside, peak, violations int64
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				ok, err := sub.Semaphores().Wait(h, Blocking)
				if err != nil || !ok {
					return
				}
				mu.Lock()
				inside++
				if inside > peak {
					peak = inside
				}
				if inside > max {
					violations++
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				if _, err := sub.Semaphores().Signal(h, 1); err != nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	if violations != 0 {
		t.Fatalf("%d holders observed above max %d (peak %d)", violations, max, peak)
	}
}
