package nativehost

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/wippyai/native-host/errors"
)

func TestHandlesAreUniqueAcrossSubsystems(t *testing.T) {
	sys := New(WithLogger(zaptest.NewLogger(t)))
	defer sys.Close()

	seen := map[uint64]string{}
	record := func(h uint64, kind string) {
		if prev, dup := seen[h]; dup {
			t.Fatalf("handle %d issued to both %s and %s", h, prev, kind)
		}
		seen[h] = kind
	}

	mu, err := sys.Sync.Mutexes().Create(false)
	if err != nil {
		t.Fatalf("mutex: %v", err)
	}
	record(uint64(mu), "mutex")

	sem, err := sys.Sync.Semaphores().Create(1, 2)
	if err != nil {
		t.Fatalf("semaphore: %v", err)
	}
	record(uint64(sem), "semaphore")

	buf, err := sys.Memory.Allocate(16)
	if err != nil {
		t.Fatalf("buffer: %v", err)
	}
	record(uint64(buf), "buffer")

	f, err := sys.Files.Open(filepath.Join(t.TempDir(), "x"), "w")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	record(uint64(f), "file")

	if sys.Issued() < 4 {
		t.Fatalf("issued %d handles", sys.Issued())
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	sys := New()

	mu, err := sys.Sync.Mutexes().Create(false)
	if err != nil {
		t.Fatalf("mutex: %v", err)
	}
	buf, err := sys.Memory.Allocate(16)
	if err != nil {
		t.Fatalf("buffer: %v", err)
	}

	if err := sys.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := sys.Sync.Mutexes().Lock(mu, 0); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("lock after close: %v", err)
	}
	if _, err := sys.Memory.Size(buf); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("size after close: %v", err)
	}
}
