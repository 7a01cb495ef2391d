package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(PhaseMutex, KindNotFound).Handle(42).Detail("gone").Build()

	msg := err.Error()
	if !strings.Contains(msg, "[mutex]") {
		t.Errorf("missing phase in %q", msg)
	}
	if !strings.Contains(msg, "not_found") {
		t.Errorf("missing kind in %q", msg)
	}
	if !strings.Contains(msg, "handle=42") {
		t.Errorf("missing handle in %q", msg)
	}
	if !strings.Contains(msg, "gone") {
		t.Errorf("missing detail in %q", msg)
	}
}

func TestErrorIs(t *testing.T) {
	err := NotFound(PhaseSemaphore, 7)

	if !stderrors.Is(err, &Error{Phase: PhaseSemaphore, Kind: KindNotFound}) {
		t.Error("expected match on same phase and kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseMutex, Kind: KindNotFound}) {
		t.Error("should not match a different phase")
	}
	// Empty phase in target matches any phase
	if !stderrors.Is(err, &Error{Kind: KindNotFound}) {
		t.Error("empty target phase should match any phase")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := IO("write failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable via Unwrap")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("cause missing from message: %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	if !IsKind(Overflow(1, 4, 3, 5), KindOverflow) {
		t.Error("expected KindOverflow")
	}
	if IsKind(stderrors.New("plain"), KindOverflow) {
		t.Error("plain errors have no kind")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{AlreadyConsumed(1), PhaseThread, KindAlreadyConsumed},
		{NotJoinable(2), PhaseThread, KindNotJoinable},
		{Validation(PhaseSemaphore, "initial %d > max %d", 5, 3), PhaseSemaphore, KindValidation},
		{ThreadCreation(stderrors.New("EAGAIN")), PhaseThread, KindThreadCreation},
		{NotOwner(3, 100, 200), PhaseMutex, KindNotOwner},
		{Closed(PhaseRegistry), PhaseRegistry, KindClosed},
		{OutOfBounds(PhaseBuffer, 4, 10, 20, 16), PhaseBuffer, KindOutOfBounds},
	}

	for _, tt := range tests {
		if tt.err.Phase != tt.phase {
			t.Errorf("%s: phase = %s, want %s", tt.err, tt.err.Phase, tt.phase)
		}
		if tt.err.Kind != tt.kind {
			t.Errorf("%s: kind = %s, want %s", tt.err, tt.err.Kind, tt.kind)
		}
	}
}
