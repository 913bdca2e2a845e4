package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// recordingNotifier captures events for assertions.
type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(slog.Default())

	err := n.Notify(context.Background(), Event{
		Type:     EventAssociationCreated,
		TicketID: "ENG-1",
		Branch:   "feat/a",
		Message:  "associated",
		Severity: SeverityInfo,
	})
	if err != nil {
		t.Errorf("Notify: %v", err)
	}
}

func TestLogNotifier_NilLogger(t *testing.T) {
	n := NewLogNotifier(nil)
	if n.Logger == nil {
		t.Error("nil logger should fall back to default")
	}
}

func TestMultiNotifier_FanOut(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	multi := NewMultiNotifier(a, b)

	event := Event{Type: EventCheckoutCompleted, TicketID: "ENG-1"}
	if err := multi.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events = (%d, %d), want (1, 1)", len(a.events), len(b.events))
	}
}

func TestMultiNotifier_ContinuesOnError(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("boom")}
	ok := &recordingNotifier{}
	multi := NewMultiNotifier(failing, ok)

	err := multi.Notify(context.Background(), Event{Type: EventCleanupApplied})
	if err == nil {
		t.Error("expected last error to surface")
	}
	if len(ok.events) != 1 {
		t.Error("later notifiers should still run after a failure")
	}
}

func TestNotifierFromContext(t *testing.T) {
	n := &recordingNotifier{}
	ctx := WithNotifier(context.Background(), n)

	if got := NotifierFromContext(ctx); got != Notifier(n) {
		t.Error("NotifierFromContext should return the injected notifier")
	}
	if got := NotifierFromContext(context.Background()); got != nil {
		t.Error("NotifierFromContext should return nil when absent")
	}
}
