package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetbuddy/internal/amqp"
)

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, user, text string) error {
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, user+": "+text)
	return nil
}

func alert(user, end string) *amqp.BudgetExceededMessage {
	return &amqp.BudgetExceededMessage{
		User:      user,
		Duration:  "Week",
		Budget:    "50.00",
		Spent:     "55.00",
		Over:      "5.00",
		WindowEnd: end,
	}
}

func TestHandleAlert_Dedupes(t *testing.T) {
	n := &recordingNotifier{}
	w := NewAlertWorker(n, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := w.HandleAlert(ctx, alert("alice", "2024-03-15")); err != nil {
			t.Fatalf("HandleAlert() error = %v", err)
		}
	}
	if err := w.HandleAlert(ctx, alert("alice", "2024-03-16")); err != nil {
		t.Fatalf("HandleAlert() error = %v", err)
	}
	if err := w.HandleAlert(ctx, alert("bob", "2024-03-15")); err != nil {
		t.Fatalf("HandleAlert() error = %v", err)
	}

	if len(n.calls) != 3 {
		t.Fatalf("expected 3 notifications, got %d: %v", len(n.calls), n.calls)
	}
	want := "alice: alice exceeded their weekly budget of $50.00 by $5.00, spending $55.00."
	if n.calls[0] != want {
		t.Errorf("first notification = %q, want %q", n.calls[0], want)
	}
}

func TestHandleAlert_RepeatsAfterTTL(t *testing.T) {
	n := &recordingNotifier{}
	w := NewAlertWorker(n, time.Hour)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	w.seen.SetClock(func() time.Time { return now })

	_ = w.HandleAlert(context.Background(), alert("alice", "2024-03-15"))
	now = now.Add(2 * time.Hour)
	_ = w.HandleAlert(context.Background(), alert("alice", "2024-03-15"))

	if len(n.calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(n.calls))
	}
}

func TestHandleAlert_NotifierErrorReleasesKey(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	w := NewAlertWorker(n, time.Hour)

	if err := w.HandleAlert(context.Background(), alert("alice", "2024-03-15")); err == nil {
		t.Fatal("expected error from notifier")
	}

	n.err = nil
	if err := w.HandleAlert(context.Background(), alert("alice", "2024-03-15")); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if len(n.calls) != 1 {
		t.Fatalf("expected retry to notify, got %d calls", len(n.calls))
	}
}

func TestPrune(t *testing.T) {
	w := NewAlertWorker(&recordingNotifier{}, time.Hour)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	w.seen.SetClock(func() time.Time { return now })

	_ = w.HandleAlert(context.Background(), alert("alice", "2024-03-14"))
	now = now.Add(30 * time.Minute)
	_ = w.HandleAlert(context.Background(), alert("bob", "2024-03-15"))
	now = now.Add(45 * time.Minute)

	if got := w.Prune(); got != 1 {
		t.Fatalf("Prune() = %d, want 1", got)
	}
	if got := w.Prune(); got != 0 {
		t.Fatalf("second Prune() = %d, want 0", got)
	}
}
