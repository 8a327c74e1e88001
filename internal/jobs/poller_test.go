package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
)

func testPoller(statuses ...string) (*Poller, *int) {
	calls := 0
	p := &Poller{
		Interval: time.Millisecond,
		MaxPolls: 5,
		Lookup: func(ctx context.Context, queueName string, jobID uuid.UUID) (string, error) {
			idx := calls
			if idx >= len(statuses) {
				idx = len(statuses) - 1
			}
			calls++
			return statuses[idx], nil
		},
	}
	return p, &calls
}

func TestTerminal(t *testing.T) {
	for _, s := range []string{StatusCompleted, StatusFailed} {
		if !Terminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []string{StatusWaiting, StatusActive, StatusDelayed, StatusPaused} {
		if Terminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestPollUntilTerminalCompleted(t *testing.T) {
	p, calls := testPoller(StatusWaiting, StatusActive, StatusCompleted)
	status, err := p.PollUntilTerminal(context.Background(), WordStatusQueue, uuid.New())
	if err != nil {
		t.Fatalf("PollUntilTerminal: %v", err)
	}
	if status != StatusCompleted {
		t.Errorf("status = %s, want completed", status)
	}
	if *calls != 3 {
		t.Errorf("expected polling to stop at first terminal status, got %d calls", *calls)
	}
}

func TestPollUntilTerminalTimesOut(t *testing.T) {
	p, calls := testPoller(StatusActive)
	status, err := p.PollUntilTerminal(context.Background(), WordStatusQueue, uuid.New())
	if !apperr.IsKind(err, apperr.KindJobTimeout) {
		t.Fatalf("expected job timeout, got %v", err)
	}
	if status != StatusActive {
		t.Errorf("expected last seen status, got %s", status)
	}
	if *calls != p.MaxPolls {
		t.Errorf("expected exactly %d polls, got %d", p.MaxPolls, *calls)
	}
}

func TestPollUntilTerminalLookupError(t *testing.T) {
	boom := errors.New("lookup down")
	p := &Poller{
		Interval: time.Millisecond,
		MaxPolls: 5,
		Lookup: func(ctx context.Context, queueName string, jobID uuid.UUID) (string, error) {
			return "", boom
		},
	}
	if _, err := p.PollUntilTerminal(context.Background(), WordStatusQueue, uuid.New()); !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestPollAppliedCompletedKeepsUpdate(t *testing.T) {
	p, _ := testPoller(StatusCompleted)
	applied, rolledBack := false, false
	err := p.PollApplied(context.Background(), WordStatusQueue, uuid.New(),
		func() { applied = true },
		func() { rolledBack = true })
	if err != nil {
		t.Fatalf("PollApplied: %v", err)
	}
	if !applied {
		t.Error("optimistic update not applied")
	}
	if rolledBack {
		t.Error("completed job must keep the optimistic update")
	}
}

func TestPollAppliedFailedRollsBack(t *testing.T) {
	p, _ := testPoller(StatusActive, StatusFailed)
	rolledBack := false
	err := p.PollApplied(context.Background(), WordStatusQueue, uuid.New(),
		func() {},
		func() { rolledBack = true })
	if err == nil {
		t.Fatal("expected error for failed job")
	}
	if !rolledBack {
		t.Error("failed job must roll back the optimistic update")
	}
}

func TestPollAppliedTimeoutRetainsUpdate(t *testing.T) {
	p, _ := testPoller(StatusActive)
	rolledBack := false
	err := p.PollApplied(context.Background(), WordStatusQueue, uuid.New(),
		func() {},
		func() { rolledBack = true })
	if !apperr.IsKind(err, apperr.KindJobTimeout) {
		t.Fatalf("expected job timeout, got %v", err)
	}
	if rolledBack {
		t.Error("timeout must retain the optimistic update")
	}
}
