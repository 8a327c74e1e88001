package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/repos/testutil"
	"github.com/storylingo/backend/internal/types"
)

func TestJobRunClaimHonorsSubmissionOrderPerEntity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewJobRunRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "jobrun@example.com")
	wordID := uuid.New()

	first := &types.JobRun{
		ID: uuid.New(), QueueName: "word-status", JobType: "word-status",
		OwnerUserID: u.ID, EntityType: "unknown_word", EntityID: wordID,
		Status: "waiting", CreatedAt: time.Now().Add(-2 * time.Minute),
	}
	second := &types.JobRun{
		ID: uuid.New(), QueueName: "word-status", JobType: "word-status",
		OwnerUserID: u.ID, EntityType: "unknown_word", EntityID: wordID,
		Status: "waiting", CreatedAt: time.Now().Add(-1 * time.Minute),
	}
	if _, err := repo.Create(ctx, tx, []*types.JobRun{first, second}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("claim: want first submitted job, got %+v", claimed)
	}
	if claimed.Status != "active" || claimed.Attempts != 1 {
		t.Fatalf("claim: want active/attempts=1, got %s/%d", claimed.Status, claimed.Attempts)
	}

	// The older job is still active, so the newer one for the same word must
	// stay fenced.
	fenced, err := repo.ClaimNextRunnable(ctx, tx, 5, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable fenced: %v", err)
	}
	if fenced != nil {
		t.Fatalf("claim fenced: want nil, got %+v", fenced)
	}

	if err := repo.UpdateFields(ctx, tx, first.ID, map[string]interface{}{"status": "completed"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	next, err := repo.ClaimNextRunnable(ctx, tx, 5, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable after completion: %v", err)
	}
	if next == nil || next.ID != second.ID {
		t.Fatalf("claim after completion: want second job, got %+v", next)
	}
}

func TestJobRunClaimSkipsPausedAndNotDueDelayed(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewJobRunRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "jobrunpaused@example.com")

	future := time.Now().Add(time.Hour)
	paused := &types.JobRun{
		ID: uuid.New(), QueueName: "word-status", JobType: "word-status",
		OwnerUserID: u.ID, EntityType: "unknown_word", EntityID: uuid.New(),
		Status: "paused", CreatedAt: time.Now().Add(-3 * time.Minute),
	}
	delayed := &types.JobRun{
		ID: uuid.New(), QueueName: "word-status", JobType: "word-status",
		OwnerUserID: u.ID, EntityType: "unknown_word", EntityID: uuid.New(),
		Status: "delayed", RunAt: &future, CreatedAt: time.Now().Add(-2 * time.Minute),
	}
	if _, err := repo.Create(ctx, tx, []*types.JobRun{paused, delayed}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed != nil {
		t.Fatalf("claim: paused/not-due jobs must not be claimed, got %+v", claimed)
	}

	past := time.Now().Add(-time.Minute)
	if err := repo.UpdateFields(ctx, tx, delayed.ID, map[string]interface{}{"run_at": past}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	claimed, err = repo.ClaimNextRunnable(ctx, tx, 5, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable due delayed: %v", err)
	}
	if claimed == nil || claimed.ID != delayed.ID {
		t.Fatalf("claim due delayed: got %+v", claimed)
	}
}

func TestJobRunFailExhausted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewJobRunRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "jobrunstale@example.com")
	stale := time.Now().Add(-10 * time.Minute)
	job := &types.JobRun{
		ID: uuid.New(), QueueName: "word-status", JobType: "word-status",
		OwnerUserID: u.ID, EntityType: "unknown_word", EntityID: uuid.New(),
		Status: "active", Attempts: 5, HeartbeatAt: &stale,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	if _, err := repo.Create(ctx, tx, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.FailExhausted(ctx, tx, 5, 2*time.Minute); err != nil {
		t.Fatalf("FailExhausted: %v", err)
	}

	got, err := repo.GetByQueueAndID(ctx, tx, "word-status", job.ID)
	if err != nil {
		t.Fatalf("GetByQueueAndID: %v", err)
	}
	if got.Status != "failed" {
		t.Fatalf("FailExhausted: want failed got %s", got.Status)
	}
}
