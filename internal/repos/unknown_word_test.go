package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/repos/testutil"
	"github.com/storylingo/backend/internal/types"
)

func TestUnknownWordRepoLookupByWordAndArticle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUnknownWordRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "wordrepo@example.com")
	withArticle := testutil.SeedUnknownWord(t, ctx, tx, u.ID, "Katze", testutil.PtrString("die"))
	noArticle := testutil.SeedUnknownWord(t, ctx, tx, u.ID, "jagen", nil)

	got, err := repo.GetByUserWordArticle(ctx, tx, u.ID, "katze", testutil.PtrString("die"))
	if err != nil {
		t.Fatalf("GetByUserWordArticle: %v", err)
	}
	if got == nil || got.ID != withArticle.ID {
		t.Fatalf("GetByUserWordArticle: case-insensitive match expected, got %+v", got)
	}

	got, err = repo.GetByUserWordArticle(ctx, tx, u.ID, "jagen", nil)
	if err != nil {
		t.Fatalf("GetByUserWordArticle nil article: %v", err)
	}
	if got == nil || got.ID != noArticle.ID {
		t.Fatalf("GetByUserWordArticle nil article: got %+v", got)
	}

	got, err = repo.GetByUserWordArticle(ctx, tx, u.ID, "Hund", nil)
	if err != nil {
		t.Fatalf("GetByUserWordArticle miss: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByUserWordArticle miss: want nil got %+v", got)
	}
}

func TestUnknownWordRepoStatusAndTimesSeen(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUnknownWordRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "wordstatus@example.com")
	w := testutil.SeedUnknownWord(t, ctx, tx, u.ID, "Katze", nil)

	if err := repo.UpdateStatus(ctx, tx, w.ID, types.WordStatusLearned); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := repo.IncrementTimesSeen(ctx, tx, w.ID); err != nil {
		t.Fatalf("IncrementTimesSeen: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, w.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.WordStatusLearned {
		t.Fatalf("status: want=%s got=%s", types.WordStatusLearned, got.Status)
	}
	if got.TimesSeen != 2 {
		t.Fatalf("times_seen: want=2 got=%d", got.TimesSeen)
	}

	err = repo.UpdateStatus(ctx, tx, uuid.New(), types.WordStatusLearned)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("UpdateStatus missing word: want ErrRecordNotFound got %v", err)
	}
}
