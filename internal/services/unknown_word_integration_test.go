package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/repos"
	"github.com/storylingo/backend/internal/repos/testutil"
	"github.com/storylingo/backend/internal/types"
)

func TestSaveUnknownWordsUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	ctx := context.Background()
	wordRepo := repos.NewUnknownWordRepo(tx, log)
	storyRepo := repos.NewStoryRepo(tx, log)
	svc := NewUnknownWordService(log, tx, wordRepo, storyRepo)

	u := testutil.SeedUser(t, ctx, tx, "upsert@example.com")
	story := testutil.SeedStory(t, ctx, tx, u.ID, "Der Hund jagt die Katze.")
	existing := testutil.SeedUnknownWord(t, ctx, tx, u.ID, "Katze", testutil.PtrString("die"))

	words := []*types.UnknownWord{
		{Word: "Katze", Translation: "cat", Article: testutil.PtrString("die"), Status: types.WordStatusLearning, TimesSeen: 1, LanguageCode: "DE"},
		{Word: "jagen", Translation: "to chase", Status: types.WordStatusLearning, TimesSeen: 1, LanguageCode: "DE"},
	}

	saved, err := svc.SaveUnknownWords(ctx, words, u.ID, story.ID)
	if err != nil {
		t.Fatalf("SaveUnknownWords: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved words, got %d", len(saved))
	}
	if saved[0].ID != existing.ID {
		t.Errorf("repeat word must resolve to the existing row, got new id %s", saved[0].ID)
	}

	// repeat word: times_seen bumped, story linked instead of duplicated
	got, err := wordRepo.GetByID(ctx, tx, existing.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TimesSeen != 2 {
		t.Errorf("times_seen: want=2 got=%d", got.TimesSeen)
	}
	linked, err := storyRepo.GetByID(ctx, tx, story.ID)
	if err != nil {
		t.Fatalf("story GetByID: %v", err)
	}
	if len(linked.UnknownWords) != 1 || linked.UnknownWords[0].ID != existing.ID {
		t.Errorf("story not linked to existing word: %+v", linked.UnknownWords)
	}

	// new word: inserted with an id
	if saved[1].ID == uuid.Nil {
		t.Errorf("new word not persisted")
	}
	fresh, err := wordRepo.GetByUserWordArticle(ctx, tx, u.ID, "jagen", nil)
	if err != nil {
		t.Fatalf("GetByUserWordArticle: %v", err)
	}
	if fresh == nil || fresh.Translation != "to chase" {
		t.Errorf("new word not found after save: %+v", fresh)
	}
}

func TestMarkAsLearnedAndLearning(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	ctx := context.Background()
	wordRepo := repos.NewUnknownWordRepo(tx, log)
	svc := NewUnknownWordService(log, tx, wordRepo, repos.NewStoryRepo(tx, log))

	u := testutil.SeedUser(t, ctx, tx, "marks@example.com")
	w := testutil.SeedUnknownWord(t, ctx, tx, u.ID, "jagen", nil)

	if err := svc.MarkAsLearned(ctx, w.ID); err != nil {
		t.Fatalf("MarkAsLearned: %v", err)
	}
	got, err := wordRepo.GetByID(ctx, tx, w.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.WordStatusLearned {
		t.Errorf("status after MarkAsLearned: %s", got.Status)
	}

	if err := svc.MarkAsLearning(ctx, w.ID); err != nil {
		t.Fatalf("MarkAsLearning: %v", err)
	}
	got, err = wordRepo.GetByID(ctx, tx, w.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.WordStatusLearning {
		t.Errorf("status after MarkAsLearning: %s", got.Status)
	}

	err = svc.MarkAsLearned(ctx, uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("missing word: want not_found got %v", err)
	}
}
