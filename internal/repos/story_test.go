package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/repos/testutil"
	"github.com/storylingo/backend/internal/types"
)

func TestStoryRepoCreateAndLink(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	storyRepo := NewStoryRepo(db, testutil.Logger(t))
	wordRepo := NewUnknownWordRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "storyrepo@example.com")

	story := &types.Story{
		ID:              uuid.New(),
		UserID:          u.ID,
		StoryText:       "Der Hund jagt die Katze.",
		TranslationText: "The dog chases the cat.",
		AudioURL:        "https://storage.googleapis.com/test/a.mp3",
		LanguageCode:    "DE",
	}
	if _, err := storyRepo.Create(ctx, tx, story); err != nil {
		t.Fatalf("Create: %v", err)
	}

	words := []*types.UnknownWord{
		{ID: uuid.New(), UserID: u.ID, Word: "Katze", Translation: "cat", Article: testutil.PtrString("die"), LanguageCode: "DE", Status: types.WordStatusLearning, TimesSeen: 1},
		{ID: uuid.New(), UserID: u.ID, Word: "jagen", Translation: "to chase", LanguageCode: "DE", Status: types.WordStatusLearning, TimesSeen: 1},
	}
	if _, err := wordRepo.Create(ctx, tx, words); err != nil {
		t.Fatalf("word Create: %v", err)
	}

	if err := storyRepo.AppendUnknownWords(ctx, tx, story.ID, words); err != nil {
		t.Fatalf("AppendUnknownWords: %v", err)
	}

	got, err := storyRepo.GetByID(ctx, tx, story.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || len(got.UnknownWords) != 2 {
		t.Fatalf("GetByID after link: want 2 unknown words, got %+v", got)
	}
}

func TestStoryRepoGetAllByUserOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewStoryRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "storyorder@example.com")

	older := &types.Story{ID: uuid.New(), UserID: u.ID, StoryText: "first", TranslationText: "t", AudioURL: "a", LanguageCode: "DE", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &types.Story{ID: uuid.New(), UserID: u.ID, StoryText: "second", TranslationText: "t", AudioURL: "a", LanguageCode: "DE", CreatedAt: time.Now()}
	for _, s := range []*types.Story{older, newer} {
		if _, err := repo.Create(ctx, tx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, err := repo.GetAllByUser(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("GetAllByUser: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("GetAllByUser: want=2 got=%d", len(rows))
	}
	if rows[0].ID != newer.ID {
		t.Fatalf("GetAllByUser ordering: most recent story must come first")
	}

	empty, err := repo.GetAllByUser(ctx, tx, uuid.New())
	if err != nil {
		t.Fatalf("GetAllByUser unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("GetAllByUser unknown user: want empty got=%d", len(empty))
	}
}
