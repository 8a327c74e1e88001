package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"
)

var (
	logOnce sync.Once
	testLog *logger.Logger
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	logOnce.Do(func() {
		l, err := logger.New("dev")
		if err != nil {
			t.Fatalf("logger: %v", err)
		}
		testLog = l
	})
	return testLog
}

// fakeOpenAI dispatches on schemaName so one fake can serve lemmatization,
// enrichment and story generation in the same test.
type fakeOpenAI struct {
	mu       sync.Mutex
	handlers map[string]func(system, user string) (map[string]any, error)
	calls    map[string]int
}

func newFakeOpenAI() *fakeOpenAI {
	return &fakeOpenAI{
		handlers: make(map[string]func(system, user string) (map[string]any, error)),
		calls:    make(map[string]int),
	}
}

func (f *fakeOpenAI) on(schemaName string, fn func(system, user string) (map[string]any, error)) {
	f.handlers[schemaName] = fn
}

func (f *fakeOpenAI) callCount(schemaName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[schemaName]
}

func (f *fakeOpenAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.calls[schemaName]++
	f.mu.Unlock()
	fn, ok := f.handlers[schemaName]
	if !ok {
		panic("no fake handler for schema " + schemaName)
	}
	return fn(system, user)
}

type fakeVocabularyRepo struct {
	words []*types.VocabularyWord
	err   error
}

func (f *fakeVocabularyRepo) Create(ctx context.Context, tx *gorm.DB, words []*types.VocabularyWord) ([]*types.VocabularyWord, error) {
	f.words = append(f.words, words...)
	return words, nil
}

func (f *fakeVocabularyRepo) GetByUserAndLanguage(ctx context.Context, tx *gorm.DB, userID uuid.UUID, languageCode string) ([]*types.VocabularyWord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.words, nil
}

func (f *fakeVocabularyRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.VocabularyWord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.words, nil
}

func (f *fakeVocabularyRepo) DeleteByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, wordID uuid.UUID) error {
	return f.err
}

func vocab(words ...string) []*types.VocabularyWord {
	out := make([]*types.VocabularyWord, 0, len(words))
	for _, w := range words {
		out = append(out, &types.VocabularyWord{
			ID:           uuid.New(),
			Word:         w,
			Translation:  w,
			LanguageCode: "DE",
		})
	}
	return out
}
