package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/languages"
)

func TestStoryAssemblerHappyPath(t *testing.T) {
	log := newTestLogger(t)
	openai := newFakeOpenAI()

	var gotSystem, gotUser string
	openai.on("story_with_translation", func(system, user string) (map[string]any, error) {
		gotSystem = system
		gotUser = user
		return map[string]any{
			"story":            "Der Hund jagt die Katze. Die Katze rennt schnell.",
			"full_translation": "The dog chases the cat. The cat runs fast.",
			"chunks": []any{
				map[string]any{"chunk": "Der Hund jagt die Katze.", "translated_chunk": "The dog chases the cat."},
				map[string]any{"chunk": "Die Katze rennt schnell.", "translated_chunk": "The cat runs fast."},
			},
		}, nil
	})

	repo := &fakeVocabularyRepo{words: vocab("Hund", "Katze", "jagen")}
	assembler := NewStoryAssembler(log, openai, repo)

	out, err := assembler.Assemble(context.Background(), "Pets", uuid.New(), languages.DE, languages.EN)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if out.Story != "Der Hund jagt die Katze. Die Katze rennt schnell." {
		t.Errorf("unexpected story: %q", out.Story)
	}
	if len(out.TranslationChunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out.TranslationChunks))
	}
	if out.TranslationChunks[0].TranslatedChunk != "The dog chases the cat." {
		t.Errorf("unexpected chunk translation: %q", out.TranslationChunks[0].TranslatedChunk)
	}
	if len(out.KnownWords) != 3 {
		t.Errorf("expected 3 known words, got %d", len(out.KnownWords))
	}

	if !strings.Contains(gotSystem, "Pets") {
		t.Errorf("prompt missing subject: %q", gotSystem)
	}
	if !strings.Contains(gotSystem, "98%") || !strings.Contains(gotSystem, "present tense") {
		t.Errorf("prompt missing core constraints: %q", gotSystem)
	}
	if !strings.Contains(gotUser, "Hund, Katze, jagen") {
		t.Errorf("word list missing from user message: %q", gotUser)
	}
}

func TestStoryAssemblerEmptyStoryFails(t *testing.T) {
	log := newTestLogger(t)
	openai := newFakeOpenAI()
	openai.on("story_with_translation", func(system, user string) (map[string]any, error) {
		return map[string]any{"story": "   ", "full_translation": "", "chunks": []any{}}, nil
	})

	assembler := NewStoryAssembler(log, openai, &fakeVocabularyRepo{words: vocab("Hund")})
	_, err := assembler.Assemble(context.Background(), "Pets", uuid.New(), languages.DE, languages.EN)
	if err == nil {
		t.Fatal("expected error for empty story")
	}
	if !apperr.IsKind(err, apperr.KindGeneration) {
		t.Errorf("expected generation kind, got %v", apperr.KindOf(err))
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Details["subject"] != "Pets" {
		t.Errorf("expected subject in details, got %+v", err)
	}
}

func TestStoryAssemblerGenerationErrorWrapped(t *testing.T) {
	log := newTestLogger(t)
	openai := newFakeOpenAI()
	boom := errors.New("upstream down")
	openai.on("story_with_translation", func(system, user string) (map[string]any, error) {
		return nil, boom
	})

	assembler := NewStoryAssembler(log, openai, &fakeVocabularyRepo{})
	_, err := assembler.Assemble(context.Background(), "", uuid.New(), languages.DE, languages.EN)
	if !apperr.IsKind(err, apperr.KindGeneration) {
		t.Fatalf("expected generation kind, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestStoryAssemblerRejectsUnsupportedLanguage(t *testing.T) {
	log := newTestLogger(t)
	assembler := NewStoryAssembler(log, newFakeOpenAI(), &fakeVocabularyRepo{})
	_, err := assembler.Assemble(context.Background(), "Pets", uuid.New(), languages.Code("XX"), languages.EN)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
}

func TestStoryAssemblerFallbackChunk(t *testing.T) {
	log := newTestLogger(t)
	openai := newFakeOpenAI()
	openai.on("story_with_translation", func(system, user string) (map[string]any, error) {
		return map[string]any{
			"story":            "Der Hund schläft.",
			"full_translation": "The dog sleeps.",
			"chunks":           []any{},
		}, nil
	})

	assembler := NewStoryAssembler(log, openai, &fakeVocabularyRepo{})
	out, err := assembler.Assemble(context.Background(), "Pets", uuid.New(), languages.DE, languages.EN)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(out.TranslationChunks) != 1 || out.TranslationChunks[0].Chunk != "Der Hund schläft." {
		t.Errorf("expected whole-story fallback chunk, got %+v", out.TranslationChunks)
	}
}
