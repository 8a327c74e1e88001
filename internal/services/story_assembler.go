package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/repos"
	"github.com/storylingo/backend/internal/types"
)

// AssembledStory is the unpersisted output of one generation call.
type AssembledStory struct {
	Story             string
	FullTranslation   string
	TranslationChunks []types.TranslationChunk
	KnownWords        []*types.VocabularyWord
}

type StoryAssembler interface {
	Assemble(ctx context.Context, subject string, userID uuid.UUID, languageCode, originalLanguageCode languages.Code) (*AssembledStory, error)
}

type storyAssembler struct {
	log            *logger.Logger
	openai         OpenAIClient
	vocabularyRepo repos.VocabularyRepo
}

func NewStoryAssembler(log *logger.Logger, openai OpenAIClient, vocabularyRepo repos.VocabularyRepo) StoryAssembler {
	return &storyAssembler{
		log:            log.With("service", "StoryAssembler"),
		openai:         openai,
		vocabularyRepo: vocabularyRepo,
	}
}

var storySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"story": map[string]any{
			"type":        "string",
			"description": "The story in the target language.",
		},
		"full_translation": map[string]any{
			"type":        "string",
			"description": "The whole story translated into the original language.",
		},
		"chunks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"chunk":            map[string]any{"type": "string"},
					"translated_chunk": map[string]any{"type": "string"},
				},
				"required":             []string{"chunk", "translated_chunk"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"story", "full_translation", "chunks"},
	"additionalProperties": false,
}

func storySystemPrompt(subject string, languageCode, originalLanguageCode languages.Code) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are given a list of %s words that I've learned. I want to practice reading now. I want you to create a story in %s. But this story should meet some requirements:\n\n", languageCode.Name(), languageCode.Name())
	fmt.Fprintf(&b, "1. 98%% of the words in the story should be the words from the list I provided. Other words should be new to me, but similar by level of difficulty. It means that from 20 words in the story, 19 should be from the list, and 1 should be new. This is very important.\n")
	fmt.Fprintf(&b, "2. All story should use only present tense\n")
	fmt.Fprintf(&b, "3. Use these guidelines to create an engagement story:\n")
	for _, g := range []string{
		"Avoid using very generalized phrasing",
		"Add a personal voice/tone/touch to the text",
		"Don't overuse repetitive sentence structures",
		"Avoid using very polished and neutral tone",
		"Use specific examples",
		"Don't use artificially smooth transitions",
		"Avoid generic and overexplained points",
		"Avoid formulaic expressions",
		"Use natural flow and variations in sentence structure",
		"Always use specific personal details, to make the text look like it was written by a human. Add such details, that only a real human being could include in the text.",
	} {
		fmt.Fprintf(&b, "- %s\n", g)
	}
	fmt.Fprintf(&b, "4. Use various grammar structures, to practice all grammar rules.\n\n")
	fmt.Fprintf(&b, "Create a story that is engaging and interesting to read.\nHere is a subject of the story:\n%s\nMake it 2 sentences long.\n\n", subject)
	fmt.Fprintf(&b, "Also translate the whole story into %s, and split the story into sentence-level chunks, each paired with its %s translation. The concatenated chunks must reproduce the story exactly.", originalLanguageCode.Name(), originalLanguageCode.Name())
	return b.String()
}

func (a *storyAssembler) Assemble(ctx context.Context, subject string, userID uuid.UUID, languageCode, originalLanguageCode languages.Code) (*AssembledStory, error) {
	if !languages.IsSupported(languageCode) || !languages.IsSupported(originalLanguageCode) {
		return nil, apperr.New(apperr.KindValidation, "unsupported language code", nil, map[string]any{
			"language_code":          string(languageCode),
			"original_language_code": string(originalLanguageCode),
		})
	}

	knownWords, err := a.vocabularyRepo.GetByUserAndLanguage(ctx, nil, userID, string(languageCode))
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to load vocabulary", err, map[string]any{"user_id": userID.String()})
	}

	wordList := make([]string, 0, len(knownWords))
	for _, w := range knownWords {
		wordList = append(wordList, w.Word)
	}

	out, err := a.openai.GenerateJSON(ctx,
		storySystemPrompt(subject, languageCode, originalLanguageCode),
		fmt.Sprintf("Here are the words: %s", strings.Join(wordList, ", ")),
		"story_with_translation",
		storySchema,
	)
	if err != nil {
		return nil, apperr.New(apperr.KindGeneration, "unable to generate a story", err, map[string]any{"subject": subject})
	}

	story, _ := out["story"].(string)
	if strings.TrimSpace(story) == "" {
		return nil, apperr.New(apperr.KindGeneration, "unable to generate a story", nil, map[string]any{"subject": subject})
	}
	fullTranslation, _ := out["full_translation"].(string)

	var chunks []types.TranslationChunk
	if rawChunks, ok := out["chunks"].([]any); ok {
		for _, rc := range rawChunks {
			m, ok := rc.(map[string]any)
			if !ok {
				continue
			}
			chunk, _ := m["chunk"].(string)
			translated, _ := m["translated_chunk"].(string)
			if chunk == "" {
				continue
			}
			chunks = append(chunks, types.TranslationChunk{Chunk: chunk, TranslatedChunk: translated})
		}
	}
	if len(chunks) == 0 {
		chunks = []types.TranslationChunk{{Chunk: story, TranslatedChunk: fullTranslation}}
	}

	a.log.Info("Story assembled",
		"user_id", userID.String(),
		"language_code", string(languageCode),
		"known_words", len(wordList),
		"chunks", len(chunks),
	)

	return &AssembledStory{
		Story:             story,
		FullTranslation:   fullTranslation,
		TranslationChunks: chunks,
		KnownWords:        knownWords,
	}, nil
}
