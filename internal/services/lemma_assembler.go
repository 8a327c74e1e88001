package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"
)

type LemmaAssembler interface {
	// Assemble returns the unknown lemmas of storyText, enriched and ready
	// to persist. The returned words carry no ids yet.
	Assemble(ctx context.Context, storyText string, knownWords []*types.VocabularyWord, userID uuid.UUID, languageCode, originalLanguageCode languages.Code) ([]*types.UnknownWord, error)
}

type lemmaAssembler struct {
	log    *logger.Logger
	openai OpenAIClient
}

func NewLemmaAssembler(log *logger.Logger, openai OpenAIClient) LemmaAssembler {
	return &lemmaAssembler{
		log:    log.With("service", "LemmaAssembler"),
		openai: openai,
	}
}

// tokenize splits storyText into letter-only tokens. Punctuation and
// numeral tokens never reach the lemmatizer.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

var lemmaSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"lemmas": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"lemma": map[string]any{
						"type":        "string",
						"description": "Dictionary base form of the token.",
					},
					"article": map[string]any{
						"type":        []string{"string", "null"},
						"description": "Definite article for nouns, null otherwise.",
					},
				},
				"required":             []string{"lemma", "article"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"lemmas"},
	"additionalProperties": false,
}

var enrichmentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"translation":                  map[string]any{"type": "string"},
		"article":                      map[string]any{"type": []string{"string", "null"}},
		"example_sentence":             map[string]any{"type": "string"},
		"example_sentence_translation": map[string]any{"type": "string"},
	},
	"required":             []string{"translation", "article", "example_sentence", "example_sentence_translation"},
	"additionalProperties": false,
}

type lemmaCandidate struct {
	Lemma   string
	Article *string
}

func (a *lemmaAssembler) lemmatize(ctx context.Context, tokens []string, languageCode languages.Code) ([]lemmaCandidate, error) {
	system := fmt.Sprintf(
		"You are a %s lemmatizer. For every word in the list, return its dictionary base form (the lemma). For nouns also return the definite article; for every other part of speech return null for the article. Return each distinct lemma exactly once.",
		languageCode.Name(),
	)
	out, err := a.openai.GenerateJSON(ctx, system,
		fmt.Sprintf("Words: %s", strings.Join(tokens, ", ")),
		"lemma_list", lemmaSchema)
	if err != nil {
		return nil, err
	}

	raw, _ := out["lemmas"].([]any)
	seen := make(map[string]struct{}, len(raw))
	candidates := make([]lemmaCandidate, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		lemma, _ := m["lemma"].(string)
		lemma = strings.TrimSpace(lemma)
		if lemma == "" {
			continue
		}
		key := strings.ToLower(lemma)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		var article *string
		if s, ok := m["article"].(string); ok && strings.TrimSpace(s) != "" {
			trimmed := strings.TrimSpace(s)
			article = &trimmed
		}
		candidates = append(candidates, lemmaCandidate{Lemma: lemma, Article: article})
	}
	return candidates, nil
}

func (a *lemmaAssembler) enrich(ctx context.Context, candidate lemmaCandidate, languageCode, originalLanguageCode languages.Code) (*types.UnknownWord, error) {
	display := candidate.Lemma
	if candidate.Article != nil {
		display = *candidate.Article + " " + candidate.Lemma
	}
	system := fmt.Sprintf(
		"You are a %s-%s dictionary. For the given %s word return its %s translation, its definite article (null if it is not a noun), one short example sentence in %s using the word, and the %s translation of that sentence.",
		languageCode.Name(), originalLanguageCode.Name(), languageCode.Name(), originalLanguageCode.Name(), languageCode.Name(), originalLanguageCode.Name(),
	)
	out, err := a.openai.GenerateJSON(ctx, system, display, "word_enrichment", enrichmentSchema)
	if err != nil {
		return nil, err
	}

	translation, _ := out["translation"].(string)
	if strings.TrimSpace(translation) == "" {
		return nil, fmt.Errorf("empty translation for %q", candidate.Lemma)
	}

	article := candidate.Article
	if s, ok := out["article"].(string); ok && strings.TrimSpace(s) != "" {
		trimmed := strings.TrimSpace(s)
		article = &trimmed
	}
	example, _ := out["example_sentence"].(string)
	exampleTranslation, _ := out["example_sentence_translation"].(string)

	return &types.UnknownWord{
		Word:                       candidate.Lemma,
		Translation:                translation,
		Article:                    article,
		ExampleSentence:            example,
		ExampleSentenceTranslation: exampleTranslation,
		Status:                     types.WordStatusLearning,
		TimesSeen:                  1,
		LanguageCode:               string(languageCode),
	}, nil
}

func (a *lemmaAssembler) Assemble(ctx context.Context, storyText string, knownWords []*types.VocabularyWord, userID uuid.UUID, languageCode, originalLanguageCode languages.Code) ([]*types.UnknownWord, error) {
	tokens := tokenize(storyText)
	if len(tokens) == 0 {
		return []*types.UnknownWord{}, nil
	}

	candidates, err := a.lemmatize(ctx, tokens, languageCode)
	if err != nil {
		return nil, apperr.New(apperr.KindEnrichment, "failed to lemmatize story", err, map[string]any{"user_id": userID.String()})
	}

	// Known-word match ignores case and the article.
	known := make(map[string]struct{}, len(knownWords))
	for _, w := range knownWords {
		known[strings.ToLower(w.Word)] = struct{}{}
	}

	unknown := candidates[:0]
	for _, c := range candidates {
		if _, ok := known[strings.ToLower(c.Lemma)]; ok {
			continue
		}
		unknown = append(unknown, c)
	}
	if len(unknown) == 0 {
		return []*types.UnknownWord{}, nil
	}

	words := make([]*types.UnknownWord, 0, len(unknown))
	for _, c := range unknown {
		word, err := a.enrich(ctx, c, languageCode, originalLanguageCode)
		if err != nil {
			if IsUnreachable(err) {
				return nil, apperr.New(apperr.KindEnrichment, "enrichment capability unreachable", err, map[string]any{"word": c.Lemma})
			}
			// one retry per word, then drop
			word, err = a.enrich(ctx, c, languageCode, originalLanguageCode)
			if err != nil {
				if IsUnreachable(err) {
					return nil, apperr.New(apperr.KindEnrichment, "enrichment capability unreachable", err, map[string]any{"word": c.Lemma})
				}
				a.log.Warn("Dropping unknown word after failed enrichment", "word", c.Lemma, "error", err.Error())
				continue
			}
		}
		word.UserID = userID
		words = append(words, word)
	}

	a.log.Info("Lemmas assembled",
		"user_id", userID.String(),
		"tokens", len(tokens),
		"unknown", len(unknown),
		"enriched", len(words),
	)
	return words, nil
}
