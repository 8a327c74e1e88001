package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/repos"
	"github.com/storylingo/backend/internal/types"
)

type VocabularyService interface {
	GetWords(ctx context.Context, userID uuid.UUID) ([]*types.VocabularyWord, error)
	SaveWord(ctx context.Context, userID uuid.UUID, word *types.VocabularyWord) (*types.VocabularyWord, error)
	SaveWords(ctx context.Context, userID uuid.UUID, words []*types.VocabularyWord) ([]*types.VocabularyWord, error)
	DeleteWord(ctx context.Context, userID uuid.UUID, wordID uuid.UUID) error
}

type vocabularyService struct {
	log            *logger.Logger
	vocabularyRepo repos.VocabularyRepo
}

func NewVocabularyService(log *logger.Logger, vocabularyRepo repos.VocabularyRepo) VocabularyService {
	return &vocabularyService{
		log:            log.With("service", "VocabularyService"),
		vocabularyRepo: vocabularyRepo,
	}
}

func (s *vocabularyService) GetWords(ctx context.Context, userID uuid.UUID) ([]*types.VocabularyWord, error) {
	words, err := s.vocabularyRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to load vocabulary", err, map[string]any{"user_id": userID.String()})
	}
	return words, nil
}

func validateVocabularyWord(word *types.VocabularyWord) error {
	if strings.TrimSpace(word.Word) == "" {
		return apperr.New(apperr.KindValidation, "word is required", nil, nil)
	}
	if strings.TrimSpace(word.Translation) == "" {
		return apperr.New(apperr.KindValidation, "translation is required", nil, map[string]any{"word": word.Word})
	}
	if _, err := languages.Parse(word.LanguageCode); err != nil {
		return apperr.New(apperr.KindValidation, "unsupported language code", err, map[string]any{"word": word.Word})
	}
	return nil
}

func (s *vocabularyService) SaveWord(ctx context.Context, userID uuid.UUID, word *types.VocabularyWord) (*types.VocabularyWord, error) {
	saved, err := s.SaveWords(ctx, userID, []*types.VocabularyWord{word})
	if err != nil {
		return nil, err
	}
	return saved[0], nil
}

func (s *vocabularyService) SaveWords(ctx context.Context, userID uuid.UUID, words []*types.VocabularyWord) ([]*types.VocabularyWord, error) {
	if len(words) == 0 {
		return []*types.VocabularyWord{}, nil
	}
	for _, w := range words {
		if err := validateVocabularyWord(w); err != nil {
			return nil, err
		}
		w.UserID = userID
	}
	created, err := s.vocabularyRepo.Create(ctx, nil, words)
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to save vocabulary words", err, map[string]any{"user_id": userID.String()})
	}
	return created, nil
}

func (s *vocabularyService) DeleteWord(ctx context.Context, userID uuid.UUID, wordID uuid.UUID) error {
	if err := s.vocabularyRepo.DeleteByID(ctx, nil, userID, wordID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "vocabulary word not found", err, map[string]any{"word_id": wordID.String()})
		}
		return apperr.New(apperr.KindPersistence, "failed to delete vocabulary word", err, map[string]any{"word_id": wordID.String()})
	}
	return nil
}
