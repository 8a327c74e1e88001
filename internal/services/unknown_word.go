package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/repos"
	"github.com/storylingo/backend/internal/types"
)

type UnknownWordService interface {
	// SaveUnknownWords upserts each word on (user, word, article): a word the
	// user already tracks gets its TimesSeen bumped and the story linked, a
	// new word is inserted. Returns the persisted rows for the whole batch.
	SaveUnknownWords(ctx context.Context, words []*types.UnknownWord, userID uuid.UUID, storyID uuid.UUID) ([]*types.UnknownWord, error)
	GetUnknownWords(ctx context.Context, userID uuid.UUID) ([]*types.UnknownWord, error)
	MarkAsLearned(ctx context.Context, wordID uuid.UUID) error
	MarkAsLearning(ctx context.Context, wordID uuid.UUID) error
}

type unknownWordService struct {
	log             *logger.Logger
	db              *gorm.DB
	unknownWordRepo repos.UnknownWordRepo
	storyRepo       repos.StoryRepo
}

func NewUnknownWordService(log *logger.Logger, db *gorm.DB, unknownWordRepo repos.UnknownWordRepo, storyRepo repos.StoryRepo) UnknownWordService {
	return &unknownWordService{
		log:             log.With("service", "UnknownWordService"),
		db:              db,
		unknownWordRepo: unknownWordRepo,
		storyRepo:       storyRepo,
	}
}

func (s *unknownWordService) SaveUnknownWords(ctx context.Context, words []*types.UnknownWord, userID uuid.UUID, storyID uuid.UUID) ([]*types.UnknownWord, error) {
	saved := make([]*types.UnknownWord, 0, len(words))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, word := range words {
			word.UserID = userID

			existing, err := s.unknownWordRepo.GetByUserWordArticle(ctx, tx, userID, word.Word, word.Article)
			if err != nil {
				return err
			}
			if existing != nil {
				if err := s.unknownWordRepo.IncrementTimesSeen(ctx, tx, existing.ID); err != nil {
					return err
				}
				if err := s.storyRepo.AppendUnknownWords(ctx, tx, storyID, []*types.UnknownWord{existing}); err != nil {
					return err
				}
				existing.TimesSeen++
				saved = append(saved, existing)
				continue
			}

			created, err := s.unknownWordRepo.Create(ctx, tx, []*types.UnknownWord{word})
			if err != nil {
				return err
			}
			saved = append(saved, created[0])
		}
		return nil
	})
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to save unknown words", err, map[string]any{
			"user_id":  userID.String(),
			"story_id": storyID.String(),
		})
	}
	return saved, nil
}

func (s *unknownWordService) GetUnknownWords(ctx context.Context, userID uuid.UUID) ([]*types.UnknownWord, error) {
	words, err := s.unknownWordRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to load unknown words", err, map[string]any{"user_id": userID.String()})
	}
	return words, nil
}

func (s *unknownWordService) setStatus(ctx context.Context, wordID uuid.UUID, status types.WordStatus) error {
	if err := s.unknownWordRepo.UpdateStatus(ctx, nil, wordID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "unknown word not found", err, map[string]any{"word_id": wordID.String()})
		}
		return apperr.New(apperr.KindPersistence, "failed to update word status", err, map[string]any{"word_id": wordID.String()})
	}
	return nil
}

func (s *unknownWordService) MarkAsLearned(ctx context.Context, wordID uuid.UUID) error {
	return s.setStatus(ctx, wordID, types.WordStatusLearned)
}

func (s *unknownWordService) MarkAsLearning(ctx context.Context, wordID uuid.UUID) error {
	return s.setStatus(ctx, wordID, types.WordStatusLearning)
}
