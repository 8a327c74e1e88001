package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/cache"
	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/repos"
	"github.com/storylingo/backend/internal/types"
)

const defaultStorySubject = "everyday life"

// StoryExperience is the full unpersisted result of one generation run.
type StoryExperience struct {
	Story        *types.Story
	UnknownWords []*types.UnknownWord
	KnownWords   []*types.VocabularyWord
}

type StoryService interface {
	GenerateFullStoryExperience(ctx context.Context, userID uuid.UUID, languageCode, originalLanguageCode languages.Code, subject string) (*StoryExperience, error)
	SaveStoryToDB(ctx context.Context, story *types.Story) (*types.Story, error)
	ConnectUnknownWords(ctx context.Context, storyID uuid.UUID, words []*types.UnknownWord) error
	GetStoryByID(ctx context.Context, storyID uuid.UUID) (*types.Story, error)
	GetAllStories(ctx context.Context, userID uuid.UUID) ([]*types.Story, error)
}

type storyService struct {
	log            *logger.Logger
	storyRepo      repos.StoryRepo
	storyAssembler StoryAssembler
	lemmaAssembler LemmaAssembler
	audioAssembler AudioAssembler
	storyCache     cache.StoryCache
}

func NewStoryService(
	log *logger.Logger,
	storyRepo repos.StoryRepo,
	storyAssembler StoryAssembler,
	lemmaAssembler LemmaAssembler,
	audioAssembler AudioAssembler,
	storyCache cache.StoryCache,
) StoryService {
	return &storyService{
		log:            log.With("service", "StoryService"),
		storyRepo:      storyRepo,
		storyAssembler: storyAssembler,
		lemmaAssembler: lemmaAssembler,
		audioAssembler: audioAssembler,
		storyCache:     storyCache,
	}
}

func (s *storyService) GenerateFullStoryExperience(ctx context.Context, userID uuid.UUID, languageCode, originalLanguageCode languages.Code, subject string) (*StoryExperience, error) {
	if subject == "" {
		subject = defaultStorySubject
	}

	assembled, err := s.storyAssembler.Assemble(ctx, subject, userID, languageCode, originalLanguageCode)
	if err != nil {
		return nil, err
	}

	unknownWords, err := s.lemmaAssembler.Assemble(ctx, assembled.Story, assembled.KnownWords, userID, languageCode, originalLanguageCode)
	if err != nil {
		return nil, err
	}

	audioURL, err := s.audioAssembler.Assemble(ctx, assembled.TranslationChunks, unknownWords, languageCode, originalLanguageCode)
	if err != nil {
		return nil, err
	}

	return &StoryExperience{
		Story: &types.Story{
			UserID:          userID,
			StoryText:       assembled.Story,
			TranslationText: assembled.FullTranslation,
			AudioURL:        audioURL,
			LanguageCode:    string(languageCode),
		},
		UnknownWords: unknownWords,
		KnownWords:   assembled.KnownWords,
	}, nil
}

func (s *storyService) SaveStoryToDB(ctx context.Context, story *types.Story) (*types.Story, error) {
	saved, err := s.storyRepo.Create(ctx, nil, story)
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to save story", err, map[string]any{"user_id": story.UserID.String()})
	}
	if err := s.storyCache.InvalidateStoryCache(ctx, story.UserID); err != nil {
		s.log.Error("Failed invalidating story cache", "user_id", story.UserID.String(), "error", err.Error())
	}
	return saved, nil
}

func (s *storyService) ConnectUnknownWords(ctx context.Context, storyID uuid.UUID, words []*types.UnknownWord) error {
	if len(words) == 0 {
		return nil
	}
	if err := s.storyRepo.AppendUnknownWords(ctx, nil, storyID, words); err != nil {
		wordIDs := make([]string, 0, len(words))
		for _, w := range words {
			wordIDs = append(wordIDs, w.ID.String())
		}
		return apperr.New(apperr.KindLink, "failed to link unknown words to story", err, map[string]any{
			"story_id": storyID.String(),
			"word_ids": wordIDs,
		})
	}
	return nil
}

func (s *storyService) GetStoryByID(ctx context.Context, storyID uuid.UUID) (*types.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, nil, storyID)
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to load story", err, map[string]any{"story_id": storyID.String()})
	}
	if story == nil {
		return nil, apperr.New(apperr.KindNotFound, "story not found", nil, map[string]any{"story_id": storyID.String()})
	}
	return story, nil
}

func (s *storyService) GetAllStories(ctx context.Context, userID uuid.UUID) ([]*types.Story, error) {
	cached, err := s.storyCache.GetAllStoriesFromCache(ctx, userID)
	if err != nil {
		s.log.Warn("Redis cache error", "user_id", userID.String(), "error", err.Error())
	} else if len(cached) > 0 {
		return cached, nil
	}

	stories, err := s.storyRepo.GetAllByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to load stories", err, map[string]any{"user_id": userID.String()})
	}
	if err := s.storyCache.SaveStoriesToCache(ctx, userID, stories); err != nil {
		s.log.Warn("Redis cache error", "user_id", userID.String(), "error", err.Error())
	}
	return stories, nil
}
