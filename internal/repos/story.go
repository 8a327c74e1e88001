package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"
)

type StoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, story *types.Story) (*types.Story, error)
	GetByID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) (*types.Story, error)
	// GetAllByUser returns the user's stories most-recent-first with unknown
	// words preloaded.
	GetAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Story, error)
	// AppendUnknownWords writes the story<->word link rows. Both sides must
	// already be persisted.
	AppendUnknownWords(ctx context.Context, tx *gorm.DB, storyID uuid.UUID, words []*types.UnknownWord) error
}

type storyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoryRepo(db *gorm.DB, baseLog *logger.Logger) StoryRepo {
	return &storyRepo{db: db, log: baseLog.With("repo", "StoryRepo")}
}

func (r *storyRepo) Create(ctx context.Context, tx *gorm.DB, story *types.Story) (*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if story == nil {
		return nil, nil
	}
	// Omit the association so the create never links words implicitly; the
	// link phase runs separately once word ids exist.
	if err := transaction.WithContext(ctx).
		Omit("UnknownWords").
		Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

func (r *storyRepo) GetByID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) (*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if storyID == uuid.Nil {
		return nil, nil
	}
	var story types.Story
	err := transaction.WithContext(ctx).
		Preload("UnknownWords").
		Where("id = ?", storyID).
		Limit(1).
		Find(&story).Error
	if err != nil {
		return nil, err
	}
	if story.ID == uuid.Nil {
		return nil, nil
	}
	return &story, nil
}

func (r *storyRepo) GetAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Story
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("UnknownWords").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *storyRepo) AppendUnknownWords(ctx context.Context, tx *gorm.DB, storyID uuid.UUID, words []*types.UnknownWord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if storyID == uuid.Nil || len(words) == 0 {
		return nil
	}
	story := types.Story{ID: storyID}
	return transaction.WithContext(ctx).
		Model(&story).
		Association("UnknownWords").
		Append(words)
}
