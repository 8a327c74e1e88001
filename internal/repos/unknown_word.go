package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"
)

type UnknownWordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, words []*types.UnknownWord) ([]*types.UnknownWord, error)
	GetByID(ctx context.Context, tx *gorm.DB, wordID uuid.UUID) (*types.UnknownWord, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UnknownWord, error)
	// GetByUserWordArticle resolves the logical (user, word, article) identity
	// used to detect repeat encounters across stories.
	GetByUserWordArticle(ctx context.Context, tx *gorm.DB, userID uuid.UUID, word string, article *string) (*types.UnknownWord, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, wordID uuid.UUID, status types.WordStatus) error
	IncrementTimesSeen(ctx context.Context, tx *gorm.DB, wordID uuid.UUID) error
}

type unknownWordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnknownWordRepo(db *gorm.DB, baseLog *logger.Logger) UnknownWordRepo {
	return &unknownWordRepo{db: db, log: baseLog.With("repo", "UnknownWordRepo")}
}

func (r *unknownWordRepo) Create(ctx context.Context, tx *gorm.DB, words []*types.UnknownWord) ([]*types.UnknownWord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(words) == 0 {
		return []*types.UnknownWord{}, nil
	}
	if err := transaction.WithContext(ctx).Omit("Stories").Create(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (r *unknownWordRepo) GetByID(ctx context.Context, tx *gorm.DB, wordID uuid.UUID) (*types.UnknownWord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if wordID == uuid.Nil {
		return nil, nil
	}
	var word types.UnknownWord
	err := transaction.WithContext(ctx).
		Where("id = ?", wordID).
		Limit(1).
		Find(&word).Error
	if err != nil {
		return nil, err
	}
	if word.ID == uuid.Nil {
		return nil, nil
	}
	return &word, nil
}

func (r *unknownWordRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UnknownWord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UnknownWord
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unknownWordRepo) GetByUserWordArticle(ctx context.Context, tx *gorm.DB, userID uuid.UUID, word string, article *string) (*types.UnknownWord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || word == "" {
		return nil, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ? AND LOWER(word) = LOWER(?)", userID, word)
	if article == nil {
		q = q.Where("article IS NULL")
	} else {
		q = q.Where("article = ?", *article)
	}
	var row types.UnknownWord
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *unknownWordRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, wordID uuid.UUID, status types.WordStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if wordID == uuid.Nil {
		return nil
	}
	res := transaction.WithContext(ctx).
		Model(&types.UnknownWord{}).
		Where("id = ?", wordID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *unknownWordRepo) IncrementTimesSeen(ctx context.Context, tx *gorm.DB, wordID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if wordID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.UnknownWord{}).
		Where("id = ?", wordID).
		Updates(map[string]interface{}{
			"times_seen": gorm.Expr("times_seen + 1"),
			"updated_at": time.Now(),
		}).Error
}
