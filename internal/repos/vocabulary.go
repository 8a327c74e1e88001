package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"
)

type VocabularyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, words []*types.VocabularyWord) ([]*types.VocabularyWord, error)
	GetByUserAndLanguage(ctx context.Context, tx *gorm.DB, userID uuid.UUID, languageCode string) ([]*types.VocabularyWord, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.VocabularyWord, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, wordID uuid.UUID) error
}

type vocabularyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return &vocabularyRepo{db: db, log: baseLog.With("repo", "VocabularyRepo")}
}

func (r *vocabularyRepo) Create(ctx context.Context, tx *gorm.DB, words []*types.VocabularyWord) ([]*types.VocabularyWord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(words) == 0 {
		return []*types.VocabularyWord{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (r *vocabularyRepo) GetByUserAndLanguage(ctx context.Context, tx *gorm.DB, userID uuid.UUID, languageCode string) ([]*types.VocabularyWord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.VocabularyWord
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND language_code = ?", userID, languageCode).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *vocabularyRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.VocabularyWord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.VocabularyWord
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *vocabularyRepo) DeleteByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, wordID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || wordID == uuid.Nil {
		return nil
	}
	res := transaction.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, wordID).
		Delete(&types.VocabularyWord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
