package types

import (
	"time"

	"github.com/google/uuid"
)

// VocabularyWord is a word the user already knows. The set seeds story
// generation and filters lemma extraction.
type VocabularyWord struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"index;not null;column:user_id" json:"user_id"`
	Word         string    `gorm:"not null;column:word" json:"word"`
	Translation  string    `gorm:"not null;column:translation" json:"translation"`
	Article      *string   `gorm:"column:article" json:"article"`
	LanguageCode string    `gorm:"not null;column:language_code" json:"language_code"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (VocabularyWord) TableName() string {
	return "vocabulary_word"
}
