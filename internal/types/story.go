package types

import (
	"time"

	"github.com/google/uuid"
)

// Story is immutable after create except for its link to unknown words,
// which is written in a second phase once the word rows have ids.
type Story struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"index;not null;column:user_id" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	StoryText       string         `gorm:"not null;column:story_text" json:"story_text"`
	TranslationText string         `gorm:"not null;column:translation_text" json:"translation_text"`
	AudioURL        string         `gorm:"not null;column:audio_url" json:"audio_url"`
	LanguageCode    string         `gorm:"not null;column:language_code" json:"language_code"`
	UnknownWords    []*UnknownWord `gorm:"many2many:story_unknown_words" json:"unknown_words"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Story) TableName() string {
	return "story"
}
