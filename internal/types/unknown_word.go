package types

import (
	"time"

	"github.com/google/uuid"
)

type WordStatus string

const (
	WordStatusLearning WordStatus = "learning"
	WordStatusLearned  WordStatus = "learned"
)

// UnknownWord is one lemma the user has not learned yet. A user has at most
// one row per (word, article); meeting the word again in a later story
// increments TimesSeen and links the story instead of inserting a duplicate.
type UnknownWord struct {
	ID                         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID                     uuid.UUID  `gorm:"index:idx_unknown_word_user_word,priority:1;not null;column:user_id" json:"user_id"`
	Word                       string     `gorm:"index:idx_unknown_word_user_word,priority:2;not null;column:word" json:"word"`
	Translation                string     `gorm:"not null;column:translation" json:"translation"`
	Article                    *string    `gorm:"column:article" json:"article"`
	ExampleSentence            string     `gorm:"column:example_sentence" json:"example_sentence"`
	ExampleSentenceTranslation string     `gorm:"column:example_sentence_translation" json:"example_sentence_translation"`
	Status                     WordStatus `gorm:"not null;default:learning;column:status" json:"status"`
	TimesSeen                  int        `gorm:"not null;default:1;column:times_seen" json:"times_seen"`
	LanguageCode               string     `gorm:"not null;column:language_code" json:"language_code"`
	Stories                    []*Story   `gorm:"many2many:story_unknown_words" json:"-"`
	CreatedAt                  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (UnknownWord) TableName() string {
	return "unknown_word"
}
