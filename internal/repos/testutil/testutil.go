package testutil

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}

		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}

		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			dbErr = err
			return
		}

		if err := db.AutoMigrate(
			&types.User{},
			&types.UserToken{},
			&types.VocabularyWord{},
			&types.Story{},
			&types.UnknownWord{},
			&types.JobRun{},
		); err != nil {
			dbErr = err
			return
		}
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

// Tx opens a transaction rolled back when the test finishes so tests leave
// no rows behind.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedStory(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, text string) *types.Story {
	tb.Helper()
	s := &types.Story{
		ID:              uuid.New(),
		UserID:          userID,
		StoryText:       text,
		TranslationText: "translation",
		AudioURL:        "https://storage.googleapis.com/test/audio.mp3",
		LanguageCode:    "DE",
	}
	if err := tx.WithContext(ctx).Omit("UnknownWords").Create(s).Error; err != nil {
		tb.Fatalf("seed story: %v", err)
	}
	return s
}

func SeedUnknownWord(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, word string, article *string) *types.UnknownWord {
	tb.Helper()
	w := &types.UnknownWord{
		ID:           uuid.New(),
		UserID:       userID,
		Word:         word,
		Translation:  "translation",
		Article:      article,
		Status:       types.WordStatusLearning,
		TimesSeen:    1,
		LanguageCode: "DE",
	}
	if err := tx.WithContext(ctx).Omit("Stories").Create(w).Error; err != nil {
		tb.Fatalf("seed unknown word: %v", err)
	}
	return w
}

func SeedJobRun(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID, entityID uuid.UUID, status string) *types.JobRun {
	tb.Helper()
	j := &types.JobRun{
		ID:          uuid.New(),
		QueueName:   "word-status",
		JobType:     "word-status",
		OwnerUserID: ownerID,
		EntityType:  "unknown_word",
		EntityID:    entityID,
		Status:      status,
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job run: %v", err)
	}
	return j
}

func PtrString(s string) *string { return &s }
