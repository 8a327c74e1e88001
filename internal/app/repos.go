package app

import (
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/repos"
)

type Repos struct {
	User        repos.UserRepo
	UserToken   repos.UserTokenRepo
	Vocabulary  repos.VocabularyRepo
	Story       repos.StoryRepo
	UnknownWord repos.UnknownWordRepo
	JobRun      repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		UserToken:   repos.NewUserTokenRepo(db, log),
		Vocabulary:  repos.NewVocabularyRepo(db, log),
		Story:       repos.NewStoryRepo(db, log),
		UnknownWord: repos.NewUnknownWordRepo(db, log),
		JobRun:      repos.NewJobRunRepo(db, log),
	}
}
