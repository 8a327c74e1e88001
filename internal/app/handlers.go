package app

import (
	"github.com/storylingo/backend/internal/handlers"
	"github.com/storylingo/backend/internal/logger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Story       *handlers.StoryHandler
	UnknownWord *handlers.UnknownWordHandler
	Vocabulary  *handlers.VocabularyHandler
	Jobs        *handlers.JobsHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:        handlers.NewAuthHandler(services.Auth),
		User:        handlers.NewUserHandler(services.User),
		Story:       handlers.NewStoryHandler(log, services.Story, services.UnknownWord),
		UnknownWord: handlers.NewUnknownWordHandler(services.UnknownWord, services.JobService),
		Vocabulary:  handlers.NewVocabularyHandler(services.Vocabulary),
		Jobs:        handlers.NewJobsHandler(services.JobService),
	}
}
