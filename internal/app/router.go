package app

import (
	"github.com/gin-gonic/gin"

	"github.com/storylingo/backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		UserHandler:        handlers.User,
		StoryHandler:       handlers.Story,
		UnknownWordHandler: handlers.UnknownWord,
		VocabularyHandler:  handlers.Vocabulary,
		JobsHandler:        handlers.Jobs,
	})
}
