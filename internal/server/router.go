package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/storylingo/backend/internal/handlers"
	"github.com/storylingo/backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	UserHandler        *handlers.UserHandler
	StoryHandler       *handlers.StoryHandler
	UnknownWordHandler *handlers.UnknownWordHandler
	VocabularyHandler  *handlers.VocabularyHandler
	JobsHandler        *handlers.JobsHandler
}

func allowedOrigins() []string {
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		parts := strings.Split(raw, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		if len(origins) > 0 {
			return origins
		}
	}
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/auth/register", cfg.AuthHandler.Register)
	router.POST("/api/auth/login", cfg.AuthHandler.Login)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	api.POST("/auth/logout", cfg.AuthHandler.Logout)
	api.GET("/user", cfg.UserHandler.GetMe)

	api.POST("/stories/generate", cfg.StoryHandler.GenerateStory)
	api.GET("/stories", cfg.StoryHandler.GetAllStories)

	api.POST("/unknown-words/mark-as-learned/:wordId", cfg.UnknownWordHandler.MarkAsLearned)
	api.POST("/unknown-words/mark-as-learning/:wordId", cfg.UnknownWordHandler.MarkAsLearning)
	api.GET("/unknown-words/words", cfg.UnknownWordHandler.GetAllWords)

	api.GET("/vocabulary", cfg.VocabularyHandler.GetWords)
	api.POST("/vocabulary", cfg.VocabularyHandler.SaveWord)
	api.POST("/vocabulary/batch", cfg.VocabularyHandler.SaveWords)
	api.DELETE("/vocabulary/:wordId", cfg.VocabularyHandler.DeleteWord)

	api.GET("/jobs/:queueName/:jobId", cfg.JobsHandler.GetStatus)

	return router
}
