package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/cache"
	"github.com/storylingo/backend/internal/jobs"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/services"
)

type Services struct {
	OpenAI         services.OpenAIClient
	Bucket         services.BucketService
	TTS            services.TTSProviderService
	StoryAssembler services.StoryAssembler
	LemmaAssembler services.LemmaAssembler
	AudioAssembler services.AudioAssembler
	StoryCache     cache.StoryCache
	Story          services.StoryService
	UnknownWord    services.UnknownWordService
	Vocabulary     services.VocabularyService
	Auth           services.AuthService
	User           services.UserService

	JobService jobs.Service
	JobWorker  *jobs.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init bucket service: %w", err)
	}
	ttsService, err := services.NewTTSProviderService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init tts provider: %w", err)
	}
	storyCache, err := cache.NewRedisStoryCache(log, cfg.StoryCacheTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init story cache: %w", err)
	}

	storyAssembler := services.NewStoryAssembler(log, openaiClient, reposet.Vocabulary)
	lemmaAssembler := services.NewLemmaAssembler(log, openaiClient)
	audioAssembler := services.NewAudioAssembler(log, ttsService, bucketService)

	storyService := services.NewStoryService(log, reposet.Story, storyAssembler, lemmaAssembler, audioAssembler, storyCache)
	unknownWordService := services.NewUnknownWordService(log, db, reposet.UnknownWord, reposet.Story)
	vocabularyService := services.NewVocabularyService(log, reposet.Vocabulary)
	authService := services.NewAuthService(db, log, reposet.User, reposet.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(log, reposet.User)

	jobService := jobs.NewService(log, reposet.JobRun)
	registry := jobs.NewRegistry()
	if err := registry.Register(jobs.NewWordStatusHandler(log, unknownWordService)); err != nil {
		return Services{}, fmt.Errorf("register job handlers: %w", err)
	}
	jobWorker := jobs.NewWorker(db, log, reposet.JobRun, registry)

	return Services{
		OpenAI:         openaiClient,
		Bucket:         bucketService,
		TTS:            ttsService,
		StoryAssembler: storyAssembler,
		LemmaAssembler: lemmaAssembler,
		AudioAssembler: audioAssembler,
		StoryCache:     storyCache,
		Story:          storyService,
		UnknownWord:    unknownWordService,
		Vocabulary:     vocabularyService,
		Auth:           authService,
		User:           userService,
		JobService:     jobService,
		JobWorker:      jobWorker,
	}, nil
}
