package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/requestdata"
	"github.com/storylingo/backend/internal/services"
)

type StoryHandler struct {
	log          *logger.Logger
	storyService services.StoryService
	unknownWords services.UnknownWordService
}

func NewStoryHandler(log *logger.Logger, storyService services.StoryService, unknownWords services.UnknownWordService) *StoryHandler {
	return &StoryHandler{
		log:          log.With("handler", "StoryHandler"),
		storyService: storyService,
		unknownWords: unknownWords,
	}
}

func authedUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// GenerateStory runs the whole pipeline synchronously: generate, persist the
// story, upsert its unknown words, link them, and return the linked story.
func (sh *StoryHandler) GenerateStory(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req struct {
		Subject              string `json:"subject"`
		LanguageCode         string `json:"languageCode"`
		OriginalLanguageCode string `json:"originalLanguageCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	languageCode, err := languages.Parse(req.LanguageCode)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_language", err)
		return
	}
	originalLanguageCode, err := languages.Parse(req.OriginalLanguageCode)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_language", err)
		return
	}

	ctx := c.Request.Context()
	experience, err := sh.storyService.GenerateFullStoryExperience(ctx, userID, languageCode, originalLanguageCode, req.Subject)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	savedStory, err := sh.storyService.SaveStoryToDB(ctx, experience.Story)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	savedWords, err := sh.unknownWords.SaveUnknownWords(ctx, experience.UnknownWords, userID, savedStory.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	if err := sh.storyService.ConnectUnknownWords(ctx, savedStory.ID, savedWords); err != nil {
		RespondAppError(c, err)
		return
	}

	linked, err := sh.storyService.GetStoryByID(ctx, savedStory.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	sh.log.Info("Story generated",
		"user_id", userID.String(),
		"story_id", savedStory.ID.String(),
		"new_unknown_words", len(savedWords),
		"known_words_used", len(experience.KnownWords),
	)
	RespondOK(c, linked)
}

func (sh *StoryHandler) GetAllStories(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	stories, err := sh.storyService.GetAllStories(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, stories)
}
