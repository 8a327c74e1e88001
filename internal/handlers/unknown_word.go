package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/jobs"
	"github.com/storylingo/backend/internal/services"
	"github.com/storylingo/backend/internal/types"
)

type UnknownWordHandler struct {
	unknownWords services.UnknownWordService
	jobService   jobs.Service
}

func NewUnknownWordHandler(unknownWords services.UnknownWordService, jobService jobs.Service) *UnknownWordHandler {
	return &UnknownWordHandler{
		unknownWords: unknownWords,
		jobService:   jobService,
	}
}

// enqueueStatusChange accepts the mutation and returns its job handle; the
// client polls /api/jobs/:queueName/:jobId for the outcome.
func (uh *UnknownWordHandler) enqueueStatusChange(c *gin.Context, target types.WordStatus) {
	userID, ok := authedUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	wordID, err := uuid.Parse(c.Param("wordId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_word_id", err)
		return
	}

	job, err := uh.jobService.EnqueueWordStatus(c.Request.Context(), userID, wordID, target)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"queueName": job.QueueName,
		"jobId":     job.ID.String(),
	})
}

func (uh *UnknownWordHandler) MarkAsLearned(c *gin.Context) {
	uh.enqueueStatusChange(c, types.WordStatusLearned)
}

func (uh *UnknownWordHandler) MarkAsLearning(c *gin.Context) {
	uh.enqueueStatusChange(c, types.WordStatusLearning)
}

func (uh *UnknownWordHandler) GetAllWords(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	words, err := uh.unknownWords.GetUnknownWords(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, words)
}
