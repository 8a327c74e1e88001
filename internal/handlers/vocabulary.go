package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/services"
	"github.com/storylingo/backend/internal/types"
)

type VocabularyHandler struct {
	vocabulary services.VocabularyService
}

func NewVocabularyHandler(vocabulary services.VocabularyService) *VocabularyHandler {
	return &VocabularyHandler{vocabulary: vocabulary}
}

type vocabularyWordRequest struct {
	Word         string  `json:"word"`
	Translation  string  `json:"translation"`
	Article      *string `json:"article"`
	LanguageCode string  `json:"languageCode"`
}

func (r vocabularyWordRequest) toType() *types.VocabularyWord {
	return &types.VocabularyWord{
		Word:         r.Word,
		Translation:  r.Translation,
		Article:      r.Article,
		LanguageCode: r.LanguageCode,
	}
}

func (vh *VocabularyHandler) GetWords(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	words, err := vh.vocabulary.GetWords(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, words)
}

func (vh *VocabularyHandler) SaveWord(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req vocabularyWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	word, err := vh.vocabulary.SaveWord(c.Request.Context(), userID, req.toType())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, word)
}

func (vh *VocabularyHandler) SaveWords(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		Words []vocabularyWordRequest `json:"words"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	words := make([]*types.VocabularyWord, 0, len(req.Words))
	for _, w := range req.Words {
		words = append(words, w.toType())
	}
	saved, err := vh.vocabulary.SaveWords(c.Request.Context(), userID, words)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, saved)
}

func (vh *VocabularyHandler) DeleteWord(c *gin.Context) {
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
	if err := vh.vocabulary.DeleteWord(c.Request.Context(), userID, wordID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
