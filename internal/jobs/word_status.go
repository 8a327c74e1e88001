package jobs

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/services"
	"github.com/storylingo/backend/internal/types"
)

// WordStatusHandler applies one queued word-status mutation.
type WordStatusHandler struct {
	log          *logger.Logger
	unknownWords services.UnknownWordService
}

func NewWordStatusHandler(log *logger.Logger, unknownWords services.UnknownWordService) *WordStatusHandler {
	return &WordStatusHandler{
		log:          log.With("handler", "WordStatusHandler"),
		unknownWords: unknownWords,
	}
}

func (h *WordStatusHandler) Type() string { return WordStatusJobType }

func (h *WordStatusHandler) Run(jc *Context) error {
	wordID := jc.PayloadUUID("word_id")
	if wordID == uuid.Nil {
		return fmt.Errorf("payload missing word_id")
	}

	var err error
	switch types.WordStatus(jc.PayloadString("target_status")) {
	case types.WordStatusLearned:
		err = h.unknownWords.MarkAsLearned(jc.Ctx, wordID)
	case types.WordStatusLearning:
		err = h.unknownWords.MarkAsLearning(jc.Ctx, wordID)
	default:
		return fmt.Errorf("payload has invalid target_status %q", jc.PayloadString("target_status"))
	}
	if err != nil {
		return err
	}

	jc.Complete()
	return nil
}
