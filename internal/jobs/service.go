package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/repos"
	"github.com/storylingo/backend/internal/types"
)

const (
	WordStatusQueue   = "word-status"
	WordStatusJobType = "word_status_update"

	EntityTypeUnknownWord = "unknown_word"
)

// Service is the submission and lookup side of the job protocol. Submission
// returns as soon as the row is queued; callers follow up via Status.
type Service interface {
	EnqueueWordStatus(ctx context.Context, userID uuid.UUID, wordID uuid.UUID, targetStatus types.WordStatus) (*types.JobRun, error)
	Status(ctx context.Context, queueName string, jobID uuid.UUID) (*types.JobRun, error)
}

type service struct {
	log  *logger.Logger
	repo repos.JobRunRepo
}

func NewService(log *logger.Logger, repo repos.JobRunRepo) Service {
	return &service{
		log:  log.With("service", "JobService"),
		repo: repo,
	}
}

type wordStatusPayload struct {
	WordID       string `json:"word_id"`
	TargetStatus string `json:"target_status"`
}

func (s *service) EnqueueWordStatus(ctx context.Context, userID uuid.UUID, wordID uuid.UUID, targetStatus types.WordStatus) (*types.JobRun, error) {
	if wordID == uuid.Nil {
		return nil, apperr.New(apperr.KindValidation, "word id is required", nil, nil)
	}
	if targetStatus != types.WordStatusLearning && targetStatus != types.WordStatusLearned {
		return nil, apperr.New(apperr.KindValidation, "invalid target status", nil, map[string]any{"target_status": string(targetStatus)})
	}

	payload, err := json.Marshal(wordStatusPayload{
		WordID:       wordID.String(),
		TargetStatus: string(targetStatus),
	})
	if err != nil {
		return nil, apperr.New(apperr.KindUnknown, "failed to encode job payload", err, nil)
	}

	job := &types.JobRun{
		ID:          uuid.New(),
		QueueName:   WordStatusQueue,
		JobType:     WordStatusJobType,
		OwnerUserID: userID,
		EntityType:  EntityTypeUnknownWord,
		EntityID:    wordID,
		Status:      StatusWaiting,
		Payload:     datatypes.JSON(payload),
	}
	created, err := s.repo.Create(ctx, nil, []*types.JobRun{job})
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to enqueue job", err, map[string]any{"word_id": wordID.String()})
	}

	s.log.Info("Job enqueued",
		"queue_name", job.QueueName,
		"job_id", job.ID.String(),
		"word_id", wordID.String(),
		"target_status", string(targetStatus),
	)
	return created[0], nil
}

func (s *service) Status(ctx context.Context, queueName string, jobID uuid.UUID) (*types.JobRun, error) {
	job, err := s.repo.GetByQueueAndID(ctx, nil, queueName, jobID)
	if err != nil {
		return nil, apperr.New(apperr.KindPersistence, "failed to load job", err, map[string]any{"job_id": jobID.String()})
	}
	if job == nil {
		return nil, apperr.New(apperr.KindJobNotFound, "job not found", nil, map[string]any{
			"queue_name": queueName,
			"job_id":     jobID.String(),
		})
	}
	return job, nil
}
