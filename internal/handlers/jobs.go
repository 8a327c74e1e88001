package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/jobs"
)

const maxStatusWait = 30 * time.Second

type JobsHandler struct {
	jobService jobs.Service
}

func NewJobsHandler(jobService jobs.Service) *JobsHandler {
	return &JobsHandler{jobService: jobService}
}

// GetStatus reports the job's current status. With ?wait=<duration> the
// request blocks until the job is terminal or the (bounded) wait expires;
// an expired wait still answers 200 with the last seen status.
func (jh *JobsHandler) GetStatus(c *gin.Context) {
	queueName := c.Param("queueName")
	jobID, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	job, err := jh.jobService.Status(c.Request.Context(), queueName, jobID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	waitRaw := c.Query("wait")
	if waitRaw == "" || jobs.Terminal(job.Status) {
		RespondOK(c, gin.H{"status": job.Status})
		return
	}

	wait, err := time.ParseDuration(waitRaw)
	if err != nil || wait <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_wait", err)
		return
	}
	if wait > maxStatusWait {
		wait = maxStatusWait
	}

	interval := 500 * time.Millisecond
	maxPolls := int(wait / interval)
	if maxPolls < 1 {
		maxPolls = 1
	}
	poller := &jobs.Poller{
		Interval: interval,
		MaxPolls: maxPolls,
		Lookup: func(ctx context.Context, queueName string, jobID uuid.UUID) (string, error) {
			j, err := jh.jobService.Status(ctx, queueName, jobID)
			if err != nil {
				return "", err
			}
			return j.Status, nil
		},
	}

	status, err := poller.PollUntilTerminal(c.Request.Context(), queueName, jobID)
	if err != nil && !apperr.IsKind(err, apperr.KindJobTimeout) {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": status})
}
