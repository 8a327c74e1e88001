package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storylingo/backend/internal/repos"
	"github.com/storylingo/backend/internal/types"
)

// Context is the execution handle for a single claimed job. Handlers report
// their outcome through Complete/Fail instead of touching the job_run row.
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	payload map[string]any
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo) *Context {
	c := &Context{
		Ctx:  ctx,
		DB:   db,
		Job:  job,
		Repo: repo,
	}
	_ = c.decodePayload()
	return c
}

// decodePayload never fails the job on its own; handlers validate the
// fields they need.
func (c *Context) decodePayload() error {
	if c.Job == nil || len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

// Payload returns the decoded payload map, never nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

// PayloadUUID reads a payload field as a uuid, uuid.Nil when absent or
// malformed.
func (c *Context) PayloadUUID(key string) uuid.UUID {
	raw, ok := c.Payload()[key].(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// PayloadString reads a payload field as a string, "" when absent.
func (c *Context) PayloadString(key string) string {
	s, _ := c.Payload()[key].(string)
	return s
}

func (c *Context) Heartbeat() {
	if c == nil || c.Repo == nil || c.Job == nil {
		return
	}
	_ = c.Repo.Heartbeat(c.ctx(), nil, c.Job.ID)
}

func (c *Context) Complete() {
	if c == nil || c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now()
	_ = c.Repo.UpdateFields(c.ctx(), nil, c.Job.ID, map[string]interface{}{
		"status":    StatusCompleted,
		"locked_at": nil,
	})
	c.Job.Status = StatusCompleted
	c.Job.LockedAt = nil
	c.Job.UpdatedAt = now
}

func (c *Context) Fail(err error) {
	if c == nil || c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	_ = c.Repo.UpdateFields(c.ctx(), nil, c.Job.ID, map[string]interface{}{
		"status":        StatusFailed,
		"last_error":    msg,
		"last_error_at": now,
		"locked_at":     nil,
	})
	c.Job.Status = StatusFailed
	c.Job.LastError = msg
	c.Job.LastErrorAt = &now
	c.Job.LockedAt = nil
	c.Job.UpdatedAt = now
}

func (c *Context) ctx() context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}
