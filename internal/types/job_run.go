package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobRun is one background mutation observed by clients through the
// (queue_name, id) -> status lookup.
type JobRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QueueName   string         `gorm:"index;not null;column:queue_name" json:"queue_name"`
	JobType     string         `gorm:"index;not null;column:job_type" json:"job_type"`
	OwnerUserID uuid.UUID      `gorm:"index;not null;column:owner_user_id" json:"owner_user_id"`
	EntityType  string         `gorm:"column:entity_type" json:"entity_type"`
	EntityID    uuid.UUID      `gorm:"index;type:uuid;column:entity_id" json:"entity_id"`
	Status      string         `gorm:"index;not null;default:waiting;column:status" json:"status"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	Attempts    int            `gorm:"not null;default:0;column:attempts" json:"attempts"`
	LastError   string         `gorm:"column:last_error" json:"last_error,omitempty"`
	LastErrorAt *time.Time     `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	RunAt       *time.Time     `gorm:"column:run_at" json:"run_at,omitempty"`
	LockedAt    *time.Time     `gorm:"column:locked_at" json:"-"`
	HeartbeatAt *time.Time     `gorm:"column:heartbeat_at" json:"-"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (JobRun) TableName() string {
	return "job_run"
}
