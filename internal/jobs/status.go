package jobs

// Status is the lifecycle of one JobRun as clients observe it.
const (
	StatusWaiting   = "waiting"
	StatusActive    = "active"
	StatusDelayed   = "delayed"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPaused    = "paused"
)

// Terminal reports whether a job in this status will never run again.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}
