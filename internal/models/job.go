package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one candidate introduction message awaiting classification.
// A job is classified exactly once and then moves to done or failed;
// failed jobs are terminal and never requeued automatically.
type Job struct {
	ID        uuid.UUID `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	MessageID int       `json:"message_id"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
