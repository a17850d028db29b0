package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/xaenox/intro-matcher/internal/models"
)

// ErrDuplicateIntroduction signals that an introduction for the same
// (user_id, chat_id) pair already exists. Callers treat it as benign:
// the desired end state already holds.
var ErrDuplicateIntroduction = errors.New("introduction already exists for this user and chat")

type Storage interface {
	JobStorage
	IntroductionStorage

	UpsertChat(ctx context.Context, chat *models.Chat) error
	Close() error
}

// JobStorage is the queue side of the store.
type JobStorage interface {
	EnqueueJob(ctx context.Context, job *models.Job) error

	// ClaimNextJob atomically claims the oldest pending job and moves it
	// to in_progress. Returns (nil, nil) when the queue is empty. Two
	// concurrent callers never receive the same job.
	ClaimNextJob(ctx context.Context) (*models.Job, error)

	// MarkJobDone and MarkJobFailed transition a claimed job to its
	// terminal status. Repeat calls on the same id are no-ops.
	MarkJobDone(ctx context.Context, id uuid.UUID) error
	MarkJobFailed(ctx context.Context, id uuid.UUID) error
}

type IntroductionStorage interface {
	// SaveIntroduction inserts a confirmed introduction. Returns
	// ErrDuplicateIntroduction if the (user_id, chat_id) pair already
	// has one.
	SaveIntroduction(ctx context.Context, intro *models.Introduction) error

	HasIntroduction(ctx context.Context, userID, chatID int64) (bool, error)
}
