package worker

import (
	"context"
	"errors"

	"github.com/xaenox/intro-matcher/internal/models"
	"github.com/xaenox/intro-matcher/internal/storage"
	"go.uber.org/zap"
)

// Committer persists a classification result and applies the job's
// single terminal status transition.
type Committer struct {
	storage storage.Storage
	logger  *zap.Logger
}

func NewCommitter(storage storage.Storage, logger *zap.Logger) *Committer {
	return &Committer{
		storage: storage,
		logger:  logger,
	}
}

// Commit writes the introduction when the classifier confirmed one and
// marks the job done. A duplicate introduction is benign: the end state
// "one introduction per user per chat" already holds, so the job is
// still done. Any other persistence error marks the job failed.
func (c *Committer) Commit(ctx context.Context, job *models.Job, isIntroduction bool) {
	if isIntroduction {
		intro := &models.Introduction{
			ChatID:   job.ChatID,
			UserID:   job.UserID,
			Username: job.Username,
			RawText:  job.Text,
		}

		err := c.storage.SaveIntroduction(ctx, intro)
		switch {
		case err == nil:
			c.logger.Info("introduction recorded",
				zap.String("job_id", job.ID.String()),
				zap.Int64("user_id", job.UserID),
				zap.Int64("chat_id", job.ChatID))
		case errors.Is(err, storage.ErrDuplicateIntroduction):
			c.logger.Debug("introduction already recorded",
				zap.String("job_id", job.ID.String()),
				zap.Int64("user_id", job.UserID),
				zap.Int64("chat_id", job.ChatID))
		default:
			c.logger.Error("failed to save introduction",
				zap.Error(err),
				zap.String("job_id", job.ID.String()))
			c.markFailed(ctx, job)
			return
		}
	}

	if err := c.storage.MarkJobDone(ctx, job.ID); err != nil {
		c.logger.Error("failed to mark job done",
			zap.Error(err),
			zap.String("job_id", job.ID.String()))
	}
}

func (c *Committer) markFailed(ctx context.Context, job *models.Job) {
	if err := c.storage.MarkJobFailed(ctx, job.ID); err != nil {
		c.logger.Error("failed to mark job failed",
			zap.Error(err),
			zap.String("job_id", job.ID.String()))
	}
}
