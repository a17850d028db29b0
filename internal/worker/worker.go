package worker

import (
	"context"
	"time"

	"github.com/xaenox/intro-matcher/internal/classifier"
	"github.com/xaenox/intro-matcher/internal/storage"
	"go.uber.org/zap"
)

type Config struct {
	// PollDelay is slept when the queue is empty.
	PollDelay time.Duration
	// ErrorDelay is slept after a failed claim.
	ErrorDelay time.Duration
	// RecoveryDelay is slept after a recovered panic.
	RecoveryDelay time.Duration
}

// Worker drives the pipeline: claim a job, classify it, commit the
// result. One job at a time; several Worker instances may run against
// the same store, the atomic claim keeps them from colliding.
type Worker struct {
	storage    storage.Storage
	classifier classifier.Classifier
	committer  *Committer
	config     Config
	logger     *zap.Logger
}

func New(storage storage.Storage, clf classifier.Classifier, config Config, logger *zap.Logger) *Worker {
	return &Worker{
		storage:    storage,
		classifier: clf,
		committer:  NewCommitter(storage, logger),
		config:     config,
		logger:     logger,
	}
}

// Run loops until ctx is cancelled. Claim errors and panics are
// absorbed with a delay; the loop itself never dies on its own.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		zap.Duration("poll_delay", w.config.PollDelay))

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("worker stopping")
			return err
		}

		delay := w.runIteration(ctx)
		if delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				w.logger.Info("worker stopping")
				return err
			}
		}
	}
}

// runIteration processes at most one job and returns how long the loop
// should pause before the next iteration.
func (w *Worker) runIteration(ctx context.Context) (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic in worker iteration", zap.Any("panic", r))
			delay = w.config.RecoveryDelay
		}
	}()

	job, err := w.storage.ClaimNextJob(ctx)
	if err != nil {
		w.logger.Error("failed to claim job", zap.Error(err))
		return w.config.ErrorDelay
	}
	if job == nil {
		return w.config.PollDelay
	}

	isIntro := w.classifier.IsIntroduction(ctx, job.Text)

	w.logger.Info("job classified",
		zap.String("job_id", job.ID.String()),
		zap.Bool("is_introduction", isIntro))

	w.committer.Commit(ctx, job, isIntro)
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
