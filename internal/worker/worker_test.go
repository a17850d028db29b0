package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/intro-matcher/internal/models"
	"github.com/xaenox/intro-matcher/internal/storage"
	"go.uber.org/zap"
)

// staticClassifier answers the same for every message.
type staticClassifier struct {
	answer bool
	seen   []string
}

func (c *staticClassifier) IsIntroduction(ctx context.Context, text string) bool {
	c.seen = append(c.seen, text)
	return c.answer
}

// flakyStore fails claims until the failure budget runs out.
type flakyStore struct {
	*storage.MemoryStorage
	failures int
}

func (s *flakyStore) ClaimNextJob(ctx context.Context) (*models.Job, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("store unreachable")
	}
	return s.MemoryStorage.ClaimNextJob(ctx)
}

func testConfig() Config {
	return Config{
		PollDelay:     time.Millisecond,
		ErrorDelay:    time.Millisecond,
		RecoveryDelay: time.Millisecond,
	}
}

func enqueue(t *testing.T, store *storage.MemoryStorage, text string, userID, chatID int64) *models.Job {
	t.Helper()
	job := &models.Job{
		ID:       uuid.New(),
		ChatID:   chatID,
		UserID:   userID,
		Username: "alex",
		Text:     text,
	}
	if err := store.EnqueueJob(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return job
}

func TestIteration_IntroductionRecorded(t *testing.T) {
	store := storage.NewMemoryStorage()
	job := enqueue(t, store, "Hi, I'm Alex, a backend engineer from Berlin interested in distributed systems and climbing.", 42, -100)

	clf := &staticClassifier{answer: true}
	w := New(store, clf, testConfig(), zap.NewNop())

	if delay := w.runIteration(context.Background()); delay != 0 {
		t.Fatalf("expected no delay after processing a job, got %s", delay)
	}

	status, _ := store.JobStatus(job.ID)
	if status != models.JobStatusDone {
		t.Fatalf("expected done, got %s", status)
	}
	if count := store.IntroductionCount(42, -100); count != 1 {
		t.Fatalf("expected 1 introduction, got %d", count)
	}
	if len(clf.seen) != 1 || clf.seen[0] != job.Text {
		t.Fatalf("classifier saw %v", clf.seen)
	}
}

func TestIteration_NotAnIntroduction(t *testing.T) {
	store := storage.NewMemoryStorage()
	job := enqueue(t, store, "lol same", 42, -100)

	w := New(store, &staticClassifier{answer: false}, testConfig(), zap.NewNop())
	w.runIteration(context.Background())

	status, _ := store.JobStatus(job.ID)
	if status != models.JobStatusDone {
		t.Fatalf("expected done, got %s", status)
	}
	if count := store.IntroductionCount(42, -100); count != 0 {
		t.Fatalf("expected no introductions, got %d", count)
	}
}

func TestIteration_DuplicateIntroductionIsBenign(t *testing.T) {
	store := storage.NewMemoryStorage()
	existing := &models.Introduction{ChatID: -100, UserID: 42, Username: "alex", RawText: "earlier intro"}
	if err := store.SaveIntroduction(context.Background(), existing); err != nil {
		t.Fatalf("seed introduction: %v", err)
	}

	job := enqueue(t, store, "Hi again, I'm Alex, engineer from Berlin, into climbing and systems.", 42, -100)

	w := New(store, &staticClassifier{answer: true}, testConfig(), zap.NewNop())
	w.runIteration(context.Background())

	status, _ := store.JobStatus(job.ID)
	if status != models.JobStatusDone {
		t.Fatalf("expected done despite duplicate, got %s", status)
	}
	if count := store.IntroductionCount(42, -100); count != 1 {
		t.Fatalf("expected exactly 1 introduction, got %d", count)
	}
}

func TestIteration_EmptyQueueReturnsPollDelay(t *testing.T) {
	store := storage.NewMemoryStorage()
	w := New(store, &staticClassifier{}, testConfig(), zap.NewNop())

	if delay := w.runIteration(context.Background()); delay != w.config.PollDelay {
		t.Fatalf("expected poll delay, got %s", delay)
	}
}

func TestIteration_ClaimErrorReturnsErrorDelay(t *testing.T) {
	store := &flakyStore{MemoryStorage: storage.NewMemoryStorage(), failures: 1}
	w := New(store, &staticClassifier{}, testConfig(), zap.NewNop())

	if delay := w.runIteration(context.Background()); delay != w.config.ErrorDelay {
		t.Fatalf("expected error delay, got %s", delay)
	}
}

func TestRun_SurvivesClaimErrors(t *testing.T) {
	store := &flakyStore{MemoryStorage: storage.NewMemoryStorage(), failures: 3}
	job := enqueue(t, store.MemoryStorage, "Hi, I'm Alex, engineer from Berlin, ten words at least here.", 42, -100)

	w := New(store, &staticClassifier{answer: true}, testConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		status, _ := store.JobStatus(job.ID)
		if status == models.JobStatusDone {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job never completed, status %s", status)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := storage.NewMemoryStorage()
	w := New(store, &staticClassifier{}, testConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestCommit_Idempotent(t *testing.T) {
	store := storage.NewMemoryStorage()
	job := enqueue(t, store, "Hi, I'm Alex, backend engineer from Berlin who likes climbing.", 42, -100)
	if _, err := store.ClaimNextJob(context.Background()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	committer := NewCommitter(store, zap.NewNop())

	// Simulate a crash-and-retry double commit.
	committer.Commit(context.Background(), job, true)
	committer.Commit(context.Background(), job, true)

	if count := store.IntroductionCount(42, -100); count != 1 {
		t.Fatalf("expected 1 introduction after double commit, got %d", count)
	}
	status, _ := store.JobStatus(job.ID)
	if status != models.JobStatusDone {
		t.Fatalf("expected done, got %s", status)
	}
}
