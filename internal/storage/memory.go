package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/intro-matcher/internal/models"
)

// MemoryStorage keeps everything in process memory. It mirrors the
// claim and uniqueness semantics of the Postgres implementation and is
// used for local runs and tests.
type MemoryStorage struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]*models.Job
	intros map[introKey]*models.Introduction
	chats  map[int64]*models.Chat
	nextID int64
}

type introKey struct {
	userID int64
	chatID int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		jobs:   make(map[uuid.UUID]*models.Job),
		intros: make(map[introKey]*models.Introduction),
		chats:  make(map[int64]*models.Chat),
	}
}

func (s *MemoryStorage) EnqueueJob(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *job
	stored.Status = models.JobStatusPending
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.jobs[stored.ID] = &stored

	job.Status = stored.Status
	job.CreatedAt = stored.CreatedAt
	return nil
}

func (s *MemoryStorage) ClaimNextJob(ctx context.Context) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*models.Job
	for _, job := range s.jobs {
		if job.Status == models.JobStatusPending {
			pending = append(pending, job)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].ID.String() < pending[j].ID.String()
	})

	claimed := pending[0]
	claimed.Status = models.JobStatusInProgress

	copied := *claimed
	return &copied, nil
}

func (s *MemoryStorage) MarkJobDone(ctx context.Context, id uuid.UUID) error {
	return s.setJobStatus(id, models.JobStatusDone)
}

func (s *MemoryStorage) MarkJobFailed(ctx context.Context, id uuid.UUID) error {
	return s.setJobStatus(id, models.JobStatusFailed)
}

func (s *MemoryStorage) setJobStatus(id uuid.UUID, status models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil
	}
	// Transitions only apply to claimed jobs; repeats are no-ops.
	if job.Status != models.JobStatusInProgress {
		return nil
	}

	job.Status = status
	return nil
}

func (s *MemoryStorage) SaveIntroduction(ctx context.Context, intro *models.Introduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := introKey{userID: intro.UserID, chatID: intro.ChatID}
	if _, exists := s.intros[key]; exists {
		return ErrDuplicateIntroduction
	}

	s.nextID++
	stored := *intro
	stored.ID = s.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.intros[key] = &stored

	intro.ID = stored.ID
	intro.CreatedAt = stored.CreatedAt
	return nil
}

func (s *MemoryStorage) HasIntroduction(ctx context.Context, userID, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.intros[introKey{userID: userID, chatID: chatID}]
	return exists, nil
}

func (s *MemoryStorage) UpsertChat(ctx context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *chat
	if stored.AddedAt.IsZero() {
		stored.AddedAt = time.Now()
	}
	s.chats[stored.ID] = &stored
	return nil
}

// JobStatus reports the current status of a job. Test helper.
func (s *MemoryStorage) JobStatus(id uuid.UUID) (models.JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return "", false
	}
	return job.Status, true
}

// IntroductionCount reports how many introductions exist for a pair. Test helper.
func (s *MemoryStorage) IntroductionCount(userID, chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.intros[introKey{userID: userID, chatID: chatID}]; exists {
		return 1
	}
	return 0
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
