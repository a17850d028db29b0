package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xaenox/intro-matcher/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) EnqueueJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO intro_jobs (id, chat_id, user_id, username, text, message_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		job.ID,
		job.ChatID,
		job.UserID,
		job.Username,
		job.Text,
		job.MessageID,
		models.JobStatusPending,
	).Scan(&job.CreatedAt)

	if err != nil {
		return fmt.Errorf("error enqueueing job: %w", err)
	}

	job.Status = models.JobStatusPending
	return nil
}

// ClaimNextJob takes the oldest pending job. SKIP LOCKED keeps
// concurrent workers from claiming the same row.
func (s *PostgresStorage) ClaimNextJob(ctx context.Context) (*models.Job, error) {
	query := `
		UPDATE intro_jobs
		SET status = $1
		WHERE id = (
			SELECT id FROM intro_jobs
			WHERE status = $2
			ORDER BY created_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, chat_id, user_id, username, text, message_id, status, created_at`

	job := &models.Job{}
	err := s.db.QueryRowContext(ctx, query, models.JobStatusInProgress, models.JobStatusPending).Scan(
		&job.ID,
		&job.ChatID,
		&job.UserID,
		&job.Username,
		&job.Text,
		&job.MessageID,
		&job.Status,
		&job.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error claiming job: %w", err)
	}

	return job, nil
}

func (s *PostgresStorage) MarkJobDone(ctx context.Context, id uuid.UUID) error {
	return s.setJobStatus(ctx, id, models.JobStatusDone)
}

func (s *PostgresStorage) MarkJobFailed(ctx context.Context, id uuid.UUID) error {
	return s.setJobStatus(ctx, id, models.JobStatusFailed)
}

func (s *PostgresStorage) setJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	query := `
		UPDATE intro_jobs
		SET status = $1
		WHERE id = $2 AND status = $3`

	result, err := s.db.ExecContext(ctx, query, status, id, models.JobStatusInProgress)
	if err != nil {
		return fmt.Errorf("error updating job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	// Zero rows means the job already reached a terminal status; the
	// transition is idempotent, so this is not an error.
	if rowsAffected == 0 {
		s.logger.Debug("job status transition skipped",
			zap.String("job_id", id.String()),
			zap.String("status", string(status)))
	}

	return nil
}

func (s *PostgresStorage) SaveIntroduction(ctx context.Context, intro *models.Introduction) error {
	query := `
		INSERT INTO intros (chat_id, user_id, username, raw_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		intro.ChatID,
		intro.UserID,
		intro.Username,
		intro.RawText,
	).Scan(&intro.ID, &intro.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateIntroduction
		}
		return fmt.Errorf("error saving introduction: %w", err)
	}

	return nil
}

func (s *PostgresStorage) HasIntroduction(ctx context.Context, userID, chatID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM intros WHERE user_id = $1 AND chat_id = $2
		)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, chatID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking introduction: %w", err)
	}

	return exists, nil
}

func (s *PostgresStorage) UpsertChat(ctx context.Context, chat *models.Chat) error {
	query := `
		INSERT INTO chats (id, title, chat_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, chat_type = EXCLUDED.chat_type`

	if _, err := s.db.ExecContext(ctx, query, chat.ID, chat.Title, chat.Type); err != nil {
		return fmt.Errorf("error upserting chat: %w", err)
	}

	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
