package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"personabot/internal/domain"
)

// SessionRepository persists assessment sessions. Update applies an
// optimistic version check so that two writers racing on the same session
// cannot both commit; the loser gets ErrConcurrentModification.
type SessionRepository interface {
	Create(ctx context.Context, session domain.AssessmentSession) error
	Update(ctx context.Context, session domain.AssessmentSession) (domain.AssessmentSession, error)
	GetByID(ctx context.Context, id string) (domain.AssessmentSession, error)
	FindOpenByUser(ctx context.Context, userID string) (domain.AssessmentSession, error)
	DeleteAbandoned(ctx context.Context, before time.Time) (int64, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, session domain.AssessmentSession) error {
	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	const query = `
		INSERT INTO assessment_sessions (id, user_id, cursor, answers, completed, version, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Cursor,
		answers,
		session.Completed,
		session.Version,
		session.CreatedAt,
		session.CompletedAt,
	)
	return err
}

// Update writes the session only if the stored version still matches the
// version the caller read, then returns the session with its version
// bumped.
func (r *PgSessionRepository) Update(ctx context.Context, session domain.AssessmentSession) (domain.AssessmentSession, error) {
	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return domain.AssessmentSession{}, fmt.Errorf("marshal answers: %w", err)
	}
	const query = `
		UPDATE assessment_sessions
		SET cursor = $1, answers = $2, completed = $3, completed_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`
	tag, err := r.pool.Exec(ctx, query,
		session.Cursor,
		answers,
		session.Completed,
		session.CompletedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		return domain.AssessmentSession{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.AssessmentSession{}, fmt.Errorf("%w: session %s version %d", ErrConcurrentModification, session.ID, session.Version)
	}
	session.Version++
	return session, nil
}

func (r *PgSessionRepository) GetByID(ctx context.Context, id string) (domain.AssessmentSession, error) {
	const query = `
		SELECT id, user_id, cursor, answers, completed, version, created_at, completed_at
		FROM assessment_sessions
		WHERE id = $1
	`
	return r.scanSession(r.pool.QueryRow(ctx, query, id))
}

func (r *PgSessionRepository) FindOpenByUser(ctx context.Context, userID string) (domain.AssessmentSession, error) {
	const query = `
		SELECT id, user_id, cursor, answers, completed, version, created_at, completed_at
		FROM assessment_sessions
		WHERE user_id = $1 AND completed = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanSession(r.pool.QueryRow(ctx, query, userID))
}

// DeleteAbandoned removes non-completed sessions created before the cutoff.
// Called by the expiry sweeper, never by the state machine itself.
func (r *PgSessionRepository) DeleteAbandoned(ctx context.Context, before time.Time) (int64, error) {
	const query = `
		DELETE FROM assessment_sessions
		WHERE completed = FALSE AND created_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgSessionRepository) scanSession(row pgx.Row) (domain.AssessmentSession, error) {
	var (
		session domain.AssessmentSession
		answers []byte
	)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Cursor,
		&answers,
		&session.Completed,
		&session.Version,
		&session.CreatedAt,
		&session.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AssessmentSession{}, ErrNotFound
	}
	if err != nil {
		return domain.AssessmentSession{}, err
	}
	session.Answers = make(map[string]domain.Answer)
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &session.Answers); err != nil {
			return domain.AssessmentSession{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return session, nil
}
