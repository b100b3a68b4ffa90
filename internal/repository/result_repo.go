package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"personabot/internal/domain"
)

// ResultRepository persists terminal assessment results. A session is
// associated with at most one result, enforced by the unique session_id
// constraint.
type ResultRepository interface {
	Create(ctx context.Context, result domain.Result) error
	FindLatestForUser(ctx context.Context, userID string) (domain.Result, error)
}

type PgResultRepository struct {
	pool *pgxpool.Pool
}

func NewPgResultRepository(pool *pgxpool.Pool) *PgResultRepository {
	return &PgResultRepository{pool: pool}
}

func (r *PgResultRepository) Create(ctx context.Context, result domain.Result) error {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	profile, err := json.Marshal(result.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	const query = `
		INSERT INTO assessment_results (id, session_id, user_id, classification, scores, profile, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		result.ID,
		result.SessionID,
		result.UserID,
		string(result.Classification),
		scores,
		profile,
		result.CompletedAt,
		result.CreatedAt,
	)
	return err
}

func (r *PgResultRepository) FindLatestForUser(ctx context.Context, userID string) (domain.Result, error) {
	const query = `
		SELECT id, session_id, user_id, classification, scores, profile, completed_at, created_at
		FROM assessment_results
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT 1
	`
	var (
		result  domain.Result
		scores  []byte
		profile []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&result.ID,
		&result.SessionID,
		&result.UserID,
		&result.Classification,
		&scores,
		&profile,
		&result.CompletedAt,
		&result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, ErrNotFound
	}
	if err != nil {
		return domain.Result{}, err
	}
	if err := json.Unmarshal(scores, &result.Scores); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(profile, &result.Profile); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return result, nil
}
