package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"personabot/internal/domain"
)

// PrayerRepository persists captured prayer requests and serves the weekly
// digest query.
type PrayerRepository interface {
	Create(ctx context.Context, prayer domain.Prayer) error
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Prayer, error)
}

type PgPrayerRepository struct {
	pool *pgxpool.Pool
}

func NewPgPrayerRepository(pool *pgxpool.Pool) *PgPrayerRepository {
	return &PgPrayerRepository{pool: pool}
}

func (r *PgPrayerRepository) Create(ctx context.Context, prayer domain.Prayer) error {
	const query = `
		INSERT INTO prayers (id, message_id, user_id, username, channel_id, raw_message, extracted_text, posted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (message_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		prayer.ID,
		prayer.MessageID,
		prayer.UserID,
		prayer.Username,
		prayer.ChannelID,
		prayer.RawMessage,
		prayer.ExtractedText,
		prayer.PostedAt,
		prayer.CreatedAt,
	)
	return err
}

func (r *PgPrayerRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Prayer, error) {
	const query = `
		SELECT id, message_id, user_id, username, channel_id, raw_message, extracted_text, posted_at, created_at
		FROM prayers
		WHERE posted_at >= $1 AND posted_at <= $2
		ORDER BY posted_at ASC
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prayers []domain.Prayer
	for rows.Next() {
		var p domain.Prayer
		if err := rows.Scan(
			&p.ID,
			&p.MessageID,
			&p.UserID,
			&p.Username,
			&p.ChannelID,
			&p.RawMessage,
			&p.ExtractedText,
			&p.PostedAt,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		prayers = append(prayers, p)
	}
	return prayers, rows.Err()
}
