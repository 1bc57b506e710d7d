package subscriptions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles subscription database operations. The table holds a
// single row (id = 1).
type Repository struct {
	db  *sql.DB // config.db - subscription
	log zerolog.Logger
}

// NewRepository creates a new subscription repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "subscriptions").Logger(),
	}
}

// Get returns the current subscription. A missing row means free tier.
func (r *Repository) Get() (Subscription, error) {
	row := r.db.QueryRow(`SELECT tier, expires_at, updated_at FROM subscription WHERE id = 1`)

	var (
		tier      string
		expiresAt *int64
		updatedAt int64
	)
	err := row.Scan(&tier, &expiresAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Subscription{Tier: TierFree}, nil
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub := Subscription{
		Tier:      Tier(tier),
		UpdatedAt: time.Unix(updatedAt, 0).UTC(),
	}
	if expiresAt != nil {
		t := time.Unix(*expiresAt, 0).UTC()
		sub.ExpiresAt = &t
	}
	return sub, nil
}

// Set upserts the single subscription row.
func (r *Repository) Set(sub Subscription) error {
	var expiresAt *int64
	if sub.ExpiresAt != nil {
		unix := sub.ExpiresAt.Unix()
		expiresAt = &unix
	}

	_, err := r.db.Exec(`
		INSERT INTO subscription (id, tier, expires_at, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tier = excluded.tier,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		string(sub.Tier), expiresAt, time.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	return nil
}
