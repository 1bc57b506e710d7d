// Package snapshots captures daily inventory valuations so trends survive
// item churn. One snapshot per calendar day; re-capturing a day replaces it.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Snapshot is one day's inventory valuation.
type Snapshot struct {
	ID             string    `json:"id"`
	Date           string    `json:"date"` // YYYY-MM-DD
	TotalValue     float64   `json:"total_value"`
	RealizedProfit float64   `json:"realized_profit"`
	ItemCount      int       `json:"item_count"`
	PalletCount    int       `json:"pallet_count"`
	Detail         []byte    `json:"-"` // msgpack-encoded per-pallet detail
	CreatedAt      time.Time `json:"created_at"`
}

// Repository handles snapshot database operations
type Repository struct {
	db  *sql.DB // history.db - inventory_snapshots
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "snapshots").Logger(),
	}
}

// Save upserts a snapshot keyed by date.
func (r *Repository) Save(s Snapshot) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	_, err := r.db.Exec(`
		INSERT INTO inventory_snapshots
			(id, snapshot_date, total_value, realized_profit, item_count, pallet_count, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(snapshot_date) DO UPDATE SET
			total_value = excluded.total_value,
			realized_profit = excluded.realized_profit,
			item_count = excluded.item_count,
			pallet_count = excluded.pallet_count,
			detail = excluded.detail,
			created_at = excluded.created_at`,
		s.ID, s.Date, s.TotalValue, s.RealizedProfit, s.ItemCount, s.PalletCount,
		s.Detail, time.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", s.Date, err)
	}
	return nil
}

// Range returns snapshots between two dates inclusive, oldest first.
func (r *Repository) Range(from, to string) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT id, snapshot_date, total_value, realized_profit, item_count, pallet_count, detail, created_at
		FROM inventory_snapshots
		WHERE snapshot_date >= ? AND snapshot_date <= ?
		ORDER BY snapshot_date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Latest returns the most recent snapshot, or nil when none exist.
func (r *Repository) Latest() (*Snapshot, error) {
	row := r.db.QueryRow(`
		SELECT id, snapshot_date, total_value, realized_profit, item_count, pallet_count, detail, created_at
		FROM inventory_snapshots
		ORDER BY snapshot_date DESC LIMIT 1`)

	s, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		s         Snapshot
		createdAt int64
	)
	err := row.Scan(&s.ID, &s.Date, &s.TotalValue, &s.RealizedProfit,
		&s.ItemCount, &s.PalletCount, &s.Detail, &createdAt)
	if err == sql.ErrNoRows {
		return Snapshot{}, err
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	return s, nil
}
