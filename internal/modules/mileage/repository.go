// Package mileage tracks business trips and computes their deduction
// value from the configured per-mile rate.
package mileage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
)

// Repository handles mileage database operations
type Repository struct {
	db  *sql.DB // inventory.db - mileage
	log zerolog.Logger
}

// NewRepository creates a new mileage repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "mileage").Logger(),
	}
}

// GetAll returns all mileage entries, newest first.
func (r *Repository) GetAll() ([]domain.MileageEntry, error) {
	rows, err := r.db.Query(`SELECT id, date, miles, purpose, pallet_id, created_at
		FROM mileage ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mileage: %w", err)
	}
	defer rows.Close()

	var entries []domain.MileageEntry
	for rows.Next() {
		var (
			e         domain.MileageEntry
			date      int64
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &date, &e.Miles, &e.Purpose, &e.PalletID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan mileage entry: %w", err)
		}
		e.Date = time.Unix(date, 0).UTC()
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Create inserts a new mileage entry.
func (r *Repository) Create(e domain.MileageEntry) (domain.MileageEntry, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO mileage (id, date, miles, purpose, pallet_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.Unix(), e.Miles, e.Purpose, e.PalletID, e.CreatedAt.Unix(),
	)
	if err != nil {
		return domain.MileageEntry{}, fmt.Errorf("failed to insert mileage entry: %w", err)
	}

	return e, nil
}

// Delete removes a mileage entry.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM mileage WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mileage entry %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mileage entry %s not found", id)
	}
	return nil
}

// Totals sums logged miles and counts entries, optionally within a date
// range. Both figures cover the same set of rows.
func (r *Repository) Totals(from, to *time.Time) (float64, int, error) {
	query := `SELECT COALESCE(SUM(miles), 0), COUNT(*) FROM mileage`
	var args []interface{}

	switch {
	case from != nil && to != nil:
		query += ` WHERE date >= ? AND date <= ?`
		args = append(args, from.Unix(), to.Unix())
	case from != nil:
		query += ` WHERE date >= ?`
		args = append(args, from.Unix())
	case to != nil:
		query += ` WHERE date <= ?`
		args = append(args, to.Unix())
	}

	var (
		total float64
		count int
	)
	if err := r.db.QueryRow(query, args...).Scan(&total, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to sum miles: %w", err)
	}
	return total, count, nil
}
