package export

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogEntry records one completed export.
type LogEntry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Rows        int       `json:"rows"`
	Destination string    `json:"destination"` // s3:// URI or "download"
	CreatedAt   time.Time `json:"created_at"`
}

// Repository handles the export log on the history database.
type Repository struct {
	db  *sql.DB // history.db - export_log
	log zerolog.Logger
}

// NewRepository creates a new export repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "export").Logger(),
	}
}

// Record appends an export to the log.
func (r *Repository) Record(kind Kind, rows int, destination string) (LogEntry, error) {
	entry := LogEntry{
		ID:          uuid.NewString(),
		Kind:        kind,
		Rows:        rows,
		Destination: destination,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.db.Exec(`
		INSERT INTO export_log (id, kind, rows, destination, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, string(entry.Kind), entry.Rows, entry.Destination, entry.CreatedAt.Unix(),
	)
	if err != nil {
		return LogEntry{}, fmt.Errorf("failed to record export: %w", err)
	}
	return entry, nil
}

// History returns recent exports, newest first.
func (r *Repository) History(limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, kind, rows, destination, created_at
		FROM export_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query export log: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var (
			e         LogEntry
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &kind, &e.Rows, &e.Destination, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan export log entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
