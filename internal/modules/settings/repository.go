// Package settings provides the key/value configuration store backed by
// config.db. Settings are stored as strings and converted to typed values on
// read; they take precedence over environment variables, which allows
// runtime configuration changes without restarting the service.
package settings

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles settings database operations.
type Repository struct {
	db  *sql.DB // config.db - settings table
	log zerolog.Logger
}

// NewRepository creates a new settings repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a setting value by key.
// Returns nil if the setting doesn't exist (not an error).
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// Set sets a setting value. The description is optional and documents the
// setting's purpose.
func (r *Repository) Set(key string, value string, description *string) error {
	now := time.Now().Unix()

	if description != nil {
		_, err := r.db.Exec(`
			INSERT INTO settings (key, value, description, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				description = excluded.description,
				updated_at = excluded.updated_at
		`, key, value, *description, now)
		return err
	}

	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, now)
	return err
}

// GetAll retrieves all settings as a map.
func (r *Repository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan setting row")
			continue
		}
		result[key] = value
	}

	return result, rows.Err()
}

// GetFloat retrieves a setting as a float64, returning the fallback when the
// key is missing or not numeric.
func (r *Repository) GetFloat(key string, fallback float64) (float64, error) {
	val, err := r.Get(key)
	if err != nil {
		return fallback, err
	}
	if val == nil {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(*val, 64)
	if err != nil {
		r.log.Warn().Str("key", key).Str("value", *val).Msg("Setting is not numeric, using fallback")
		return fallback, nil
	}
	return f, nil
}

// GetBool retrieves a setting as a bool. Stored as "1"/"0" like the float
// settings, so any value parsing to a non-zero number is true.
func (r *Repository) GetBool(key string, fallback bool) (bool, error) {
	def := 0.0
	if fallback {
		def = 1.0
	}
	f, err := r.GetFloat(key, def)
	if err != nil {
		return fallback, err
	}
	return f != 0, nil
}

// SeedDefaults inserts every default setting that is not already present.
// Existing values are never overwritten.
func (r *Repository) SeedDefaults() error {
	for key, def := range SettingDefaults {
		existing, err := r.Get(key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		value := formatDefault(def)
		var desc *string
		if d, ok := SettingDescriptions[key]; ok {
			desc = &d
		}
		if err := r.Set(key, value, desc); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", key, err)
		}
	}
	return nil
}

func formatDefault(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", val)
	}
}
