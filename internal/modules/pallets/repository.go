// Package pallets provides storage and business logic for bulk inventory
// purchases.
package pallets

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
)

// Repository handles pallet database operations
type Repository struct {
	db  *sql.DB // inventory.db - pallets
	log zerolog.Logger
}

// NewRepository creates a new pallet repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "pallets").Logger(),
	}
}

const palletColumns = `id, name, source, purchase_cost, sales_tax, status, purchase_date, created_at`

// GetAll returns all pallets, newest purchase first.
func (r *Repository) GetAll() ([]domain.Pallet, error) {
	rows, err := r.db.Query(`SELECT ` + palletColumns + ` FROM pallets ORDER BY purchase_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pallets: %w", err)
	}
	defer rows.Close()

	var pallets []domain.Pallet
	for rows.Next() {
		p, err := scanPallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pallet: %w", err)
		}
		pallets = append(pallets, p)
	}

	return pallets, rows.Err()
}

// GetByID returns a single pallet, or nil when it doesn't exist.
func (r *Repository) GetByID(id string) (*domain.Pallet, error) {
	row := r.db.QueryRow(`SELECT `+palletColumns+` FROM pallets WHERE id = ?`, id)

	p, err := scanPallet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pallet %s: %w", id, err)
	}
	return &p, nil
}

// Count returns the number of stored pallets.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM pallets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pallets: %w", err)
	}
	return n, nil
}

// Create inserts a new pallet, generating its ID and creation time.
func (r *Repository) Create(p domain.Pallet) (domain.Pallet, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.Status == "" {
		p.Status = domain.PalletUnprocessed
	}

	_, err := r.db.Exec(`
		INSERT INTO pallets (id, name, source, purchase_cost, sales_tax, status, purchase_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Source, p.PurchaseCost, p.SalesTax, string(p.Status),
		p.PurchaseDate.Unix(), p.CreatedAt.Unix(),
	)
	if err != nil {
		return domain.Pallet{}, fmt.Errorf("failed to insert pallet: %w", err)
	}

	return p, nil
}

// Update replaces a pallet's mutable fields.
func (r *Repository) Update(p domain.Pallet) error {
	res, err := r.db.Exec(`
		UPDATE pallets
		SET name = ?, source = ?, purchase_cost = ?, sales_tax = ?, status = ?, purchase_date = ?
		WHERE id = ?`,
		p.Name, p.Source, p.PurchaseCost, p.SalesTax, string(p.Status), p.PurchaseDate.Unix(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pallet %s: %w", p.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pallet %s not found", p.ID)
	}
	return nil
}

// Delete removes a pallet. Linked items keep existing with a nil pallet
// reference; expense links cascade away.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM pallets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pallet %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pallet %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPallet(row rowScanner) (domain.Pallet, error) {
	var (
		p            domain.Pallet
		status       string
		purchaseDate int64
		createdAt    int64
	)

	err := row.Scan(&p.ID, &p.Name, &p.Source, &p.PurchaseCost, &p.SalesTax,
		&status, &purchaseDate, &createdAt)
	if err != nil {
		return domain.Pallet{}, err
	}

	p.Status = domain.PalletStatus(status)
	p.PurchaseDate = time.Unix(purchaseDate, 0).UTC()
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return p, nil
}
