// Package items provides storage and business logic for individual
// inventory items.
package items

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
)

// Repository handles item database operations
type Repository struct {
	db  *sql.DB // inventory.db - items
	log zerolog.Logger
}

// NewRepository creates a new item repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "items").Logger(),
	}
}

const itemColumns = `id, pallet_id, name, quantity, condition, status,
	listing_price, retail_price, purchase_cost, allocated_cost,
	sale_price, sale_date, platform, platform_fee, shipping_cost, created_at`

// GetAll returns all items, newest first.
func (r *Repository) GetAll() ([]domain.Item, error) {
	rows, err := r.db.Query(`SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListByPallet returns every item drawn from a pallet.
func (r *Repository) ListByPallet(palletID string) ([]domain.Item, error) {
	rows, err := r.db.Query(`SELECT `+itemColumns+` FROM items WHERE pallet_id = ? ORDER BY created_at`, palletID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for pallet %s: %w", palletID, err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListByStatus returns items in one lifecycle state.
func (r *Repository) ListByStatus(status domain.ItemStatus) ([]domain.Item, error) {
	rows, err := r.db.Query(`SELECT `+itemColumns+` FROM items WHERE status = ? ORDER BY created_at DESC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query items by status: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetByID returns a single item, or nil when it doesn't exist.
func (r *Repository) GetByID(id string) (*domain.Item, error) {
	row := r.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return &it, nil
}

// Create inserts a new item, generating its ID and creation time.
func (r *Repository) Create(it domain.Item) (domain.Item, error) {
	it.ID = uuid.NewString()
	it.CreatedAt = time.Now().UTC()
	if it.Quantity == 0 {
		it.Quantity = 1
	}
	if it.Condition == "" {
		it.Condition = domain.ConditionGood
	}
	if it.Status == "" {
		it.Status = domain.ItemUnlisted
	}

	_, err := r.db.Exec(`
		INSERT INTO items (id, pallet_id, name, quantity, condition, status,
			listing_price, retail_price, purchase_cost, allocated_cost,
			sale_price, sale_date, platform, platform_fee, shipping_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.PalletID, it.Name, it.Quantity, string(it.Condition), string(it.Status),
		it.ListingPrice, it.RetailPrice, it.PurchaseCost, it.AllocatedCost,
		it.SalePrice, unixOrNil(it.SaleDate), marketplaceOrNil(it.Platform),
		it.PlatformFee, it.ShippingCost, it.CreatedAt.Unix(),
	)
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}

	return it, nil
}

// Update replaces an item's mutable fields.
func (r *Repository) Update(it domain.Item) error {
	res, err := r.db.Exec(`
		UPDATE items
		SET pallet_id = ?, name = ?, quantity = ?, condition = ?, status = ?,
			listing_price = ?, retail_price = ?, purchase_cost = ?, allocated_cost = ?,
			sale_price = ?, sale_date = ?, platform = ?, platform_fee = ?, shipping_cost = ?
		WHERE id = ?`,
		it.PalletID, it.Name, it.Quantity, string(it.Condition), string(it.Status),
		it.ListingPrice, it.RetailPrice, it.PurchaseCost, it.AllocatedCost,
		it.SalePrice, unixOrNil(it.SaleDate), marketplaceOrNil(it.Platform),
		it.PlatformFee, it.ShippingCost, it.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", it.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s not found", it.ID)
	}
	return nil
}

// Delete removes an item.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s not found", id)
	}
	return nil
}

func collectItems(rows *sql.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var (
		it        domain.Item
		condition string
		status    string
		saleDate  *int64
		platform  *string
		createdAt int64
	)

	err := row.Scan(&it.ID, &it.PalletID, &it.Name, &it.Quantity, &condition, &status,
		&it.ListingPrice, &it.RetailPrice, &it.PurchaseCost, &it.AllocatedCost,
		&it.SalePrice, &saleDate, &platform, &it.PlatformFee, &it.ShippingCost, &createdAt)
	if err != nil {
		return domain.Item{}, err
	}

	it.Condition = domain.ItemCondition(condition)
	it.Status = domain.ItemStatus(status)
	it.CreatedAt = time.Unix(createdAt, 0).UTC()
	if saleDate != nil {
		t := time.Unix(*saleDate, 0).UTC()
		it.SaleDate = &t
	}
	if platform != nil {
		m := domain.Marketplace(*platform)
		it.Platform = &m
	}
	return it, nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func marketplaceOrNil(m *domain.Marketplace) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}
