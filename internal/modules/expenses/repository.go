// Package expenses provides storage for business expenses and their
// many-to-many links to pallets. A single expense (shared storage rent,
// say) can be linked to several pallets; each linked pallet carries an
// equal share of the amount.
package expenses

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// Repository handles expense database operations
type Repository struct {
	db  *sql.DB // inventory.db - expenses, expense_pallets
	log zerolog.Logger
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "expenses").Logger(),
	}
}

// GetAll returns all expenses with their pallet links, newest first.
func (r *Repository) GetAll() ([]domain.Expense, error) {
	rows, err := r.db.Query(`SELECT id, amount, category, description, date, created_at
		FROM expenses ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expenses {
		links, err := r.palletLinks(expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].PalletIDs = links
	}

	return expenses, nil
}

// GetByID returns a single expense with its pallet links, or nil.
func (r *Repository) GetByID(id string) (*domain.Expense, error) {
	row := r.db.QueryRow(`SELECT id, amount, category, description, date, created_at
		FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense %s: %w", id, err)
	}

	e.PalletIDs, err = r.palletLinks(e.ID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an expense and its pallet links in one transaction.
func (r *Repository) Create(e domain.Expense) (domain.Expense, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	if e.Category == "" {
		e.Category = domain.ExpenseOther
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO expenses (id, amount, category, description, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Amount, string(e.Category), e.Description, e.Date.Unix(), e.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertLinks(tx, e.ID, e.PalletIDs)
	})
	if err != nil {
		return domain.Expense{}, err
	}

	return e, nil
}

// Update replaces an expense and rewrites its pallet links in one
// transaction.
func (r *Repository) Update(e domain.Expense) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE expenses SET amount = ?, category = ?, description = ?, date = ?
			WHERE id = ?`,
			e.Amount, string(e.Category), e.Description, e.Date.Unix(), e.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense %s: %w", e.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("expense %s not found", e.ID)
		}

		if _, err := tx.Exec(`DELETE FROM expense_pallets WHERE expense_id = ?`, e.ID); err != nil {
			return fmt.Errorf("failed to clear expense links: %w", err)
		}
		return insertLinks(tx, e.ID, e.PalletIDs)
	})
}

// Delete removes an expense; its links cascade away.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s not found", id)
	}
	return nil
}

// SharesForPallet returns one pallet's already-split shares of every
// expense linked to it. The split is equal-among-linked-pallets by count:
// an expense linked to two pallets contributes half its amount to each.
func (r *Repository) SharesForPallet(palletID string) ([]domain.ExpenseShare, error) {
	rows, err := r.db.Query(`
		SELECT e.id, e.amount, e.category, e.date,
			(SELECT COUNT(*) FROM expense_pallets WHERE expense_id = e.id) AS link_count
		FROM expenses e
		JOIN expense_pallets ep ON ep.expense_id = e.id
		WHERE ep.pallet_id = ?
		ORDER BY e.date`, palletID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense shares for pallet %s: %w", palletID, err)
	}
	defer rows.Close()

	var shares []domain.ExpenseShare
	for rows.Next() {
		var (
			share     domain.ExpenseShare
			category  string
			date      int64
			amount    float64
			linkCount int
		)
		if err := rows.Scan(&share.ExpenseID, &amount, &category, &date, &linkCount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}

		share.Category = domain.ExpenseCategory(category)
		share.Date = time.Unix(date, 0).UTC()
		share.Amount = amount / float64(linkCount)
		shares = append(shares, share)
	}

	return shares, rows.Err()
}

// Shares expands an expense into its per-pallet shares without touching
// the database. Exposed for handlers that show the split before saving.
func (r *Repository) Shares(e domain.Expense) []domain.ExpenseShare {
	return profit.SplitShares(e)
}

func (r *Repository) palletLinks(expenseID string) ([]string, error) {
	rows, err := r.db.Query(`SELECT pallet_id FROM expense_pallets WHERE expense_id = ?`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense links: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expense link: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertLinks(tx *sql.Tx, expenseID string, palletIDs []string) error {
	for _, pid := range palletIDs {
		if _, err := tx.Exec(`INSERT INTO expense_pallets (expense_id, pallet_id) VALUES (?, ?)`,
			expenseID, pid); err != nil {
			return fmt.Errorf("failed to link expense to pallet %s: %w", pid, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (domain.Expense, error) {
	var (
		e         domain.Expense
		category  string
		date      int64
		createdAt int64
	)

	err := row.Scan(&e.ID, &e.Amount, &category, &e.Description, &date, &createdAt)
	if err != nil {
		return domain.Expense{}, err
	}

	e.Category = domain.ExpenseCategory(category)
	e.Date = time.Unix(date, 0).UTC()
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return e, nil
}
