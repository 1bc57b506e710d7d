// Package export renders inventory data as CSV and optionally pushes the
// files to S3. A pro-tier entitlement gates the HTTP surface.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// Kind selects what gets exported.
type Kind string

const (
	KindItems    Kind = "items"
	KindPallets  Kind = "pallets"
	KindExpenses Kind = "expenses"
)

// Kinds lists every supported export.
var Kinds = []Kind{KindItems, KindPallets, KindExpenses}

var itemHeader = []string{
	"id", "pallet_id", "name", "quantity", "condition", "status",
	"listing_price", "retail_price", "purchase_cost", "allocated_cost",
	"sale_price", "sale_date", "platform", "platform_fee", "shipping_cost",
}

// WriteItemsCSV renders items and returns the row count (excluding header).
func WriteItemsCSV(w io.Writer, items []domain.Item) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(itemHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, it := range items {
		record := []string{
			it.ID,
			strOrEmpty(it.PalletID),
			it.Name,
			strconv.Itoa(it.Quantity),
			string(it.Condition),
			string(it.Status),
			moneyOrEmpty(it.ListingPrice),
			moneyOrEmpty(it.RetailPrice),
			moneyOrEmpty(it.PurchaseCost),
			moneyOrEmpty(it.AllocatedCost),
			moneyOrEmpty(it.SalePrice),
			dateOrEmpty(it.SaleDate),
			marketplaceOrEmpty(it.Platform),
			moneyOrEmpty(it.PlatformFee),
			moneyOrEmpty(it.ShippingCost),
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return len(items), cw.Error()
}

var palletHeader = []string{
	"id", "name", "source", "purchase_cost", "sales_tax", "status",
	"purchase_date", "total_revenue", "total_cost", "net_profit", "roi",
	"sold_count", "unsold_count",
}

// PalletRow pairs a pallet with its financial rollup for export.
type PalletRow struct {
	Pallet  domain.Pallet
	Summary profit.PalletSummary
}

// WritePalletsCSV renders pallets with their rollups.
func WritePalletsCSV(w io.Writer, rows []PalletRow) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(palletHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Pallet.ID,
			row.Pallet.Name,
			row.Pallet.Source,
			money(row.Pallet.PurchaseCost),
			moneyOrEmpty(row.Pallet.SalesTax),
			string(row.Pallet.Status),
			row.Pallet.PurchaseDate.UTC().Format("2006-01-02"),
			money(row.Summary.TotalRevenue),
			money(row.Summary.TotalCost),
			money(row.Summary.NetProfit),
			strconv.FormatFloat(row.Summary.ROI, 'f', 2, 64),
			strconv.Itoa(row.Summary.SoldCount),
			strconv.Itoa(row.Summary.UnsoldCount),
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return len(rows), cw.Error()
}

var expenseHeader = []string{"id", "amount", "category", "description", "date", "pallet_ids"}

// WriteExpensesCSV renders expenses; linked pallet IDs are joined with ';'.
func WriteExpensesCSV(w io.Writer, expenses []domain.Expense) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(expenseHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range expenses {
		pallets := ""
		for i, id := range e.PalletIDs {
			if i > 0 {
				pallets += ";"
			}
			pallets += id
		}

		record := []string{
			e.ID,
			money(e.Amount),
			string(e.Category),
			e.Description,
			e.Date.UTC().Format("2006-01-02"),
			pallets,
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return len(expenses), cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func moneyOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return money(*v)
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func marketplaceOrEmpty(m *domain.Marketplace) string {
	if m == nil {
		return ""
	}
	return string(*m)
}
