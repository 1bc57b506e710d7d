// Package domain defines the core entities shared by all modules.
// The domain layer is pure: no database, HTTP, or logging dependencies.
package domain

import "time"

// PalletStatus tracks where a pallet is in its processing lifecycle.
type PalletStatus string

const (
	PalletUnprocessed PalletStatus = "unprocessed"
	PalletProcessing  PalletStatus = "processing"
	PalletCompleted   PalletStatus = "completed"
)

// ItemStatus tracks an item's listing lifecycle.
type ItemStatus string

const (
	ItemUnlisted ItemStatus = "unlisted"
	ItemListed   ItemStatus = "listed"
	ItemSold     ItemStatus = "sold"
)

// ItemCondition describes the physical condition of an item.
// ConditionUnsellable items are excluded from pallet cost-sharing by default.
type ItemCondition string

const (
	ConditionNew        ItemCondition = "new"
	ConditionLikeNew    ItemCondition = "like_new"
	ConditionGood       ItemCondition = "good"
	ConditionFair       ItemCondition = "fair"
	ConditionPoor       ItemCondition = "poor"
	ConditionUnsellable ItemCondition = "unsellable"
)

// Marketplace identifies where an item was sold.
type Marketplace string

const (
	MarketplaceEBay     Marketplace = "ebay"
	MarketplaceFacebook Marketplace = "facebook"
	MarketplaceMercari  Marketplace = "mercari"
	MarketplaceOfferUp  Marketplace = "offerup"
	MarketplacePoshmark Marketplace = "poshmark"
	// MarketplaceManual means the seller enters the fee by hand; the
	// auto-computed fee is always zero for it.
	MarketplaceManual Marketplace = "manual"
)

// Marketplaces lists every known marketplace, manual last.
var Marketplaces = []Marketplace{
	MarketplaceEBay,
	MarketplaceFacebook,
	MarketplaceMercari,
	MarketplaceOfferUp,
	MarketplacePoshmark,
	MarketplaceManual,
}

// ExpenseCategory classifies business expenses.
type ExpenseCategory string

const (
	ExpenseStorage       ExpenseCategory = "storage"
	ExpenseSupplies      ExpenseCategory = "supplies"
	ExpenseSubscriptions ExpenseCategory = "subscriptions"
	ExpenseEquipment     ExpenseCategory = "equipment"
	ExpenseGas           ExpenseCategory = "gas"
	ExpenseFees          ExpenseCategory = "fees"
	ExpenseShipping      ExpenseCategory = "shipping"
	ExpenseOther         ExpenseCategory = "other"
)

// Pallet is a bulk inventory purchase. PurchaseCost is always >= 0;
// SalesTax is nil when the purchase was tax-free.
type Pallet struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Source       string       `json:"source"`
	PurchaseCost float64      `json:"purchase_cost"`
	SalesTax     *float64     `json:"sales_tax"`
	Status       PalletStatus `json:"status"`
	PurchaseDate time.Time    `json:"purchase_date"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Item is a single sellable unit, usually drawn from a pallet.
// PalletID is nil for items sourced outside any pallet. The sale fields
// (SalePrice, SaleDate, Platform, PlatformFee, ShippingCost) are populated
// only once the item is sold.
type Item struct {
	ID            string        `json:"id"`
	PalletID      *string       `json:"pallet_id"`
	Name          string        `json:"name"`
	Quantity      int           `json:"quantity"`
	Condition     ItemCondition `json:"condition"`
	Status        ItemStatus    `json:"status"`
	ListingPrice  *float64      `json:"listing_price"`
	RetailPrice   *float64      `json:"retail_price"`
	PurchaseCost  *float64      `json:"purchase_cost"`
	AllocatedCost *float64      `json:"allocated_cost"`
	SalePrice     *float64      `json:"sale_price"`
	SaleDate      *time.Time    `json:"sale_date"`
	Platform      *Marketplace  `json:"platform"`
	PlatformFee   *float64      `json:"platform_fee"`
	ShippingCost  *float64      `json:"shipping_cost"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Expense is a business cost. An expense may be linked to any number of
// pallets; its amount is split equally among them.
type Expense struct {
	ID          string          `json:"id"`
	Amount      float64         `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	PalletIDs   []string        `json:"pallet_ids"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExpenseShare is one pallet's portion of an expense, already split
// equally across the expense's linked pallets. This is the shape the
// profit calculator consumes.
type ExpenseShare struct {
	ExpenseID string          `json:"expense_id"`
	Category  ExpenseCategory `json:"category"`
	Amount    float64         `json:"amount"`
	Date      time.Time       `json:"date"`
}

// MileageEntry records a business trip for deduction tracking.
type MileageEntry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Miles     float64   `json:"miles"`
	Purpose   string    `json:"purpose"`
	PalletID  *string   `json:"pallet_id"`
	CreatedAt time.Time `json:"created_at"`
}
