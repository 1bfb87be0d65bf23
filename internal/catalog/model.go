package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "Uncategorized"

// Product represents a catalog entry. Barcode may be any string,
// including empty; empty barcodes are never used for matching.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Barcode       string          `json:"barcode"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RemoveOutcome reports which lifecycle action Remove took, so callers
// can surface the distinction to the user.
type RemoveOutcome string

const (
	// HardDeleted means the row was erased; no sale ever referenced it.
	HardDeleted RemoveOutcome = "hard_deleted"
	// SoftDeleted means the row was kept with is_active = false because
	// historical sale items still reference it.
	SoftDeleted RemoveOutcome = "soft_deleted"
)

// UpsertOutcome reports whether Upsert inserted a new product or
// updated an existing match.
type UpsertOutcome string

const (
	Inserted UpsertOutcome = "inserted"
	Updated  UpsertOutcome = "updated"
)
