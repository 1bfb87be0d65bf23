package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// Sale is a completed transaction. It is immutable once recorded; the
// total is always derived from the line items and never set directly.
type Sale struct {
	ID         int64      `json:"id"`
	RecordedAt time.Time  `json:"recorded_at"`
	Cashier    string     `json:"cashier"`
	Items      []SaleItem `json:"items"`
	Payment    *Payment   `json:"payment,omitempty"`
}

// Total derives the sale amount from its line items.
func (s *Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// SaleItem carries the unit price captured at sale time, so later
// catalog price changes never alter historical totals.
type SaleItem struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineNo      int             `json:"line_no"`
}

func (i SaleItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment settles exactly one sale. ChangeDue is tendered minus total,
// clamped to zero for cash; always zero for card.
type Payment struct {
	ID             int64           `json:"id"`
	SaleID         int64           `json:"sale_id"`
	Method         PaymentMethod   `json:"method"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	ChangeDue      decimal.Decimal `json:"change_due"`
	PaidAt         time.Time       `json:"paid_at"`
}
