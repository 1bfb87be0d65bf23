package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumapos/lumapos/internal/catalog"
)

var (
	// ErrEmptyCart rejects a sale with no line items before any write.
	ErrEmptyCart = errors.New("sale has no items")
	// ErrInvalidQuantity rejects non-positive line quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInsufficientPayment rejects a tender below the computed total.
	ErrInsufficientPayment = errors.New("amount tendered is less than sale total")
	// ErrCardAmountMismatch rejects card tenders above the total; there
	// is no change mechanism for card payments.
	ErrCardAmountMismatch = errors.New("card payment must equal sale total")
	// ErrInvalidPaymentMethod rejects unknown payment methods.
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
)

// ProductSource is the slice of the catalog the ledger needs: current
// price and name lookup at record time.
type ProductSource interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// ItemInput is one cart line in a record request.
type ItemInput struct {
	ProductID int64
	Quantity  int
}

// RecordInput carries everything needed to record a completed sale.
type RecordInput struct {
	Items          []ItemInput
	Method         PaymentMethod
	AmountTendered decimal.Decimal
	Cashier        string
}

// Receipt is the caller-facing result of a recorded sale.
type Receipt struct {
	SaleID    int64           `json:"sale_id"`
	Total     decimal.Decimal `json:"total"`
	ChangeDue decimal.Decimal `json:"change_due"`
}

// Recorded is an optional hook invoked after a sale commits.
type Recorded func(total decimal.Decimal)

// Service is the sale ledger: it computes the derived total, snapshots
// prices into line items, and persists header, items, and payment as
// one atomic unit.
type Service struct {
	repo     Repository
	products ProductSource
	logger   *slog.Logger
	onRecord Recorded
}

func NewService(repo Repository, products ProductSource, logger *slog.Logger, onRecord Recorded) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, products: products, logger: logger, onRecord: onRecord}
}

// Record validates the cart, computes the total, and writes the sale.
// Every precondition failure happens before the transaction opens, so
// a rejected sale leaves no rows in any table.
func (s *Service) Record(ctx context.Context, input RecordInput) (Receipt, error) {
	if len(input.Items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if !input.Method.Valid() {
		return Receipt{}, ErrInvalidPaymentMethod
	}

	items := make([]SaleItem, 0, len(input.Items))
	total := decimal.Zero
	for i, line := range input.Items {
		if line.Quantity <= 0 {
			return Receipt{}, fmt.Errorf("%w: line %d", ErrInvalidQuantity, i+1)
		}
		product, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return Receipt{}, fmt.Errorf("line %d: %w", i+1, catalog.ErrNotFound)
			}
			return Receipt{}, fmt.Errorf("sales: look up product %d: %w", line.ProductID, err)
		}
		item := SaleItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			LineNo:      i + 1,
		}
		items = append(items, item)
		total = total.Add(item.LineTotal())
	}

	change, err := changeDue(input.Method, input.AmountTendered, total)
	if err != nil {
		return Receipt{}, err
	}

	now := time.Now()
	var saleID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.InsertSale(ctx, now, input.Cashier, input.Method, total)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		saleID = id

		for _, item := range items {
			item.SaleID = saleID
			if _, err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert sale item %d: %w", item.LineNo, err)
			}
			if err := repo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("decrement stock for %d: %w", item.ProductID, err)
			}
		}

		if _, err := repo.InsertPayment(ctx, Payment{
			SaleID:         saleID,
			Method:         input.Method,
			AmountTendered: input.AmountTendered,
			ChangeDue:      change,
			PaidAt:         now,
		}); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("sales: record: %w", err)
	}

	if s.onRecord != nil {
		s.onRecord(total)
	}
	s.logger.Info("sale recorded",
		slog.Int64("sale_id", saleID),
		slog.String("method", string(input.Method)),
		slog.String("total", total.StringFixed(2)),
	)
	return Receipt{SaleID: saleID, Total: total, ChangeDue: change}, nil
}

func changeDue(method PaymentMethod, tendered, total decimal.Decimal) (decimal.Decimal, error) {
	switch method {
	case PaymentCash:
		if tendered.LessThan(total) {
			return decimal.Zero, ErrInsufficientPayment
		}
		return tendered.Sub(total), nil
	case PaymentCard:
		if tendered.LessThan(total) {
			return decimal.Zero, ErrInsufficientPayment
		}
		if tendered.GreaterThan(total) {
			return decimal.Zero, ErrCardAmountMismatch
		}
		return decimal.Zero, nil
	default:
		return decimal.Zero, ErrInvalidPaymentMethod
	}
}

// Get reconstructs a full sale, items in recorded order, for receipt
// regeneration.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sales: get %d: %w", id, err)
	}
	return sale, nil
}

// ListByDateRange returns sales recorded inside [from, to], newest
// first, for the order-history view.
func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	sales, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales: list by date range: %w", err)
	}
	return sales, nil
}
