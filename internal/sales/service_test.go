package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lumapos/lumapos/internal/catalog"
)

type memoryRepo struct {
	sales    map[int64]*Sale
	stock    map[int64]int
	nextSale int64
	nextItem int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sales: make(map[int64]*Sale), stock: make(map[int64]int)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) InsertSale(ctx context.Context, recordedAt time.Time, cashier string, method PaymentMethod, total decimal.Decimal) (int64, error) {
	r.nextSale++
	r.sales[r.nextSale] = &Sale{ID: r.nextSale, RecordedAt: recordedAt, Cashier: cashier}
	return r.nextSale, nil
}

func (r *memoryRepo) InsertItem(ctx context.Context, item SaleItem) (int64, error) {
	r.nextItem++
	item.ID = r.nextItem
	sale := r.sales[item.SaleID]
	sale.Items = append(sale.Items, item)
	return item.ID, nil
}

func (r *memoryRepo) InsertPayment(ctx context.Context, payment Payment) (int64, error) {
	sale := r.sales[payment.SaleID]
	payment.ID = payment.SaleID
	sale.Payment = &payment
	return payment.ID, nil
}

func (r *memoryRepo) DecrementStock(ctx context.Context, productID int64, qty int) error {
	next := r.stock[productID] - qty
	if next < 0 {
		next = 0
	}
	r.stock[productID] = next
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sale, nil
}

func (r *memoryRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	var out []Sale
	for _, sale := range r.sales {
		if !sale.RecordedAt.Before(from) && !sale.RecordedAt.After(to) {
			out = append(out, *sale)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	products map[int64]catalog.Product
}

func (f *fakeCatalog) Get(ctx context.Context, id int64) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[int64]catalog.Product{
		1: {ID: 1, Name: "Espresso", Price: amount("2.50"), IsActive: true},
		2: {ID: 2, Name: "Croissant", Price: amount("11.00"), IsActive: true},
	}}
}

func TestRecordSnapshotsPricesAndDerivesTotal(t *testing.T) {
	repo := newMemoryRepo()
	products := testCatalog()
	svc := NewService(repo, products, nil, nil)
	ctx := context.Background()

	receipt, err := svc.Record(ctx, RecordInput{
		Items:          []ItemInput{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 2}},
		Method:         PaymentCash,
		AmountTendered: amount("50.00"),
		Cashier:        "dana",
	})
	require.NoError(t, err)
	require.True(t, receipt.Total.Equal(amount("29.50")))
	require.True(t, receipt.ChangeDue.Equal(amount("20.50")))

	// Later price changes must not alter the recorded sale.
	products.products[1] = catalog.Product{ID: 1, Name: "Espresso", Price: amount("9.99")}

	sale, err := svc.Get(ctx, receipt.SaleID)
	require.NoError(t, err)
	require.True(t, sale.Total().Equal(amount("29.50")))
	require.Len(t, sale.Items, 2)
	require.Equal(t, 1, sale.Items[0].LineNo)
	require.Equal(t, 2, sale.Items[1].LineNo)
	require.Equal(t, "Espresso", sale.Items[0].ProductName)
	require.True(t, sale.Items[0].UnitPrice.Equal(amount("2.50")))
}

func TestRecordEmptyCartWritesNothing(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)

	_, err := svc.Record(context.Background(), RecordInput{Method: PaymentCash, AmountTendered: amount("10.00")})
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Empty(t, repo.sales)
}

func TestRecordCashChange(t *testing.T) {
	repo := newMemoryRepo()
	products := &fakeCatalog{products: map[int64]catalog.Product{
		1: {ID: 1, Name: "Bundle", Price: amount("38.00")},
	}}
	svc := NewService(repo, products, nil, nil)

	receipt, err := svc.Record(context.Background(), RecordInput{
		Items:          []ItemInput{{ProductID: 1, Quantity: 1}},
		Method:         PaymentCash,
		AmountTendered: amount("50.00"),
	})
	require.NoError(t, err)
	require.True(t, receipt.ChangeDue.Equal(amount("12.00")))
}

func TestRecordCashInsufficientTender(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)

	_, err := svc.Record(context.Background(), RecordInput{
		Items:          []ItemInput{{ProductID: 2, Quantity: 1}},
		Method:         PaymentCash,
		AmountTendered: amount("10.00"),
	})
	require.ErrorIs(t, err, ErrInsufficientPayment)
	require.Empty(t, repo.sales)
}

func TestRecordCardRequiresExactAmount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	receipt, err := svc.Record(ctx, RecordInput{
		Items:          []ItemInput{{ProductID: 2, Quantity: 1}},
		Method:         PaymentCard,
		AmountTendered: amount("11.00"),
	})
	require.NoError(t, err)
	require.True(t, receipt.ChangeDue.IsZero())

	_, err = svc.Record(ctx, RecordInput{
		Items:          []ItemInput{{ProductID: 2, Quantity: 1}},
		Method:         PaymentCard,
		AmountTendered: amount("12.00"),
	})
	require.ErrorIs(t, err, ErrCardAmountMismatch)

	_, err = svc.Record(ctx, RecordInput{
		Items:          []ItemInput{{ProductID: 2, Quantity: 1}},
		Method:         PaymentCard,
		AmountTendered: amount("10.00"),
	})
	require.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestRecordRejectsBadQuantityAndMethod(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordInput{
		Items:  []ItemInput{{ProductID: 1, Quantity: 0}},
		Method: PaymentCash,
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Record(ctx, RecordInput{
		Items:  []ItemInput{{ProductID: 1, Quantity: 1}},
		Method: PaymentMethod("crypto"),
	})
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
	require.Empty(t, repo.sales)
}

func TestRecordUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testCatalog(), nil, nil)

	_, err := svc.Record(context.Background(), RecordInput{
		Items:          []ItemInput{{ProductID: 99, Quantity: 1}},
		Method:         PaymentCash,
		AmountTendered: amount("10.00"),
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.Empty(t, repo.sales)
}

func TestRecordDecrementsStockWithFloor(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock[1] = 2
	svc := NewService(repo, testCatalog(), nil, nil)

	_, err := svc.Record(context.Background(), RecordInput{
		Items:          []ItemInput{{ProductID: 1, Quantity: 5}},
		Method:         PaymentCash,
		AmountTendered: amount("20.00"),
	})
	require.NoError(t, err)
	require.Equal(t, 0, repo.stock[1])
}

func TestRecordInvokesHook(t *testing.T) {
	repo := newMemoryRepo()
	var seen decimal.Decimal
	svc := NewService(repo, testCatalog(), nil, func(total decimal.Decimal) { seen = total })

	_, err := svc.Record(context.Background(), RecordInput{
		Items:          []ItemInput{{ProductID: 1, Quantity: 2}},
		Method:         PaymentCash,
		AmountTendered: amount("5.00"),
	})
	require.NoError(t, err)
	require.True(t, seen.Equal(amount("5.00")))
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), testCatalog(), nil, nil)
	_, err := svc.Get(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotFound)
}
