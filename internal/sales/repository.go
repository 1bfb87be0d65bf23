package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumapos/lumapos/internal/platform/db"
)

// ErrNotFound indicates the requested sale does not exist.
var ErrNotFound = errors.New("sale not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	InsertSale(ctx context.Context, recordedAt time.Time, cashier string, method PaymentMethod, total decimal.Decimal) (int64, error)
	InsertItem(ctx context.Context, item SaleItem) (int64, error)
	InsertPayment(ctx context.Context, payment Payment) (int64, error)
	DecrementStock(ctx context.Context, productID int64, qty int) error
	Get(ctx context.Context, id int64) (*Sale, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) InsertSale(ctx context.Context, recordedAt time.Time, cashier string, method PaymentMethod, total decimal.Decimal) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sales (recorded_at, cashier, payment_method, total)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		recordedAt, cashier, string(method), numeric(total),
	).Scan(&id)
	return id, err
}

func (r *repository) InsertItem(ctx context.Context, item SaleItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, line_no)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		item.SaleID, item.ProductID, item.ProductName, item.Quantity, numeric(item.UnitPrice), item.LineNo,
	).Scan(&id)
	return id, err
}

func (r *repository) InsertPayment(ctx context.Context, payment Payment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (sale_id, method, amount_tendered, change_due, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		payment.SaleID, string(payment.Method), numeric(payment.AmountTendered), numeric(payment.ChangeDue), payment.PaidAt,
	).Scan(&id)
	return id, err
}

func (r *repository) DecrementStock(ctx context.Context, productID int64, qty int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock_quantity = GREATEST(stock_quantity - $1, 0), updated_at = now()
		WHERE id = $2`,
		qty, productID,
	)
	return err
}

func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	var sale Sale
	var recordedAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx,
		`SELECT id, recorded_at, cashier FROM sales WHERE id = $1`, id,
	).Scan(&sale.ID, &recordedAt, &sale.Cashier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recordedAt.Valid {
		sale.RecordedAt = recordedAt.Time
	}

	sale.Items, err = r.itemsForSale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Payment, err = r.paymentForSale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) itemsForSale(ctx context.Context, saleID int64) ([]SaleItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, line_no
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY line_no, id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var item SaleItem
		var unitPrice pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.Quantity, &unitPrice, &item.LineNo); err != nil {
			return nil, err
		}
		item.UnitPrice = fromNumeric(unitPrice)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) paymentForSale(ctx context.Context, saleID int64) (*Payment, error) {
	var payment Payment
	var method string
	var tendered, change pgtype.Numeric
	var paidAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT id, sale_id, method, amount_tendered, change_due, paid_at
		FROM payments
		WHERE sale_id = $1
		LIMIT 1`, saleID,
	).Scan(&payment.ID, &payment.SaleID, &method, &tendered, &change, &paidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	payment.Method = PaymentMethod(method)
	payment.AmountTendered = fromNumeric(tendered)
	payment.ChangeDue = fromNumeric(change)
	if paidAt.Valid {
		payment.PaidAt = paidAt.Time
	}
	return &payment, nil
}

func (r *repository) ListByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, recorded_at, cashier
		FROM sales
		WHERE recorded_at >= $1 AND recorded_at <= $2
		ORDER BY recorded_at DESC, id DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var sale Sale
		var recordedAt pgtype.Timestamptz
		if err := rows.Scan(&sale.ID, &recordedAt, &sale.Cashier); err != nil {
			return nil, err
		}
		if recordedAt.Valid {
			sale.RecordedAt = recordedAt.Time
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		if sales[i].Items, err = r.itemsForSale(ctx, sales[i].ID); err != nil {
			return nil, err
		}
		if sales[i].Payment, err = r.paymentForSale(ctx, sales[i].ID); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.String())
	return n
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
