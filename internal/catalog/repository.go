package catalog

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

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	ListActive(ctx context.Context) ([]Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetActiveByBarcode(ctx context.Context, barcode string) (Product, error)
	FindActiveMatch(ctx context.Context, barcode, name string) (Product, error)
	Insert(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int64, p Product) error
	UpdateStock(ctx context.Context, id int64, qty int) error
	CountSaleReferences(ctx context.Context, productID int64) (int, error)
	DeleteHard(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) error
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

const productColumns = `id, name, description, price, barcode, category, stock_quantity, is_active, cost_price, created_at, updated_at`

func (r *repository) ListActive(ctx context.Context) ([]Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name, id`)
}

func (r *repository) ListAll(ctx context.Context) ([]Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) GetActiveByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND is_active LIMIT 1`, barcode)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// FindActiveMatch locates an active product by exact barcode first,
// then by case-insensitive exact name. Empty barcodes never match.
func (r *repository) FindActiveMatch(ctx context.Context, barcode, name string) (Product, error) {
	if barcode != "" {
		p, err := r.GetActiveByBarcode(ctx, barcode)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Product{}, err
		}
	}
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE lower(name) = lower($1) AND is_active LIMIT 1`, name)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Insert(ctx context.Context, p Product) (Product, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, barcode, category, stock_quantity, is_active, cost_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id`,
		p.Name, p.Description, numeric(p.Price), p.Barcode, p.Category,
		p.StockQuantity, p.IsActive, numeric(p.CostPrice), now,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, barcode = $4, category = $5,
		    stock_quantity = $6, is_active = $7, cost_price = $8, updated_at = now()
		WHERE id = $9`,
		p.Name, p.Description, numeric(p.Price), p.Barcode, p.Category,
		p.StockQuantity, p.IsActive, numeric(p.CostPrice), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStock(ctx context.Context, id int64, qty int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock_quantity = $1, updated_at = now() WHERE id = $2`, qty, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountSaleReferences(ctx context.Context, productID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sale_items WHERE product_id = $1`, productID).Scan(&count)
	return count, err
}

func (r *repository) DeleteHard(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Reactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET is_active = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var price, cost pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Barcode, &p.Category,
		&p.StockQuantity, &p.IsActive, &cost, &createdAt, &updatedAt)
	if err != nil {
		return Product{}, err
	}
	p.Price = fromNumeric(price)
	p.CostPrice = fromNumeric(cost)
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
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
