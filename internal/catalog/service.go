package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Service enforces product lifecycle rules on top of the repository:
// soft vs. hard delete against historical sales, the active/maintenance
// view split, and identity matching for upserts.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ListActive returns the products end-user inventory displays are built
// from. Inactive products never appear here.
func (s *Service) ListActive(ctx context.Context) ([]Product, error) {
	if products, ok := s.cache.GetActive(ctx); ok {
		return products, nil
	}
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list active: %w", err)
	}
	s.cache.SetActive(ctx, products)
	return products, nil
}

// ListAll returns every product including soft-deleted ones. It exists
// for maintenance tooling only and must not drive end-user displays.
func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list all: %w", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// GetByBarcode feeds the scanner path; it only sees active products.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	if barcode == "" {
		return Product{}, ErrNotFound
	}
	return s.repo.GetActiveByBarcode(ctx, barcode)
}

// FindMatch reports whether an active product matches the given barcode
// or name, using the same identity rules as Upsert.
func (s *Service) FindMatch(ctx context.Context, barcode, name string) (Product, bool, error) {
	p, err := s.repo.FindActiveMatch(ctx, barcode, strings.TrimSpace(name))
	if errors.Is(err, ErrNotFound) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("catalog: find match: %w", err)
	}
	return p, true, nil
}

// Upsert matches an existing product by identifier, else by exact
// barcode, else by exact name. On match it updates the mutable fields;
// otherwise it inserts a new active product.
func (s *Service) Upsert(ctx context.Context, p Product) (Product, UpsertOutcome, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if err := s.validate(p); err != nil {
		return Product{}, "", err
	}

	existing, matched, err := s.match(ctx, p)
	if err != nil {
		return Product{}, "", err
	}

	if matched {
		updated := existing
		updated.Name = p.Name
		updated.Description = p.Description
		updated.Price = p.Price
		updated.Category = p.Category
		updated.StockQuantity = p.StockQuantity
		updated.CostPrice = p.CostPrice
		if p.Barcode != "" {
			updated.Barcode = p.Barcode
		}
		if err := s.repo.Update(ctx, existing.ID, updated); err != nil {
			return Product{}, "", fmt.Errorf("catalog: update product %d: %w", existing.ID, err)
		}
		s.cache.Invalidate(ctx)
		return updated, Updated, nil
	}

	p.ID = 0
	p.IsActive = true
	inserted, err := s.repo.Insert(ctx, p)
	if err != nil {
		return Product{}, "", fmt.Errorf("catalog: insert product: %w", err)
	}
	s.cache.Invalidate(ctx)
	return inserted, Inserted, nil
}

func (s *Service) match(ctx context.Context, p Product) (Product, bool, error) {
	if p.ID > 0 {
		existing, err := s.repo.Get(ctx, p.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Product{}, false, ErrNotFound
			}
			return Product{}, false, fmt.Errorf("catalog: match by id: %w", err)
		}
		return existing, true, nil
	}
	existing, err := s.repo.FindActiveMatch(ctx, p.Barcode, p.Name)
	if errors.Is(err, ErrNotFound) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("catalog: match: %w", err)
	}
	return existing, true, nil
}

// Remove erases the product when nothing references it, and deactivates
// it otherwise so historical sale items stay intact. The reference
// check and the write happen in one transaction.
func (s *Service) Remove(ctx context.Context, id int64) (RemoveOutcome, error) {
	var outcome RemoveOutcome
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.Get(ctx, id); err != nil {
			return err
		}
		refs, err := repo.CountSaleReferences(ctx, id)
		if err != nil {
			return fmt.Errorf("count sale references: %w", err)
		}
		if refs == 0 {
			outcome = HardDeleted
			return repo.DeleteHard(ctx, id)
		}
		outcome = SoftDeleted
		return repo.Deactivate(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("catalog: remove product %d: %w", id, err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("product removed", slog.Int64("id", id), slog.String("outcome", string(outcome)))
	return outcome, nil
}

// Reactivate brings a soft-deleted product back into the active
// catalog. Upsert never matches inactive rows, so this is the only way
// back for a product that still has sale history.
func (s *Service) Reactivate(ctx context.Context, id int64) error {
	if err := s.repo.Reactivate(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("catalog: reactivate product %d: %w", id, err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("product reactivated", slog.Int64("id", id))
	return nil
}

// UpdateStock sets the absolute stock quantity for a product.
func (s *Service) UpdateStock(ctx context.Context, id int64, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidProduct)
	}
	if err := s.repo.UpdateStock(ctx, id, qty); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("catalog: update stock for %d: %w", id, err)
	}
	s.cache.Invalidate(ctx)
	return nil
}
