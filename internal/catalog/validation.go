package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidProduct wraps field-level validation failures.
var ErrInvalidProduct = errors.New("invalid product")

const maxNameLength = 255

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidProduct)
	}
	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return fmt.Errorf("%w: product name is too long (max %d characters)", ErrInvalidProduct, maxNameLength)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidProduct)
	}
	if p.CostPrice.IsNegative() {
		return fmt.Errorf("%w: cost price cannot be negative", ErrInvalidProduct)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidProduct)
	}
	return nil
}
