package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportHeader is the canonical export column set. The generic import
// profile recognizes every column here, so an export is always a valid
// re-import source.
var ExportHeader = []string{"id", "name", "description", "price", "barcode", "category", "stock", "cost_price"}

// ExportCSV serialises the active catalog, one row per product.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.ListActive(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return fmt.Errorf("catalog: write export header: %w", err)
	}
	for _, p := range products {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Description,
			p.Price.StringFixed(2),
			p.Barcode,
			p.Category,
			strconv.Itoa(p.StockQuantity),
			p.CostPrice.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("catalog: write export row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportFilename returns the generation-timestamped file name for a
// catalog export.
func ExportFilename(now time.Time) string {
	return "products_export_" + now.Format("20060102_150405") + ".csv"
}
