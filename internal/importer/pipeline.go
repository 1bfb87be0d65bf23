package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lumapos/lumapos/internal/catalog"
)

// Stage tracks an import batch through its lifecycle. Failed is an
// absorbing state reachable from any stage.
type Stage string

const (
	StageUnparsed  Stage = "unparsed"
	StageDetected  Stage = "detected"
	StageValidated Stage = "validated"
	StageCommitted Stage = "committed"
	StageFailed    Stage = "failed"
)

var (
	// ErrUnrecognizedFormat is fatal for the whole import: no profile
	// could resolve a product name column.
	ErrUnrecognizedFormat = errors.New("could not find product name column")
	// ErrPreviewNotFound means the commit token is unknown or expired.
	ErrPreviewNotFound = errors.New("import preview not found")
)

// Row is one parsed CSV line with its validation verdict. A row with
// errors is skipped at commit; warnings never block.
type Row struct {
	Line     int             `json:"line"`
	Product  catalog.Product `json:"product"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

func (r Row) Valid() bool {
	return len(r.Errors) == 0
}

// PreviewReport is produced without writing to the catalog; commit is
// only possible against a previewed batch.
type PreviewReport struct {
	Token       string    `json:"token"`
	Format      string    `json:"format"`
	Stage       Stage     `json:"stage"`
	ValidRows   int       `json:"valid_rows"`
	InvalidRows int       `json:"invalid_rows"`
	Rows        []Row     `json:"rows"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommitOptions control how previewed rows are applied.
type CommitOptions struct {
	// UpdateExisting overwrites products matched by barcode or name.
	// When off, matching rows are skipped instead.
	UpdateExisting bool
}

// CommitReport summarises a commit. Partial success is normal: failed
// rows never abort the batch.
type CommitReport struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Catalog is the slice of the catalog service the pipeline writes
// through.
type Catalog interface {
	Upsert(ctx context.Context, p catalog.Product) (catalog.Product, catalog.UpsertOutcome, error)
	FindMatch(ctx context.Context, barcode, name string) (catalog.Product, bool, error)
}

// RowRecorded is an optional hook invoked per committed row outcome.
type RowRecorded func(outcome string)

// Service runs the import pipeline: detect format, clean and validate
// rows, hold the preview, and commit on confirmation. Previews live in
// process and expire if never committed; discarding one is simply not
// calling Commit.
type Service struct {
	catalog Catalog
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time
	onRow   RowRecorded

	mu       sync.Mutex
	previews map[string]*PreviewReport
}

func NewService(cat Catalog, logger *slog.Logger, previewTTL time.Duration, onRow RowRecorded) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if previewTTL <= 0 {
		previewTTL = 15 * time.Minute
	}
	return &Service{
		catalog:  cat,
		logger:   logger,
		ttl:      previewTTL,
		now:      time.Now,
		onRow:    onRow,
		previews: make(map[string]*PreviewReport),
	}
}

// Preview parses and validates the source without touching the catalog.
// Row-level problems land in the report; only an unreadable file or an
// unrecognized header set fails the whole batch.
func (s *Service) Preview(ctx context.Context, r io.Reader) (*PreviewReport, error) {
	headers, records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	profile := detectProfile(headers)
	columns := profile.mapColumns(headers)
	if columns[FieldName] < 0 {
		return nil, ErrUnrecognizedFormat
	}

	report := &PreviewReport{
		Token:     uuid.NewString(),
		Format:    profile.Name,
		Stage:     StageValidated,
		CreatedAt: s.now(),
	}
	for i, record := range records {
		row := s.buildRow(i+2, columns, record) // header is line 1
		if row.Valid() {
			report.ValidRows++
		} else {
			report.InvalidRows++
		}
		report.Rows = append(report.Rows, row)
	}

	s.mu.Lock()
	s.evictExpiredLocked()
	s.previews[report.Token] = report
	s.mu.Unlock()

	s.logger.Info("import preview ready",
		slog.String("token", report.Token),
		slog.String("format", report.Format),
		slog.Int("valid", report.ValidRows),
		slog.Int("invalid", report.InvalidRows),
	)
	return report, nil
}

func (s *Service) buildRow(line int, columns columnMap, record []string) Row {
	row := Row{Line: line}

	name := strings.TrimSpace(columns.value(record, FieldName))
	if name == "" {
		row.Errors = append(row.Errors, "Product name is required")
	} else if utf8.RuneCountInString(name) > 255 {
		row.Errors = append(row.Errors, "Product name is too long (max 255 characters)")
	}

	price, ok := cleanPrice(columns.value(record, FieldPrice))
	if !ok || !price.IsPositive() {
		row.Errors = append(row.Errors, "Price must be greater than 0")
	}

	barcode := cleanBarcode(columns.value(record, FieldBarcode))
	if warning := barcodeWarning(barcode); warning != "" {
		row.Warnings = append(row.Warnings, warning)
	}

	category := strings.TrimSpace(columns.value(record, FieldCategory))
	if category == "" {
		category = catalog.DefaultCategory
	}

	rawStock := columns.value(record, FieldStock)
	stock := cleanStock(rawStock)
	if trimmed := strings.TrimSpace(rawStock); trimmed != "" && trimmed != strconv.Itoa(stock) {
		s.logger.Debug("cleaned stock value",
			slog.Int("line", line),
			slog.String("raw", rawStock),
			slog.Int("stock", stock),
		)
	}

	cost, _ := cleanPrice(columns.value(record, FieldCost))

	row.Product = catalog.Product{
		Name:          name,
		Description:   strings.TrimSpace(columns.value(record, FieldDescription)),
		Price:         price,
		CostPrice:     cost,
		Barcode:       barcode,
		Category:      category,
		StockQuantity: stock,
	}
	return row
}

// Commit applies the previewed batch through the catalog, each valid
// row as its own small write, and consumes the preview. A crash
// mid-batch leaves prior rows committed and the rest un-imported.
func (s *Service) Commit(ctx context.Context, token string, opts CommitOptions) (*CommitReport, error) {
	s.mu.Lock()
	s.evictExpiredLocked()
	preview, ok := s.previews[token]
	if ok {
		delete(s.previews, token)
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrPreviewNotFound
	}

	report := &CommitReport{}
	for _, row := range preview.Rows {
		if !row.Valid() {
			report.Failed++
			for _, rowErr := range row.Errors {
				report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %s", row.Line, rowErr))
			}
			s.recordRow("failed")
			continue
		}

		_, matched, err := s.catalog.FindMatch(ctx, row.Product.Barcode, row.Product.Name)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %v", row.Line, err))
			s.recordRow("failed")
			continue
		}
		if matched && !opts.UpdateExisting {
			report.Skipped++
			s.recordRow("skipped")
			continue
		}

		_, outcome, err := s.catalog.Upsert(ctx, row.Product)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %v", row.Line, err))
			s.recordRow("failed")
			continue
		}
		switch outcome {
		case catalog.Inserted:
			report.Inserted++
			s.recordRow("inserted")
		case catalog.Updated:
			report.Updated++
			s.recordRow("updated")
		}
	}

	preview.Stage = StageCommitted
	s.logger.Info("import committed",
		slog.String("token", token),
		slog.Int("inserted", report.Inserted),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) recordRow(outcome string) {
	if s.onRow != nil {
		s.onRow(outcome)
	}
}

func (s *Service) evictExpiredLocked() {
	cutoff := s.now().Add(-s.ttl)
	for token, preview := range s.previews {
		if preview.CreatedAt.Before(cutoff) {
			delete(s.previews, token)
		}
	}
}
