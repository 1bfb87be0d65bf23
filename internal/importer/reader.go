package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyFile indicates the source has no header row.
var ErrEmptyFile = errors.New("csv file is empty")

// readRecords parses a comma-delimited UTF-8 source. A leading byte
// order mark is tolerated and stripped; rows may have ragged widths
// (storefront exports frequently do).
func readRecords(r io.Reader) (headers []string, rows [][]string, err error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	headers, err = reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("importer: read header: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("importer: read row: %w", err)
		}
		rows = append(rows, record)
	}
	return headers, rows, nil
}
