package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExportCSVWritesActiveProductsOnly(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, _, err := svc.Upsert(ctx, Product{Name: "Espresso", Price: price("2.50"), Barcode: "123456", StockQuantity: 10, CostPrice: price("0.80")})
	require.NoError(t, err)

	hidden, _, err := svc.Upsert(ctx, Product{Name: "Retired", Price: price("1.00")})
	require.NoError(t, err)
	repo.saleRefs[hidden.ID] = 1
	_, err = svc.Remove(ctx, hidden.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, ExportHeader, records[0])
	require.Equal(t, "Espresso", records[1][1])
	require.Equal(t, "2.50", records[1][3])
	require.Equal(t, "123456", records[1][4])
	require.Equal(t, "10", records[1][6])
	require.Equal(t, "0.80", records[1][7])
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	require.Equal(t, "products_export_20250314_092653.csv", ExportFilename(ts))
}
