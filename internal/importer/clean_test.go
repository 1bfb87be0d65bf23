package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanPrice(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"19.99", "19.99", true},
		{"$19.99", "19.99", true},
		{"19,99", "19.99", true},
		{"1 234,50 €", "1234.5", true},
		{"1,234.50", "1234.5", true},
		{"1,234", "1234", true},
		{"12,345,678", "12345678", true},
		{"free", "0", false},
		{"", "0", false},
		{"-5.00", "5", true},
	}
	for _, tc := range cases {
		got, ok := cleanPrice(tc.raw)
		require.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		require.Equal(t, tc.want, got.String(), "raw=%q", tc.raw)
	}
}

func TestCleanStock(t *testing.T) {
	require.Equal(t, 42, cleanStock("42"))
	require.Equal(t, 42, cleanStock(" 42 units "))
	require.Equal(t, 0, cleanStock(""))
	require.Equal(t, 0, cleanStock("n/a"))
	require.Equal(t, 1050, cleanStock("1,050"))
}

func TestCleanBarcodeKeepsValueVerbatim(t *testing.T) {
	require.Equal(t, `'-&&&é'é-_à-"à`, cleanBarcode(`  '-&&&é'é-_à-"à `))
	require.Equal(t, "0123456789012", cleanBarcode("0123456789012"))
	require.Equal(t, "", cleanBarcode("   "))
}

func TestBarcodeWarning(t *testing.T) {
	require.Empty(t, barcodeWarning(""))
	require.Empty(t, barcodeWarning("ABC"))
	require.Empty(t, barcodeWarning("é1b2"))
	require.NotEmpty(t, barcodeWarning("a-"))
	require.NotEmpty(t, barcodeWarning("--!!"))
}
