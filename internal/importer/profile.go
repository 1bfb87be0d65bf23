package importer

import "strings"

// Field is a canonical product attribute the pipeline maps CSV columns
// onto.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldBarcode     Field = "barcode"
	FieldCategory    Field = "category"
	FieldStock       Field = "stock"
	FieldCost        Field = "cost_price"
)

// Profile is a named column-mapping configuration: a fixed mapping from
// canonical field to the header synonyms a CSV source convention uses.
type Profile struct {
	Name     string
	markers  []string
	synonyms map[Field][]string
}

// storefrontProfile interprets storefront platform exports (WooCommerce
// convention, French or English headers).
var storefrontProfile = Profile{
	Name:    "storefront",
	markers: []string{"UGS", "Nom", "Tarif régulier", "Catégories"},
	synonyms: map[Field][]string{
		FieldName:        {"Nom", "Name", "nom", "name"},
		FieldDescription: {"Description", "Description courte", "description"},
		FieldPrice:       {"Tarif régulier", "Regular price", "Prix", "Price", "price"},
		FieldBarcode:     {"UGS", "SKU", "GTIN, UPC, EAN ou ISBN", "Barcode", "barcode"},
		FieldCategory:    {"Catégories", "Categories", "Category", "category"},
		FieldStock:       {"Stock", "stock", "Stock quantity", "Quantité en stock"},
		FieldCost:        {"Cost", "cout", "Cost price", "Prix de revient"},
	},
}

// genericProfile interprets plain product CSVs, including this
// application's own exports.
var genericProfile = Profile{
	Name: "generic",
	synonyms: map[Field][]string{
		FieldName:        {"name", "nom", "product_name", "produit"},
		FieldDescription: {"description", "desc"},
		FieldPrice:       {"price", "prix", "selling_price"},
		FieldBarcode:     {"barcode", "sku", "code"},
		FieldCategory:    {"category", "categorie"},
		FieldStock:       {"stock", "quantity", "qty"},
		FieldCost:        {"cost", "cost_price", "prix_achat"},
	},
}

// profiles in detection order; the storefront vocabulary is checked
// first because its headers collide with generic synonyms.
var profiles = []Profile{storefrontProfile, genericProfile}

// detectProfile picks the first profile whose marker set matches the
// header row; a profile with no markers matches anything.
func detectProfile(headers []string) Profile {
	for _, profile := range profiles {
		if len(profile.markers) == 0 {
			return profile
		}
		for _, marker := range profile.markers {
			for _, header := range headers {
				if header == marker {
					return profile
				}
			}
		}
	}
	return genericProfile
}

// columnMap resolves each canonical field to a column index, -1 when
// the source has no matching column.
type columnMap map[Field]int

func (p Profile) mapColumns(headers []string) columnMap {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	columns := make(columnMap, len(p.synonyms))
	for field, names := range p.synonyms {
		columns[field] = findColumn(lowered, names)
	}
	return columns
}

func findColumn(lowered []string, names []string) int {
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		for i, header := range lowered {
			if header == name || strings.Contains(header, name) {
				return i
			}
		}
	}
	return -1
}

func (m columnMap) value(row []string, field Field) string {
	idx, ok := m[field]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
