// Package normalize turns raw price-list records into canonical products.
//
// Each chain describes its source columns (or XML tags) with a Mapping.
// Extract pulls the mapped values out of one Record, Fixer repairs the
// pricing fields, and Normalizer ties both together per chain.
package normalize

import "github.com/shopspring/decimal"

// Canonical price field names.
const (
	FieldPrice        = "price"
	FieldUnitPrice    = "unit_price"
	FieldSpecialPrice = "special_price"
	FieldBestPrice30  = "best_price_30"
	FieldAnchorPrice  = "anchor_price"
	FieldInitialPrice = "initial_price"
)

// Canonical text field names.
const (
	FieldProduct         = "product"
	FieldProductID       = "product_id"
	FieldBrand           = "brand"
	FieldQuantity        = "quantity"
	FieldUnit            = "unit"
	FieldBarcode         = "barcode"
	FieldCategory        = "category"
	FieldAnchorPriceDate = "anchor_price_date"
	FieldPackaging       = "packaging"
	FieldDateAdded       = "date_added"
)

var priceFields = map[string]bool{
	FieldPrice:        true,
	FieldUnitPrice:    true,
	FieldSpecialPrice: true,
	FieldBestPrice30:  true,
	FieldAnchorPrice:  true,
	FieldInitialPrice: true,
}

var textFields = map[string]bool{
	FieldProduct:         true,
	FieldProductID:       true,
	FieldBrand:           true,
	FieldQuantity:        true,
	FieldUnit:            true,
	FieldBarcode:         true,
	FieldCategory:        true,
	FieldAnchorPriceDate: true,
	FieldPackaging:       true,
	FieldDateAdded:       true,
}

// Fields holds the values extracted from one record, keyed by canonical name.
type Fields struct {
	Prices map[string]decimal.NullDecimal
	Text   map[string]string
}

// NewFields returns an empty Fields value.
func NewFields() Fields {
	return Fields{
		Prices: make(map[string]decimal.NullDecimal),
		Text:   make(map[string]string),
	}
}

// Price returns the named price; a field never set is absent.
func (f Fields) Price(name string) decimal.NullDecimal {
	return f.Prices[name]
}

// HasPrice reports whether extraction set the named price at all, absent or not.
func (f Fields) HasPrice(name string) bool {
	_, ok := f.Prices[name]
	return ok
}

func (f Fields) SetPrice(name string, v decimal.NullDecimal) {
	f.Prices[name] = v
}

// Get returns the named text field, "" when never set.
func (f Fields) Get(name string) string {
	return f.Text[name]
}

func (f Fields) Set(name, v string) {
	f.Text[name] = v
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	out := NewFields()
	for k, v := range f.Prices {
		out.Prices[k] = v
	}
	for k, v := range f.Text {
		out.Text[k] = v
	}
	return out
}
