package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product represents one priced catalog item at one store
type Product struct {
	Name      string          `json:"product"`
	ProductID string          `json:"product_id"` // Chain specific product identifier
	Brand     string          `json:"brand"`
	Quantity  string          `json:"quantity"` // e.g. "500g", "1L"
	Unit      string          `json:"unit"`     // e.g. "kg", "kom"
	Price     decimal.Decimal `json:"price"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Barcode   string          `json:"barcode"` // EAN, or "chain:product_id" when the chain has none
	Category  string          `json:"category"`

	// Optional pricing attributes, only some chains publish them
	BestPrice30     decimal.NullDecimal `json:"best_price_30"` // Lowest price in the last 30 days
	SpecialPrice    decimal.NullDecimal `json:"special_price"`
	AnchorPrice     decimal.NullDecimal `json:"anchor_price"`
	AnchorPriceDate string              `json:"anchor_price_date,omitempty"` // YYYY-MM-DD
	Packaging       string              `json:"packaging,omitempty"`
	InitialPrice    decimal.NullDecimal `json:"initial_price"`
	DateAdded       string              `json:"date_added,omitempty"` // YYYY-MM-DD
}

func (p Product) String() string {
	return fmt.Sprintf("%s %s (EAN: %s)", p.Brand, p.Name, p.Barcode)
}
