package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/raushankrgupta/price-list-crawler/models"
)

// FixRule is a chain specific repair step. Rules run before the shared rules
// and may reject the record by returning an error.
type FixRule func(f Fields) error

// TrimProductName is a FixRule for chains whose names carry stray whitespace.
func TrimProductName(f Fields) error {
	f.Set(FieldProduct, strings.TrimSpace(f.Get(FieldProduct)))
	return nil
}

// Fixer reconciles partially specified pricing fields into a complete record.
type Fixer struct {
	Chain           string
	AnchorPriceDate string
	Rules           []FixRule
}

var quoteStripper = strings.NewReplacer(`"`, "", "'", "")

// Fix returns a repaired copy of f. Fixing an already fixed record is a no-op.
func (x Fixer) Fix(f Fields) (Fields, error) {
	out := f.Clone()

	for _, rule := range x.Rules {
		if err := rule(out); err != nil {
			return Fields{}, err
		}
	}

	if out.Get(FieldBarcode) == "" {
		out.Set(FieldBarcode, x.Chain+":"+out.Get(FieldProductID))
	}
	out.Set(FieldBarcode, strings.TrimSpace(quoteStripper.Replace(out.Get(FieldBarcode))))

	if !out.HasPrice(FieldSpecialPrice) {
		out.SetPrice(FieldSpecialPrice, decimal.NullDecimal{})
	}

	if !out.Price(FieldPrice).Valid {
		switch {
		case out.Price(FieldSpecialPrice).Valid:
			out.SetPrice(FieldPrice, out.Price(FieldSpecialPrice))
		case out.Price(FieldUnitPrice).Valid:
			out.SetPrice(FieldPrice, out.Price(FieldUnitPrice))
		default:
			return Fields{}, ErrPriceResolution
		}
	}

	if out.Price(FieldAnchorPrice).Valid && out.Get(FieldAnchorPriceDate) == "" {
		out.Set(FieldAnchorPriceDate, x.AnchorPriceDate)
	}

	if !out.Price(FieldUnitPrice).Valid {
		out.SetPrice(FieldUnitPrice, out.Price(FieldPrice))
	}

	return out, nil
}

// ToProduct builds the canonical product from fixed fields.
func ToProduct(f Fields) models.Product {
	return models.Product{
		Name:            f.Get(FieldProduct),
		ProductID:       f.Get(FieldProductID),
		Brand:           f.Get(FieldBrand),
		Quantity:        f.Get(FieldQuantity),
		Unit:            f.Get(FieldUnit),
		Price:           f.Price(FieldPrice).Decimal,
		UnitPrice:       f.Price(FieldUnitPrice).Decimal,
		Barcode:         f.Get(FieldBarcode),
		Category:        f.Get(FieldCategory),
		BestPrice30:     f.Price(FieldBestPrice30),
		SpecialPrice:    f.Price(FieldSpecialPrice),
		AnchorPrice:     f.Price(FieldAnchorPrice),
		AnchorPriceDate: f.Get(FieldAnchorPriceDate),
		Packaging:       f.Get(FieldPackaging),
		InitialPrice:    f.Price(FieldInitialPrice),
		DateAdded:       f.Get(FieldDateAdded),
	}
}
