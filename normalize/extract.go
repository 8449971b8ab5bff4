package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/raushankrgupta/price-list-crawler/pricing"
)

// Extract pulls every mapped field out of rec. Price fields go through the
// price parser; text fields are trimmed. A required field that is missing or
// unparseable fails the whole record.
func Extract(rec Record, m Mapping, parser pricing.Parser) (Fields, error) {
	fields := NewFields()

	for _, name := range m.Prices.Names() {
		spec := m.Prices[name]
		if spec.Locator == "" {
			fields.SetPrice(name, decimal.NullDecimal{})
			continue
		}

		raw, _ := rec.Lookup(spec.Locator)
		v, err := parser.Parse(raw, spec.Required)
		if err != nil {
			return Fields{}, &FieldError{Field: name, Locator: spec.Locator, Value: raw, Err: err}
		}
		fields.SetPrice(name, v)
	}

	for _, name := range m.Fields.Names() {
		spec := m.Fields[name]
		if spec.Locator == "" {
			fields.Set(name, "")
			continue
		}

		raw, _ := rec.Lookup(spec.Locator)
		v := strings.TrimSpace(raw)
		if v == "" && spec.Required {
			return Fields{}, &MissingFieldError{Field: name, Locator: spec.Locator}
		}
		fields.Set(name, v)
	}

	return fields, nil
}
