// Package pricing parses the price tokens found in retail price lists.
//
// Tokens may use either "," or "." as the decimal separator, may omit the
// leading zero and may carry the currency markers "€" or "EUR". Values are
// kept as exact decimals rounded half-up to two fractional digits.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Places is the number of fractional digits every parsed price carries.
const Places = 2

// ErrMissingPrice is returned when a required price token is empty.
var ErrMissingPrice = errors.New("price is required")

// InvalidPriceFormatError is returned when a required price token is not a number.
type InvalidPriceFormatError struct {
	Value string
}

func (e *InvalidPriceFormatError) Error() string {
	return fmt.Sprintf("invalid price format: %q", e.Value)
}

var currencyReplacer = strings.NewReplacer("€", "", "EUR", "", ",", ".")

// Parser parses price tokens, logging failures of optional tokens.
type Parser struct {
	Log *zap.Logger
}

// Parse converts raw into a two-decimal value. An empty token is absent, or
// ErrMissingPrice when required. An unparseable token is absent, or an
// *InvalidPriceFormatError carrying raw when required.
func (p Parser) Parse(raw string, required bool) (decimal.NullDecimal, error) {
	cleaned := strings.TrimSpace(currencyReplacer.Replace(raw))
	if cleaned == "" {
		if required {
			return decimal.NullDecimal{}, ErrMissingPrice
		}
		return decimal.NullDecimal{}, nil
	}

	if strings.HasPrefix(cleaned, ".") {
		cleaned = "0" + cleaned
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		if required {
			return decimal.NullDecimal{}, &InvalidPriceFormatError{Value: raw}
		}
		if p.Log != nil {
			p.Log.Warn("failed to parse price", zap.String("value", raw))
		}
		return decimal.NullDecimal{}, nil
	}

	return decimal.NewNullDecimal(d.Round(Places)), nil
}

// ParsePrice parses raw without logging. See Parser.Parse.
func ParsePrice(raw string, required bool) (decimal.NullDecimal, error) {
	return Parser{}.Parse(raw, required)
}

// Format renders a price with exactly two fractional digits, or "" when absent.
func Format(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(Places)
}
