package normalize

import (
	"errors"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/pricing"
)

// PrepareFunc rewrites a raw record before extraction, e.g. to split a
// combined "price=date" token into the columns the mapping expects.
type PrepareFunc func(rc *RunContext, rec Record) Record

// Normalizer is the shared record pipeline configured for one chain.
type Normalizer struct {
	Chain   string
	Mapping Mapping
	Prepare PrepareFunc
	Rules   []FixRule
}

// Product runs one record through extraction and fixing.
func (n *Normalizer) Product(rc *RunContext, rec Record) (models.Product, error) {
	if n.Prepare != nil {
		rec = n.Prepare(rc, rec)
	}

	fields, err := Extract(rec, n.Mapping, pricing.Parser{Log: rc.Log})
	if err != nil {
		return models.Product{}, err
	}

	fixer := Fixer{Chain: n.Chain, AnchorPriceDate: rc.AnchorPriceDate, Rules: n.Rules}
	fixed, err := fixer.Fix(fields)
	if err != nil {
		return models.Product{}, err
	}
	return ToProduct(fixed), nil
}

// Products normalizes every record, preserving order. A record that fails is
// logged and skipped; it never aborts its siblings.
func (n *Normalizer) Products(rc *RunContext, recs []Record) []models.Product {
	products := make([]models.Product, 0, len(recs))
	for i, rec := range recs {
		p, err := n.Product(rc, rec)
		if err != nil {
			reason := SkipReason(err)
			rc.Log.Warn("skipping record",
				zap.Int("index", i),
				zap.String("reason", reason),
				zap.String("record", rec.String()),
				zap.Error(err),
			)
			rc.Metrics.RecordSkipped(n.Chain, reason)
			continue
		}
		rc.Metrics.RecordParsed(n.Chain)
		products = append(products, p)
	}
	rc.Log.Debug("parsed records", zap.Int("records", len(recs)), zap.Int("products", len(products)))
	return products
}

// SkipReason classifies a record failure for logs and metrics.
func SkipReason(err error) string {
	var missing *MissingFieldError
	var invalid *pricing.InvalidPriceFormatError
	switch {
	case errors.As(err, &missing):
		return "missing_field"
	case errors.Is(err, pricing.ErrMissingPrice):
		return "missing_price"
	case errors.As(err, &invalid):
		return "invalid_price"
	case errors.Is(err, ErrPriceResolution):
		return "price_resolution"
	default:
		return "other"
	}
}

// RowRecords adapts rows to records.
func RowRecords(rows []Row) []Record {
	recs := make([]Record, len(rows))
	for i, r := range rows {
		recs[i] = r
	}
	return recs
}

// ElementRecords adapts elements to records.
func ElementRecords(elems []*Element) []Record {
	recs := make([]Record, len(elems))
	for i, e := range elems {
		recs[i] = e
	}
	return recs
}
