package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/raushankrgupta/price-list-crawler/pricing"
)

type countingSink struct {
	parsed  int
	skipped map[string]int
}

func (s *countingSink) RecordParsed(string) { s.parsed++ }
func (s *countingSink) RecordSkipped(_, reason string) {
	if s.skipped == nil {
		s.skipped = map[string]int{}
	}
	s.skipped[reason]++
}
func (s *countingSink) GroupSkipped(string, string) {}
func (s *countingSink) StoreDropped(string)         {}

func TestNormalizerSkipsBadRecord(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := &countingSink{}
	rc := NewRunContext("konzum", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), zap.New(core), sink, "")

	n := &Normalizer{Chain: "konzum", Mapping: testMapping}
	rows := []Row{
		{"NAZIV": "Mlijeko", "SIFRA": "1", "MPC": "1,29"},
		{"NAZIV": "", "SIFRA": "2", "MPC": "0,99"},
	}

	products := n.Products(rc, RowRecords(rows))
	require.Len(t, products, 1)
	assert.Equal(t, "Mlijeko", products[0].Name)
	assert.Equal(t, "konzum:1", products[0].Barcode)
	assert.Equal(t, "1.29", products[0].UnitPrice.StringFixed(pricing.Places))

	assert.Equal(t, 1, sink.parsed)
	assert.Equal(t, map[string]int{"missing_field": 1}, sink.skipped)

	entries := logs.FilterMessage("skipping record").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "konzum", fields["chain"])
	assert.Equal(t, "2025-05-15", fields["date"])
	assert.EqualValues(t, 1, fields["index"])
	assert.Equal(t, "missing_field", fields["reason"])
}

func TestNormalizerPrepare(t *testing.T) {
	var seen *RunContext
	n := &Normalizer{
		Chain:   "kaufland",
		Mapping: testMapping,
		Prepare: func(rc *RunContext, rec Record) Record {
			seen = rc
			return WithValues(rec, map[string]string{"MPC": "2,00"})
		},
	}
	rc := NewRunContext("kaufland", time.Now(), nil, nil, "")

	p, err := n.Product(rc, Row{"NAZIV": "Ulje", "SIFRA": "9", "MPC": "???"})
	require.NoError(t, err)
	assert.Same(t, rc, seen)
	assert.Equal(t, "2.00", p.Price.StringFixed(pricing.Places))
}

func TestSkipReason(t *testing.T) {
	assert.Equal(t, "missing_field", SkipReason(&MissingFieldError{Field: FieldProduct}))
	assert.Equal(t, "missing_price", SkipReason(&FieldError{Field: FieldPrice, Err: pricing.ErrMissingPrice}))
	assert.Equal(t, "invalid_price", SkipReason(&FieldError{Field: FieldPrice, Err: &pricing.InvalidPriceFormatError{Value: "x"}}))
	assert.Equal(t, "price_resolution", SkipReason(ErrPriceResolution))
	assert.Equal(t, "other", SkipReason(assert.AnError))
}
