package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "7,99 EUR", want: "7.99"},
		{raw: "7.99€", want: "7.99"},
		{raw: "7.99", want: "7.99"},
		{raw: " 7,99 € ", want: "7.99"},
		{raw: ".5", want: "0.50"},
		{raw: ",99", want: "0.99"},
		{raw: "1.005", want: "1.01"},
		{raw: "1.004", want: "1.00"},
		{raw: "2.675", want: "2.68"},
		{raw: "12", want: "12.00"},
		{raw: "0,125", want: "0.13"},
		{raw: "1EUR", want: "1.00"},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParsePrice(tc.raw, true)
			require.NoError(t, err)
			require.True(t, got.Valid)
			assert.Equal(t, tc.want, got.Decimal.StringFixed(Places))
		})
	}
}

func TestParsePriceEmpty(t *testing.T) {
	got, err := ParsePrice("", false)
	require.NoError(t, err)
	assert.False(t, got.Valid)

	got, err = ParsePrice("  € ", false)
	require.NoError(t, err)
	assert.False(t, got.Valid)

	_, err = ParsePrice("", true)
	assert.ErrorIs(t, err, ErrMissingPrice)
}

func TestParsePriceInvalid(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := Parser{Log: zap.New(core)}

	got, err := p.Parse("abc", false)
	require.NoError(t, err)
	assert.False(t, got.Valid)
	assert.Equal(t, 1, logs.FilterMessage("failed to parse price").Len())

	_, err = p.Parse("abc", true)
	var invalid *InvalidPriceFormatError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "abc", invalid.Value)

	_, err = p.Parse("1.234,56", true)
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	v, err := ParsePrice("3,5", true)
	require.NoError(t, err)
	assert.Equal(t, "3.50", Format(v))

	none, _ := ParsePrice("", false)
	assert.Equal(t, "", Format(none))
}
