package bulk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseUnitPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"5,50", "5.5"},
		{"6.00", "6"},
		{" 7,25 ", "7.25"},
		{"4,5 €", "4.5"},
		{"1.234,56", "1.234"},
		{"-2,5", "-2.5"},
		{",75", "0.75"},
		{"12,", "12"},
		{"", "0"},
		{"abc", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseUnitPrice(tt.raw)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"2", 2},
		{" 10 ", 10},
		{"3 un", 3},
		{"", 1},
		{"x", 1},
		{"0", 1},
		{"-4", 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuantity(tt.raw))
		})
	}
}

func TestParseStock(t *testing.T) {
	assert.Equal(t, 12, ParseStock("12"))
	assert.Equal(t, 12, ParseStock(" 12 un"))
	assert.Equal(t, 0, ParseStock(""))
	assert.Equal(t, 0, ParseStock("n/a"))
	assert.Equal(t, 0, ParseStock("0"))
}
