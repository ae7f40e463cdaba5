package sheet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string // "" means absent
	}{
		{"$1,234.56", "1234.56"},
		{"(1,234.56)", "-1234.56"},
		{"($45.00)", "-45"},
		{"", ""},
		{"   ", ""},
		{"$ 52.30", "52.3"},
		{"-12.5", "-12.5"},
		{"1234.56", "1234.56"},
		{"n/a", ""},
		{"$", ""},
		{"()", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseAmount(tt.input)
			if tt.want == "" {
				assert.False(t, got.Valid, "expected absent for %q, got %s", tt.input, got.Decimal)
				return
			}
			assert.True(t, got.Valid, "expected a value for %q", tt.input)
			assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tt.want)),
				"ParseAmount(%q) = %s, want %s", tt.input, got.Decimal, tt.want)
		})
	}
}

func TestParseForeignAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"THB 1,500", "1500"},
		{"THB1,500.25", "1500.25"},
		{"thb 80", "80"},
		{"THB -250.00", "-250"},
		{"(THB 250.00)", "-250"},
		{"THB (99)", "-99"},
		{"THB 0.00", "0"},
		{"", ""},
		{"THB", ""},
		{"THB abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseForeignAmount(tt.input, "THB")
			if tt.want == "" {
				assert.False(t, got.Valid)
				return
			}
			assert.True(t, got.Valid)
			assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tt.want)),
				"ParseForeignAmount(%q) = %s, want %s", tt.input, got.Decimal, tt.want)
		})
	}
}

func TestParseAmount_CanonicalFormIsFixedPoint(t *testing.T) {
	for _, input := range []string{"$1,234.56", "(1,234.56)", "$0.99", "(7)"} {
		first := ParseAmount(input)
		assert.True(t, first.Valid)

		second := ParseAmount(first.Decimal.String())
		assert.True(t, second.Valid)
		assert.True(t, first.Decimal.Equal(second.Decimal), "re-normalizing %q changed the value", input)

		foreign := ParseForeignAmount(first.Decimal.String(), "THB")
		assert.True(t, foreign.Valid)
		assert.True(t, first.Decimal.Equal(foreign.Decimal))
	}
}
