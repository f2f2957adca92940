package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8.5714", "8.57"},
		{"0.005", "0.01"},
		{"2.675", "2.68"},
		{"10", "10"},
		{"0.004", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, d(tt.want).Equal(RoundMoney(d(tt.in))), "got %s", RoundMoney(d(tt.in)))
		})
	}
}

func TestPercentOf(t *testing.T) {
	assert.True(t, d("20").Equal(PercentOf(d("200"), d("10"))))
	assert.True(t, decimal.Zero.Equal(PercentOf(d("0"), d("10"))))
}

func TestRatioPercent(t *testing.T) {
	t.Run("normal ratio", func(t *testing.T) {
		assert.True(t, d("10").Equal(RatioPercent(d("20"), d("200"))))
	})
	t.Run("zero whole yields zero", func(t *testing.T) {
		assert.True(t, RatioPercent(d("5"), decimal.Zero).IsZero())
	})
}

func TestInclusiveTaxPortion(t *testing.T) {
	got := RoundMoney(InclusiveTaxPortion(d("180"), d("5")))
	assert.Equal(t, "8.57", got.StringFixed(2))
}

func TestFirstPositive(t *testing.T) {
	assert.True(t, d("11").Equal(FirstPositive(decimal.Zero, d("11"), d("9"))))
	assert.True(t, FirstPositive(decimal.Zero, d("-1")).IsZero())
	assert.True(t, FirstPositive().IsZero())
}
