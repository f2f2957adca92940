package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewProduct(t *testing.T) {
	unit := NewUnitRefEmbedded(uuid.New(), "pcs")

	t.Run("creates product with valid inputs", func(t *testing.T) {
		p, err := NewProduct("sku-001", "Test Product", unit)
		require.NoError(t, err)
		assert.Equal(t, "SKU-001", p.Code)
		assert.Equal(t, "Test Product", p.Name)
		assert.Equal(t, unit, p.BaseUnit)
		assert.True(t, p.RetailPrice.IsZero())
		assert.False(t, p.BatchTracked)
		assert.NotEqual(t, uuid.Nil, p.ID)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewProduct("", "Test Product", unit)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code cannot be empty")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("SKU", "  ", unit)
		require.Error(t, err)
	})

	t.Run("fails without base unit", func(t *testing.T) {
		_, err := NewProduct("SKU", "Name", UnitRef{})
		require.Error(t, err)
	})
}

func TestRateType(t *testing.T) {
	t.Run("parse known names", func(t *testing.T) {
		for _, name := range []string{"retail", "Wholesale", "special1", "SPECIAL2", "purchase"} {
			r, err := ParseRateType(name)
			require.NoError(t, err, name)
			assert.True(t, r.IsValid())
		}
	})

	t.Run("reject unknown", func(t *testing.T) {
		_, err := ParseRateType("vip")
		assert.Error(t, err)
	})
}

func TestProduct_PriceFor(t *testing.T) {
	p := &Product{
		PurchasePrice:  dec("60"),
		RetailPrice:    dec("100"),
		WholesalePrice: dec("90"),
		Special1Price:  dec("85"),
		Special2Price:  dec("80"),
	}
	tests := map[RateType]string{
		RateTypeRetail:    "100",
		RateTypeWholesale: "90",
		RateTypeSpecial1:  "85",
		RateTypeSpecial2:  "80",
		RateTypePurchase:  "60",
	}
	for rate, want := range tests {
		t.Run(string(rate), func(t *testing.T) {
			assert.True(t, dec(want).Equal(p.PriceFor(rate)))
		})
	}
}

func TestMultiUnit_PriceFor(t *testing.T) {
	mu := MultiUnit{RetailPrice: dec("400"), WholesalePrice: dec("380")}

	t.Run("uses own field", func(t *testing.T) {
		assert.True(t, dec("380").Equal(mu.PriceFor(RateTypeWholesale)))
	})
	t.Run("falls back to retail when unset", func(t *testing.T) {
		assert.True(t, dec("400").Equal(mu.PriceFor(RateTypeSpecial1)))
		assert.True(t, dec("400").Equal(mu.PriceFor(RateTypePurchase)))
	})
}

func TestProduct_AddMultiUnit(t *testing.T) {
	p, err := NewProduct("SKU", "Name", NewUnitRefEmbedded(uuid.New(), "pcs"))
	require.NoError(t, err)

	t.Run("adds and assigns id", func(t *testing.T) {
		err := p.AddMultiUnit(MultiUnit{Unit: NewUnitRefEmbedded(uuid.New(), "box"), Conversion: dec("12")})
		require.NoError(t, err)
		require.Len(t, p.MultiUnits, 1)
		assert.NotEqual(t, uuid.Nil, p.MultiUnits[0].ID)
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		err := p.AddMultiUnit(MultiUnit{ID: p.MultiUnits[0].ID, Unit: NewUnitRefID(uuid.New()), Conversion: dec("6")})
		assert.Error(t, err)
	})

	t.Run("rejects non-positive conversion", func(t *testing.T) {
		err := p.AddMultiUnit(MultiUnit{Unit: NewUnitRefID(uuid.New()), Conversion: decimal.Zero})
		assert.Error(t, err)
	})
}
