package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockAllocator(t *testing.T) {
	t.Run("default scale floors to four places", func(t *testing.T) {
		a := NewStockAllocator()
		in := AllocationInput{
			Line:            AllocationLine{LineID: uuid.New(), ProductID: uuid.New(), Conversion: dec("3")},
			BaseStockPieces: dec("10"),
		}
		assert.Equal(t, "3.3333", a.MaxQuantity(in).String())
	})

	t.Run("custom scale", func(t *testing.T) {
		a := NewStockAllocator(WithQuantityScale(0))
		in := AllocationInput{
			Line:            AllocationLine{LineID: uuid.New(), ProductID: uuid.New(), Conversion: dec("3")},
			BaseStockPieces: dec("10"),
		}
		assert.Equal(t, "3", a.MaxQuantity(in).String())
	})

	t.Run("ignores negative scale", func(t *testing.T) {
		a := NewStockAllocator(WithQuantityScale(-1))
		assert.Equal(t, int32(4), a.quantityScale)
	})
}

func TestStockAllocator_Allocate(t *testing.T) {
	a := NewStockAllocator()
	productID := uuid.New()
	lineID := uuid.New()

	t.Run("multi-unit clamp raises notice", func(t *testing.T) {
		in := AllocationInput{
			Line:            AllocationLine{LineID: lineID, ProductID: productID, Conversion: dec("4")},
			BaseStockPieces: dec("10"),
		}
		res := a.Allocate(in, dec("3"))
		assert.True(t, dec("2.5").Equal(res.Quantity))
		assert.True(t, dec("2.5").Equal(res.MaxQuantity))
		assert.True(t, dec("10").Equal(res.CapPieces))
		require.NotNil(t, res.Notice)
		assert.True(t, res.Clamped())
		assert.Equal(t, lineID, res.Notice.LineID)
		assert.True(t, dec("3").Equal(res.Notice.Requested))
	})

	t.Run("within cap is untouched", func(t *testing.T) {
		in := AllocationInput{
			Line:            AllocationLine{LineID: lineID, ProductID: productID, Conversion: dec("4")},
			BaseStockPieces: dec("10"),
		}
		res := a.Allocate(in, dec("2"))
		assert.True(t, dec("2").Equal(res.Quantity))
		assert.Nil(t, res.Notice)
	})

	t.Run("siblings of same product reduce the pool", func(t *testing.T) {
		other := AllocationLine{LineID: uuid.New(), ProductID: productID, Quantity: dec("1"), Conversion: dec("6")}
		unrelated := AllocationLine{LineID: uuid.New(), ProductID: uuid.New(), Quantity: dec("100"), Conversion: dec("1")}
		self := AllocationLine{LineID: lineID, ProductID: productID, Quantity: dec("50"), Conversion: dec("1")}
		in := AllocationInput{
			Line:            self,
			BaseStockPieces: dec("10"),
			Lines:           []AllocationLine{self, other, unrelated},
		}
		assert.True(t, dec("6").Equal(a.UsedByOthers(in)))
		res := a.Allocate(in, dec("5"))
		assert.True(t, dec("4").Equal(res.Quantity))
		assert.NotNil(t, res.Notice)
	})

	t.Run("batch cap ignores siblings", func(t *testing.T) {
		other := AllocationLine{LineID: uuid.New(), ProductID: productID, Quantity: dec("9"), Conversion: dec("1")}
		in := AllocationInput{
			Line:            AllocationLine{LineID: lineID, ProductID: productID, Conversion: dec("1")},
			BaseStockPieces: dec("10"),
			BatchMaxPieces:  decimal.NewNullDecimal(dec("7")),
			Lines:           []AllocationLine{other},
		}
		assert.True(t, dec("7").Equal(a.CapPieces(in)))
		res := a.Allocate(in, dec("7"))
		assert.True(t, dec("7").Equal(res.Quantity))
		assert.Nil(t, res.Notice)
	})

	t.Run("exhausted pool clamps to zero", func(t *testing.T) {
		other := AllocationLine{LineID: uuid.New(), ProductID: productID, Quantity: dec("12"), Conversion: dec("1")}
		in := AllocationInput{
			Line:            AllocationLine{LineID: lineID, ProductID: productID, Conversion: dec("1")},
			BaseStockPieces: dec("10"),
			Lines:           []AllocationLine{other},
		}
		assert.True(t, dec("-2").Equal(a.CapPieces(in)))
		assert.True(t, a.MaxQuantity(in).IsZero())
		assert.False(t, a.CanSelect(in))
	})

	t.Run("zero conversion is treated as one", func(t *testing.T) {
		in := AllocationInput{
			Line:            AllocationLine{LineID: lineID, ProductID: productID},
			BaseStockPieces: dec("3"),
		}
		assert.True(t, dec("3").Equal(a.MaxQuantity(in)))
	})
}

func TestStockAllocator_Conservation(t *testing.T) {
	a := NewStockAllocator()
	productID := uuid.New()
	base := dec("25")
	conversions := []string{"1", "4", "6", "1", "12"}
	requests := []string{"7", "3", "2", "9", "1"}

	var lines []AllocationLine
	for i := range conversions {
		line := AllocationLine{LineID: uuid.New(), ProductID: productID, Conversion: dec(conversions[i])}
		res := a.Allocate(AllocationInput{Line: line, BaseStockPieces: base, Lines: lines}, dec(requests[i]))
		line.Quantity = res.Quantity
		lines = append(lines, line)
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Pieces())
	}
	assert.True(t, total.LessThanOrEqual(base), "allocated %s pieces of %s", total, base)
}
