package trade

import (
	"testing"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedLine() *LineItem {
	p := newTestProduct("10")
	l := NewLineItem()
	l.Product = p
	l.Units = catalog.NewUnitResolver().Resolve(p, catalog.RateTypeRetail, nil)
	l.ChosenUnitID = l.Units[0].ID
	l.Quantity = dec("1")
	l.Price = dec("10")
	return l
}

func TestRowEditSession(t *testing.T) {
	t.Run("empty rows are not snapshotted", func(t *testing.T) {
		var s RowEditSession
		l := NewLineItem()
		s.Enter(l)
		assert.Same(t, l, s.Focused())
		assert.Equal(t, RowIdle, l.State)
		assert.False(t, l.HasSnapshot())
	})

	t.Run("entering another row reverts the edited one", func(t *testing.T) {
		var s RowEditSession
		a, b := populatedLine(), populatedLine()
		s.Enter(a)
		require.True(t, a.HasSnapshot())
		a.Quantity = dec("7")

		s.Enter(b)
		assertDec(t, "1", a.Quantity)
		assert.Equal(t, RowIdle, a.State)
		assert.False(t, a.HasSnapshot())
		assert.Equal(t, RowEditing, b.State)
	})

	t.Run("snapshot is a deep copy", func(t *testing.T) {
		var s RowEditSession
		a := populatedLine()
		s.Enter(a)
		a.Units[0].Price = dec("99")
		s.Leave()
		assertDec(t, "10", a.Units[0].Price)
	})

	t.Run("resnapshot never restores an editing state", func(t *testing.T) {
		var s RowEditSession
		a := populatedLine()
		s.Enter(a)
		a.Price = dec("12")
		s.Resnapshot(a)
		a.Price = dec("50")
		s.Leave()
		assertDec(t, "12", a.Price)
		assert.Equal(t, RowIdle, a.State)
	})

	t.Run("commit drops snapshot", func(t *testing.T) {
		var s RowEditSession
		a := populatedLine()
		s.Enter(a)
		require.NoError(t, s.Commit(a))
		assert.Equal(t, RowCommitted, a.State)
		assert.False(t, a.HasSnapshot())
	})

	t.Run("forget drops focus without reverting", func(t *testing.T) {
		var s RowEditSession
		a := populatedLine()
		s.Enter(a)
		a.Quantity = dec("4")
		s.Forget(a)
		assert.Nil(t, s.Focused())
		assertDec(t, "4", a.Quantity)
	})
}

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LineItem)
		field  RowField
	}{
		{"no product", func(l *LineItem) { l.Product = nil }, RowFieldProduct},
		{"no unit", func(l *LineItem) { l.Units = nil }, RowFieldUnit},
		{"zero quantity", func(l *LineItem) { l.Quantity = dec("0") }, RowFieldQuantity},
		{"zero price", func(l *LineItem) { l.Price = dec("0") }, RowFieldPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := populatedLine()
			tt.mutate(l)
			err := ValidateRow(l)
			var rowErr *RowValidationError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.field, rowErr.Field)
			assert.Contains(t, err.Error(), string(tt.field))
		})
	}

	t.Run("complete row", func(t *testing.T) {
		assert.NoError(t, ValidateRow(populatedLine()))
	})
}
