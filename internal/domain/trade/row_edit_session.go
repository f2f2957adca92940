package trade

import (
	"fmt"

	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/google/uuid"
)

// RowField names the field a failed row validation points at
type RowField string

const (
	RowFieldProduct  RowField = "product"
	RowFieldUnit     RowField = "unit"
	RowFieldQuantity RowField = "quantity"
	RowFieldPrice    RowField = "price"
)

// ErrRowValidationFailed is matched by every RowValidationError
var ErrRowValidationFailed = shared.NewDomainError("ROW_VALIDATION_FAILED", "Row is incomplete")

// RowValidationError reports the first offending field of a row that cannot be committed
type RowValidationError struct {
	LineID uuid.UUID
	Field  RowField
}

// Error implements the error interface
func (e *RowValidationError) Error() string {
	return fmt.Sprintf("row %s cannot be committed: %s is missing or invalid", e.LineID, e.Field)
}

// Unwrap exposes the domain error so callers can match on its code
func (e *RowValidationError) Unwrap() error {
	return ErrRowValidationFailed
}

// ValidateRow checks that a row is complete enough to commit
func ValidateRow(l *LineItem) error {
	if !l.HasProduct() {
		return &RowValidationError{LineID: l.ID, Field: RowFieldProduct}
	}
	if _, ok := l.ChosenUnit(); !ok {
		return &RowValidationError{LineID: l.ID, Field: RowFieldUnit}
	}
	if !l.Quantity.IsPositive() {
		return &RowValidationError{LineID: l.ID, Field: RowFieldQuantity}
	}
	if !l.Price.IsPositive() {
		return &RowValidationError{LineID: l.ID, Field: RowFieldPrice}
	}
	return nil
}

// RowEditSession tracks which row holds focus and drives the
// Idle/Editing/Committed transitions of grid rows.
type RowEditSession struct {
	focused *LineItem
}

// Focused returns the row holding focus, nil when focus is outside the grid
func (s *RowEditSession) Focused() *LineItem {
	return s.focused
}

// Enter moves focus to row. Entering the row that already has focus does
// nothing. Otherwise a row left in Editing is reverted first, and the entered
// row is snapshotted when it has a product.
func (s *RowEditSession) Enter(row *LineItem) {
	if s.focused == row {
		return
	}
	s.leaveFocused()
	s.focused = row
	beginEdit(row)
}

// Resnapshot replaces the snapshot of the focused row with its current
// values. Used after a product pick, which is not provisional.
func (s *RowEditSession) Resnapshot(row *LineItem) {
	if s.focused != row {
		s.Enter(row)
		return
	}
	row.snapshot = nil
	beginEdit(row)
}

// Commit validates row and, on success, accepts its edits
func (s *RowEditSession) Commit(row *LineItem) error {
	if err := ValidateRow(row); err != nil {
		return err
	}
	row.snapshot = nil
	row.State = RowCommitted
	return nil
}

// Leave moves focus outside the grid, reverting a row left in Editing
func (s *RowEditSession) Leave() {
	s.leaveFocused()
	s.focused = nil
}

// Forget drops focus without touching the row, used when the row is removed
func (s *RowEditSession) Forget(row *LineItem) {
	if s.focused == row {
		s.focused = nil
	}
}

func (s *RowEditSession) leaveFocused() {
	if s.focused != nil && s.focused.State == RowEditing {
		revert(s.focused)
	}
}

func beginEdit(row *LineItem) {
	if !row.HasProduct() {
		return
	}
	snap := row.Clone()
	if snap.State == RowEditing {
		snap.State = RowIdle
	}
	row.snapshot = snap
	row.State = RowEditing
}

// revert restores the snapshot, including the state the row had before editing
func revert(row *LineItem) {
	if row.snapshot == nil {
		row.State = RowIdle
		return
	}
	restored := row.snapshot
	*row = *restored
	row.snapshot = nil
}
