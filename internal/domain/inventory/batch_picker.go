package inventory

// BatchPicker holds the operator's choice among several batches.
// Highlight movement stops at both ends.
type BatchPicker struct {
	batches   []Batch
	index     int
	cancelled bool
}

// NewBatchPicker creates a picker highlighting the first batch
func NewBatchPicker(batches []Batch) *BatchPicker {
	list := make([]Batch, len(batches))
	copy(list, batches)
	return &BatchPicker{batches: list}
}

// Batches returns the candidate list
func (p *BatchPicker) Batches() []Batch {
	return p.batches
}

// Index returns the highlighted position
func (p *BatchPicker) Index() int {
	return p.index
}

// Highlighted returns the highlighted batch
func (p *BatchPicker) Highlighted() (Batch, bool) {
	if len(p.batches) == 0 {
		return Batch{}, false
	}
	return p.batches[p.index], true
}

// MoveDown highlights the next batch, staying on the last one
func (p *BatchPicker) MoveDown() {
	if p.index < len(p.batches)-1 {
		p.index++
	}
}

// MoveUp highlights the previous batch, staying on the first one
func (p *BatchPicker) MoveUp() {
	if p.index > 0 {
		p.index--
	}
}

// HighlightNumber moves the highlight to the batch with the given number
func (p *BatchPicker) HighlightNumber(batchNumber string) bool {
	for i, b := range p.batches {
		if b.BatchNumber == batchNumber {
			p.index = i
			return true
		}
	}
	return false
}

// Confirm returns the highlighted batch. Returns false when the list is
// empty or the picker was cancelled.
func (p *BatchPicker) Confirm() (*Batch, bool) {
	if p.cancelled {
		return nil, false
	}
	b, ok := p.Highlighted()
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// Cancel closes the picker without a choice
func (p *BatchPicker) Cancel() {
	p.cancelled = true
}

// Cancelled reports whether Cancel was called
func (p *BatchPicker) Cancelled() bool {
	return p.cancelled
}
