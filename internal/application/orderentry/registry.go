package orderentry

import (
	"sync"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/erp/orderentry/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// pendingChoice is a product pick waiting for the operator to choose a batch
type pendingChoice struct {
	product *catalog.Product
	picker  *inventory.BatchPicker
	stock   decimal.Decimal
}

// entryDocument is one open document. mu serializes every grid mutation.
type entryDocument struct {
	id      uuid.UUID
	mu      sync.Mutex
	grid    *trade.OrderGrid
	tokens  requestTokens
	pending map[uuid.UUID]*pendingChoice
}

func newEntryDocument(grid *trade.OrderGrid) *entryDocument {
	return &entryDocument{
		id:      uuid.New(),
		grid:    grid,
		tokens:  newRequestTokens(),
		pending: make(map[uuid.UUID]*pendingChoice),
	}
}

// forgetLine drops lookup and batch choice state for a line
func (d *entryDocument) forgetLine(lineID uuid.UUID) {
	d.tokens.forget(lineID)
	delete(d.pending, lineID)
}

// Registry holds the open documents
type Registry struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*entryDocument
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{docs: make(map[uuid.UUID]*entryDocument)}
}

func (r *Registry) create(grid *trade.OrderGrid) *entryDocument {
	d := newEntryDocument(grid)
	r.mu.Lock()
	r.docs[d.id] = d
	r.mu.Unlock()
	return d
}

func (r *Registry) get(id uuid.UUID) (*entryDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrDocumentNotFound
	}
	return d, nil
}

func (r *Registry) delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return shared.ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

// Len returns the number of open documents
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
