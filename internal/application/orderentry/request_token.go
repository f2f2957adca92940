package orderentry

import "github.com/google/uuid"

// requestTokens tracks the latest product lookup issued per line. A lookup
// that completes after a newer one was issued for the same line is stale.
// Callers hold the document lock.
type requestTokens struct {
	seq    uint64
	latest map[uuid.UUID]uint64
}

func newRequestTokens() requestTokens {
	return requestTokens{latest: make(map[uuid.UUID]uint64)}
}

// issue returns a fresh token for lineID, superseding any earlier one
func (t *requestTokens) issue(lineID uuid.UUID) uint64 {
	t.seq++
	t.latest[lineID] = t.seq
	return t.seq
}

// current reports whether token is still the latest for lineID
func (t *requestTokens) current(lineID uuid.UUID, token uint64) bool {
	latest, ok := t.latest[lineID]
	return ok && latest == token
}

// supersede invalidates in-flight lookups for lineID
func (t *requestTokens) supersede(lineID uuid.UUID) {
	t.seq++
	t.latest[lineID] = t.seq
}

func (t *requestTokens) forget(lineID uuid.UUID) {
	delete(t.latest, lineID)
}

// reset drops every line, invalidating all in-flight lookups. The counter
// keeps running so tokens issued before the reset never become current again.
func (t *requestTokens) reset() {
	t.latest = make(map[uuid.UUID]uint64)
}
