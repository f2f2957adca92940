package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UnitRef references a unit of measure. Upstream records carry either a bare
// unit id or an embedded unit object; both decode into this one type and
// nothing downstream inspects the original shape.
type UnitRef struct {
	id       uuid.UUID
	name     string
	embedded bool
}

// NewUnitRefID references a unit by id only
func NewUnitRefID(id uuid.UUID) UnitRef {
	return UnitRef{id: id}
}

// NewUnitRefEmbedded references a unit with its display name
func NewUnitRefEmbedded(id uuid.UUID, name string) UnitRef {
	return UnitRef{id: id, name: name, embedded: true}
}

// ID returns the unit id
func (u UnitRef) ID() uuid.UUID {
	return u.id
}

// Name returns the display name, empty for id-only references
func (u UnitRef) Name() string {
	return u.name
}

// IsEmbedded reports whether the reference carried a unit record
func (u UnitRef) IsEmbedded() bool {
	return u.embedded
}

// IsZero reports whether the reference is empty
func (u UnitRef) IsZero() bool {
	return u.id == uuid.Nil
}

type unitRefObject struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MarshalJSON writes an object for embedded references and a string otherwise
func (u UnitRef) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return []byte("null"), nil
	}
	if u.embedded {
		return json.Marshal(unitRefObject{ID: u.id, Name: u.name})
	}
	return json.Marshal(u.id.String())
}

// UnmarshalJSON accepts null, a unit id string, or a {"id","name"} object
func (u *UnitRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = UnitRef{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*u = UnitRef{}
			return nil
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("unit reference: %w", err)
		}
		*u = NewUnitRefID(id)
		return nil
	case '{':
		var obj unitRefObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("unit reference: %w", err)
		}
		*u = NewUnitRefEmbedded(obj.ID, obj.Name)
		return nil
	}
	return fmt.Errorf("unit reference: unsupported JSON value %s", string(data))
}
