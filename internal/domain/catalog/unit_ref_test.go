package catalog

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitRef_UnmarshalJSON(t *testing.T) {
	id := uuid.MustParse("5f0c6a34-6d55-4b53-9a40-1b9e9e0d6f11")

	t.Run("bare id string", func(t *testing.T) {
		var ref UnitRef
		require.NoError(t, json.Unmarshal([]byte(`"`+id.String()+`"`), &ref))
		assert.Equal(t, id, ref.ID())
		assert.Empty(t, ref.Name())
		assert.False(t, ref.IsEmbedded())
	})

	t.Run("embedded object", func(t *testing.T) {
		var ref UnitRef
		require.NoError(t, json.Unmarshal([]byte(`{"id":"`+id.String()+`","name":"box"}`), &ref))
		assert.Equal(t, id, ref.ID())
		assert.Equal(t, "box", ref.Name())
		assert.True(t, ref.IsEmbedded())
	})

	t.Run("null", func(t *testing.T) {
		ref := NewUnitRefID(id)
		require.NoError(t, json.Unmarshal([]byte(`null`), &ref))
		assert.True(t, ref.IsZero())
	})

	t.Run("invalid id", func(t *testing.T) {
		var ref UnitRef
		assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &ref))
	})

	t.Run("unsupported shape", func(t *testing.T) {
		var ref UnitRef
		assert.Error(t, json.Unmarshal([]byte(`42`), &ref))
	})
}

func TestUnitRef_MarshalJSON(t *testing.T) {
	id := uuid.New()

	t.Run("id-only as string", func(t *testing.T) {
		b, err := json.Marshal(NewUnitRefID(id))
		require.NoError(t, err)
		assert.JSONEq(t, `"`+id.String()+`"`, string(b))
	})

	t.Run("embedded as object", func(t *testing.T) {
		b, err := json.Marshal(NewUnitRefEmbedded(id, "pcs"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"`+id.String()+`","name":"pcs"}`, string(b))
	})

	t.Run("zero as null", func(t *testing.T) {
		b, err := json.Marshal(UnitRef{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	})
}
