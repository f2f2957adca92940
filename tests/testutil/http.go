// Package testutil holds helpers shared by the HTTP-level test suites.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/orderentry/internal/interfaces/http/dto"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the response wrapper written by every handler
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

// ToJSONReader marshals v into a reader, or returns an empty reader for nil
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()
	if v == nil {
		return bytes.NewReader(nil)
	}
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

// DoJSON sends a JSON request to h and decodes the envelope of the response
func DoJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, ToJSONReader(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env Envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

// DataAs decodes the data field of env into T
func DataAs[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var out T
	require.NotNil(t, env.Data, "response has no data")
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
