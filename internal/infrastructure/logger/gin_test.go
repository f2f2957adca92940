package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs request with document id", func(t *testing.T) {
		l, logs := observed()
		engine := gin.New()
		engine.Use(func(c *gin.Context) {
			c.Set("request_id", "req-7")
			c.Next()
		})
		engine.Use(GinMiddleware(l))

		var ctxDoc uuid.UUID
		engine.GET("/documents/:id", func(c *gin.Context) {
			ctxDoc = GetDocumentID(c.Request.Context())
			GetGinLogger(c).Info("handler")
			c.Status(http.StatusOK)
		})

		docID := uuid.New()
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/"+docID.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, docID, ctxDoc)

		entries := logs.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-7", fields["request_id"])
		assert.Equal(t, docID.String(), fields["document_id"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, 1, logs.FilterMessage("handler").Len())
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		l, logs := observed()
		engine := gin.New()
		engine.Use(GinMiddleware(l))
		engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

		entries := logs.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
	})
}

func TestRecovery(t *testing.T) {
	l, logs := observed()
	engine := gin.New()
	engine.Use(Recovery(l))
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
