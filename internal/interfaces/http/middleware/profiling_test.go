package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling(t *testing.T) {
	type seen struct {
		route, method, controller string
		labelled                  bool
	}
	capture := func(got *seen) gin.HandlerFunc {
		return func(c *gin.Context) {
			ctx := c.Request.Context()
			got.route, got.labelled = pprof.Label(ctx, "route")
			got.method, _ = pprof.Label(ctx, "method")
			got.controller, _ = pprof.Label(ctx, "controller")
			c.Status(http.StatusOK)
		}
	}

	t.Run("labels requests by route pattern", func(t *testing.T) {
		var got seen
		e := gin.New()
		e.Use(Profiling(ProfilingConfig{Enabled: true}))
		e.PUT("/api/v1/entry/documents/:id/lines/:lineId/quantity", capture(&got))

		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
			"/api/v1/entry/documents/6a1e/lines/77b0/quantity", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, got.labelled)
		assert.Equal(t, "/api/v1/entry/documents/:id/lines/:lineId/quantity", got.route)
		assert.Equal(t, http.MethodPut, got.method)
		assert.Equal(t, "entry", got.controller)
	})

	t.Run("skipped paths and disabled config run unlabelled", func(t *testing.T) {
		for _, cfg := range []ProfilingConfig{
			{Enabled: true, SkipPaths: []string{"/health"}},
			{Enabled: false},
		} {
			var got seen
			e := gin.New()
			e.Use(Profiling(cfg))
			e.GET("/health", capture(&got))

			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.False(t, got.labelled)
		}
	})
}

func TestControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/entry/documents/:id": "entry",
		"/api/V2/entry/products":      "entry",
		"/health":                     "health",
		"/:id/lines":                  "lines",
		"":                            "",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}
