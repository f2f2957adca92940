package handler

import (
	"net/http"
	"time"

	"github.com/erp/orderentry/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// DocumentCounter reports how many documents are open
type DocumentCounter interface {
	Len() int
}

// HealthResponse is the body of the liveness endpoint
type HealthResponse struct {
	Status        string `json:"status"`
	Time          string `json:"time"`
	Database      string `json:"database"`
	OpenDocuments int    `json:"open_documents"`
}

// HealthHandler serves /health
type HealthHandler struct {
	db        Pinger
	documents DocumentCounter
	now       func() time.Time
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db Pinger, documents DocumentCounter) *HealthHandler {
	return &HealthHandler{db: db, documents: documents, now: time.Now}
}

// Check answers 200 when the database responds and 503 otherwise
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Time:     h.now().Format(time.RFC3339),
		Database: "ok",
	}
	if h.documents != nil {
		resp.OpenDocuments = h.documents.Len()
	}
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "error"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
