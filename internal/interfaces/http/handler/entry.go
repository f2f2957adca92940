package handler

import (
	"context"
	"net/http"

	"github.com/erp/orderentry/internal/application/orderentry"
	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/trade"
	"github.com/erp/orderentry/internal/interfaces/http/dto"
	"github.com/erp/orderentry/internal/interfaces/http/middleware"
	"github.com/erp/orderentry/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryHandler exposes the order entry grid over HTTP
type EntryHandler struct {
	BaseHandler
	service *orderentry.Service
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(service *orderentry.Service) *EntryHandler {
	return &EntryHandler{service: service}
}

// AddLineResponse is returned when a line is appended
type AddLineResponse struct {
	LineID uuid.UUID `json:"line_id"`
}

// Routes returns the order entry route group
func (h *EntryHandler) Routes() *router.DomainGroup {
	entry := router.NewDomainGroup("entry", "/entry")

	entry.POST("/documents", h.CreateDocument)
	entry.GET("/documents/:id", h.GetDocument)
	entry.DELETE("/documents/:id", h.CloseDocument)
	entry.PATCH("/documents/:id/settings", h.UpdateSettings)
	entry.POST("/documents/:id/blur", h.Blur)
	entry.GET("/documents/:id/committed-lines", h.CommittedLines)

	lines := entry.Group("lines", "/documents/:id/lines")
	lines.POST("", h.AddLine)
	lines.PUT("", h.LoadLines)
	lines.DELETE("/:lineId", h.RemoveLine)
	lines.POST("/:lineId/focus", h.FocusRow)
	lines.POST("/:lineId/commit", h.Commit)
	lines.POST("/:lineId/product", h.SelectProduct)
	lines.POST("/:lineId/batch/highlight", h.MoveBatchHighlight)
	lines.POST("/:lineId/batch/confirm", h.ConfirmBatch)
	lines.DELETE("/:lineId/batch", h.CancelBatchChoice)
	lines.PUT("/:lineId/unit", h.ChangeUnit)
	lines.PUT("/:lineId/quantity", h.SetQuantity)
	lines.PUT("/:lineId/price", h.SetPrice)
	lines.PUT("/:lineId/discount-percent", h.SetDiscountPercent)
	lines.PUT("/:lineId/discount-amount", h.SetDiscountAmount)

	entry.GET("/products", h.SearchProducts)
	entry.POST("/products/highlight", h.HighlightProduct)

	return entry
}

// CreateDocument opens a sale, quotation or purchase return with one empty line
func (h *EntryHandler) CreateDocument(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	kind, err := trade.ParseDocumentKind(req.Kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	update, err := settingsUpdate(req.TaxMode, req.VATApplies, req.RateType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	doc, err := h.service.NewDocument(kind, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// GetDocument returns the grid state and totals of an open document
func (h *EntryHandler) GetDocument(c *gin.Context) {
	docID, ok := h.uuidParam(c, "id", "document")
	if !ok {
		return
	}
	doc, err := h.service.Document(docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// CloseDocument discards an open document
func (h *EntryHandler) CloseDocument(c *gin.Context) {
	docID, ok := h.uuidParam(c, "id", "document")
	if !ok {
		return
	}
	if err := h.service.CloseDocument(docID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateSettings changes the pricing settings of a document
func (h *EntryHandler) UpdateSettings(c *gin.Context) {
	docID, ok := h.uuidParam(c, "id", "document")
	if !ok {
		return
	}
	var req dto.UpdateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	update, err := settingsUpdate(req.TaxMode, req.VATApplies, req.RateType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	doc, err := h.service.UpdateSettings(docID, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Blur moves focus out of the grid, reverting a row left in editing
func (h *EntryHandler) Blur(c *gin.Context) {
	docID, ok := h.uuidParam(c, "id", "document")
	if !ok {
		return
	}
	if err := h.service.Blur(docID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CommittedLines lists the lines that are ready to save
func (h *EntryHandler) CommittedLines(c *gin.Context) {
	docID, ok := h.uuidParam(c, "id", "document")
	if !ok {
		return
	}
	lines, err := h.service.CommittedLines(docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// AddLine appends an empty line
func (h *EntryHandler) AddLine(c *gin.Context) {
	docID, ok := h.uuidParam(c, "id", "document")
	if !ok {
		return
	}
	lineID, err := h.service.AddLine(docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, AddLineResponse{LineID: lineID})
}

// LoadLines replaces the document lines with saved ones
func (h *EntryHandler) LoadLines(c *gin.Context) {
	docID, ok := h.uuidParam(c, "id", "document")
	if !ok {
		return
	}
	var req dto.LoadLinesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	saved := make([]orderentry.SavedLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		line := orderentry.SavedLine{
			ProductID:   uuid.MustParse(l.ProductID),
			BatchNumber: l.BatchNumber,
			Quantity:    *l.Quantity,
			Price:       *l.Price,
		}
		if l.UnitOptionID != "" {
			line.UnitOptionID = uuid.MustParse(l.UnitOptionID)
		}
		if l.DiscountPercent != nil {
			line.DiscountPercent = *l.DiscountPercent
		}
		saved = append(saved, line)
	}

	doc, err := h.service.LoadLines(c.Request.Context(), docID, saved)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// RemoveLine deletes a line
func (h *EntryHandler) RemoveLine(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	doc, err := h.service.RemoveLine(docID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// FocusRow moves focus into a line
func (h *EntryHandler) FocusRow(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	if err := h.service.FocusRow(docID, lineID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Commit commits a line
func (h *EntryHandler) Commit(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	result, err := h.service.Commit(docID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SelectProduct picks a product for a line
func (h *EntryHandler) SelectProduct(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req dto.SelectProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q := orderentry.ProductQuery{
		Code:     req.Code,
		ScanCode: req.ScanCode,
		Text:     req.Text,
	}
	if req.ProductID != "" {
		q.ID = uuid.MustParse(req.ProductID)
	}
	if q.IsEmpty() {
		h.BadRequest(c, "One of product_id, code, scan_code or text is required")
		return
	}

	result, err := h.service.SelectProduct(c.Request.Context(), docID, lineID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// MoveBatchHighlight moves the batch picker highlight up or down
func (h *EntryHandler) MoveBatchHighlight(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req dto.MoveHighlightRequest
	if !h.bindJSON(c, &req) {
		return
	}
	choice, err := h.service.MoveBatchHighlight(docID, lineID, req.Direction == "down")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, choice)
}

// ConfirmBatch confirms the highlighted batch for a line
func (h *EntryHandler) ConfirmBatch(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req dto.ConfirmBatchRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.ConfirmBatch(c.Request.Context(), docID, lineID, req.BatchNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CancelBatchChoice closes the batch picker, leaving the line untouched
func (h *EntryHandler) CancelBatchChoice(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	if err := h.service.CancelBatchChoice(docID, lineID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeUnit switches the line to another unit of its product
func (h *EntryHandler) ChangeUnit(c *gin.Context) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req dto.ChangeUnitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.ChangeUnit(c.Request.Context(), docID, lineID, uuid.MustParse(req.UnitOptionID))
	h.respondEdit(c, result, err)
}

// SetQuantity sets a line quantity
func (h *EntryHandler) SetQuantity(c *gin.Context) {
	var req dto.QuantityRequest
	h.decimalEdit(c, &req, func() decimal.Decimal { return *req.Quantity }, h.service.SetQuantity)
}

// SetPrice sets the line's unit price
func (h *EntryHandler) SetPrice(c *gin.Context) {
	var req dto.PriceRequest
	h.decimalEdit(c, &req, func() decimal.Decimal { return *req.Price }, h.service.SetPrice)
}

// SetDiscountPercent sets the line discount as a percentage of gross
func (h *EntryHandler) SetDiscountPercent(c *gin.Context) {
	var req dto.DiscountPercentRequest
	h.decimalEdit(c, &req, func() decimal.Decimal { return *req.Percent }, h.service.SetDiscountPercent)
}

// SetDiscountAmount sets the line discount as an amount
func (h *EntryHandler) SetDiscountAmount(c *gin.Context) {
	var req dto.DiscountAmountRequest
	h.decimalEdit(c, &req, func() decimal.Decimal { return *req.Amount }, h.service.SetDiscountAmount)
}

// SearchProducts searches the catalog
func (h *EntryHandler) SearchProducts(c *gin.Context) {
	var req dto.SearchProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.Success(c, h.service.SearchProducts(c.Request.Context(), req.Query, req.Limit))
}

// HighlightProduct schedules a stock prefetch for the product under the cursor
func (h *EntryHandler) HighlightProduct(c *gin.Context) {
	var req dto.HighlightProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.service.HighlightProduct(uuid.MustParse(req.ProductID))
	c.Status(http.StatusAccepted)
}

type decimalEditFunc func(ctx context.Context, docID, lineID uuid.UUID, value decimal.Decimal) (*orderentry.EditResult, error)

func (h *EntryHandler) decimalEdit(c *gin.Context, req any, value func() decimal.Decimal, edit decimalEditFunc) {
	docID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	if !h.bindJSON(c, req) {
		return
	}
	result, err := edit(c.Request.Context(), docID, lineID, value())
	h.respondEdit(c, result, err)
}

func (h *EntryHandler) respondEdit(c *gin.Context, result *orderentry.EditResult, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *EntryHandler) lineParams(c *gin.Context) (docID, lineID uuid.UUID, ok bool) {
	if docID, ok = h.uuidParam(c, "id", "document"); !ok {
		return
	}
	lineID, ok = h.uuidParam(c, "lineId", "line")
	return
}

func settingsUpdate(taxMode *string, vatApplies *bool, rateType *string) (orderentry.SettingsUpdate, error) {
	update := orderentry.SettingsUpdate{VATApplies: vatApplies}
	if taxMode != nil {
		m, err := trade.ParseTaxMode(*taxMode)
		if err != nil {
			return update, err
		}
		update.TaxMode = &m
	}
	if rateType != nil {
		r, err := catalog.ParseRateType(*rateType)
		if err != nil {
			return update, err
		}
		update.RateType = &r
	}
	return update, nil
}
