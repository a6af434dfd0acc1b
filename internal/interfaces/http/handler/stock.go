package handler

import (
	appinv "github.com/clinic/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler handles location stock and storage location endpoints
type StockHandler struct {
	BaseHandler
	service *appinv.LocationStockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *appinv.LocationStockService) *StockHandler {
	return &StockHandler{service: service}
}

// List handles GET /inventory/stocks
func (h *StockHandler) List(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	responses, err := h.service.List(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, responses)
}

// ListByBatch handles GET /inventory/stocks/batch/:batchId
func (h *StockHandler) ListByBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	responses, err := h.service.ListByBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, responses)
}

// ListByLocation handles GET /inventory/locations/:id/stocks
func (h *StockHandler) ListByLocation(c *gin.Context) {
	locationID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid location ID")
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	responses, err := h.service.ListByLocation(c.Request.Context(), locationID, query.toFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, responses)
}

// ListLocations handles GET /inventory/locations
func (h *StockHandler) ListLocations(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	responses, err := h.service.ListLocations(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, responses)
}
