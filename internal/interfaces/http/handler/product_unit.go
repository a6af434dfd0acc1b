package handler

import (
	appcat "github.com/clinic/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductUnitHandler handles product unit endpoints
type ProductUnitHandler struct {
	BaseHandler
	service *appcat.ProductUnitService
}

// NewProductUnitHandler creates a new ProductUnitHandler
func NewProductUnitHandler(service *appcat.ProductUnitService) *ProductUnitHandler {
	return &ProductUnitHandler{service: service}
}

// ListByProduct handles GET /catalog/products/:id/units
func (h *ProductUnitHandler) ListByProduct(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	responses, err := h.service.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, responses)
}

// Create handles POST /catalog/products/:id/units
func (h *ProductUnitHandler) Create(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req appcat.CreateProductUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.service.Create(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, response)
}

// Get handles GET /catalog/units/:id
func (h *ProductUnitHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product unit ID")
		return
	}

	response, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}

// Update handles PUT /catalog/units/:id
func (h *ProductUnitHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product unit ID")
		return
	}

	var req appcat.UpdateProductUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}

// Delete handles DELETE /catalog/units/:id
func (h *ProductUnitHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product unit ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
