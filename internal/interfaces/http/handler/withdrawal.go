package handler

import (
	appinv "github.com/clinic/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// WithdrawalHandler handles withdrawal request endpoints
type WithdrawalHandler struct {
	BaseHandler
	service *appinv.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler
func NewWithdrawalHandler(service *appinv.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{service: service}
}

// List handles GET /inventory/withdrawals
func (h *WithdrawalHandler) List(c *gin.Context) {
	filter := appinv.WithdrawalListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	responses, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// Get handles GET /inventory/withdrawals/:id
func (h *WithdrawalHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid withdrawal request ID")
		return
	}

	response, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}

// GetByNumber handles GET /inventory/withdrawals/number/:number
func (h *WithdrawalHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Request number is required")
		return
	}

	response, err := h.service.GetByRequestNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}

// Create handles POST /inventory/withdrawals
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req appinv.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, response)
}

// Update handles PUT /inventory/withdrawals/:id
func (h *WithdrawalHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid withdrawal request ID")
		return
	}

	var req appinv.UpdateWithdrawalRequest
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

// Delete handles DELETE /inventory/withdrawals/:id
func (h *WithdrawalHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid withdrawal request ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// SetApprovedToRequested handles
// POST /inventory/withdrawals/:id/set-approved-to-requested. On a pending
// request it copies requested quantities into approved quantities for every
// item current stock can satisfy.
func (h *WithdrawalHandler) SetApprovedToRequested(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid withdrawal request ID")
		return
	}

	response, err := h.service.SetApprovedToRequested(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}

// Approve handles POST /inventory/withdrawals/:id/approve
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid withdrawal request ID")
		return
	}

	var req appinv.ApproveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.service.Approve(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}

// Reject handles POST /inventory/withdrawals/:id/reject
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid withdrawal request ID")
		return
	}

	var req appinv.RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.service.Reject(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}

// CheckAvailability handles POST /inventory/withdrawals/check-availability.
// It evaluates a single form line against live stock without persisting.
func (h *WithdrawalHandler) CheckAvailability(c *gin.Context) {
	var input appinv.WithdrawalItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.service.CheckItemAvailability(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, response)
}
