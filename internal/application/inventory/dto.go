package inventory

import (
	"time"

	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Request DTOs =====================

// WithdrawalItemInput carries one line of a withdrawal form. Zero UUIDs mean
// "not yet selected"; the unit may be omitted to pick the product's default.
type WithdrawalItemInput struct {
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	BatchID           uuid.UUID       `json:"batch_id"`
	BatchNumber       string          `json:"batch_number"`
	ProductUnitID     uuid.UUID       `json:"product_unit_id"`
	FromLocationID    uuid.UUID       `json:"from_location_id"`
	ToLocationID      uuid.UUID       `json:"to_location_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
}

// CreateWithdrawalRequest represents a request to create a withdrawal request
type CreateWithdrawalRequest struct {
	RequestedByID   uuid.UUID             `json:"requested_by_id" binding:"required"`
	RequestedByName string                `json:"requested_by_name" binding:"required"`
	Notes           string                `json:"notes"`
	Items           []WithdrawalItemInput `json:"items" binding:"required,min=1"`
}

// UpdateWithdrawalRequest replaces the notes and items of a pending request
type UpdateWithdrawalRequest struct {
	Notes string                `json:"notes"`
	Items []WithdrawalItemInput `json:"items" binding:"required,min=1"`
}

// ApproveItemInput sets the approved quantity for one item
type ApproveItemInput struct {
	ItemID           uuid.UUID       `json:"item_id" binding:"required"`
	ApprovedQuantity decimal.Decimal `json:"approved_quantity"`
}

// ApproveWithdrawalRequest represents a request to approve a withdrawal request
type ApproveWithdrawalRequest struct {
	ApproverID   uuid.UUID          `json:"approver_id" binding:"required"`
	ApproverName string             `json:"approver_name" binding:"required"`
	Note         string             `json:"note"`
	Items        []ApproveItemInput `json:"items"`
}

// RejectWithdrawalRequest represents a request to reject a withdrawal request
type RejectWithdrawalRequest struct {
	ApproverID   uuid.UUID `json:"approver_id" binding:"required"`
	ApproverName string    `json:"approver_name" binding:"required"`
	Reason       string    `json:"reason" binding:"required,min=1,max=500"`
}

// WithdrawalListFilter represents filter options for withdrawal request lists
type WithdrawalListFilter struct {
	Search   string                    `form:"search"`
	Status   *inventory.ApprovalStatus `form:"status"`
	Page     int                       `form:"page" binding:"min=1"`
	PageSize int                       `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string                    `form:"order_by"`
	OrderDir string                    `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ===================== Response DTOs =====================

// WithdrawalItemResponse represents a withdrawal item in API responses
type WithdrawalItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	WithdrawalRequestID uuid.UUID       `json:"withdrawal_request_id"`
	ProductID           uuid.UUID       `json:"product_id"`
	ProductName         string          `json:"product_name"`
	BatchID             uuid.UUID       `json:"batch_id"`
	BatchNumber         string          `json:"batch_number"`
	ProductUnitID       uuid.UUID       `json:"product_unit_id"`
	FromLocationID      uuid.UUID       `json:"from_location_id"`
	ToLocationID        uuid.UUID       `json:"to_location_id"`
	RequestedQuantity   decimal.Decimal `json:"requested_quantity"`
	ApprovedQuantity    decimal.Decimal `json:"approved_quantity"`
	AvailableQuantity   decimal.Decimal `json:"available_quantity"`
	IsAvailable         bool            `json:"is_available"`
	QuantityDisabled    bool            `json:"quantity_disabled"`
	ValidationMessage   string          `json:"validation_message,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// WithdrawalResponse represents a withdrawal request in API responses
type WithdrawalResponse struct {
	ID                     uuid.UUID                `json:"id"`
	RequestNumber          string                   `json:"request_number"`
	Status                 string                   `json:"status"`
	Notes                  string                   `json:"notes,omitempty"`
	RequestedByID          uuid.UUID                `json:"requested_by_id"`
	RequestedByName        string                   `json:"requested_by_name"`
	ApprovedAt             *time.Time               `json:"approved_at,omitempty"`
	ApprovedByID           *uuid.UUID               `json:"approved_by_id,omitempty"`
	ApprovedByName         string                   `json:"approved_by_name,omitempty"`
	ApprovalNote           string                   `json:"approval_note,omitempty"`
	TotalProducts          int                      `json:"total_products"`
	TotalRequestedQuantity decimal.Decimal          `json:"total_requested_quantity"`
	TotalApprovedQuantity  decimal.Decimal          `json:"total_approved_quantity"`
	Availability           string                   `json:"availability"`
	Items                  []WithdrawalItemResponse `json:"items,omitempty"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
	Version                int                      `json:"version"`
}

// WithdrawalListResponse represents a withdrawal request in list views (without items)
type WithdrawalListResponse struct {
	ID                     uuid.UUID       `json:"id"`
	RequestNumber          string          `json:"request_number"`
	Status                 string          `json:"status"`
	RequestedByID          uuid.UUID       `json:"requested_by_id"`
	RequestedByName        string          `json:"requested_by_name"`
	TotalProducts          int             `json:"total_products"`
	TotalRequestedQuantity decimal.Decimal `json:"total_requested_quantity"`
	TotalApprovedQuantity  decimal.Decimal `json:"total_approved_quantity"`
	Availability           string          `json:"availability"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// LocationStockResponse represents a per-location batch stock row
type LocationStockResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	BatchID      uuid.UUID       `json:"batch_id"`
	BatchNumber  string          `json:"batch_number"`
	LocationID   uuid.UUID       `json:"location_id"`
	LocationName string          `json:"location_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AvailabilityResponse reports the availability check for one form line
type AvailabilityResponse struct {
	UnitResolved      bool            `json:"unit_resolved"`
	ConversionRate    decimal.Decimal `json:"conversion_rate"`
	AvailableBase     decimal.Decimal `json:"available_base"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	RequiredBase      decimal.Decimal `json:"required_base"`
	IsAvailable       bool            `json:"is_available"`
	OutOfStock        bool            `json:"out_of_stock"`
	LocationName      string          `json:"location_name,omitempty"`
}

// ===================== Conversion Functions =====================

// ToWithdrawalItemResponse converts a domain WithdrawalItem to a response DTO
func ToWithdrawalItemResponse(item *inventory.WithdrawalItem) WithdrawalItemResponse {
	return WithdrawalItemResponse{
		ID:                  item.ID,
		WithdrawalRequestID: item.WithdrawalRequestID,
		ProductID:           item.ProductID,
		ProductName:         item.ProductName,
		BatchID:             item.BatchID,
		BatchNumber:         item.BatchNumber,
		ProductUnitID:       item.ProductUnitID,
		FromLocationID:      item.FromLocationID,
		ToLocationID:        item.ToLocationID,
		RequestedQuantity:   item.RequestedQuantity,
		ApprovedQuantity:    item.ApprovedQuantity,
		AvailableQuantity:   item.AvailableQuantity,
		IsAvailable:         item.IsAvailable,
		QuantityDisabled:    item.QuantityDisabled,
		ValidationMessage:   item.ValidationMessage,
		CreatedAt:           item.CreatedAt,
		UpdatedAt:           item.UpdatedAt,
	}
}

// ToWithdrawalItemResponses converts a slice of domain items to responses
func ToWithdrawalItemResponses(items []inventory.WithdrawalItem) []WithdrawalItemResponse {
	responses := make([]WithdrawalItemResponse, len(items))
	for i := range items {
		responses[i] = ToWithdrawalItemResponse(&items[i])
	}
	return responses
}

// ToWithdrawalResponse converts a domain WithdrawalRequest to a response DTO
func ToWithdrawalResponse(wr *inventory.WithdrawalRequest) WithdrawalResponse {
	response := WithdrawalResponse{
		ID:                     wr.ID,
		RequestNumber:          wr.RequestNumber,
		Status:                 string(wr.Status),
		Notes:                  wr.Notes,
		RequestedByID:          wr.RequestedByID,
		RequestedByName:        wr.RequestedByName,
		ApprovedAt:             wr.ApprovedAt,
		ApprovedByID:           wr.ApprovedByID,
		ApprovedByName:         wr.ApprovedByName,
		ApprovalNote:           wr.ApprovalNote,
		TotalProducts:          wr.TotalProducts,
		TotalRequestedQuantity: wr.TotalRequestedQuantity,
		TotalApprovedQuantity:  wr.TotalApprovedQuantity,
		Availability:           string(wr.Availability),
		CreatedAt:              wr.CreatedAt,
		UpdatedAt:              wr.UpdatedAt,
		Version:                wr.Version,
	}

	if len(wr.Items) > 0 {
		response.Items = ToWithdrawalItemResponses(wr.Items)
	}

	return response
}

// ToWithdrawalListResponse converts a domain WithdrawalRequest to a list response DTO
func ToWithdrawalListResponse(wr *inventory.WithdrawalRequest) WithdrawalListResponse {
	return WithdrawalListResponse{
		ID:                     wr.ID,
		RequestNumber:          wr.RequestNumber,
		Status:                 string(wr.Status),
		RequestedByID:          wr.RequestedByID,
		RequestedByName:        wr.RequestedByName,
		TotalProducts:          wr.TotalProducts,
		TotalRequestedQuantity: wr.TotalRequestedQuantity,
		TotalApprovedQuantity:  wr.TotalApprovedQuantity,
		Availability:           string(wr.Availability),
		CreatedAt:              wr.CreatedAt,
		UpdatedAt:              wr.UpdatedAt,
	}
}

// ToWithdrawalListResponses converts a slice of domain requests to list responses
func ToWithdrawalListResponses(wrs []inventory.WithdrawalRequest) []WithdrawalListResponse {
	responses := make([]WithdrawalListResponse, len(wrs))
	for i := range wrs {
		responses[i] = ToWithdrawalListResponse(&wrs[i])
	}
	return responses
}

// ToLocationStockResponse converts a domain LocationStock to a response DTO
func ToLocationStockResponse(stock *inventory.LocationStock) LocationStockResponse {
	return LocationStockResponse{
		ID:           stock.ID,
		ProductID:    stock.ProductID,
		ProductName:  stock.ProductName,
		BatchID:      stock.BatchID,
		BatchNumber:  stock.BatchNumber,
		LocationID:   stock.LocationID,
		LocationName: stock.LocationName,
		Quantity:     stock.Quantity,
		UpdatedAt:    stock.UpdatedAt,
	}
}

// ToLocationStockResponses converts a slice of domain stock rows to responses
func ToLocationStockResponses(stocks []inventory.LocationStock) []LocationStockResponse {
	responses := make([]LocationStockResponse, len(stocks))
	for i := range stocks {
		responses[i] = ToLocationStockResponse(&stocks[i])
	}
	return responses
}
