package catalog

import (
	"time"

	"github.com/clinic/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code     string `json:"code" binding:"required,min=1,max=50"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	BaseUnit string `json:"base_unit" binding:"required,min=1,max=50"`
	Category string `json:"category" binding:"max=100"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Category *string `json:"category" binding:"omitempty,max=100"`
}

// CreateProductUnitRequest represents a request to add a display unit to a product
type CreateProductUnitRequest struct {
	UnitCode       string          `json:"unit_code" binding:"required,min=1,max=20"`
	UnitName       string          `json:"unit_name" binding:"required,min=1,max=50"`
	ConversionRate decimal.Decimal `json:"conversion_rate" binding:"required"`
	IsDefault      bool            `json:"is_default"`
	SortOrder      *int            `json:"sort_order"`
}

// UpdateProductUnitRequest represents a request to update a product unit
type UpdateProductUnitRequest struct {
	UnitName       *string          `json:"unit_name" binding:"omitempty,min=1,max=50"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
	IsDefault      *bool            `json:"is_default"`
	SortOrder      *int             `json:"sort_order"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID             `json:"id"`
	Code      string                `json:"code"`
	Name      string                `json:"name"`
	BaseUnit  string                `json:"base_unit"`
	Category  string                `json:"category"`
	Status    string                `json:"status"`
	Units     []ProductUnitResponse `json:"units,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Version   int                   `json:"version"`
}

// ProductUnitResponse represents a product unit in API responses
type ProductUnitResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	UnitCode       string          `json:"unit_code"`
	UnitName       string          `json:"unit_name"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	IsDefault      bool            `json:"is_default"`
	SortOrder      int             `json:"sort_order"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToProductResponse converts a product to its response representation
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Code:      product.Code,
		Name:      product.Name,
		BaseUnit:  product.BaseUnit,
		Category:  product.Category,
		Status:    string(product.Status),
		Units:     ToProductUnitResponses(product.Units),
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
		Version:   product.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToProductUnitResponse converts a product unit to its response representation
func ToProductUnitResponse(unit *catalog.ProductUnit) ProductUnitResponse {
	return ProductUnitResponse{
		ID:             unit.ID,
		ProductID:      unit.ProductID,
		UnitCode:       unit.UnitCode,
		UnitName:       unit.UnitName,
		ConversionRate: unit.ConversionRate,
		IsDefault:      unit.IsDefault,
		SortOrder:      unit.SortOrder,
		CreatedAt:      unit.CreatedAt,
		UpdatedAt:      unit.UpdatedAt,
	}
}

// ToProductUnitResponses converts a slice of product units
func ToProductUnitResponses(units []catalog.ProductUnit) []ProductUnitResponse {
	responses := make([]ProductUnitResponse, len(units))
	for i := range units {
		responses[i] = ToProductUnitResponse(&units[i])
	}
	return responses
}
