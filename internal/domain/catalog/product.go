package catalog

import (
	"time"

	"github.com/clinic/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a clinic supply item (consumables, instruments, medication).
// BaseUnit is the canonical stock-counting unit; every ProductUnit converts to it.
type Product struct {
	shared.BaseAggregateRoot
	Code     string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string        `gorm:"type:varchar(200);not null"`
	BaseUnit string        `gorm:"type:varchar(50);not null"`
	Category string        `gorm:"type:varchar(100)"`
	Status   ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`

	// Associations - loaded lazily
	Units []ProductUnit `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name, baseUnit string) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if baseUnit == "" {
		return nil, shared.NewDomainError("INVALID_BASE_UNIT", "Base unit cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		BaseUnit:          baseUnit,
		Status:            ProductStatusActive,
		Units:             make([]ProductUnit, 0),
	}, nil
}

// IsActive returns true if the product can be used in new documents
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate marks the product as active
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// DefaultUnit returns the unit flagged as default, or the first unit by sort
// order when none is flagged. Returns nil when the product has no units.
func (p *Product) DefaultUnit() *ProductUnit {
	if len(p.Units) == 0 {
		return nil
	}
	for i := range p.Units {
		if p.Units[i].IsDefault {
			return &p.Units[i]
		}
	}
	return &p.Units[0]
}
