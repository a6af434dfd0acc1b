package inventory

import (
	"time"

	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocationStock represents the base-unit quantity of a specific product batch
// present at a specific storage location. There is at most one authoritative
// row per (batch, location) pair.
type LocationStock struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_location_stock_batch_location,priority:1"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_location_stock_batch_location,priority:2"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // base units
	BatchNumber string          `gorm:"type:varchar(50)"`
	// Denormalized display fields, refreshed when the source records change
	LocationName string    `gorm:"type:varchar(100)"`
	ProductName  string    `gorm:"type:varchar(200)"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (LocationStock) TableName() string {
	return "location_stocks"
}

// NewLocationStock creates a stock row for a batch at a location
func NewLocationStock(productID, batchID, locationID uuid.UUID, quantity decimal.Decimal) (*LocationStock, error) {
	if productID == uuid.Nil || batchID == uuid.Nil || locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_KEY", "Product, batch and location are required")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}

	return &LocationStock{
		ID:         uuid.New(),
		ProductID:  productID,
		BatchID:    batchID,
		LocationID: locationID,
		Quantity:   quantity,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

// HasStock returns true if the row holds a positive base quantity
func (s *LocationStock) HasStock() bool {
	return s.Quantity.GreaterThan(decimal.Zero)
}

// Deduct reduces the base quantity, failing when stock is insufficient
func (s *LocationStock) Deduct(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduct quantity must be positive")
	}
	if s.Quantity.Add(availabilityEpsilon).LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	s.Quantity = s.Quantity.Sub(quantity)
	if s.Quantity.IsNegative() {
		s.Quantity = decimal.Zero
	}
	s.UpdatedAt = time.Now()
	return nil
}

// Add increases the base quantity (receipts, returns, inbound transfers)
func (s *LocationStock) Add(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Add quantity must be positive")
	}

	s.Quantity = s.Quantity.Add(quantity)
	s.UpdatedAt = time.Now()
	return nil
}
