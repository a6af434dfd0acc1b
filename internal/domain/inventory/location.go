package inventory

import (
	"time"

	"github.com/clinic/backend/internal/domain/shared"
)

// StorageLocation represents a physical or logical storage point in the
// clinic (treatment room cabinet, central store, sterilization area).
type StorageLocation struct {
	shared.BaseEntity
	Code     string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(100);not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StorageLocation) TableName() string {
	return "storage_locations"
}

// NewStorageLocation creates a new storage location
func NewStorageLocation(code, name string) (*StorageLocation, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Location code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Location name cannot be empty")
	}

	return &StorageLocation{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		IsActive:   true,
	}, nil
}

// Deactivate marks the location as inactive
func (l *StorageLocation) Deactivate() {
	l.IsActive = false
	l.UpdatedAt = time.Now()
}
