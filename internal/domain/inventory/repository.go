package inventory

import (
	"context"

	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WithdrawalRequestRepository defines the interface for withdrawal request
// persistence. Items are a child collection of the aggregate and are saved
// through it.
type WithdrawalRequestRepository interface {
	// FindByID finds a withdrawal request with its items
	FindByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error)

	// FindByRequestNumber finds a withdrawal request by its number
	FindByRequestNumber(ctx context.Context, requestNumber string) (*WithdrawalRequest, error)

	// FindAll finds withdrawal requests matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]WithdrawalRequest, error)

	// FindByStatus finds withdrawal requests with a specific status
	FindByStatus(ctx context.Context, status ApprovalStatus, filter shared.Filter) ([]WithdrawalRequest, error)

	// Count counts withdrawal requests matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts withdrawal requests by status
	CountByStatus(ctx context.Context, status ApprovalStatus) (int64, error)

	// Save creates or updates a withdrawal request with its items
	Save(ctx context.Context, wr *WithdrawalRequest) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, wr *WithdrawalRequest) error

	// Delete deletes a withdrawal request
	Delete(ctx context.Context, id uuid.UUID) error

	// GenerateRequestNumber generates a new unique request number
	GenerateRequestNumber(ctx context.Context) (string, error)
}

// LocationStockRepository defines the interface for per-location batch stock.
// A missing (batch, location) row is the normal "no stock" state, not an
// error; lookups surface it as a nil entry.
type LocationStockRepository interface {
	// FindByBatchAndLocation finds the authoritative stock row for a batch at
	// a location. Returns shared.ErrNotFound when no row exists; rows are
	// ordered deterministically so the first match wins if duplicates slip in.
	FindByBatchAndLocation(ctx context.Context, batchID, locationID uuid.UUID) (*LocationStock, error)

	// FindByBatch finds all location rows holding a batch
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]LocationStock, error)

	// FindByLocation finds all stock rows at a location
	FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]LocationStock, error)

	// FindAll finds stock rows matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]LocationStock, error)

	// Save creates or updates a stock row
	Save(ctx context.Context, stock *LocationStock) error

	// Delete deletes a stock row
	Delete(ctx context.Context, id uuid.UUID) error
}

// StorageLocationRepository defines the interface for storage locations
type StorageLocationRepository interface {
	// FindByID finds a storage location by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StorageLocation, error)

	// FindByCode finds a storage location by its code
	FindByCode(ctx context.Context, code string) (*StorageLocation, error)

	// FindAll finds storage locations matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StorageLocation, error)

	// Save creates or updates a storage location
	Save(ctx context.Context, location *StorageLocation) error

	// Delete deletes a storage location
	Delete(ctx context.Context, id uuid.UUID) error
}
