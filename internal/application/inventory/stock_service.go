package inventory

import (
	"context"
	"errors"

	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StorageLocationResponse represents a storage location in API responses
type StorageLocationResponse struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// ToStorageLocationResponse converts a domain StorageLocation to a response DTO
func ToStorageLocationResponse(location *inventory.StorageLocation) StorageLocationResponse {
	return StorageLocationResponse{
		ID:       location.ID,
		Code:     location.Code,
		Name:     location.Name,
		IsActive: location.IsActive,
	}
}

// LocationStockService provides read access to per-location batch stock
type LocationStockService struct {
	stockRepo    inventory.LocationStockRepository
	locationRepo inventory.StorageLocationRepository
}

// NewLocationStockService creates a new LocationStockService
func NewLocationStockService(
	stockRepo inventory.LocationStockRepository,
	locationRepo inventory.StorageLocationRepository,
) *LocationStockService {
	return &LocationStockService{
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
	}
}

// List retrieves stock rows matching the filter
func (s *LocationStockService) List(ctx context.Context, filter shared.Filter) ([]LocationStockResponse, error) {
	stocks, err := s.stockRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToLocationStockResponses(stocks), nil
}

// ListByBatch retrieves all location rows holding a batch
func (s *LocationStockService) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]LocationStockResponse, error) {
	stocks, err := s.stockRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return ToLocationStockResponses(stocks), nil
}

// ListByLocation retrieves stock rows held at a storage location
func (s *LocationStockService) ListByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]LocationStockResponse, error) {
	if _, err := s.locationRepo.FindByID(ctx, locationID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("LOCATION_NOT_FOUND", "Storage location not found")
		}
		return nil, err
	}

	stocks, err := s.stockRepo.FindByLocation(ctx, locationID, filter)
	if err != nil {
		return nil, err
	}
	return ToLocationStockResponses(stocks), nil
}

// ListLocations retrieves storage locations matching the filter
func (s *LocationStockService) ListLocations(ctx context.Context, filter shared.Filter) ([]StorageLocationResponse, error) {
	locations, err := s.locationRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]StorageLocationResponse, 0, len(locations))
	for i := range locations {
		responses = append(responses, ToStorageLocationResponse(&locations[i]))
	}
	return responses, nil
}
