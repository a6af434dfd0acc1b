package inventory

import (
	"context"
	"errors"

	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockAtLocation is the result of a stock lookup. Found is false when no
// stock row exists for the pair; Quantity is zero in that case.
type StockAtLocation struct {
	Quantity     decimal.Decimal
	BatchNumber  string
	LocationName string
	Found        bool
}

// LocationStockLookup answers "how much of this batch sits at this location,
// in base units". Incomplete selections and missing rows both read as zero
// stock; only infrastructure failures surface as errors.
type LocationStockLookup struct {
	stockRepo inventory.LocationStockRepository
}

// NewLocationStockLookup creates a new LocationStockLookup
func NewLocationStockLookup(stockRepo inventory.LocationStockRepository) *LocationStockLookup {
	return &LocationStockLookup{stockRepo: stockRepo}
}

// Available returns the base-unit stock for a batch at a location
func (l *LocationStockLookup) Available(ctx context.Context, batchID, locationID uuid.UUID) (StockAtLocation, error) {
	if batchID == uuid.Nil || locationID == uuid.Nil {
		return StockAtLocation{Quantity: decimal.Zero}, nil
	}

	stock, err := l.stockRepo.FindByBatchAndLocation(ctx, batchID, locationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return StockAtLocation{Quantity: decimal.Zero}, nil
		}
		return StockAtLocation{}, err
	}

	return StockAtLocation{
		Quantity:     stock.Quantity,
		BatchNumber:  stock.BatchNumber,
		LocationName: stock.LocationName,
		Found:        true,
	}, nil
}
