package inventory

import (
	"context"
	"errors"

	"github.com/clinic/backend/internal/domain/catalog"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConversionRateCache caches resolved unit conversion rates. Implementations
// must treat a miss as a normal state, not an error.
type ConversionRateCache interface {
	// Get returns the cached rate for a unit and whether it was present
	Get(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, bool, error)
	// Set stores the rate for a unit
	Set(ctx context.Context, unitID uuid.UUID, rate decimal.Decimal) error
	// Invalidate drops the cached rate for a unit
	Invalidate(ctx context.Context, unitID uuid.UUID) error
}

// ResolvedUnit is the outcome of a successful unit resolution
type ResolvedUnit struct {
	UnitID         uuid.UUID
	UnitName       string
	ConversionRate decimal.Decimal
	IsDefault      bool
}

// UnitConversionResolver resolves a product unit selection to its conversion
// rate toward the product's base unit. An unselected or unknown unit resolves
// to shared.ErrUnitUnresolved; there is no implicit 1:1 fallback, because a
// silently wrong rate corrupts every downstream availability figure.
type UnitConversionResolver struct {
	unitRepo catalog.ProductUnitRepository
	cache    ConversionRateCache
	logger   *zap.Logger
}

// NewUnitConversionResolver creates a new UnitConversionResolver. cache may be
// nil, in which case every resolution hits the repository.
func NewUnitConversionResolver(unitRepo catalog.ProductUnitRepository, cache ConversionRateCache, logger *zap.Logger) *UnitConversionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitConversionResolver{
		unitRepo: unitRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Resolve returns the conversion rate for a unit ID
func (r *UnitConversionResolver) Resolve(ctx context.Context, unitID uuid.UUID) (*ResolvedUnit, error) {
	if unitID == uuid.Nil {
		return nil, shared.ErrUnitUnresolved
	}

	if r.cache != nil {
		rate, ok, err := r.cache.Get(ctx, unitID)
		if err != nil {
			// Cache failures degrade to a repository read
			r.logger.Warn("conversion rate cache read failed", zap.Error(err))
		} else if ok {
			return &ResolvedUnit{UnitID: unitID, ConversionRate: rate}, nil
		}
	}

	unit, err := r.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnitUnresolved
		}
		return nil, err
	}
	if !unit.ConversionRate.GreaterThan(decimal.Zero) {
		return nil, shared.ErrUnitUnresolved
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, unitID, unit.ConversionRate); err != nil {
			r.logger.Warn("conversion rate cache write failed", zap.Error(err))
		}
	}

	return &ResolvedUnit{
		UnitID:         unit.ID,
		UnitName:       unit.UnitName,
		ConversionRate: unit.ConversionRate,
		IsDefault:      unit.IsDefault,
	}, nil
}

// DefaultUnit returns the unit preselected for a product: the one flagged as
// default, or the first configured unit when none is flagged.
func (r *UnitConversionResolver) DefaultUnit(ctx context.Context, productID uuid.UUID) (*ResolvedUnit, error) {
	if productID == uuid.Nil {
		return nil, shared.ErrUnitUnresolved
	}

	units, err := r.unitRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, shared.ErrUnitUnresolved
	}

	selected := &units[0]
	for i := range units {
		if units[i].IsDefault {
			selected = &units[i]
			break
		}
	}
	if !selected.ConversionRate.GreaterThan(decimal.Zero) {
		return nil, shared.ErrUnitUnresolved
	}

	return &ResolvedUnit{
		UnitID:         selected.ID,
		UnitName:       selected.UnitName,
		ConversionRate: selected.ConversionRate,
		IsDefault:      selected.IsDefault,
	}, nil
}

// UnitsForProduct lists the units configured for a product
func (r *UnitConversionResolver) UnitsForProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductUnit, error) {
	return r.unitRepo.FindByProductID(ctx, productID)
}

// Invalidate drops the cached rate after a unit definition changes
func (r *UnitConversionResolver) Invalidate(ctx context.Context, unitID uuid.UUID) {
	if r.cache == nil || unitID == uuid.Nil {
		return
	}
	if err := r.cache.Invalidate(ctx, unitID); err != nil {
		r.logger.Warn("conversion rate cache invalidation failed", zap.Error(err))
	}
}
