package catalog

import (
	"context"
	"errors"

	"github.com/clinic/backend/internal/domain/catalog"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RateInvalidator drops cached conversion rates after a unit changes.
// The unit conversion resolver satisfies this.
type RateInvalidator interface {
	Invalidate(ctx context.Context, unitID uuid.UUID)
}

// ProductUnitService handles product unit operations
type ProductUnitService struct {
	productRepo catalog.ProductRepository
	unitRepo    catalog.ProductUnitRepository
	invalidator RateInvalidator
}

// NewProductUnitService creates a new ProductUnitService. invalidator may be
// nil when no rate cache is wired.
func NewProductUnitService(
	productRepo catalog.ProductRepository,
	unitRepo catalog.ProductUnitRepository,
	invalidator RateInvalidator,
) *ProductUnitService {
	return &ProductUnitService{
		productRepo: productRepo,
		unitRepo:    unitRepo,
		invalidator: invalidator,
	}
}

// Create creates a new display unit for a product
func (s *ProductUnitService) Create(ctx context.Context, productID uuid.UUID, req CreateProductUnitRequest) (*ProductUnitResponse, error) {
	product, err := s.productRepo.FindByIDWithUnits(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	for i := range product.Units {
		if product.Units[i].UnitCode == req.UnitCode {
			return nil, shared.NewDomainError("DUPLICATE_UNIT_CODE", "Unit code already exists for this product")
		}
	}

	unit, err := catalog.NewProductUnit(productID, req.UnitCode, req.UnitName, req.ConversionRate)
	if err != nil {
		return nil, err
	}
	if req.SortOrder != nil {
		unit.SetSortOrder(*req.SortOrder)
	}
	if req.IsDefault {
		if err := s.clearDefaultUnit(ctx, product); err != nil {
			return nil, err
		}
		unit.SetAsDefault(true)
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}

	response := ToProductUnitResponse(unit)
	return &response, nil
}

// GetByID gets a product unit by ID
func (s *ProductUnitService) GetByID(ctx context.Context, id uuid.UUID) (*ProductUnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_UNIT_NOT_FOUND", "Product unit not found")
		}
		return nil, err
	}

	response := ToProductUnitResponse(unit)
	return &response, nil
}

// ListByProduct lists all units for a product
func (s *ProductUnitService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]ProductUnitResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	units, err := s.unitRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToProductUnitResponses(units), nil
}

// Update updates a product unit. A conversion rate change invalidates the
// cached rate so in-flight withdrawal evaluations pick up the new value.
func (s *ProductUnitService) Update(ctx context.Context, id uuid.UUID, req UpdateProductUnitRequest) (*ProductUnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_UNIT_NOT_FOUND", "Product unit not found")
		}
		return nil, err
	}

	if req.UnitName != nil || req.ConversionRate != nil {
		unitName := unit.UnitName
		if req.UnitName != nil {
			unitName = *req.UnitName
		}
		conversionRate := unit.ConversionRate
		if req.ConversionRate != nil {
			conversionRate = *req.ConversionRate
		}
		if err := unit.Update(unitName, conversionRate); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		unit.SetSortOrder(*req.SortOrder)
	}
	if req.IsDefault != nil && *req.IsDefault != unit.IsDefault {
		if *req.IsDefault {
			product, err := s.productRepo.FindByIDWithUnits(ctx, unit.ProductID)
			if err != nil {
				return nil, err
			}
			if err := s.clearDefaultUnit(ctx, product); err != nil {
				return nil, err
			}
		}
		unit.SetAsDefault(*req.IsDefault)
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, unit.ID)
	}

	response := ToProductUnitResponse(unit)
	return &response, nil
}

// Delete deletes a product unit and drops its cached rate
func (s *ProductUnitService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.unitRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PRODUCT_UNIT_NOT_FOUND", "Product unit not found")
		}
		return err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, id)
	}
	return nil
}

// clearDefaultUnit removes the default flag from the product's current default
func (s *ProductUnitService) clearDefaultUnit(ctx context.Context, product *catalog.Product) error {
	for i := range product.Units {
		if product.Units[i].IsDefault {
			product.Units[i].SetAsDefault(false)
			if err := s.unitRepo.Save(ctx, &product.Units[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
