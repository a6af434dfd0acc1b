package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/clinic/backend/internal/domain/catalog"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
	unitRepo *fakeUnitRepo
}

func newFakeProductRepo(unitRepo *fakeUnitRepo) *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product), unitRepo: unitRepo}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByIDWithUnits(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	units, err := r.unitRepo.FindByProductID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Units = units
	return product, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	products := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, *p)
	}
	return products, nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type fakeUnitRepo struct {
	mu    sync.Mutex
	units map[uuid.UUID]*catalog.ProductUnit
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{units: make(map[uuid.UUID]*catalog.ProductUnit)}
}

func (r *fakeUnitRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.ProductUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.units[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUnitRepo) FindByProductID(_ context.Context, productID uuid.UUID) ([]catalog.ProductUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	units := make([]catalog.ProductUnit, 0)
	for _, u := range r.units {
		if u.ProductID == productID {
			units = append(units, *u)
		}
	}
	return units, nil
}

func (r *fakeUnitRepo) FindDefaultByProductID(ctx context.Context, productID uuid.UUID) (*catalog.ProductUnit, error) {
	units, err := r.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range units {
		if units[i].IsDefault {
			return &units[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUnitRepo) Save(_ context.Context, unit *catalog.ProductUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *unit
	r.units[unit.ID] = &copied
	return nil
}

func (r *fakeUnitRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.units, id)
	return nil
}

type recordingInvalidator struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
}

func (i *recordingInvalidator) Invalidate(_ context.Context, unitID uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.invalidated = append(i.invalidated, unitID)
}

type unitFixture struct {
	productRepo *fakeProductRepo
	unitRepo    *fakeUnitRepo
	invalidator *recordingInvalidator
	svc         *ProductUnitService
	product     *catalog.Product
}

func newUnitFixture(t *testing.T) *unitFixture {
	t.Helper()
	unitRepo := newFakeUnitRepo()
	productRepo := newFakeProductRepo(unitRepo)
	invalidator := &recordingInvalidator{}

	product, err := catalog.NewProduct("RES-001", "Composite Resin", "pcs")
	require.NoError(t, err)
	require.NoError(t, productRepo.Save(context.Background(), product))

	return &unitFixture{
		productRepo: productRepo,
		unitRepo:    unitRepo,
		invalidator: invalidator,
		svc:         NewProductUnitService(productRepo, unitRepo, invalidator),
		product:     product,
	}
}

func TestProductUnitService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a unit for an existing product", func(t *testing.T) {
		f := newUnitFixture(t)

		resp, err := f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
			UnitCode:       "BOX",
			UnitName:       "Box of 24",
			ConversionRate: decimal.NewFromInt(24),
			IsDefault:      true,
		})

		require.NoError(t, err)
		assert.Equal(t, "BOX", resp.UnitCode)
		assert.True(t, resp.IsDefault)
		assert.True(t, resp.ConversionRate.Equal(decimal.NewFromInt(24)))
	})

	t.Run("rejects a duplicate unit code", func(t *testing.T) {
		f := newUnitFixture(t)

		_, err := f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
			UnitCode: "BOX", UnitName: "Box", ConversionRate: decimal.NewFromInt(24),
		})
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
			UnitCode: "BOX", UnitName: "Another Box", ConversionRate: decimal.NewFromInt(12),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_UNIT_CODE", domainErr.Code)
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		f := newUnitFixture(t)

		_, err := f.svc.Create(ctx, uuid.New(), CreateProductUnitRequest{
			UnitCode: "BOX", UnitName: "Box", ConversionRate: decimal.NewFromInt(24),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_NOT_FOUND", domainErr.Code)
	})

	t.Run("setting a new default clears the old one", func(t *testing.T) {
		f := newUnitFixture(t)

		first, err := f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
			UnitCode: "BOX", UnitName: "Box", ConversionRate: decimal.NewFromInt(24), IsDefault: true,
		})
		require.NoError(t, err)

		second, err := f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
			UnitCode: "PK", UnitName: "Pack", ConversionRate: decimal.NewFromInt(6), IsDefault: true,
		})
		require.NoError(t, err)
		assert.True(t, second.IsDefault)

		reloaded, err := f.unitRepo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsDefault)
	})
}

func TestProductUnitService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the conversion rate and invalidates the cached rate", func(t *testing.T) {
		f := newUnitFixture(t)
		created, err := f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
			UnitCode: "BOX", UnitName: "Box", ConversionRate: decimal.NewFromInt(24),
		})
		require.NoError(t, err)

		newRate := decimal.NewFromInt(12)
		updated, err := f.svc.Update(ctx, created.ID, UpdateProductUnitRequest{
			ConversionRate: &newRate,
		})

		require.NoError(t, err)
		assert.True(t, updated.ConversionRate.Equal(newRate))
		assert.Contains(t, f.invalidator.invalidated, created.ID)
	})

	t.Run("rejects a zero conversion rate", func(t *testing.T) {
		f := newUnitFixture(t)
		created, err := f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
			UnitCode: "BOX", UnitName: "Box", ConversionRate: decimal.NewFromInt(24),
		})
		require.NoError(t, err)

		zero := decimal.Zero
		_, err = f.svc.Update(ctx, created.ID, UpdateProductUnitRequest{ConversionRate: &zero})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CONVERSION_RATE", domainErr.Code)
	})
}

func TestProductUnitService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newUnitFixture(t)

	created, err := f.svc.Create(ctx, f.product.ID, CreateProductUnitRequest{
		UnitCode: "BOX", UnitName: "Box", ConversionRate: decimal.NewFromInt(24),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.Contains(t, f.invalidator.invalidated, created.ID)

	_, err = f.svc.GetByID(ctx, created.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_UNIT_NOT_FOUND", domainErr.Code)
}

func TestProductService(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and fetches a product with units", func(t *testing.T) {
		f := newUnitFixture(t)
		svc := NewProductService(f.productRepo)

		created, err := svc.Create(ctx, CreateProductRequest{
			Code: "GLV-001", Name: "Nitrile Gloves", BaseUnit: "pcs", Category: "consumables",
		})
		require.NoError(t, err)
		assert.Equal(t, "GLV-001", created.Code)

		_, err = f.svc.Create(ctx, created.ID, CreateProductUnitRequest{
			UnitCode: "BOX", UnitName: "Box of 100", ConversionRate: decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		fetched, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, fetched.Units, 1)
		assert.Equal(t, "BOX", fetched.Units[0].UnitCode)
	})

	t.Run("rejects duplicate product codes", func(t *testing.T) {
		f := newUnitFixture(t)
		svc := NewProductService(f.productRepo)

		_, err := svc.Create(ctx, CreateProductRequest{Code: "RES-001", Name: "Other", BaseUnit: "pcs"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_CODE", domainErr.Code)
	})
}
