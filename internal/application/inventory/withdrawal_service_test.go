package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/clinic/backend/internal/domain/catalog"
	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===================== In-memory fakes =====================

type memUnitRepo struct {
	mu    sync.Mutex
	units map[uuid.UUID]*catalog.ProductUnit
	order []uuid.UUID
}

func newMemUnitRepo() *memUnitRepo {
	return &memUnitRepo{units: make(map[uuid.UUID]*catalog.ProductUnit)}
}

func (r *memUnitRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.ProductUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	unit, ok := r.units[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return unit, nil
}

func (r *memUnitRepo) FindByProductID(_ context.Context, productID uuid.UUID) ([]catalog.ProductUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.ProductUnit, 0)
	for _, id := range r.order {
		if r.units[id].ProductID == productID {
			result = append(result, *r.units[id])
		}
	}
	return result, nil
}

func (r *memUnitRepo) FindDefaultByProductID(_ context.Context, productID uuid.UUID) (*catalog.ProductUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if r.units[id].ProductID == productID && r.units[id].IsDefault {
			return r.units[id], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memUnitRepo) Save(_ context.Context, unit *catalog.ProductUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[unit.ID]; !ok {
		r.order = append(r.order, unit.ID)
	}
	r.units[unit.ID] = unit
	return nil
}

func (r *memUnitRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.units, id)
	return nil
}

type memStockRepo struct {
	mu     sync.Mutex
	stocks map[string]*inventory.LocationStock
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{stocks: make(map[string]*inventory.LocationStock)}
}

func stockKey(batchID, locationID uuid.UUID) string {
	return batchID.String() + "|" + locationID.String()
}

func (r *memStockRepo) FindByBatchAndLocation(_ context.Context, batchID, locationID uuid.UUID) (*inventory.LocationStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stock, ok := r.stocks[stockKey(batchID, locationID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return stock, nil
}

func (r *memStockRepo) FindByBatch(_ context.Context, batchID uuid.UUID) ([]inventory.LocationStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.LocationStock, 0)
	for _, s := range r.stocks {
		if s.BatchID == batchID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *memStockRepo) FindByLocation(_ context.Context, locationID uuid.UUID, _ shared.Filter) ([]inventory.LocationStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.LocationStock, 0)
	for _, s := range r.stocks {
		if s.LocationID == locationID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *memStockRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.LocationStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.LocationStock, 0, len(r.stocks))
	for _, s := range r.stocks {
		result = append(result, *s)
	}
	return result, nil
}

func (r *memStockRepo) Save(_ context.Context, stock *inventory.LocationStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stocks[stockKey(stock.BatchID, stock.LocationID)] = stock
	return nil
}

func (r *memStockRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, s := range r.stocks {
		if s.ID == id {
			delete(r.stocks, key)
			return nil
		}
	}
	return shared.ErrNotFound
}

type memWithdrawalRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*inventory.WithdrawalRequest
	seq      int
}

func newMemWithdrawalRepo() *memWithdrawalRepo {
	return &memWithdrawalRepo{requests: make(map[uuid.UUID]*inventory.WithdrawalRequest)}
}

func (r *memWithdrawalRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wr, ok := r.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return wr, nil
}

func (r *memWithdrawalRepo) FindByRequestNumber(_ context.Context, requestNumber string) (*inventory.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wr := range r.requests {
		if wr.RequestNumber == requestNumber {
			return wr, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWithdrawalRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.WithdrawalRequest, 0, len(r.requests))
	for _, wr := range r.requests {
		result = append(result, *wr)
	}
	return result, nil
}

func (r *memWithdrawalRepo) FindByStatus(_ context.Context, status inventory.ApprovalStatus, _ shared.Filter) ([]inventory.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.WithdrawalRequest, 0)
	for _, wr := range r.requests {
		if wr.Status == status {
			result = append(result, *wr)
		}
	}
	return result, nil
}

func (r *memWithdrawalRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.requests)), nil
}

func (r *memWithdrawalRepo) CountByStatus(_ context.Context, status inventory.ApprovalStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, wr := range r.requests {
		if wr.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *memWithdrawalRepo) Save(_ context.Context, wr *inventory.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the unique index on request_number
	for id, existing := range r.requests {
		if id != wr.ID && existing.RequestNumber == wr.RequestNumber {
			return shared.ErrAlreadyExists
		}
	}
	r.requests[wr.ID] = wr
	return nil
}

func (r *memWithdrawalRepo) SaveWithLock(_ context.Context, wr *inventory.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[wr.ID] = wr
	return nil
}

func (r *memWithdrawalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *memWithdrawalRepo) GenerateRequestNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("WD-%06d", r.seq), nil
}

type memLocationRepo struct {
	mu        sync.Mutex
	locations map[uuid.UUID]*inventory.StorageLocation
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{locations: make(map[uuid.UUID]*inventory.StorageLocation)}
}

func (r *memLocationRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc, ok := r.locations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return loc, nil
}

func (r *memLocationRepo) FindByCode(_ context.Context, code string) (*inventory.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, loc := range r.locations {
		if loc.Code == code {
			return loc, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLocationRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.StorageLocation, 0, len(r.locations))
	for _, loc := range r.locations {
		result = append(result, *loc)
	}
	return result, nil
}

func (r *memLocationRepo) Save(_ context.Context, location *inventory.StorageLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[location.ID] = location
	return nil
}

func (r *memLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locations, id)
	return nil
}

type memEventBus struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func newMemEventBus() *memEventBus {
	return &memEventBus{events: make([]shared.DomainEvent, 0)}
}

func (b *memEventBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

func (b *memEventBus) Subscribe(shared.EventHandler, ...string) {}
func (b *memEventBus) Unsubscribe(shared.EventHandler)         {}
func (b *memEventBus) Start(context.Context) error             { return nil }
func (b *memEventBus) Stop(context.Context) error              { return nil }

func (b *memEventBus) eventsByType(eventType string) []shared.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range b.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// ===================== Fixture =====================

type serviceFixture struct {
	service     *WithdrawalService
	units       *memUnitRepo
	stocks      *memStockRepo
	withdrawals *memWithdrawalRepo
	locations   *memLocationRepo
	events      *memEventBus
}

func newServiceFixture() *serviceFixture {
	units := newMemUnitRepo()
	stocks := newMemStockRepo()
	withdrawals := newMemWithdrawalRepo()
	locations := newMemLocationRepo()
	events := newMemEventBus()

	resolver := NewUnitConversionResolver(units, nil, zap.NewNop())
	lookup := NewLocationStockLookup(stocks)
	scope := NewNoOpTransactionScope(withdrawals, stocks)

	return &serviceFixture{
		service:     NewWithdrawalService(withdrawals, locations, resolver, lookup, scope, events, zap.NewNop()),
		units:       units,
		stocks:      stocks,
		withdrawals: withdrawals,
		locations:   locations,
		events:      events,
	}
}

// scenario holds the IDs of one seeded product line
type scenario struct {
	productID uuid.UUID
	unitID    uuid.UUID
	batchID   uuid.UUID
	fromID    uuid.UUID
	toID      uuid.UUID
}

// seedScenario configures a product with one default unit, two locations and
// (when baseQty is positive) a stock row at the source location.
func (f *serviceFixture) seedScenario(t *testing.T, rate, baseQty decimal.Decimal) scenario {
	t.Helper()
	ctx := context.Background()

	productID := uuid.New()
	unit, err := catalog.NewProductUnit(productID, "BOX", "Box", rate)
	require.NoError(t, err)
	unit.IsDefault = true
	require.NoError(t, f.units.Save(ctx, unit))

	from, err := inventory.NewStorageLocation("MAIN", "Main Store")
	require.NoError(t, err)
	require.NoError(t, f.locations.Save(ctx, from))
	to, err := inventory.NewStorageLocation("OP1", "Operatory 1")
	require.NoError(t, err)
	require.NoError(t, f.locations.Save(ctx, to))

	sc := scenario{
		productID: productID,
		unitID:    unit.ID,
		batchID:   uuid.New(),
		fromID:    from.ID,
		toID:      to.ID,
	}

	if baseQty.GreaterThan(decimal.Zero) {
		stock, err := inventory.NewLocationStock(productID, sc.batchID, from.ID, baseQty)
		require.NoError(t, err)
		stock.BatchNumber = "B-1001"
		stock.LocationName = "Main Store"
		stock.ProductName = "Composite Resin"
		require.NoError(t, f.stocks.Save(ctx, stock))
	}

	return sc
}

func (sc scenario) input(qty decimal.Decimal) WithdrawalItemInput {
	return WithdrawalItemInput{
		ProductID:         sc.productID,
		ProductName:       "Composite Resin",
		BatchID:           sc.batchID,
		BatchNumber:       "B-1001",
		ProductUnitID:     sc.unitID,
		FromLocationID:    sc.fromID,
		ToLocationID:      sc.toID,
		RequestedQuantity: qty,
	}
}

func createRequest(items ...WithdrawalItemInput) CreateWithdrawalRequest {
	return CreateWithdrawalRequest{
		RequestedByID:   uuid.New(),
		RequestedByName: "Dr. Tan",
		Items:           items,
	}
}

// ===================== Tests =====================

func TestWithdrawalService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a valid request", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		resp, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(2))))
		require.NoError(t, err)

		assert.Equal(t, "PENDING", resp.Status)
		assert.NotEmpty(t, resp.RequestNumber)
		assert.Equal(t, "ALL_AVAILABLE", resp.Availability)
		require.Len(t, resp.Items, 1)
		assert.True(t, resp.Items[0].IsAvailable)
		assert.True(t, resp.Items[0].AvailableQuantity.Equal(decimal.NewFromInt(2)))
		assert.Len(t, f.events.eventsByType(inventory.EventWithdrawalRequested), 1)

		stored, err := f.withdrawals.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, resp.RequestNumber, stored.RequestNumber)
	})

	t.Run("picks the default unit when none is selected", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		other, err := catalog.NewProductUnit(sc.productID, "PCS", "Piece", decimal.NewFromInt(1))
		require.NoError(t, err)
		require.NoError(t, f.units.Save(ctx, other))

		input := sc.input(decimal.NewFromInt(1))
		input.ProductUnitID = uuid.Nil

		resp, err := f.service.Create(ctx, createRequest(input))
		require.NoError(t, err)
		assert.Equal(t, sc.unitID, resp.Items[0].ProductUnitID)
	})

	t.Run("rejects a quantity exceeding stock", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		_, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(3))))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds stock at Main Store")
	})

	t.Run("clamps quantities on out-of-stock lines", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.Zero)

		resp, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(4))))
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		assert.True(t, resp.Items[0].RequestedQuantity.IsZero())
		assert.True(t, resp.Items[0].QuantityDisabled)
		assert.Equal(t, "NOT_AVAILABLE", resp.Availability)
	})

	t.Run("rejects matching source and destination", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		input := sc.input(decimal.NewFromInt(1))
		input.ToLocationID = input.FromLocationID

		_, err := f.service.Create(ctx, createRequest(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be the same")
	})

	t.Run("regenerates the number when a concurrent create took it", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		first, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(1))))
		require.NoError(t, err)

		// Rewind the sequence so the next generated number collides with the
		// one already stored, as two racing creates would.
		f.withdrawals.mu.Lock()
		f.withdrawals.seq = 0
		f.withdrawals.mu.Unlock()

		second, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(1))))
		require.NoError(t, err)
		assert.NotEqual(t, first.RequestNumber, second.RequestNumber)
	})
}

func TestWithdrawalService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns not found for unknown id", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("refreshes availability against current stock", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(2))))
		require.NoError(t, err)
		assert.True(t, created.Items[0].IsAvailable)

		// Stock shrinks after the request was created
		stock, err := f.stocks.FindByBatchAndLocation(ctx, sc.batchID, sc.fromID)
		require.NoError(t, err)
		stock.Quantity = decimal.NewFromInt(5)

		resp, err := f.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, resp.Items[0].IsAvailable)
		assert.True(t, strings.Contains(resp.Items[0].ValidationMessage, "exceeds stock"))
	})
}

func TestWithdrawalService_List(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sc := f.seedScenario(t, decimal.NewFromInt(1), decimal.NewFromInt(100))

	for i := 0; i < 3; i++ {
		_, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(1))))
		require.NoError(t, err)
	}

	t.Run("lists all requests", func(t *testing.T) {
		list, total, err := f.service.List(ctx, WithdrawalListFilter{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 3)
	})

	t.Run("filters by status", func(t *testing.T) {
		pending := inventory.ApprovalStatusPending
		_, total, err := f.service.List(ctx, WithdrawalListFilter{Page: 1, PageSize: 20, Status: &pending})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		approved := inventory.ApprovalStatusApproved
		_, total, err = f.service.List(ctx, WithdrawalListFilter{Page: 1, PageSize: 20, Status: &approved})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestWithdrawalService_Update(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

	created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(1))))
	require.NoError(t, err)

	t.Run("replaces items and notes", func(t *testing.T) {
		resp, err := f.service.Update(ctx, created.ID, UpdateWithdrawalRequest{
			Notes: "for operatory restock",
			Items: []WithdrawalItemInput{sc.input(decimal.NewFromInt(2))},
		})
		require.NoError(t, err)
		assert.Equal(t, "for operatory restock", resp.Notes)
		assert.True(t, resp.TotalRequestedQuantity.Equal(decimal.NewFromInt(2)))
	})

	t.Run("grows and shrinks the item list", func(t *testing.T) {
		resp, err := f.service.Update(ctx, created.ID, UpdateWithdrawalRequest{
			Items: []WithdrawalItemInput{
				sc.input(decimal.NewFromInt(1)),
				sc.input(decimal.NewFromInt(1)),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.TotalProducts)

		resp, err = f.service.Update(ctx, created.ID, UpdateWithdrawalRequest{
			Items: []WithdrawalItemInput{sc.input(decimal.NewFromInt(1))},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.TotalProducts)
	})
}

func TestWithdrawalService_SetApprovedToRequested(t *testing.T) {
	ctx := context.Background()

	t.Run("fills approved quantities for satisfiable items", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(1), decimal.NewFromInt(10))

		// Second line targets a batch with no stock anywhere
		empty := sc
		empty.batchID = uuid.New()

		created, err := f.service.Create(ctx, createRequest(
			sc.input(decimal.NewFromInt(3)),
			empty.input(decimal.NewFromInt(2)),
		))
		require.NoError(t, err)

		resp, err := f.service.SetApprovedToRequested(ctx, created.ID)
		require.NoError(t, err)

		require.Len(t, resp.Items, 2)
		assert.True(t, resp.Items[0].ApprovedQuantity.Equal(decimal.NewFromInt(3)))
		assert.True(t, resp.Items[1].ApprovedQuantity.IsZero())
		assert.True(t, resp.TotalApprovedQuantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("refuses approved requests and leaves them untouched", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(1), decimal.NewFromInt(10))

		created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(3))))
		require.NoError(t, err)

		approved, err := f.service.Approve(ctx, created.ID, ApproveWithdrawalRequest{
			ApproverID:   uuid.New(),
			ApproverName: "Dr. Lim",
		})
		require.NoError(t, err)
		require.Equal(t, "APPROVED", approved.Status)

		_, err = f.service.SetApprovedToRequested(ctx, created.ID)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)

		current, err := f.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", current.Status)
		assert.True(t, current.TotalApprovedQuantity.Equal(decimal.NewFromInt(3)))
	})
}

func TestWithdrawalService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("moves approved stock between locations", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(2))))
		require.NoError(t, err)

		resp, err := f.service.Approve(ctx, created.ID, ApproveWithdrawalRequest{
			ApproverID:   uuid.New(),
			ApproverName: "Dr. Lim",
		})
		require.NoError(t, err)

		assert.Equal(t, "APPROVED", resp.Status)
		assert.True(t, resp.TotalApprovedQuantity.Equal(decimal.NewFromInt(2)))
		assert.Len(t, f.events.eventsByType(inventory.EventWithdrawalApproved), 1)

		from, err := f.stocks.FindByBatchAndLocation(ctx, sc.batchID, sc.fromID)
		require.NoError(t, err)
		assert.True(t, from.Quantity.IsZero(), "source should be drained, got %s", from.Quantity)

		to, err := f.stocks.FindByBatchAndLocation(ctx, sc.batchID, sc.toID)
		require.NoError(t, err)
		assert.True(t, to.Quantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "B-1001", to.BatchNumber)
	})

	t.Run("honors explicit approved quantities", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(2))))
		require.NoError(t, err)

		resp, err := f.service.Approve(ctx, created.ID, ApproveWithdrawalRequest{
			ApproverID:   uuid.New(),
			ApproverName: "Dr. Lim",
			Items: []ApproveItemInput{
				{ItemID: created.Items[0].ID, ApprovedQuantity: decimal.NewFromInt(1)},
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.TotalApprovedQuantity.Equal(decimal.NewFromInt(1)))

		from, err := f.stocks.FindByBatchAndLocation(ctx, sc.batchID, sc.fromID)
		require.NoError(t, err)
		assert.True(t, from.Quantity.Equal(decimal.NewFromInt(5)))
	})

	t.Run("blocks approval when stock shrank since submission", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

		created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(2))))
		require.NoError(t, err)

		stock, err := f.stocks.FindByBatchAndLocation(ctx, sc.batchID, sc.fromID)
		require.NoError(t, err)
		stock.Quantity = decimal.NewFromInt(5)

		_, err = f.service.Approve(ctx, created.ID, ApproveWithdrawalRequest{
			ApproverID:   uuid.New(),
			ApproverName: "Dr. Lim",
			Items: []ApproveItemInput{
				{ItemID: created.Items[0].ID, ApprovedQuantity: decimal.NewFromInt(2)},
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "available stock")

		stored, findErr := f.withdrawals.FindByID(ctx, created.ID)
		require.NoError(t, findErr)
		assert.Equal(t, inventory.ApprovalStatusPending, stored.Status)
	})

	t.Run("refuses a second decision", func(t *testing.T) {
		f := newServiceFixture()
		sc := f.seedScenario(t, decimal.NewFromInt(1), decimal.NewFromInt(10))

		created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(1))))
		require.NoError(t, err)

		_, err = f.service.Approve(ctx, created.ID, ApproveWithdrawalRequest{
			ApproverID:   uuid.New(),
			ApproverName: "Dr. Lim",
		})
		require.NoError(t, err)

		_, err = f.service.Reject(ctx, created.ID, RejectWithdrawalRequest{
			ApproverID:   uuid.New(),
			ApproverName: "Dr. Lim",
			Reason:       "changed my mind",
		})
		require.Error(t, err)
	})
}

func TestWithdrawalService_Reject(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

	created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(2))))
	require.NoError(t, err)

	resp, err := f.service.Reject(ctx, created.ID, RejectWithdrawalRequest{
		ApproverID:   uuid.New(),
		ApproverName: "Dr. Lim",
		Reason:       "duplicate request",
	})
	require.NoError(t, err)

	assert.Equal(t, "REJECTED", resp.Status)
	assert.Equal(t, "duplicate request", resp.ApprovalNote)
	assert.Len(t, f.events.eventsByType(inventory.EventWithdrawalRejected), 1)

	// Stock untouched
	stock, err := f.stocks.FindByBatchAndLocation(ctx, sc.batchID, sc.fromID)
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(10)))
}

func TestWithdrawalService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sc := f.seedScenario(t, decimal.NewFromInt(1), decimal.NewFromInt(10))

	created, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(1))))
	require.NoError(t, err)

	t.Run("refuses decided requests", func(t *testing.T) {
		other, err := f.service.Create(ctx, createRequest(sc.input(decimal.NewFromInt(1))))
		require.NoError(t, err)
		_, err = f.service.Approve(ctx, other.ID, ApproveWithdrawalRequest{
			ApproverID:   uuid.New(),
			ApproverName: "Dr. Lim",
		})
		require.NoError(t, err)

		err = f.service.Delete(ctx, other.ID)
		require.Error(t, err)
	})

	t.Run("deletes pending requests", func(t *testing.T) {
		require.NoError(t, f.service.Delete(ctx, created.ID))
		_, err := f.service.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestWithdrawalService_CheckItemAvailability(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sc := f.seedScenario(t, decimal.NewFromInt(5), decimal.NewFromInt(10))

	t.Run("reports a satisfiable line", func(t *testing.T) {
		resp, err := f.service.CheckItemAvailability(ctx, sc.input(decimal.NewFromInt(2)))
		require.NoError(t, err)
		assert.True(t, resp.UnitResolved)
		assert.True(t, resp.IsAvailable)
		assert.True(t, resp.AvailableQuantity.Equal(decimal.NewFromInt(2)))
	})

	t.Run("reports an unresolved unit without failing", func(t *testing.T) {
		input := sc.input(decimal.NewFromInt(2))
		input.ProductUnitID = uuid.New()

		resp, err := f.service.CheckItemAvailability(ctx, input)
		require.NoError(t, err)
		assert.False(t, resp.UnitResolved)
		assert.False(t, resp.IsAvailable)
	})
}
