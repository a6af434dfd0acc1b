package inventory

import (
	"context"
	"errors"

	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WithdrawalService provides application services for withdrawal requests.
// Every command that touches item selections rebuilds the per-item stock
// views before evaluating, so derived availability always reflects the
// repositories at the moment the command ran.
type WithdrawalService struct {
	withdrawalRepo inventory.WithdrawalRequestRepository
	locationRepo   inventory.StorageLocationRepository
	resolver       *UnitConversionResolver
	lookup         *LocationStockLookup
	txScope        TransactionScope
	eventBus       shared.EventBus
	logger         *zap.Logger
}

// NewWithdrawalService creates a new WithdrawalService
func NewWithdrawalService(
	withdrawalRepo inventory.WithdrawalRequestRepository,
	locationRepo inventory.StorageLocationRepository,
	resolver *UnitConversionResolver,
	lookup *LocationStockLookup,
	txScope TransactionScope,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *WithdrawalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		locationRepo:   locationRepo,
		resolver:       resolver,
		lookup:         lookup,
		txScope:        txScope,
		eventBus:       eventBus,
		logger:         logger,
	}
}

// ===================== Query Methods =====================

// GetByID retrieves a withdrawal request by ID. Derived availability fields
// are recomputed against current stock but not persisted.
func (s *WithdrawalService) GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalResponse, error) {
	wr, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if wr.Status == inventory.ApprovalStatusPending {
		if err := s.refresh(ctx, wr); err != nil {
			return nil, err
		}
	}

	response := ToWithdrawalResponse(wr)
	return &response, nil
}

// GetByRequestNumber retrieves a withdrawal request by its number
func (s *WithdrawalService) GetByRequestNumber(ctx context.Context, requestNumber string) (*WithdrawalResponse, error) {
	wr, err := s.withdrawalRepo.FindByRequestNumber(ctx, requestNumber)
	if err != nil {
		return nil, err
	}

	if wr.Status == inventory.ApprovalStatusPending {
		if err := s.refresh(ctx, wr); err != nil {
			return nil, err
		}
	}

	response := ToWithdrawalResponse(wr)
	return &response, nil
}

// List retrieves a paginated list of withdrawal requests
func (s *WithdrawalService) List(ctx context.Context, filter WithdrawalListFilter) ([]WithdrawalListResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	if filter.Status != nil {
		wrs, err := s.withdrawalRepo.FindByStatus(ctx, *filter.Status, domainFilter)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.withdrawalRepo.CountByStatus(ctx, *filter.Status)
		if err != nil {
			return nil, 0, err
		}
		return ToWithdrawalListResponses(wrs), total, nil
	}

	wrs, err := s.withdrawalRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.withdrawalRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToWithdrawalListResponses(wrs), total, nil
}

// CheckItemAvailability evaluates one form line without touching any request:
// the live availability probe behind the form's stock hints.
func (s *WithdrawalService) CheckItemAvailability(ctx context.Context, input WithdrawalItemInput) (*AvailabilityResponse, error) {
	response := &AvailabilityResponse{}

	resolved, err := s.resolver.Resolve(ctx, input.ProductUnitID)
	switch {
	case err == nil:
		response.UnitResolved = true
		response.ConversionRate = resolved.ConversionRate
	case errors.Is(err, shared.ErrUnitUnresolved):
		return response, nil
	default:
		return nil, err
	}

	stock, err := s.lookup.Available(ctx, input.BatchID, input.FromLocationID)
	if err != nil {
		return nil, err
	}
	response.AvailableBase = stock.Quantity
	response.LocationName = stock.LocationName

	result, err := inventory.EvaluateAvailability(input.RequestedQuantity, resolved.ConversionRate, stock.Quantity)
	if err != nil {
		return nil, err
	}
	response.AvailableQuantity = result.AvailableQuantity
	response.RequiredBase = result.RequiredBase
	response.IsAvailable = result.IsAvailable
	response.OutOfStock = result.OutOfStock

	return response, nil
}

// ===================== Command Methods =====================

// Create creates a new withdrawal request from the submitted form
func (s *WithdrawalService) Create(ctx context.Context, req CreateWithdrawalRequest) (*WithdrawalResponse, error) {
	requestNumber, err := s.withdrawalRepo.GenerateRequestNumber(ctx)
	if err != nil {
		return nil, err
	}

	wr, err := inventory.NewWithdrawalRequest(requestNumber, req.RequestedByID, req.RequestedByName)
	if err != nil {
		return nil, err
	}

	if req.Notes != "" {
		wr.SetNotes(req.Notes)
	}

	if err := s.applyItems(ctx, wr, req.Items); err != nil {
		return nil, err
	}
	if err := wr.Validate(); err != nil {
		return nil, err
	}

	// Number generation is read-then-format, so two concurrent creates can
	// collide on the unique index. Regenerate and retry instead of failing.
	for attempt := 0; ; attempt++ {
		err = s.withdrawalRepo.Save(ctx, wr)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt >= 2 {
			return nil, err
		}
		requestNumber, err = s.withdrawalRepo.GenerateRequestNumber(ctx)
		if err != nil {
			return nil, err
		}
		wr.RequestNumber = requestNumber
	}

	s.logger.Info("withdrawal request created",
		zap.String("request_number", wr.RequestNumber),
		zap.Int("items", len(wr.Items)))
	s.publishEvents(ctx, wr)

	response := ToWithdrawalResponse(wr)
	return &response, nil
}

// Update replaces the notes and items of a pending withdrawal request
func (s *WithdrawalService) Update(ctx context.Context, id uuid.UUID, req UpdateWithdrawalRequest) (*WithdrawalResponse, error) {
	wr, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wr.SetNotes(req.Notes)
	if err := s.applyItems(ctx, wr, req.Items); err != nil {
		return nil, err
	}
	if err := wr.Validate(); err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.SaveWithLock(ctx, wr); err != nil {
		return nil, err
	}

	response := ToWithdrawalResponse(wr)
	return &response, nil
}

// Delete deletes a withdrawal request (only while pending)
func (s *WithdrawalService) Delete(ctx context.Context, id uuid.UUID) error {
	wr, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if wr.Status != inventory.ApprovalStatusPending {
		return shared.NewDomainError("INVALID_STATUS", "Only pending requests can be deleted")
	}

	return s.withdrawalRepo.Delete(ctx, id)
}

// SetApprovedToRequested bulk-copies requested quantities into approved
// quantities for every satisfiable item, then re-evaluates against current
// stock so the approved figures are immediately checked.
func (s *WithdrawalService) SetApprovedToRequested(ctx context.Context, id uuid.UUID) (*WithdrawalResponse, error) {
	wr, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Establish current availability before copying: only items the stock
	// can satisfy right now receive a non-zero approved quantity.
	if err := s.refresh(ctx, wr); err != nil {
		return nil, err
	}
	if err := wr.SetApprovedToRequested(); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, wr); err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.SaveWithLock(ctx, wr); err != nil {
		return nil, err
	}

	response := ToWithdrawalResponse(wr)
	return &response, nil
}

// Approve approves a withdrawal request and moves the approved stock from
// each item's source location to its destination, atomically.
func (s *WithdrawalService) Approve(ctx context.Context, id uuid.UUID, req ApproveWithdrawalRequest) (*WithdrawalResponse, error) {
	wr, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Derived state must be current before approved quantities are applied:
	// the zero-stock clamp decides which items still accept input.
	if err := s.refresh(ctx, wr); err != nil {
		return nil, err
	}

	if len(req.Items) > 0 {
		index := make(map[uuid.UUID]int, len(wr.Items))
		for i := range wr.Items {
			index[wr.Items[i].ID] = i
		}
		for _, in := range req.Items {
			i, ok := index[in.ItemID]
			if !ok {
				return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Approved item does not belong to this request")
			}
			if err := wr.SetItemApprovedQuantity(i, in.ApprovedQuantity); err != nil {
				return nil, err
			}
		}
	} else if err := wr.SetApprovedToRequested(); err != nil {
		return nil, err
	}

	views, err := s.buildViews(ctx, wr)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := wr.Approve(req.ApproverID, req.ApproverName, req.Note, views); err != nil {
			return err
		}

		for i := range wr.Items {
			item := &wr.Items[i]
			if !item.ApprovedQuantity.GreaterThan(decimal.Zero) {
				continue
			}
			base := item.ApprovedQuantity.Mul(views[i].ConversionRate)
			if err := s.moveStock(ctx, repos.StockRepo(), item, base); err != nil {
				return err
			}
		}

		return repos.WithdrawalRepo().SaveWithLock(ctx, wr)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal request approved",
		zap.String("request_number", wr.RequestNumber),
		zap.String("approved_by", req.ApproverName))
	s.publishEvents(ctx, wr)

	response := ToWithdrawalResponse(wr)
	return &response, nil
}

// Reject rejects a withdrawal request. No stock moves.
func (s *WithdrawalService) Reject(ctx context.Context, id uuid.UUID, req RejectWithdrawalRequest) (*WithdrawalResponse, error) {
	wr, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := wr.Reject(req.ApproverID, req.ApproverName, req.Reason); err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.SaveWithLock(ctx, wr); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal request rejected",
		zap.String("request_number", wr.RequestNumber),
		zap.String("rejected_by", req.ApproverName))
	s.publishEvents(ctx, wr)

	response := ToWithdrawalResponse(wr)
	return &response, nil
}

// ===================== Internal Helpers =====================

// applyItems resizes the request's item list to match the form and applies
// each line in dependency order: selections first, then a re-evaluation to
// settle the quantity clamps, then the quantities themselves.
func (s *WithdrawalService) applyItems(ctx context.Context, wr *inventory.WithdrawalRequest, inputs []WithdrawalItemInput) error {
	if len(inputs) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "At least one item is required")
	}

	for len(wr.Items) < len(inputs) {
		if _, err := wr.AddItem(); err != nil {
			return err
		}
	}
	for len(wr.Items) > len(inputs) {
		if err := wr.RemoveItem(len(wr.Items) - 1); err != nil {
			return err
		}
	}

	for i, input := range inputs {
		if err := wr.SetItemProduct(i, input.ProductID, input.ProductName); err != nil {
			return err
		}
		if err := wr.SetItemBatch(i, input.BatchID, input.BatchNumber); err != nil {
			return err
		}

		unitID := input.ProductUnitID
		if unitID == uuid.Nil && input.ProductID != uuid.Nil {
			def, err := s.resolver.DefaultUnit(ctx, input.ProductID)
			switch {
			case err == nil:
				unitID = def.UnitID
			case errors.Is(err, shared.ErrUnitUnresolved):
				// No units configured; the line stays blocked
			default:
				return err
			}
		}
		if err := wr.SetItemUnit(i, unitID); err != nil {
			return err
		}

		if err := wr.SetItemRoute(i, input.FromLocationID, input.ToLocationID); err != nil {
			return err
		}

		view, err := s.buildItemView(ctx, &wr.Items[i])
		if err != nil {
			return err
		}
		if err := wr.Reevaluate(i, view); err != nil {
			return err
		}

		quantity := input.RequestedQuantity
		if wr.Items[i].QuantityDisabled {
			quantity = decimal.Zero
		}
		if err := wr.SetItemRequestedQuantity(i, quantity); err != nil {
			return err
		}

		// Second pass checks the entered quantity against the same view
		if err := wr.Reevaluate(i, view); err != nil {
			return err
		}
	}

	return nil
}

// buildItemView assembles the stock snapshot for one item
func (s *WithdrawalService) buildItemView(ctx context.Context, item *inventory.WithdrawalItem) (inventory.StockView, error) {
	var view inventory.StockView

	resolved, err := s.resolver.Resolve(ctx, item.ProductUnitID)
	switch {
	case err == nil:
		view.UnitResolved = true
		view.ConversionRate = resolved.ConversionRate
	case errors.Is(err, shared.ErrUnitUnresolved):
		// Evaluation proceeds with the unit marked unresolved
	default:
		return view, err
	}

	stock, err := s.lookup.Available(ctx, item.BatchID, item.FromLocationID)
	if err != nil {
		return view, err
	}
	view.AvailableBase = stock.Quantity
	view.LocationName = stock.LocationName

	if view.LocationName == "" && item.FromLocationID != uuid.Nil {
		if loc, err := s.locationRepo.FindByID(ctx, item.FromLocationID); err == nil {
			view.LocationName = loc.Name
		}
	}

	return view, nil
}

// buildViews assembles one stock view per item, in item order
func (s *WithdrawalService) buildViews(ctx context.Context, wr *inventory.WithdrawalRequest) ([]inventory.StockView, error) {
	views := make([]inventory.StockView, len(wr.Items))
	for i := range wr.Items {
		view, err := s.buildItemView(ctx, &wr.Items[i])
		if err != nil {
			return nil, err
		}
		views[i] = view
	}
	return views, nil
}

// refresh re-evaluates every item against current stock
func (s *WithdrawalService) refresh(ctx context.Context, wr *inventory.WithdrawalRequest) error {
	views, err := s.buildViews(ctx, wr)
	if err != nil {
		return err
	}
	return wr.ReevaluateAll(views)
}

// moveStock deducts base units from the item's source location and adds them
// to its destination, creating the destination row when absent.
func (s *WithdrawalService) moveStock(ctx context.Context, stockRepo inventory.LocationStockRepository, item *inventory.WithdrawalItem, base decimal.Decimal) error {
	from, err := stockRepo.FindByBatchAndLocation(ctx, item.BatchID, item.FromLocationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInsufficientStock
		}
		return err
	}
	if err := from.Deduct(base); err != nil {
		return err
	}
	if err := stockRepo.Save(ctx, from); err != nil {
		return err
	}

	to, err := stockRepo.FindByBatchAndLocation(ctx, item.BatchID, item.ToLocationID)
	if errors.Is(err, shared.ErrNotFound) {
		to, err = inventory.NewLocationStock(item.ProductID, item.BatchID, item.ToLocationID, decimal.Zero)
		if err != nil {
			return err
		}
		to.BatchNumber = item.BatchNumber
		to.ProductName = item.ProductName
		if loc, lerr := s.locationRepo.FindByID(ctx, item.ToLocationID); lerr == nil {
			to.LocationName = loc.Name
		}
	} else if err != nil {
		return err
	}

	if err := to.Add(base); err != nil {
		return err
	}
	return stockRepo.Save(ctx, to)
}

// publishEvents publishes domain events from the aggregate
func (s *WithdrawalService) publishEvents(ctx context.Context, wr *inventory.WithdrawalRequest) {
	if s.eventBus == nil {
		return
	}

	for _, event := range wr.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	wr.ClearDomainEvents()
}
