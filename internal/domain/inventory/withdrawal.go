package inventory

import (
	"fmt"
	"time"

	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalStatus represents the approval state of a withdrawal request
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// IsValid checks if the status is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ApprovalStatus
func (s ApprovalStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// APPROVED and REJECTED are terminal.
func (s ApprovalStatus) CanTransitionTo(target ApprovalStatus) bool {
	switch s {
	case ApprovalStatusPending:
		return target == ApprovalStatusApproved || target == ApprovalStatusRejected
	case ApprovalStatusApproved, ApprovalStatusRejected:
		return false
	}
	return false
}

// AvailabilityState classifies a request's items as a whole
type AvailabilityState string

const (
	AvailabilityAll     AvailabilityState = "ALL_AVAILABLE"
	AvailabilityPartial AvailabilityState = "PARTIALLY_AVAILABLE"
	AvailabilityNone    AvailabilityState = "NOT_AVAILABLE"
)

// Validation messages surfaced per item
const (
	msgSameLocation = "From and To locations cannot be the same"
)

// WithdrawalItem is a line item in a withdrawal request. Selection fields use
// uuid.Nil for "not yet selected". AvailableQuantity, IsAvailable,
// QuantityDisabled and ValidationMessage are derived and recomputed on every
// re-evaluation.
type WithdrawalItem struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	WithdrawalRequestID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID           uuid.UUID       `gorm:"type:uuid"`
	ProductName         string          `gorm:"type:varchar(200)"`
	BatchID             uuid.UUID       `gorm:"type:uuid"`
	BatchNumber         string          `gorm:"type:varchar(50)"`
	ProductUnitID       uuid.UUID       `gorm:"type:uuid"`
	FromLocationID      uuid.UUID       `gorm:"type:uuid"`
	ToLocationID        uuid.UUID       `gorm:"type:uuid"`
	RequestedQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // display units
	ApprovedQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // display units
	AvailableQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // display units, derived
	IsAvailable         bool            `gorm:"not null;default:false"`
	QuantityDisabled    bool            `gorm:"-"` // zero stock or unresolved unit blocks quantity entry
	ValidationMessage   string          `gorm:"-"` // empty when valid
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"not null;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (WithdrawalItem) TableName() string {
	return "withdrawal_items"
}

// Contributes returns true if the item counts toward the "available" side of
// the aggregate tri-state: satisfiable and backed by actual stock.
func (i *WithdrawalItem) Contributes() bool {
	return i.IsAvailable && i.AvailableQuantity.GreaterThan(decimal.Zero)
}

// HasSameLocations returns true if both locations are selected and equal
func (i *WithdrawalItem) HasSameLocations() bool {
	return i.FromLocationID != uuid.Nil && i.FromLocationID == i.ToLocationID
}

// resetDerived clears everything computed from a stock view
func (i *WithdrawalItem) resetDerived() {
	i.AvailableQuantity = decimal.Zero
	i.IsAvailable = false
	i.QuantityDisabled = true
	i.ValidationMessage = ""
}

// WithdrawalRequest is the aggregate root for a location-to-location stock
// withdrawal: an ordered list of line items plus notes and approval state.
// Aggregate totals and the availability tri-state are recomputed on every
// item mutation.
type WithdrawalRequest struct {
	shared.BaseAggregateRoot
	RequestNumber          string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Status                 ApprovalStatus  `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Notes                  string          `gorm:"type:text"`
	RequestedByID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequestedByName        string          `gorm:"type:varchar(100)"`
	ApprovedAt             *time.Time      `gorm:""`
	ApprovedByID           *uuid.UUID      `gorm:"type:uuid"`
	ApprovedByName         string          `gorm:"type:varchar(100)"`
	ApprovalNote           string          `gorm:"type:text"`
	TotalProducts          int             `gorm:"not null;default:0"`
	TotalRequestedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalApprovedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Availability           AvailabilityState `gorm:"type:varchar(30);not null;default:'NOT_AVAILABLE'"`
	Items                  []WithdrawalItem  `gorm:"foreignKey:WithdrawalRequestID;references:ID"`
}

// TableName returns the table name for GORM
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// NewWithdrawalRequest creates a new withdrawal request with one empty item
// (a request always holds at least one line).
func NewWithdrawalRequest(requestNumber string, requestedByID uuid.UUID, requestedByName string) (*WithdrawalRequest, error) {
	if requestNumber == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST_NUMBER", "Request number cannot be empty")
	}
	if requestedByID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester ID cannot be empty")
	}

	wr := &WithdrawalRequest{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		RequestNumber:          requestNumber,
		Status:                 ApprovalStatusPending,
		RequestedByID:          requestedByID,
		RequestedByName:        requestedByName,
		TotalRequestedQuantity: decimal.Zero,
		TotalApprovedQuantity:  decimal.Zero,
		Availability:           AvailabilityNone,
		Items:                  make([]WithdrawalItem, 0, 1),
	}
	wr.appendEmptyItem()
	wr.recalculateTotals()

	wr.AddDomainEvent(NewWithdrawalRequestedEvent(wr))

	return wr, nil
}

func (wr *WithdrawalRequest) appendEmptyItem() *WithdrawalItem {
	now := time.Now()
	item := WithdrawalItem{
		ID:                  uuid.New(),
		WithdrawalRequestID: wr.ID,
		RequestedQuantity:   decimal.Zero,
		ApprovedQuantity:    decimal.Zero,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	item.resetDerived()
	wr.Items = append(wr.Items, item)
	return &wr.Items[len(wr.Items)-1]
}

// AddItem appends a new empty line item. Always allowed while pending.
func (wr *WithdrawalRequest) AddItem() (*WithdrawalItem, error) {
	if err := wr.ensureEditable(); err != nil {
		return nil, err
	}

	item := wr.appendEmptyItem()
	wr.recalculateTotals()
	wr.touch()
	return item, nil
}

// RemoveItem removes the item at index. A request must keep at least one item.
func (wr *WithdrawalRequest) RemoveItem(index int) error {
	if err := wr.ensureEditable(); err != nil {
		return err
	}
	if index < 0 || index >= len(wr.Items) {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Item index out of range")
	}
	if len(wr.Items) == 1 {
		return shared.NewDomainError("LAST_ITEM", "At least one item is required per request")
	}

	wr.Items = append(wr.Items[:index], wr.Items[index+1:]...)
	wr.recalculateTotals()
	wr.touch()
	return nil
}

// SetItemProduct selects the product for an item. Batch, locations and unit
// are cleared: they are no longer guaranteed valid for the new product.
func (wr *WithdrawalRequest) SetItemProduct(index int, productID uuid.UUID, productName string) error {
	item, err := wr.editableItem(index)
	if err != nil {
		return err
	}

	item.ProductID = productID
	item.ProductName = productName
	item.BatchID = uuid.Nil
	item.BatchNumber = ""
	item.FromLocationID = uuid.Nil
	item.ToLocationID = uuid.Nil
	item.ProductUnitID = uuid.Nil
	item.RequestedQuantity = decimal.Zero
	item.ApprovedQuantity = decimal.Zero
	item.resetDerived()
	item.UpdatedAt = time.Now()

	wr.recalculateTotals()
	wr.touch()
	return nil
}

// SetItemBatch selects the batch for an item. The from-location is cleared
// because stock availability is location-specific per batch.
func (wr *WithdrawalRequest) SetItemBatch(index int, batchID uuid.UUID, batchNumber string) error {
	item, err := wr.editableItem(index)
	if err != nil {
		return err
	}

	item.BatchID = batchID
	item.BatchNumber = batchNumber
	item.FromLocationID = uuid.Nil
	item.resetDerived()
	item.UpdatedAt = time.Now()

	wr.recalculateTotals()
	wr.touch()
	return nil
}

// SetItemUnit selects the display unit for an item
func (wr *WithdrawalRequest) SetItemUnit(index int, productUnitID uuid.UUID) error {
	item, err := wr.editableItem(index)
	if err != nil {
		return err
	}

	item.ProductUnitID = productUnitID
	item.resetDerived()
	item.UpdatedAt = time.Now()

	wr.touch()
	return nil
}

// SetItemRoute selects the from/to locations for an item. Equal locations are
// recorded and flagged; submission is blocked until resolved.
func (wr *WithdrawalRequest) SetItemRoute(index int, fromLocationID, toLocationID uuid.UUID) error {
	item, err := wr.editableItem(index)
	if err != nil {
		return err
	}

	item.FromLocationID = fromLocationID
	item.ToLocationID = toLocationID
	if item.HasSameLocations() {
		item.ValidationMessage = msgSameLocation
	} else if item.ValidationMessage == msgSameLocation {
		item.ValidationMessage = ""
	}
	item.UpdatedAt = time.Now()

	wr.touch()
	return nil
}

// SetItemRequestedQuantity records the user-entered requested quantity
func (wr *WithdrawalRequest) SetItemRequestedQuantity(index int, quantity decimal.Decimal) error {
	item, err := wr.editableItem(index)
	if err != nil {
		return err
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Requested quantity cannot be negative")
	}
	if item.QuantityDisabled && quantity.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("QUANTITY_DISABLED", "Quantity entry is disabled for this item")
	}

	item.RequestedQuantity = quantity
	item.UpdatedAt = time.Now()

	wr.recalculateTotals()
	wr.touch()
	return nil
}

// SetItemApprovedQuantity records the approver-entered quantity
func (wr *WithdrawalRequest) SetItemApprovedQuantity(index int, quantity decimal.Decimal) error {
	item, err := wr.editableItem(index)
	if err != nil {
		return err
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Approved quantity cannot be negative")
	}
	if item.QuantityDisabled && quantity.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("QUANTITY_DISABLED", "Quantity entry is disabled for this item")
	}

	item.ApprovedQuantity = quantity
	item.UpdatedAt = time.Now()

	wr.recalculateTotals()
	wr.touch()
	return nil
}

// SetNotes sets the free-form notes for the request
func (wr *WithdrawalRequest) SetNotes(notes string) {
	wr.Notes = notes
	wr.touch()
}

// Reevaluate recomputes one item's derived availability fields from a fresh
// stock view, applying the zero-stock clamp and the maximum-requestable bound.
func (wr *WithdrawalRequest) Reevaluate(index int, view StockView) error {
	if index < 0 || index >= len(wr.Items) {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Item index out of range")
	}
	item := &wr.Items[index]

	// Same-location violation survives re-evaluation untouched
	if item.HasSameLocations() {
		item.ValidationMessage = msgSameLocation
	} else {
		item.ValidationMessage = ""
	}

	// Nothing to evaluate until batch and source location are selected
	if item.BatchID == uuid.Nil || item.FromLocationID == uuid.Nil {
		item.AvailableQuantity = decimal.Zero
		item.IsAvailable = false
		item.QuantityDisabled = true
		wr.recalculateTotals()
		return nil
	}

	// Unresolved unit blocks quantity entry until resolution completes
	if !view.UnitResolved {
		item.AvailableQuantity = decimal.Zero
		item.IsAvailable = false
		item.QuantityDisabled = true
		wr.recalculateTotals()
		return nil
	}

	quantity := item.RequestedQuantity
	if item.ApprovedQuantity.GreaterThan(decimal.Zero) {
		quantity = item.ApprovedQuantity
	}

	result, err := EvaluateAvailability(quantity, view.ConversionRate, view.AvailableBase)
	if err != nil {
		return err
	}

	item.AvailableQuantity = result.AvailableQuantity
	item.IsAvailable = result.IsAvailable

	if result.OutOfStock {
		// Zero-stock clamp: override any user-entered value and disable input
		item.RequestedQuantity = decimal.Zero
		item.ApprovedQuantity = decimal.Zero
		item.IsAvailable = false
		item.QuantityDisabled = true
	} else {
		item.QuantityDisabled = false
		if !result.IsAvailable && item.ValidationMessage == "" {
			excess := result.RequiredBase.Sub(view.AvailableBase)
			item.ValidationMessage = fmt.Sprintf(
				"Quantity exceeds stock at %s by %s base units",
				view.LocationName, excess.Round(4).String(),
			)
		}
	}

	item.UpdatedAt = time.Now()
	wr.recalculateTotals()
	return nil
}

// ReevaluateAll re-runs availability for every item. views must carry one
// snapshot per item, in item order.
func (wr *WithdrawalRequest) ReevaluateAll(views []StockView) error {
	if len(views) != len(wr.Items) {
		return shared.NewDomainError("INVALID_VIEWS", "One stock view per item is required")
	}
	for i := range wr.Items {
		if err := wr.Reevaluate(i, views[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetApprovedToRequested bulk-copies each satisfiable item's requested
// quantity into its approved quantity; unavailable items are approved at 0.
// Callers should re-run ReevaluateAll afterwards with fresh views.
func (wr *WithdrawalRequest) SetApprovedToRequested() error {
	if err := wr.ensureEditable(); err != nil {
		return err
	}

	for i := range wr.Items {
		if wr.Items[i].Contributes() {
			wr.Items[i].ApprovedQuantity = wr.Items[i].RequestedQuantity
		} else {
			wr.Items[i].ApprovedQuantity = decimal.Zero
		}
		wr.Items[i].UpdatedAt = time.Now()
	}

	wr.recalculateTotals()
	wr.touch()
	return nil
}

// Validate re-checks every item's submission rules: same-location rejection,
// pending validation messages, and the positive-quantity minimum for items
// whose quantity entry is enabled.
func (wr *WithdrawalRequest) Validate() error {
	for i := range wr.Items {
		item := &wr.Items[i]
		if item.HasSameLocations() {
			return shared.NewDomainError("SAME_LOCATION", msgSameLocation)
		}
		if item.ValidationMessage != "" {
			return shared.NewDomainError("VALIDATION_FAILED", item.ValidationMessage)
		}
		if !item.QuantityDisabled && item.RequestedQuantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Item %d requires a positive requested quantity", i+1))
		}
		if !item.QuantityDisabled && item.ToLocationID == uuid.Nil {
			return shared.NewDomainError("MISSING_LOCATION",
				fmt.Sprintf("Item %d requires a destination location", i+1))
		}
	}
	return nil
}

// Approve transitions the request to APPROVED after a full re-evaluation
// against fresh stock views (stock may have changed since the request was
// created). Approval is blocked while any item carries a positive approved
// quantity that the stock cannot satisfy.
func (wr *WithdrawalRequest) Approve(approverID uuid.UUID, approverName, note string, views []StockView) error {
	if !wr.Status.CanTransitionTo(ApprovalStatusApproved) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to APPROVED", wr.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	if err := wr.ReevaluateAll(views); err != nil {
		return err
	}

	for i := range wr.Items {
		item := &wr.Items[i]
		if item.HasSameLocations() {
			return shared.NewDomainError("SAME_LOCATION", msgSameLocation)
		}
		if item.ApprovedQuantity.GreaterThan(decimal.Zero) && item.ToLocationID == uuid.Nil {
			return shared.NewDomainError("MISSING_LOCATION",
				fmt.Sprintf("Destination location is required for %s", item.ProductName))
		}
		if item.ApprovedQuantity.GreaterThan(decimal.Zero) && !item.IsAvailable {
			return shared.NewDomainError("ITEMS_UNAVAILABLE",
				fmt.Sprintf("Approved quantity for %s exceeds available stock", item.ProductName))
		}
	}

	now := time.Now()
	wr.Status = ApprovalStatusApproved
	wr.ApprovedAt = &now
	wr.ApprovedByID = &approverID
	wr.ApprovedByName = approverName
	wr.ApprovalNote = note
	wr.touch()

	wr.AddDomainEvent(NewWithdrawalApprovedEvent(wr))

	return nil
}

// Reject transitions the request to REJECTED
func (wr *WithdrawalRequest) Reject(approverID uuid.UUID, approverName, reason string) error {
	if !wr.Status.CanTransitionTo(ApprovalStatusRejected) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to REJECTED", wr.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	wr.Status = ApprovalStatusRejected
	wr.ApprovedAt = &now
	wr.ApprovedByID = &approverID
	wr.ApprovedByName = approverName
	wr.ApprovalNote = reason
	wr.touch()

	wr.AddDomainEvent(NewWithdrawalRejectedEvent(wr))

	return nil
}

// recalculateTotals recomputes aggregate totals and the availability tri-state
func (wr *WithdrawalRequest) recalculateTotals() {
	wr.TotalProducts = len(wr.Items)
	wr.TotalRequestedQuantity = decimal.Zero
	wr.TotalApprovedQuantity = decimal.Zero

	contributing := 0
	for i := range wr.Items {
		wr.TotalRequestedQuantity = wr.TotalRequestedQuantity.Add(wr.Items[i].RequestedQuantity)
		wr.TotalApprovedQuantity = wr.TotalApprovedQuantity.Add(wr.Items[i].ApprovedQuantity)
		if wr.Items[i].Contributes() {
			contributing++
		}
	}

	switch contributing {
	case len(wr.Items):
		wr.Availability = AvailabilityAll
	case 0:
		wr.Availability = AvailabilityNone
	default:
		wr.Availability = AvailabilityPartial
	}
}

// ensureEditable guards item mutations: only pending requests are editable
func (wr *WithdrawalRequest) ensureEditable() error {
	if wr.Status != ApprovalStatusPending {
		return shared.NewDomainError("INVALID_STATUS",
			fmt.Sprintf("Request in %s status cannot be modified", wr.Status))
	}
	return nil
}

func (wr *WithdrawalRequest) editableItem(index int) (*WithdrawalItem, error) {
	if err := wr.ensureEditable(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(wr.Items) {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Item index out of range")
	}
	return &wr.Items[index], nil
}

func (wr *WithdrawalRequest) touch() {
	wr.UpdatedAt = time.Now()
	wr.IncrementVersion()
}
