package inventory

import (
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for withdrawal requests
const (
	EventWithdrawalRequested = "inventory.withdrawal.requested"
	EventWithdrawalApproved  = "inventory.withdrawal.approved"
	EventWithdrawalRejected  = "inventory.withdrawal.rejected"
)

// WithdrawalRequestedEvent is emitted when a withdrawal request is created
type WithdrawalRequestedEvent struct {
	shared.BaseDomainEvent
	RequestNumber   string    `json:"request_number"`
	RequestedByID   uuid.UUID `json:"requested_by_id"`
	RequestedByName string    `json:"requested_by_name"`
}

// NewWithdrawalRequestedEvent creates a new WithdrawalRequestedEvent
func NewWithdrawalRequestedEvent(wr *WithdrawalRequest) *WithdrawalRequestedEvent {
	return &WithdrawalRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWithdrawalRequested, "WithdrawalRequest", wr.ID),
		RequestNumber:   wr.RequestNumber,
		RequestedByID:   wr.RequestedByID,
		RequestedByName: wr.RequestedByName,
	}
}

// WithdrawalApprovedEvent is emitted when a withdrawal request is approved
type WithdrawalApprovedEvent struct {
	shared.BaseDomainEvent
	RequestNumber         string          `json:"request_number"`
	ApprovedByID          uuid.UUID       `json:"approved_by_id"`
	ApprovedByName        string          `json:"approved_by_name"`
	TotalApprovedQuantity decimal.Decimal `json:"total_approved_quantity"`
}

// NewWithdrawalApprovedEvent creates a new WithdrawalApprovedEvent
func NewWithdrawalApprovedEvent(wr *WithdrawalRequest) *WithdrawalApprovedEvent {
	evt := &WithdrawalApprovedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventWithdrawalApproved, "WithdrawalRequest", wr.ID),
		RequestNumber:         wr.RequestNumber,
		ApprovedByName:        wr.ApprovedByName,
		TotalApprovedQuantity: wr.TotalApprovedQuantity,
	}
	if wr.ApprovedByID != nil {
		evt.ApprovedByID = *wr.ApprovedByID
	}
	return evt
}

// WithdrawalRejectedEvent is emitted when a withdrawal request is rejected
type WithdrawalRejectedEvent struct {
	shared.BaseDomainEvent
	RequestNumber  string    `json:"request_number"`
	ApprovedByID   uuid.UUID `json:"approved_by_id"`
	ApprovedByName string    `json:"approved_by_name"`
	Reason         string    `json:"reason"`
}

// NewWithdrawalRejectedEvent creates a new WithdrawalRejectedEvent
func NewWithdrawalRejectedEvent(wr *WithdrawalRequest) *WithdrawalRejectedEvent {
	evt := &WithdrawalRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWithdrawalRejected, "WithdrawalRequest", wr.ID),
		RequestNumber:   wr.RequestNumber,
		ApprovedByName:  wr.ApprovedByName,
		Reason:          wr.ApprovalNote,
	}
	if wr.ApprovedByID != nil {
		evt.ApprovedByID = *wr.ApprovedByID
	}
	return evt
}
