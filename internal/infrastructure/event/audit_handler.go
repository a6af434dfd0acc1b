package event

import (
	"context"

	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/clinic/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WithdrawalAuditHandler writes an audit line for every withdrawal lifecycle
// event. The structured log stream doubles as the approval audit trail.
type WithdrawalAuditHandler struct {
	logger *zap.Logger
}

// NewWithdrawalAuditHandler creates a new WithdrawalAuditHandler
func NewWithdrawalAuditHandler(logger *zap.Logger) *WithdrawalAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WithdrawalAuditHandler{logger: logger}
}

// EventTypes returns the withdrawal lifecycle events this handler audits
func (h *WithdrawalAuditHandler) EventTypes() []string {
	return []string{
		inventory.EventWithdrawalRequested,
		inventory.EventWithdrawalApproved,
		inventory.EventWithdrawalRejected,
	}
}

// Handle writes one audit entry per event
func (h *WithdrawalAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *inventory.WithdrawalRequestedEvent:
		fields = append(fields,
			zap.String("request_number", e.RequestNumber),
			zap.String("requested_by", e.RequestedByName),
		)
	case *inventory.WithdrawalApprovedEvent:
		fields = append(fields,
			zap.String("request_number", e.RequestNumber),
			zap.String("approved_by", e.ApprovedByName),
			zap.String("total_approved_quantity", e.TotalApprovedQuantity.String()),
		)
	case *inventory.WithdrawalRejectedEvent:
		fields = append(fields,
			zap.String("request_number", e.RequestNumber),
			zap.String("rejected_by", e.ApprovedByName),
			zap.String("reason", e.Reason),
		)
	}

	h.logger.Info(event.EventType(), fields...)
	return nil
}

// Ensure WithdrawalAuditHandler implements EventHandler
var _ shared.EventHandler = (*WithdrawalAuditHandler)(nil)
