package tuition

import (
	"context"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditHandler records tuition domain events in the structured log so
// administrators have a trail of registrations, payments and issued receipts.
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates a new handler for tuition audit logging
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditHandler) EventTypes() []string {
	return []string{
		"ObligationRegistered",
		"ObligationRepriced",
		"ObligationPaid",
		"ReceiptIssued",
	}
}

// Handle logs a tuition domain event. Entries carry the originating request
// ID when the event was published inside an HTTP request.
func (h *AuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := h.logger
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}

	switch e := event.(type) {
	case *tuition.ObligationRegisteredEvent:
		log.Info("obligation registered",
			zap.String("obligation_id", e.ObligationID.String()),
			zap.String("student_id", e.StudentID.String()),
			zap.String("cycle_id", e.CycleID.String()),
			zap.Int("year", e.Year),
			zap.Int("month", e.Month),
			zap.String("total", e.Total.String()),
		)

	case *tuition.ObligationRepricedEvent:
		log.Info("obligation repriced",
			zap.String("obligation_id", e.ObligationID.String()),
			zap.String("total", e.Total.String()),
			zap.String("total_paid", e.TotalPaid.String()),
			zap.String("balance", e.Balance.String()),
			zap.String("status", string(e.Status)),
		)

	case *tuition.ObligationPaidEvent:
		log.Info("obligation fully paid",
			zap.String("obligation_id", e.ObligationID.String()),
			zap.String("student_id", e.StudentID.String()),
			zap.Int("year", e.Year),
			zap.Int("month", e.Month),
			zap.String("total_paid", e.TotalPaid.String()),
		)

	case *tuition.ReceiptIssuedEvent:
		log.Info("receipt issued",
			zap.String("receipt_id", e.ReceiptID.String()),
			zap.String("obligation_id", e.ObligationID.String()),
			zap.String("receipt_no", e.ReceiptNo),
			zap.Int64("correlativo", e.Correlativo),
			zap.String("total_paid", e.TotalPaid.String()),
		)

	default:
		log.Debug("unhandled tuition event",
			zap.String("event_type", event.EventType()),
		)
	}

	return nil
}
