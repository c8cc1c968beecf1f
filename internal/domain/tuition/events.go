package tuition

import (
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationRegisteredEvent is raised when a new monthly obligation is registered
type ObligationRegisteredEvent struct {
	shared.BaseDomainEvent
	ObligationID uuid.UUID       `json:"obligation_id"`
	StudentID    uuid.UUID       `json:"student_id"`
	CycleID      uuid.UUID       `json:"cycle_id"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	Total        decimal.Decimal `json:"total"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *ObligationRegisteredEvent) EventType() string {
	return "ObligationRegistered"
}

// NewObligationRegisteredEvent creates a new ObligationRegisteredEvent
func NewObligationRegisteredEvent(o *Obligation) *ObligationRegisteredEvent {
	return &ObligationRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ObligationRegistered", "Obligation", o.ID),
		ObligationID:    o.ID,
		StudentID:       o.StudentID,
		CycleID:         o.CycleID,
		Month:           o.Month,
		Year:            o.Year,
		Total:           o.Total,
		DueDate:         o.DueDate,
	}
}

// ObligationRepricedEvent is raised when an existing obligation is
// re-registered with a new expected total
type ObligationRepricedEvent struct {
	shared.BaseDomainEvent
	ObligationID uuid.UUID        `json:"obligation_id"`
	Total        decimal.Decimal  `json:"total"`
	TotalPaid    decimal.Decimal  `json:"total_paid"`
	Balance      decimal.Decimal  `json:"balance"`
	Status       ObligationStatus `json:"status"`
}

// EventType returns the event type name
func (e *ObligationRepricedEvent) EventType() string {
	return "ObligationRepriced"
}

// NewObligationRepricedEvent creates a new ObligationRepricedEvent
func NewObligationRepricedEvent(o *Obligation) *ObligationRepricedEvent {
	return &ObligationRepricedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ObligationRepriced", "Obligation", o.ID),
		ObligationID:    o.ID,
		Total:           o.Total,
		TotalPaid:       o.TotalPaid,
		Balance:         o.Balance,
		Status:          o.Status,
	}
}

// ObligationPaidEvent is raised when an obligation first becomes fully paid
type ObligationPaidEvent struct {
	shared.BaseDomainEvent
	ObligationID uuid.UUID       `json:"obligation_id"`
	StudentID    uuid.UUID       `json:"student_id"`
	CycleID      uuid.UUID       `json:"cycle_id"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	Total        decimal.Decimal `json:"total"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	PaidAt       *time.Time      `json:"paid_at"`
}

// EventType returns the event type name
func (e *ObligationPaidEvent) EventType() string {
	return "ObligationPaid"
}

// NewObligationPaidEvent creates a new ObligationPaidEvent
func NewObligationPaidEvent(o *Obligation) *ObligationPaidEvent {
	return &ObligationPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ObligationPaid", "Obligation", o.ID),
		ObligationID:    o.ID,
		StudentID:       o.StudentID,
		CycleID:         o.CycleID,
		Month:           o.Month,
		Year:            o.Year,
		Total:           o.Total,
		TotalPaid:       o.TotalPaid,
		PaidAt:          o.PaidAt,
	}
}

// ReceiptIssuedEvent is raised when a receipt number is assigned for the
// first time
type ReceiptIssuedEvent struct {
	shared.BaseDomainEvent
	ReceiptID    uuid.UUID       `json:"receipt_id"`
	ObligationID uuid.UUID       `json:"obligation_id"`
	ReceiptNo    string          `json:"receipt_no"`
	Correlativo  int64           `json:"correlativo"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	IssuedBy     string          `json:"issued_by"`
}

// EventType returns the event type name
func (e *ReceiptIssuedEvent) EventType() string {
	return "ReceiptIssued"
}

// NewReceiptIssuedEvent creates a new ReceiptIssuedEvent
func NewReceiptIssuedEvent(r *Receipt) *ReceiptIssuedEvent {
	no := ""
	if r.ReceiptNo != nil {
		no = *r.ReceiptNo
	}
	return &ReceiptIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptIssued", "Receipt", r.ID),
		ReceiptID:       r.ID,
		ObligationID:    r.ObligationID,
		ReceiptNo:       no,
		Correlativo:     r.Correlativo,
		TotalPaid:       r.TotalPaid,
		IssuedBy:        r.IssuedBy,
	}
}
