package tuition

import (
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationStatus represents the payment status of a monthly obligation
type ObligationStatus string

const (
	ObligationStatusUnpaid  ObligationStatus = "UNPAID"  // No payment recorded yet
	ObligationStatusPartial ObligationStatus = "PARTIAL" // 0 < totalPaid < total
	ObligationStatusPaid    ObligationStatus = "PAID"    // totalPaid >= total
)

// IsValid checks if the status is a valid ObligationStatus
func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationStatusUnpaid, ObligationStatusPartial, ObligationStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of ObligationStatus
func (s ObligationStatus) String() string {
	return string(s)
}

// DeriveStatus computes the status from (total, totalPaid).
// The status is a pure function of the two amounts:
// totalPaid <= 0 is UNPAID, totalPaid >= total is PAID, anything else PARTIAL.
func DeriveStatus(total, totalPaid decimal.Decimal) ObligationStatus {
	switch {
	case totalPaid.LessThanOrEqual(decimal.Zero):
		return ObligationStatusUnpaid
	case totalPaid.GreaterThanOrEqual(total):
		return ObligationStatusPaid
	default:
		return ObligationStatusPartial
	}
}

// Obligation represents the expected tuition charge for one student in one
// cycle/month/year. It is the aggregate root owning the payment ledger.
// TotalPaid is a materialized view over the PaymentDetail ledger, recomputed
// by full re-aggregation after every append.
type Obligation struct {
	shared.BaseAggregateRoot
	StudentID uuid.UUID        `json:"student_id"`
	CycleID   uuid.UUID        `json:"cycle_id"`
	Month     int              `json:"month"` // 1..12
	Year      int              `json:"year"`
	Concept   string           `json:"concept"`
	Total     decimal.Decimal  `json:"total"`
	TotalPaid decimal.Decimal  `json:"total_paid"`
	Balance   decimal.Decimal  `json:"balance"` // total - totalPaid, may go negative on overpayment
	Status    ObligationStatus `json:"status"`
	DueDate   *time.Time       `json:"due_date"`
	PaidAt    *time.Time       `json:"paid_at"` // set iff status is PAID
}

// NewObligation registers a new monthly obligation.
// It starts UNPAID with zero paid and balance equal to the total.
func NewObligation(
	studentID uuid.UUID,
	cycleID uuid.UUID,
	year int,
	month int,
	total valueobject.Money,
	concept string,
	dueDate *time.Time,
) (*Obligation, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Student ID cannot be empty")
	}
	if cycleID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Cycle ID cannot be empty")
	}
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Month must be between 1 and 12")
	}
	if year < 2000 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Year must be 2000 or later")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Total must be positive")
	}

	o := &Obligation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		CycleID:           cycleID,
		Month:             month,
		Year:              year,
		Concept:           concept,
		Total:             total.Amount(),
		TotalPaid:         decimal.Zero,
		Balance:           total.Amount(),
		Status:            ObligationStatusUnpaid,
		DueDate:           dueDate,
	}

	o.AddDomainEvent(NewObligationRegisteredEvent(o))

	return o, nil
}

// Reprice updates the expected total on re-registration (e.g. a price change).
// Accumulated payments are preserved; balance, status and paidAt are recomputed
// from the existing TotalPaid.
//
// Concept is optional on registration, so an empty concept keeps the stored
// label instead of blanking it. DueDate is replaced as given, nil clears it.
func (o *Obligation) Reprice(total valueobject.Money, concept string, dueDate *time.Time, now time.Time) error {
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Total must be positive")
	}

	o.Total = total.Amount()
	if concept != "" {
		o.Concept = concept
	}
	o.DueDate = dueDate
	o.recalculate(o.TotalPaid, now)

	o.AddDomainEvent(NewObligationRepricedEvent(o))

	return nil
}

// ApplyLedgerTotal replaces the materialized TotalPaid with a freshly
// re-aggregated sum over the payment ledger and recomputes the derived fields.
// Re-aggregation (rather than an incremental add) keeps concurrent appends
// commutative: the final TotalPaid converges regardless of insert order.
func (o *Obligation) ApplyLedgerTotal(totalPaid decimal.Decimal, now time.Time) {
	wasPaid := o.Status == ObligationStatusPaid
	o.recalculate(totalPaid, now)
	if o.Status == ObligationStatusPaid && !wasPaid {
		o.AddDomainEvent(NewObligationPaidEvent(o))
	}
}

// recalculate derives balance, status and paidAt from (Total, totalPaid).
// Invariant: Balance == Total - TotalPaid after every call.
func (o *Obligation) recalculate(totalPaid decimal.Decimal, now time.Time) {
	o.TotalPaid = totalPaid
	o.Balance = o.Total.Sub(totalPaid)
	o.Status = DeriveStatus(o.Total, totalPaid)
	if o.Status == ObligationStatusPaid {
		paidAt := now
		o.PaidAt = &paidAt
	} else {
		o.PaidAt = nil
	}
	o.UpdatedAt = now
	o.IncrementVersion()
}

// GetTotalMoney returns the expected total as Money
func (o *Obligation) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyPEN(o.Total)
}

// GetTotalPaidMoney returns the accumulated paid amount as Money
func (o *Obligation) GetTotalPaidMoney() valueobject.Money {
	return valueobject.NewMoneyPEN(o.TotalPaid)
}

// GetBalanceMoney returns the remaining balance as Money
func (o *Obligation) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyPEN(o.Balance)
}

// IsPaid returns true if the obligation is fully paid
func (o *Obligation) IsPaid() bool {
	return o.Status == ObligationStatusPaid
}

// IsOverdue returns true if the obligation is past its due date and not paid
func (o *Obligation) IsOverdue() bool {
	if o.IsPaid() || o.DueDate == nil {
		return false
	}
	return time.Now().After(*o.DueDate)
}

// MonthKey identifies one obligation by its natural composite key
type MonthKey struct {
	StudentID uuid.UUID
	CycleID   uuid.UUID
	Year      int
	Month     int
}
