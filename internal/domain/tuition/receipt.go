package tuition

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptNumberPrefix is the fixed prefix of human-readable receipt numbers
const ReceiptNumberPrefix = "REC"

// PaymentSnapshot is one ledger entry as frozen into a receipt.
// This is a value object within the Receipt aggregate, stored as JSONB.
type PaymentSnapshot struct {
	Date      string          `json:"date"` // YYYY-MM-DD
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"payment_method"`
	Reference string          `json:"reference,omitempty"`
}

// SnapshotOf freezes a payment detail into its receipt representation
func SnapshotOf(d *PaymentDetail) PaymentSnapshot {
	return PaymentSnapshot{
		Date:      d.Date.Format("2006-01-02"),
		Amount:    d.Amount,
		Method:    d.Method,
		Reference: d.Reference,
	}
}

// PaymentSnapshots is a slice of PaymentSnapshot that implements GORM
// Scanner/Valuer for JSONB storage
type PaymentSnapshots []PaymentSnapshot

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentSnapshots) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentSnapshots) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentSnapshots{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentSnapshots: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentSnapshots{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Receipt is the proof-of-full-payment record for one Obligation.
// At most one Receipt exists per Obligation; Correlativo is assigned by the
// store's auto-increment at first insert and never changes, and ReceiptNo is
// a one-way transition from unnumbered to numbered.
type Receipt struct {
	shared.BaseAggregateRoot
	ObligationID uuid.UUID        `json:"obligation_id"`
	StudentID    uuid.UUID        `json:"student_id"`
	CycleID      uuid.UUID        `json:"cycle_id"`
	Month        int              `json:"month"`
	Year         int              `json:"year"`
	Correlativo  int64            `json:"correlativo"` // 0 until first persisted
	ReceiptNo    *string          `json:"receipt_no"`  // nil until numbered
	Total        decimal.Decimal  `json:"total"`
	TotalPaid    decimal.Decimal  `json:"total_paid"`
	IssuedBy     string           `json:"issued_by"`
	Payments     PaymentSnapshots `json:"payments"`
	IssuedAt     time.Time        `json:"issued_at"`
}

// NewReceipt creates a receipt for an obligation that just became fully paid.
// The payments slice must be the complete ledger snapshot ordered by date.
func NewReceipt(o *Obligation, payments PaymentSnapshots, issuedBy string, now time.Time) (*Receipt, error) {
	if issuedBy == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Issuer identity is required")
	}
	if !o.IsPaid() {
		return nil, shared.NewDomainError("INVALID_STATE", "Receipt can only be issued for a fully paid obligation")
	}

	r := &Receipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ObligationID:      o.ID,
		StudentID:         o.StudentID,
		CycleID:           o.CycleID,
		Month:             o.Month,
		Year:              o.Year,
		Total:             o.Total,
		TotalPaid:         o.TotalPaid,
		IssuedBy:          issuedBy,
		Payments:          payments,
		IssuedAt:          now,
	}
	if r.Payments == nil {
		r.Payments = PaymentSnapshots{}
	}

	return r, nil
}

// RefreshSnapshot updates the monetary snapshot after a later payment on an
// obligation that remains PAID (e.g. an overpayment). Correlativo and
// ReceiptNo are untouched.
func (r *Receipt) RefreshSnapshot(o *Obligation, payments PaymentSnapshots, issuedBy string, now time.Time) error {
	if issuedBy == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Issuer identity is required")
	}

	r.Total = o.Total
	r.TotalPaid = o.TotalPaid
	r.Payments = payments
	if r.Payments == nil {
		r.Payments = PaymentSnapshots{}
	}
	r.IssuedBy = issuedBy
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// IsNumbered returns true once the permanent receipt number has been assigned
func (r *Receipt) IsNumbered() bool {
	return r.ReceiptNo != nil && *r.ReceiptNo != ""
}

// AssignNumber assigns the permanent receipt number from the stored
// correlativo. The transition is one-way: once numbered, later calls are
// no-ops returning false. The correlativo must already be persisted.
func (r *Receipt) AssignNumber() (bool, error) {
	if r.IsNumbered() {
		return false, nil
	}
	if r.Correlativo <= 0 {
		return false, shared.NewDomainError("INVALID_STATE", "Correlativo has not been assigned by the store yet")
	}

	no := FormatReceiptNumber(r.Year, r.Correlativo)
	r.ReceiptNo = &no
	r.IncrementVersion()

	return true, nil
}

// FormatReceiptNumber renders the human-readable receipt number,
// e.g. REC-2025-000001
func FormatReceiptNumber(year int, correlativo int64) string {
	return fmt.Sprintf("%s-%d-%06d", ReceiptNumberPrefix, year, correlativo)
}
