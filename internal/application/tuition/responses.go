package tuition

import (
	"time"

	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationResponse represents a monthly obligation in API responses
type ObligationResponse struct {
	ID        uuid.UUID               `json:"id"`
	StudentID uuid.UUID               `json:"student_id"`
	CycleID   uuid.UUID               `json:"cycle_id"`
	Month     int                     `json:"month"`
	Year      int                     `json:"year"`
	Concept   string                  `json:"concept,omitempty"`
	Total     decimal.Decimal         `json:"total"`
	TotalPaid decimal.Decimal         `json:"total_paid"`
	Balance   decimal.Decimal         `json:"balance"`
	Status    string                  `json:"status"`
	DueDate   *time.Time              `json:"due_date,omitempty"`
	PaidAt    *time.Time              `json:"paid_at,omitempty"`
	Payments  []PaymentDetailResponse `json:"payments,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	Version   int                     `json:"version"`
}

// PaymentDetailResponse represents one ledger entry in API responses
type PaymentDetailResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Method    string          `json:"payment_method"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID           uuid.UUID                 `json:"id"`
	ObligationID uuid.UUID                 `json:"obligation_id"`
	StudentID    uuid.UUID                 `json:"student_id"`
	CycleID      uuid.UUID                 `json:"cycle_id"`
	Month        int                       `json:"month"`
	Year         int                       `json:"year"`
	ReceiptNo    string                    `json:"receipt_no"`
	Total        decimal.Decimal           `json:"total"`
	TotalPaid    decimal.Decimal           `json:"total_paid"`
	IssuedBy     string                    `json:"issued_by"`
	IssuedAt     time.Time                 `json:"issued_at"`
	Payments     []tuition.PaymentSnapshot `json:"payments"`
}

func toObligationResponse(o *tuition.Obligation) *ObligationResponse {
	return &ObligationResponse{
		ID:        o.ID,
		StudentID: o.StudentID,
		CycleID:   o.CycleID,
		Month:     o.Month,
		Year:      o.Year,
		Concept:   o.Concept,
		Total:     o.Total,
		TotalPaid: o.TotalPaid,
		Balance:   o.Balance,
		Status:    o.Status.String(),
		DueDate:   o.DueDate,
		PaidAt:    o.PaidAt,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Version:   o.Version,
	}
}

func toPaymentDetailResponse(d *tuition.PaymentDetail) PaymentDetailResponse {
	return PaymentDetailResponse{
		ID:        d.ID,
		Amount:    d.Amount,
		Date:      d.Date,
		Method:    d.Method.String(),
		Reference: d.Reference,
		CreatedAt: d.CreatedAt,
	}
}

func toReceiptResponse(r *tuition.Receipt) *ReceiptResponse {
	no := ""
	if r.ReceiptNo != nil {
		no = *r.ReceiptNo
	}
	return &ReceiptResponse{
		ID:           r.ID,
		ObligationID: r.ObligationID,
		StudentID:    r.StudentID,
		CycleID:      r.CycleID,
		Month:        r.Month,
		Year:         r.Year,
		ReceiptNo:    no,
		Total:        r.Total,
		TotalPaid:    r.TotalPaid,
		IssuedBy:     r.IssuedBy,
		IssuedAt:     r.IssuedAt,
		Payments:     r.Payments,
	}
}
