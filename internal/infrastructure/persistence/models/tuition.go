package models

import (
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationModel is the persistence model for the Obligation aggregate root.
// The (student_id, cycle_id, year, month) tuple is the natural key: re-registering
// the same month hits the unique index instead of creating a duplicate row.
type ObligationModel struct {
	AggregateModel
	StudentID uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_obligation_month,priority:1;index"`
	CycleID   uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_obligation_month,priority:2;index"`
	Year      int                      `gorm:"not null;uniqueIndex:idx_obligation_month,priority:3"`
	Month     int                      `gorm:"not null;uniqueIndex:idx_obligation_month,priority:4"`
	Concept   string                   `gorm:"type:varchar(200)"`
	Total     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	TotalPaid decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Balance   decimal.Decimal          `gorm:"type:decimal(18,4);not null;index"`
	Status    tuition.ObligationStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	DueDate   *time.Time               `gorm:"index"`
	PaidAt    *time.Time
}

// TableName returns the table name for GORM
func (ObligationModel) TableName() string {
	return "tuition_obligations"
}

// ToDomain converts the persistence model to a domain Obligation entity.
func (m *ObligationModel) ToDomain() *tuition.Obligation {
	return &tuition.Obligation{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		StudentID: m.StudentID,
		CycleID:   m.CycleID,
		Year:      m.Year,
		Month:     m.Month,
		Concept:   m.Concept,
		Total:     m.Total,
		TotalPaid: m.TotalPaid,
		Balance:   m.Balance,
		Status:    m.Status,
		DueDate:   m.DueDate,
		PaidAt:    m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Obligation entity.
func (m *ObligationModel) FromDomain(o *tuition.Obligation) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.StudentID = o.StudentID
	m.CycleID = o.CycleID
	m.Year = o.Year
	m.Month = o.Month
	m.Concept = o.Concept
	m.Total = o.Total
	m.TotalPaid = o.TotalPaid
	m.Balance = o.Balance
	m.Status = o.Status
	m.DueDate = o.DueDate
	m.PaidAt = o.PaidAt
}

// ObligationModelFromDomain creates a new persistence model from a domain Obligation.
func ObligationModelFromDomain(o *tuition.Obligation) *ObligationModel {
	m := &ObligationModel{}
	m.FromDomain(o)
	return m
}

// PaymentDetailModel is the persistence model for one payment ledger entry.
// Rows are insert-only; updates and deletes never happen on this table.
type PaymentDetailModel struct {
	BaseModel
	ObligationID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Date         time.Time             `gorm:"not null;index"`
	Method       tuition.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference    string                `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (PaymentDetailModel) TableName() string {
	return "tuition_payment_details"
}

// ToDomain converts the persistence model to a domain PaymentDetail entity.
func (m *PaymentDetailModel) ToDomain() *tuition.PaymentDetail {
	return &tuition.PaymentDetail{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ObligationID: m.ObligationID,
		Amount:       m.Amount,
		Date:         m.Date,
		Method:       m.Method,
		Reference:    m.Reference,
	}
}

// FromDomain populates the persistence model from a domain PaymentDetail entity.
func (m *PaymentDetailModel) FromDomain(d *tuition.PaymentDetail) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.ObligationID = d.ObligationID
	m.Amount = d.Amount
	m.Date = d.Date
	m.Method = d.Method
	m.Reference = d.Reference
}

// PaymentDetailModelFromDomain creates a new persistence model from a domain PaymentDetail.
func PaymentDetailModelFromDomain(d *tuition.PaymentDetail) *PaymentDetailModel {
	m := &PaymentDetailModel{}
	m.FromDomain(d)
	return m
}

// ReceiptModel is the persistence model for the Receipt aggregate root.
// Correlativo is a database auto-increment: the store assigns it exactly once
// at insert and it is read back into the aggregate before numbering.
type ReceiptModel struct {
	AggregateModel
	ObligationID uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex"`
	StudentID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	CycleID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	Year         int                      `gorm:"not null;index"`
	Month        int                      `gorm:"not null"`
	Correlativo  int64                    `gorm:"autoIncrement;uniqueIndex"`
	ReceiptNo    *string                  `gorm:"type:varchar(30);uniqueIndex"`
	Total        decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	TotalPaid    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	IssuedBy     string                   `gorm:"type:varchar(200);not null"`
	Payments     tuition.PaymentSnapshots `gorm:"type:jsonb;default:'[]'"`
	IssuedAt     time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "tuition_receipts"
}

// ToDomain converts the persistence model to a domain Receipt entity.
func (m *ReceiptModel) ToDomain() *tuition.Receipt {
	return &tuition.Receipt{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ObligationID: m.ObligationID,
		StudentID:    m.StudentID,
		CycleID:      m.CycleID,
		Year:         m.Year,
		Month:        m.Month,
		Correlativo:  m.Correlativo,
		ReceiptNo:    m.ReceiptNo,
		Total:        m.Total,
		TotalPaid:    m.TotalPaid,
		IssuedBy:     m.IssuedBy,
		Payments:     m.Payments,
		IssuedAt:     m.IssuedAt,
	}
}

// FromDomain populates the persistence model from a domain Receipt entity.
func (m *ReceiptModel) FromDomain(r *tuition.Receipt) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ObligationID = r.ObligationID
	m.StudentID = r.StudentID
	m.CycleID = r.CycleID
	m.Year = r.Year
	m.Month = r.Month
	m.Correlativo = r.Correlativo
	m.ReceiptNo = r.ReceiptNo
	m.Total = r.Total
	m.TotalPaid = r.TotalPaid
	m.IssuedBy = r.IssuedBy
	m.Payments = r.Payments
	m.IssuedAt = r.IssuedAt
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *tuition.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}
