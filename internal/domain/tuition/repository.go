package tuition

import (
	"context"
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationFilter defines filtering options for obligation queries
type ObligationFilter struct {
	shared.Filter
	StudentID *uuid.UUID        // Filter by student
	CycleID   *uuid.UUID        // Filter by school cycle
	Year      *int              // Filter by calendar year
	Month     *int              // Filter by month (1..12)
	Status    *ObligationStatus // Filter by payment status
	DueFrom   *time.Time        // Filter by due date range start
	DueTo     *time.Time        // Filter by due date range end
	Overdue   *bool             // Filter only overdue obligations
}

// ObligationRepository defines the interface for obligation persistence
type ObligationRepository interface {
	// FindByID finds an obligation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Obligation, error)

	// FindByMonth finds the obligation for one student/cycle/year/month
	FindByMonth(ctx context.Context, key MonthKey) (*Obligation, error)

	// FindByMonthForUpdate finds the obligation for one month and takes a
	// row lock so concurrent ledger appends serialize on the aggregate
	FindByMonthForUpdate(ctx context.Context, key MonthKey) (*Obligation, error)

	// FindAll finds obligations with filtering
	FindAll(ctx context.Context, filter ObligationFilter) ([]Obligation, error)

	// FindByStudent finds all obligations of one student in a cycle,
	// ordered by (year, month)
	FindByStudent(ctx context.Context, studentID, cycleID uuid.UUID) ([]Obligation, error)

	// FindByCycleMonth finds every student's obligation for one cycle month
	FindByCycleMonth(ctx context.Context, cycleID uuid.UUID, year, month int) ([]Obligation, error)

	// Save creates or updates an obligation
	Save(ctx context.Context, obligation *Obligation) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, obligation *Obligation) error

	// Count counts obligations matching the filter
	Count(ctx context.Context, filter ObligationFilter) (int64, error)

	// SumBalanceByStudent calculates the total outstanding balance of a student
	SumBalanceByStudent(ctx context.Context, studentID, cycleID uuid.UUID) (decimal.Decimal, error)
}

// PaymentDetailRepository defines the interface for the payment ledger.
// The ledger is append-only so there is no update or delete.
type PaymentDetailRepository interface {
	// FindByID finds a payment detail by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentDetail, error)

	// FindByObligation returns the full ledger of an obligation ordered by
	// payment date, then creation time
	FindByObligation(ctx context.Context, obligationID uuid.UUID) ([]PaymentDetail, error)

	// Append inserts a new ledger entry
	Append(ctx context.Context, detail *PaymentDetail) error

	// SumByObligation re-aggregates the total paid over the whole ledger
	SumByObligation(ctx context.Context, obligationID uuid.UUID) (decimal.Decimal, error)

	// CountByObligation counts ledger entries of an obligation
	CountByObligation(ctx context.Context, obligationID uuid.UUID) (int64, error)
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID finds a receipt by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// FindByObligation finds the receipt of an obligation, if any
	FindByObligation(ctx context.Context, obligationID uuid.UUID) (*Receipt, error)

	// FindByMonth finds the receipt for one student/cycle/year/month
	FindByMonth(ctx context.Context, key MonthKey) (*Receipt, error)

	// FindByReceiptNo finds a receipt by its human-readable number
	FindByReceiptNo(ctx context.Context, receiptNo string) (*Receipt, error)

	// FindByStudent finds all receipts of one student in a cycle
	FindByStudent(ctx context.Context, studentID, cycleID uuid.UUID) ([]Receipt, error)

	// Create inserts a new receipt and loads the store-assigned correlativo
	// back into the aggregate
	Create(ctx context.Context, receipt *Receipt) error

	// SaveWithLock updates a receipt with optimistic locking (version check)
	SaveWithLock(ctx context.Context, receipt *Receipt) error
}

// Repositories bundles the tuition repositories bound to one data source,
// either the root connection or a single transaction.
type Repositories struct {
	Obligations    ObligationRepository
	PaymentDetails PaymentDetailRepository
	Receipts       ReceiptRepository
}

// UnitOfWork runs a function against transaction-scoped repositories.
// Every write path of the ledger executes inside exactly one transaction:
// either everything commits or nothing does.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
