package tuition

import (
	"context"
	"errors"
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QueryService serves the read side of the ledger: per-student statements
// and the cycle-wide payments matrix the administration screens render.
type QueryService struct {
	obligationRepo tuition.ObligationRepository
	detailRepo     tuition.PaymentDetailRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(obligationRepo tuition.ObligationRepository, detailRepo tuition.PaymentDetailRepository) *QueryService {
	return &QueryService{
		obligationRepo: obligationRepo,
		detailRepo:     detailRepo,
	}
}

// ObligationListFilter defines filtering options for obligation list queries
type ObligationListFilter struct {
	StudentID *uuid.UUID `form:"student_id"`
	CycleID   *uuid.UUID `form:"cycle_id"`
	Year      *int       `form:"year"`
	Month     *int       `form:"month"`
	Status    string     `form:"status"`
	Overdue   *bool      `form:"overdue"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// GetMonth returns the obligation for one student month with its full ledger
func (s *QueryService) GetMonth(ctx context.Context, studentID, cycleID uuid.UUID, year, month int) (*ObligationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "get_month")
	defer span.End()

	obligation, err := s.obligationRepo.FindByMonth(ctx, tuition.MonthKey{
		StudentID: studentID,
		CycleID:   cycleID,
		Year:      year,
		Month:     month,
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("NOT_FOUND", "Month is not registered for this student")
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	details, err := s.detailRepo.FindByObligation(ctx, obligation.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := toObligationResponse(obligation)
	resp.Payments = make([]PaymentDetailResponse, len(details))
	for i := range details {
		resp.Payments[i] = toPaymentDetailResponse(&details[i])
	}
	return resp, nil
}

// ListObligations lists obligations with filtering and pagination
func (s *QueryService) ListObligations(ctx context.Context, filter ObligationListFilter) ([]ObligationResponse, int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "list_obligations")
	defer span.End()

	domainFilter := tuition.ObligationFilter{
		StudentID: filter.StudentID,
		CycleID:   filter.CycleID,
		Year:      filter.Year,
		Month:     filter.Month,
		Overdue:   filter.Overdue,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Status != "" {
		status := tuition.ObligationStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("VALIDATION_ERROR", "Unknown obligation status")
		}
		domainFilter.Status = &status
	}

	obligations, err := s.obligationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}
	total, err := s.obligationRepo.Count(ctx, domainFilter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}

	responses := make([]ObligationResponse, len(obligations))
	for i := range obligations {
		responses[i] = *toObligationResponse(&obligations[i])
	}
	return responses, total, nil
}

// StudentStatement is the per-student view over one cycle: every registered
// month ordered chronologically plus the outstanding balance.
type StudentStatement struct {
	StudentID     uuid.UUID            `json:"student_id"`
	CycleID       uuid.UUID            `json:"cycle_id"`
	Months        []ObligationResponse `json:"months"`
	TotalExpected decimal.Decimal      `json:"total_expected"`
	TotalPaid     decimal.Decimal      `json:"total_paid"`
	TotalBalance  decimal.Decimal      `json:"total_balance"`
	MonthsPaid    int                  `json:"months_paid"`
	MonthsUnpaid  int                  `json:"months_unpaid"`
	MonthsPartial int                  `json:"months_partial"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// GetStudentStatement builds the statement of one student over a cycle
func (s *QueryService) GetStudentStatement(ctx context.Context, studentID, cycleID uuid.UUID) (*StudentStatement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "student_statement")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrStudentID, studentID.String())

	obligations, err := s.obligationRepo.FindByStudent(ctx, studentID, cycleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	statement := &StudentStatement{
		StudentID:     studentID,
		CycleID:       cycleID,
		Months:        make([]ObligationResponse, len(obligations)),
		TotalExpected: decimal.Zero,
		TotalPaid:     decimal.Zero,
		TotalBalance:  decimal.Zero,
		GeneratedAt:   time.Now(),
	}
	for i := range obligations {
		o := &obligations[i]
		statement.Months[i] = *toObligationResponse(o)
		statement.TotalExpected = statement.TotalExpected.Add(o.Total)
		statement.TotalPaid = statement.TotalPaid.Add(o.TotalPaid)
		statement.TotalBalance = statement.TotalBalance.Add(o.Balance)
		switch o.Status {
		case tuition.ObligationStatusPaid:
			statement.MonthsPaid++
		case tuition.ObligationStatusPartial:
			statement.MonthsPartial++
		default:
			statement.MonthsUnpaid++
		}
	}
	return statement, nil
}

// MatrixCell is one student-month intersection in the payments matrix
type MatrixCell struct {
	Month     int             `json:"month"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Balance   decimal.Decimal `json:"balance"`
}

// MatrixRow is one student's row in the payments matrix
type MatrixRow struct {
	StudentID uuid.UUID    `json:"student_id"`
	Cells     []MatrixCell `json:"cells"`
}

// PaymentsMatrix is the cycle-wide month-by-student payment status grid
type PaymentsMatrix struct {
	CycleID     uuid.UUID   `json:"cycle_id"`
	Year        int         `json:"year"`
	Rows        []MatrixRow `json:"rows"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// GetPaymentsMatrix builds the month-by-student payment grid for one cycle
// year. Unregistered months simply do not appear in a student's row.
func (s *QueryService) GetPaymentsMatrix(ctx context.Context, cycleID uuid.UUID, year int) (*PaymentsMatrix, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "payments_matrix")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCycleID, cycleID.String(),
		telemetry.SpanAttrYear, year,
	)

	filter := tuition.ObligationFilter{CycleID: &cycleID, Year: &year}
	filter.Page = 1
	filter.PageSize = 10000
	filter.OrderBy = "month"
	filter.OrderDir = "asc"

	obligations, err := s.obligationRepo.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rowIndex := make(map[uuid.UUID]int)
	matrix := &PaymentsMatrix{
		CycleID:     cycleID,
		Year:        year,
		Rows:        []MatrixRow{},
		GeneratedAt: time.Now(),
	}
	for i := range obligations {
		o := &obligations[i]
		idx, ok := rowIndex[o.StudentID]
		if !ok {
			idx = len(matrix.Rows)
			rowIndex[o.StudentID] = idx
			matrix.Rows = append(matrix.Rows, MatrixRow{StudentID: o.StudentID})
		}
		matrix.Rows[idx].Cells = append(matrix.Rows[idx].Cells, MatrixCell{
			Month:     o.Month,
			Status:    o.Status.String(),
			Total:     o.Total,
			TotalPaid: o.TotalPaid,
			Balance:   o.Balance,
		})
	}
	return matrix, nil
}
