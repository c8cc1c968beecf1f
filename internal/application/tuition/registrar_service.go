package tuition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/shared/valueobject"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegistrarService registers monthly obligations. Registration is an upsert
// on (student, cycle, year, month): the first call creates the month, later
// calls reprice it without touching the accumulated payments.
type RegistrarService struct {
	uow            tuition.UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewRegistrarService creates a new RegistrarService
func NewRegistrarService(uow tuition.UnitOfWork) *RegistrarService {
	return &RegistrarService{uow: uow}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *RegistrarService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterMonthRequest represents a request to register a monthly obligation
type RegisterMonthRequest struct {
	StudentID uuid.UUID       `json:"student_id" binding:"required"`
	CycleID   uuid.UUID       `json:"cycle_id" binding:"required"`
	Year      int             `json:"year" binding:"required"`
	Month     int             `json:"month" binding:"required,min=1,max=12"`
	Total     decimal.Decimal `json:"total" binding:"required"`
	Concept   string          `json:"concept"`
	DueDate   *time.Time      `json:"due_date"`
}

// RegisterMonth creates or reprices the obligation for one student month.
// The whole upsert runs in a single transaction.
func (s *RegistrarService) RegisterMonth(ctx context.Context, req RegisterMonthRequest) (*ObligationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "registrar", "register_month")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, req.StudentID.String(),
		telemetry.SpanAttrCycleID, req.CycleID.String(),
		telemetry.SpanAttrYear, req.Year,
		telemetry.SpanAttrMonth, req.Month,
	)

	total := valueobject.NewMoneyPEN(req.Total)
	key := tuition.MonthKey{
		StudentID: req.StudentID,
		CycleID:   req.CycleID,
		Year:      req.Year,
		Month:     req.Month,
	}

	var obligation *tuition.Obligation
	err := s.uow.Execute(ctx, func(repos tuition.Repositories) error {
		existing, err := repos.Obligations.FindByMonth(ctx, key)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to look up obligation: %w", err)
		}

		if existing == nil {
			obligation, err = tuition.NewObligation(
				req.StudentID, req.CycleID, req.Year, req.Month,
				total, req.Concept, req.DueDate,
			)
			if err != nil {
				return err
			}
			return repos.Obligations.Save(ctx, obligation)
		}

		if err := existing.Reprice(total, req.Concept, req.DueDate, time.Now()); err != nil {
			return err
		}
		obligation = existing
		return repos.Obligations.SaveWithLock(ctx, existing)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, obligation)

	return toObligationResponse(obligation), nil
}

func (s *RegistrarService) publishEvents(ctx context.Context, o *tuition.Obligation) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			// Events are best effort; the transaction already committed
			continue
		}
	}
	o.ClearDomainEvents()
}
