package tuition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/shared/valueobject"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService appends payments to the monthly ledger and keeps the
// obligation's materialized totals and the receipt in sync. Every append
// runs in a single transaction so a client never observes a ledger entry
// without its re-aggregated totals.
type LedgerService struct {
	uow              tuition.UnitOfWork
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	eventPublisher   shared.EventPublisher
}

// LedgerServiceOption is a functional option for configuring LedgerService
type LedgerServiceOption func(*LedgerService)

// WithIdempotencyStore enables duplicate-request protection for payments
// carrying an idempotency key
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) LedgerServiceOption {
	return func(s *LedgerService) {
		s.idempotencyStore = store
		s.idempotencyCfg = cfg
	}
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(uow tuition.UnitOfWork, opts ...LedgerServiceOption) *LedgerService {
	s := &LedgerService{
		uow:            uow,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AddPaymentRequest represents a request to record one payment against a month
type AddPaymentRequest struct {
	StudentID      uuid.UUID       `json:"student_id" binding:"required"`
	CycleID        uuid.UUID       `json:"cycle_id" binding:"required"`
	Year           int             `json:"year" binding:"required"`
	Month          int             `json:"month" binding:"required,min=1,max=12"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Date           time.Time       `json:"date" binding:"required"`
	Method         string          `json:"payment_method" binding:"required"`
	Reference      string          `json:"reference"`
	IssuedBy       string          `json:"issued_by" binding:"required"`
	IdempotencyKey string          `json:"-"`
}

// AddPaymentResponse carries the post-append state of the month. Receipt is
// set when the obligation is fully paid after this payment.
type AddPaymentResponse struct {
	Obligation *ObligationResponse    `json:"obligation"`
	Payment    *PaymentDetailResponse `json:"payment,omitempty"`
	Receipt    *ReceiptResponse       `json:"receipt,omitempty"`
	Duplicate  bool                   `json:"duplicate,omitempty"`
}

// validate rejects a malformed request before any store access. The same
// checks run again inside the aggregate constructors; doing them here keeps
// a bad request from ever opening a transaction, and from being masked by a
// MES_NO_REGISTRADO lookup failure.
func (req AddPaymentRequest) validate() error {
	if req.Month < 1 || req.Month > 12 {
		return shared.NewDomainError("VALIDATION_ERROR", "Month must be between 1 and 12")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if !tuition.PaymentMethod(req.Method).IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment method is not valid")
	}
	if req.Date.IsZero() {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment date is required")
	}
	if strings.TrimSpace(req.IssuedBy) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Issued by is required")
	}
	return nil
}

// AddPayment appends one payment to the ledger of a registered month,
// re-aggregates the totals, and issues or refreshes the receipt when the
// month becomes (or stays) fully paid.
//
// A payment against an unregistered month is rejected with MES_NO_REGISTRADO.
func (s *LedgerService) AddPayment(ctx context.Context, req AddPaymentRequest) (*AddPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "add_payment")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, req.StudentID.String(),
		telemetry.SpanAttrYear, req.Year,
		telemetry.SpanAttrMonth, req.Month,
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := req.validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if dup, resp, err := s.checkDuplicate(ctx, req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	} else if dup {
		return resp, nil
	}

	key := tuition.MonthKey{
		StudentID: req.StudentID,
		CycleID:   req.CycleID,
		Year:      req.Year,
		Month:     req.Month,
	}

	var (
		obligation *tuition.Obligation
		detail     *tuition.PaymentDetail
		receipt    *tuition.Receipt
	)
	err := s.uow.Execute(ctx, func(repos tuition.Repositories) error {
		var err error
		obligation, err = repos.Obligations.FindByMonthForUpdate(ctx, key)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("MES_NO_REGISTRADO",
				fmt.Sprintf("Month %d/%d is not registered for this student", req.Month, req.Year))
		}
		if err != nil {
			return fmt.Errorf("failed to load obligation: %w", err)
		}

		detail, err = tuition.NewPaymentDetail(
			obligation.ID,
			valueobject.NewMoneyPEN(req.Amount),
			req.Date,
			tuition.PaymentMethod(req.Method),
			req.Reference,
		)
		if err != nil {
			return err
		}
		if err := repos.PaymentDetails.Append(ctx, detail); err != nil {
			return fmt.Errorf("failed to append payment: %w", err)
		}

		// Full re-aggregation over the ledger, never an incremental add
		totalPaid, err := repos.PaymentDetails.SumByObligation(ctx, obligation.ID)
		if err != nil {
			return fmt.Errorf("failed to sum ledger: %w", err)
		}
		obligation.ApplyLedgerTotal(totalPaid, time.Now())

		if err := repos.Obligations.SaveWithLock(ctx, obligation); err != nil {
			return err
		}

		if obligation.IsPaid() {
			receipt, err = s.upsertReceipt(ctx, repos, obligation, req.IssuedBy)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.markProcessed(ctx, req.IdempotencyKey)
	s.publishEvents(ctx, obligation, receipt)

	resp := &AddPaymentResponse{Obligation: toObligationResponse(obligation)}
	if detail != nil {
		d := toPaymentDetailResponse(detail)
		resp.Payment = &d
	}
	if receipt != nil {
		resp.Receipt = toReceiptResponse(receipt)
		telemetry.SetAttribute(span, telemetry.SpanAttrReceiptNo, resp.Receipt.ReceiptNo)
	}
	return resp, nil
}

// upsertReceipt issues the receipt on the first transition to PAID and
// refreshes its snapshot on later payments. The receipt number is assigned
// exactly once from the store's correlativo and never reassigned.
func (s *LedgerService) upsertReceipt(
	ctx context.Context,
	repos tuition.Repositories,
	obligation *tuition.Obligation,
	issuedBy string,
) (*tuition.Receipt, error) {
	ledger, err := repos.PaymentDetails.FindByObligation(ctx, obligation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	snapshots := make(tuition.PaymentSnapshots, len(ledger))
	for i := range ledger {
		snapshots[i] = tuition.SnapshotOf(&ledger[i])
	}

	now := time.Now()
	receipt, err := repos.Receipts.FindByObligation(ctx, obligation.ID)
	if errors.Is(err, shared.ErrNotFound) {
		receipt, err = tuition.NewReceipt(obligation, snapshots, issuedBy, now)
		if err != nil {
			return nil, err
		}
		// Create loads the store-assigned correlativo back into the aggregate
		if err := repos.Receipts.Create(ctx, receipt); err != nil {
			return nil, fmt.Errorf("failed to create receipt: %w", err)
		}
		assigned, err := receipt.AssignNumber()
		if err != nil {
			return nil, err
		}
		if assigned {
			receipt.AddDomainEvent(tuition.NewReceiptIssuedEvent(receipt))
		}
		if err := repos.Receipts.SaveWithLock(ctx, receipt); err != nil {
			return nil, err
		}
		return receipt, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}

	if err := receipt.RefreshSnapshot(obligation, snapshots, issuedBy, now); err != nil {
		return nil, err
	}
	if err := repos.Receipts.SaveWithLock(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// checkDuplicate returns the current month state without mutating anything
// when the idempotency key was already processed
func (s *LedgerService) checkDuplicate(ctx context.Context, req AddPaymentRequest) (bool, *AddPaymentResponse, error) {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || req.IdempotencyKey == "" {
		return false, nil, nil
	}

	processed, err := s.idempotencyStore.IsProcessed(ctx, req.IdempotencyKey)
	if err != nil {
		// A broken dedup store must not block payments
		return false, nil, nil
	}
	if !processed {
		return false, nil, nil
	}

	key := tuition.MonthKey{
		StudentID: req.StudentID,
		CycleID:   req.CycleID,
		Year:      req.Year,
		Month:     req.Month,
	}
	var resp *AddPaymentResponse
	err = s.uow.Execute(ctx, func(repos tuition.Repositories) error {
		obligation, err := repos.Obligations.FindByMonth(ctx, key)
		if err != nil {
			return err
		}
		resp = &AddPaymentResponse{
			Obligation: toObligationResponse(obligation),
			Duplicate:  true,
		}
		receipt, err := repos.Receipts.FindByObligation(ctx, obligation.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if receipt != nil {
			resp.Receipt = toReceiptResponse(receipt)
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return true, resp, nil
}

func (s *LedgerService) markProcessed(ctx context.Context, key string) {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || key == "" {
		return
	}
	// Best effort; a failed mark only weakens dedup, never the payment
	_, _ = s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
}

func (s *LedgerService) publishEvents(ctx context.Context, o *tuition.Obligation, r *tuition.Receipt) {
	if s.eventPublisher == nil {
		return
	}
	events := o.GetDomainEvents()
	if r != nil {
		events = append(events, r.GetDomainEvents()...)
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			continue
		}
	}
	o.ClearDomainEvents()
	if r != nil {
		r.ClearDomainEvents()
	}
}
