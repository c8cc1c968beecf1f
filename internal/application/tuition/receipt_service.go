package tuition

import (
	"context"
	"errors"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ReceiptService exposes read access to issued receipts. Issuance itself
// happens inside the payment transaction; see LedgerService.
type ReceiptService struct {
	receiptRepo tuition.ReceiptRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(receiptRepo tuition.ReceiptRepository) *ReceiptService {
	return &ReceiptService{receiptRepo: receiptRepo}
}

// GetReceiptByMonth fetches the receipt for one student month.
// A month that is unpaid or not registered has no receipt; that is not an
// error, the service returns nil and the handler serializes it as null.
func (s *ReceiptService) GetReceiptByMonth(ctx context.Context, studentID, cycleID uuid.UUID, year, month int) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "get_by_month")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, studentID.String(),
		telemetry.SpanAttrYear, year,
		telemetry.SpanAttrMonth, month,
	)

	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Month must be between 1 and 12")
	}

	receipt, err := s.receiptRepo.FindByMonth(ctx, tuition.MonthKey{
		StudentID: studentID,
		CycleID:   cycleID,
		Year:      year,
		Month:     month,
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return toReceiptResponse(receipt), nil
}

// GetReceiptByNumber fetches a receipt by its human-readable number
func (s *ReceiptService) GetReceiptByNumber(ctx context.Context, receiptNo string) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "get_by_number")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptNo, receiptNo)

	if receiptNo == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Receipt number is required")
	}

	receipt, err := s.receiptRepo.FindByReceiptNo(ctx, receiptNo)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("NOT_FOUND", "Receipt not found")
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return toReceiptResponse(receipt), nil
}

// ListStudentReceipts lists all receipts of one student in a cycle
func (s *ReceiptService) ListStudentReceipts(ctx context.Context, studentID, cycleID uuid.UUID) ([]ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "list_by_student")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrStudentID, studentID.String())

	receipts, err := s.receiptRepo.FindByStudent(ctx, studentID, cycleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		responses[i] = *toReceiptResponse(&receipts[i])
	}
	return responses, nil
}
