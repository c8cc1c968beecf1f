package tuition

import (
	"context"
	"testing"
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/shared/valueobject"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestObligation(t *testing.T, totalAmount float64) *tuition.Obligation {
	o, err := tuition.NewObligation(
		uuid.New(), uuid.New(), 2025, 3,
		valueobject.NewMoneyPENFromFloat(totalAmount),
		"Pension marzo", nil,
	)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func newLedgerFixture() (*MockObligationRepository, *MockPaymentDetailRepository, *MockReceiptRepository, *LedgerService) {
	obligationRepo := new(MockObligationRepository)
	detailRepo := new(MockPaymentDetailRepository)
	receiptRepo := new(MockReceiptRepository)
	uow := &fakeUnitOfWork{repos: tuition.Repositories{
		Obligations:    obligationRepo,
		PaymentDetails: detailRepo,
		Receipts:       receiptRepo,
	}}
	return obligationRepo, detailRepo, receiptRepo, NewLedgerService(uow)
}

func addPaymentRequest(o *tuition.Obligation, amount float64) AddPaymentRequest {
	return AddPaymentRequest{
		StudentID: o.StudentID,
		CycleID:   o.CycleID,
		Year:      o.Year,
		Month:     o.Month,
		Amount:    decimal.NewFromFloat(amount),
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Method:    "YAPE",
		Reference: "OP-777",
		IssuedBy:  "secretaria@colegio.edu",
	}
}

func TestLedgerService_AddPayment_Partial(t *testing.T) {
	obligationRepo, detailRepo, _, svc := newLedgerFixture()
	o := newTestObligation(t, 350.00)

	obligationRepo.On("FindByMonthForUpdate", mock.Anything, mock.Anything).Return(o, nil)
	detailRepo.On("Append", mock.Anything, mock.AnythingOfType("*tuition.PaymentDetail")).Return(nil)
	detailRepo.On("SumByObligation", mock.Anything, o.ID).Return(decimal.NewFromFloat(100.00), nil)
	obligationRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

	resp, err := svc.AddPayment(context.Background(), addPaymentRequest(o, 100.00))

	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", resp.Obligation.Status)
	assert.True(t, resp.Obligation.TotalPaid.Equal(decimal.NewFromFloat(100.00)))
	assert.True(t, resp.Obligation.Balance.Equal(decimal.NewFromFloat(250.00)))
	assert.Nil(t, resp.Receipt)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "YAPE", resp.Payment.Method)
	obligationRepo.AssertExpectations(t)
	detailRepo.AssertExpectations(t)
}

func TestLedgerService_AddPayment_UnregisteredMonth(t *testing.T) {
	obligationRepo, _, _, svc := newLedgerFixture()
	o := newTestObligation(t, 350.00)

	obligationRepo.On("FindByMonthForUpdate", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	resp, err := svc.AddPayment(context.Background(), addPaymentRequest(o, 100.00))

	require.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MES_NO_REGISTRADO", domainErr.Code)
}

func TestLedgerService_AddPayment_RejectsBadRequestBeforeTransaction(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AddPaymentRequest)
	}{
		{"zero amount", func(r *AddPaymentRequest) { r.Amount = decimal.Zero }},
		{"negative amount", func(r *AddPaymentRequest) { r.Amount = decimal.NewFromFloat(-50.00) }},
		{"unknown method", func(r *AddPaymentRequest) { r.Method = "BARTER" }},
		{"zero date", func(r *AddPaymentRequest) { r.Date = time.Time{} }},
		{"blank issued by", func(r *AddPaymentRequest) { r.IssuedBy = "   " }},
		{"month out of range", func(r *AddPaymentRequest) { r.Month = 13 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obligationRepo, detailRepo, _, svc := newLedgerFixture()
			o := newTestObligation(t, 350.00)

			req := addPaymentRequest(o, 100.00)
			tt.mutate(&req)
			resp, err := svc.AddPayment(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, resp)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)

			// Validation precedes the month lookup, so a bad amount on an
			// unregistered month is still a VALIDATION_ERROR and nothing is
			// written
			obligationRepo.AssertNotCalled(t, "FindByMonthForUpdate", mock.Anything, mock.Anything)
			detailRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}
}

func TestLedgerService_AddPayment_MissingIssuedByOnPartialPayment(t *testing.T) {
	obligationRepo, detailRepo, _, svc := newLedgerFixture()
	o := newTestObligation(t, 350.00)

	// A partial payment never issues a receipt, yet issued_by is still required
	req := addPaymentRequest(o, 100.00)
	req.IssuedBy = ""
	resp, err := svc.AddPayment(context.Background(), req)

	require.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	obligationRepo.AssertNotCalled(t, "FindByMonthForUpdate", mock.Anything, mock.Anything)
	detailRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedgerService_AddPayment_CompletesMonthAndIssuesReceipt(t *testing.T) {
	obligationRepo, detailRepo, receiptRepo, svc := newLedgerFixture()
	o := newTestObligation(t, 350.00)
	o.ApplyLedgerTotal(decimal.NewFromFloat(250.00), time.Now())
	o.ClearDomainEvents()

	ledger := []tuition.PaymentDetail{}
	obligationRepo.On("FindByMonthForUpdate", mock.Anything, mock.Anything).Return(o, nil)
	detailRepo.On("Append", mock.Anything, mock.AnythingOfType("*tuition.PaymentDetail")).Return(nil)
	detailRepo.On("SumByObligation", mock.Anything, o.ID).Return(decimal.NewFromFloat(350.00), nil)
	obligationRepo.On("SaveWithLock", mock.Anything, o).Return(nil)
	detailRepo.On("FindByObligation", mock.Anything, o.ID).Return(ledger, nil)
	receiptRepo.On("FindByObligation", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
	receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*tuition.Receipt")).Run(func(args mock.Arguments) {
		// The store assigns the correlativo on insert
		r := args.Get(1).(*tuition.Receipt)
		r.Correlativo = 17
	}).Return(nil)
	receiptRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*tuition.Receipt")).Return(nil)

	resp, err := svc.AddPayment(context.Background(), addPaymentRequest(o, 100.00))

	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Obligation.Status)
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, "REC-2025-000017", resp.Receipt.ReceiptNo)
	assert.Equal(t, "secretaria@colegio.edu", resp.Receipt.IssuedBy)
	receiptRepo.AssertExpectations(t)
}

func TestLedgerService_AddPayment_OverpaymentRefreshesReceiptKeepingNumber(t *testing.T) {
	obligationRepo, detailRepo, receiptRepo, svc := newLedgerFixture()
	o := newTestObligation(t, 350.00)
	o.ApplyLedgerTotal(decimal.NewFromFloat(350.00), time.Now())
	o.ClearDomainEvents()
	require.True(t, o.IsPaid())

	existing, err := tuition.NewReceipt(o, nil, "secretaria@colegio.edu", time.Now())
	require.NoError(t, err)
	existing.Correlativo = 5
	_, err = existing.AssignNumber()
	require.NoError(t, err)

	obligationRepo.On("FindByMonthForUpdate", mock.Anything, mock.Anything).Return(o, nil)
	detailRepo.On("Append", mock.Anything, mock.AnythingOfType("*tuition.PaymentDetail")).Return(nil)
	detailRepo.On("SumByObligation", mock.Anything, o.ID).Return(decimal.NewFromFloat(400.00), nil)
	obligationRepo.On("SaveWithLock", mock.Anything, o).Return(nil)
	detailRepo.On("FindByObligation", mock.Anything, o.ID).Return([]tuition.PaymentDetail{}, nil)
	receiptRepo.On("FindByObligation", mock.Anything, o.ID).Return(existing, nil)
	receiptRepo.On("SaveWithLock", mock.Anything, existing).Return(nil)

	resp, err := svc.AddPayment(context.Background(), addPaymentRequest(o, 50.00))

	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Obligation.Status)
	assert.True(t, resp.Obligation.Balance.Equal(decimal.NewFromFloat(-50.00)))
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, "REC-2025-000005", resp.Receipt.ReceiptNo)
	assert.True(t, resp.Receipt.TotalPaid.Equal(decimal.NewFromFloat(400.00)))
	receiptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLedgerService_AddPayment_IdempotentReplay(t *testing.T) {
	obligationRepo, detailRepo, receiptRepo, _ := newLedgerFixture()
	o := newTestObligation(t, 350.00)
	o.ApplyLedgerTotal(decimal.NewFromFloat(100.00), time.Now())
	o.ClearDomainEvents()

	store := new(MockIdempotencyStore)
	uow := &fakeUnitOfWork{repos: tuition.Repositories{
		Obligations:    obligationRepo,
		PaymentDetails: detailRepo,
		Receipts:       receiptRepo,
	}}
	svc := NewLedgerService(uow, WithIdempotencyStore(store, shared.DefaultIdempotencyConfig()))

	store.On("IsProcessed", mock.Anything, "idem-123").Return(true, nil)
	obligationRepo.On("FindByMonth", mock.Anything, mock.Anything).Return(o, nil)
	receiptRepo.On("FindByObligation", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)

	req := addPaymentRequest(o, 100.00)
	req.IdempotencyKey = "idem-123"
	resp, err := svc.AddPayment(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.Duplicate)
	assert.True(t, resp.Obligation.TotalPaid.Equal(decimal.NewFromFloat(100.00)))
	detailRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedgerService_AddPayment_MarksIdempotencyKey(t *testing.T) {
	obligationRepo, detailRepo, receiptRepo, _ := newLedgerFixture()
	o := newTestObligation(t, 350.00)

	store := new(MockIdempotencyStore)
	uow := &fakeUnitOfWork{repos: tuition.Repositories{
		Obligations:    obligationRepo,
		PaymentDetails: detailRepo,
		Receipts:       receiptRepo,
	}}
	svc := NewLedgerService(uow, WithIdempotencyStore(store, shared.DefaultIdempotencyConfig()))

	store.On("IsProcessed", mock.Anything, "idem-456").Return(false, nil)
	obligationRepo.On("FindByMonthForUpdate", mock.Anything, mock.Anything).Return(o, nil)
	detailRepo.On("Append", mock.Anything, mock.AnythingOfType("*tuition.PaymentDetail")).Return(nil)
	detailRepo.On("SumByObligation", mock.Anything, o.ID).Return(decimal.NewFromFloat(50.00), nil)
	obligationRepo.On("SaveWithLock", mock.Anything, o).Return(nil)
	store.On("MarkProcessed", mock.Anything, "idem-456", mock.Anything).Return(true, nil)

	req := addPaymentRequest(o, 50.00)
	req.IdempotencyKey = "idem-456"
	_, err := svc.AddPayment(context.Background(), req)

	require.NoError(t, err)
	store.AssertExpectations(t)
}
