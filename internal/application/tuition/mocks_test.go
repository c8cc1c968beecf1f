package tuition

import (
	"context"
	"time"

	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock repositories and unit of work
// =============================================================================

type MockObligationRepository struct {
	mock.Mock
}

func (m *MockObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.Obligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindByMonth(ctx context.Context, key tuition.MonthKey) (*tuition.Obligation, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindByMonthForUpdate(ctx context.Context, key tuition.MonthKey) (*tuition.Obligation, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindAll(ctx context.Context, filter tuition.ObligationFilter) ([]tuition.Obligation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]tuition.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindByStudent(ctx context.Context, studentID, cycleID uuid.UUID) ([]tuition.Obligation, error) {
	args := m.Called(ctx, studentID, cycleID)
	return args.Get(0).([]tuition.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindByCycleMonth(ctx context.Context, cycleID uuid.UUID, year, month int) ([]tuition.Obligation, error) {
	args := m.Called(ctx, cycleID, year, month)
	return args.Get(0).([]tuition.Obligation), args.Error(1)
}

func (m *MockObligationRepository) Save(ctx context.Context, obligation *tuition.Obligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *MockObligationRepository) SaveWithLock(ctx context.Context, obligation *tuition.Obligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *MockObligationRepository) Count(ctx context.Context, filter tuition.ObligationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockObligationRepository) SumBalanceByStudent(ctx context.Context, studentID, cycleID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID, cycleID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockPaymentDetailRepository struct {
	mock.Mock
}

func (m *MockPaymentDetailRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.PaymentDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.PaymentDetail), args.Error(1)
}

func (m *MockPaymentDetailRepository) FindByObligation(ctx context.Context, obligationID uuid.UUID) ([]tuition.PaymentDetail, error) {
	args := m.Called(ctx, obligationID)
	return args.Get(0).([]tuition.PaymentDetail), args.Error(1)
}

func (m *MockPaymentDetailRepository) Append(ctx context.Context, detail *tuition.PaymentDetail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *MockPaymentDetailRepository) SumByObligation(ctx context.Context, obligationID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, obligationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentDetailRepository) CountByObligation(ctx context.Context, obligationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, obligationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByObligation(ctx context.Context, obligationID uuid.UUID) (*tuition.Receipt, error) {
	args := m.Called(ctx, obligationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByMonth(ctx context.Context, key tuition.MonthKey) (*tuition.Receipt, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByReceiptNo(ctx context.Context, receiptNo string) (*tuition.Receipt, error) {
	args := m.Called(ctx, receiptNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByStudent(ctx context.Context, studentID, cycleID uuid.UUID) ([]tuition.Receipt, error) {
	args := m.Called(ctx, studentID, cycleID)
	return args.Get(0).([]tuition.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) Create(ctx context.Context, receipt *tuition.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) SaveWithLock(ctx context.Context, receipt *tuition.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

// fakeUnitOfWork hands the mock repositories to the callback without any
// real transaction underneath
type fakeUnitOfWork struct {
	repos tuition.Repositories
}

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(repos tuition.Repositories) error) error {
	return fn(f.repos)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
