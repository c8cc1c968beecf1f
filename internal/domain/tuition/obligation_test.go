package tuition

import (
	"math/rand"
	"testing"
	"time"

	"github.com/colegio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestObligation(t *testing.T) *Obligation {
	studentID := uuid.New()
	cycleID := uuid.New()
	total := valueobject.NewMoneyPENFromFloat(350.00)

	o, err := NewObligation(studentID, cycleID, 2025, 3, total, "Pension marzo", nil)
	require.NoError(t, err)
	return o
}

func createTestObligationWithDueDate(t *testing.T, daysFromNow int) *Obligation {
	o := createTestObligation(t)
	dueDate := time.Now().AddDate(0, 0, daysFromNow)
	o.DueDate = &dueDate
	return o
}

// ============================================
// ObligationStatus Tests
// ============================================

func TestObligationStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  ObligationStatus
		isValid bool
	}{
		{ObligationStatusUnpaid, true},
		{ObligationStatusPartial, true},
		{ObligationStatusPaid, true},
		{ObligationStatus("INVALID"), false},
		{ObligationStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestObligationStatus_String(t *testing.T) {
	assert.Equal(t, "UNPAID", ObligationStatusUnpaid.String())
	assert.Equal(t, "PARTIAL", ObligationStatusPartial.String())
	assert.Equal(t, "PAID", ObligationStatusPaid.String())
}

func TestDeriveStatus(t *testing.T) {
	total := decimal.NewFromFloat(350.00)

	tests := []struct {
		name      string
		totalPaid decimal.Decimal
		expected  ObligationStatus
	}{
		{"zero paid", decimal.Zero, ObligationStatusUnpaid},
		{"negative paid", decimal.NewFromFloat(-10), ObligationStatusUnpaid},
		{"one cent", decimal.NewFromFloat(0.01), ObligationStatusPartial},
		{"halfway", decimal.NewFromFloat(175.00), ObligationStatusPartial},
		{"one cent short", decimal.NewFromFloat(349.99), ObligationStatusPartial},
		{"exact", decimal.NewFromFloat(350.00), ObligationStatusPaid},
		{"overpaid", decimal.NewFromFloat(400.00), ObligationStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveStatus(total, tt.totalPaid))
		})
	}
}

// DeriveStatus is a pure function of (total, totalPaid); exercise it over
// random amounts and check the classification against the raw comparison.
func TestDeriveStatus_Classification(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		total := decimal.NewFromInt(rng.Int63n(100000) + 1).Div(decimal.NewFromInt(100))
		paid := decimal.NewFromInt(rng.Int63n(150000)).Div(decimal.NewFromInt(100))

		status := DeriveStatus(total, paid)
		switch {
		case paid.LessThanOrEqual(decimal.Zero):
			assert.Equal(t, ObligationStatusUnpaid, status)
		case paid.GreaterThanOrEqual(total):
			assert.Equal(t, ObligationStatusPaid, status)
		default:
			assert.Equal(t, ObligationStatusPartial, status)
		}
	}
}

// ============================================
// NewObligation Tests
// ============================================

func TestNewObligation_Success(t *testing.T) {
	studentID := uuid.New()
	cycleID := uuid.New()
	dueDate := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	total := valueobject.NewMoneyPENFromFloat(350.00)

	o, err := NewObligation(studentID, cycleID, 2025, 3, total, "Pension marzo", &dueDate)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.Equal(t, studentID, o.StudentID)
	assert.Equal(t, cycleID, o.CycleID)
	assert.Equal(t, 2025, o.Year)
	assert.Equal(t, 3, o.Month)
	assert.Equal(t, "Pension marzo", o.Concept)
	assert.True(t, o.Total.Equal(decimal.NewFromFloat(350.00)))
	assert.True(t, o.TotalPaid.IsZero())
	assert.True(t, o.Balance.Equal(decimal.NewFromFloat(350.00)))
	assert.Equal(t, ObligationStatusUnpaid, o.Status)
	assert.Nil(t, o.PaidAt)
	assert.Equal(t, 1, o.Version)

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "ObligationRegistered", events[0].EventType())
}

func TestNewObligation_ValidationErrors(t *testing.T) {
	studentID := uuid.New()
	cycleID := uuid.New()
	total := valueobject.NewMoneyPENFromFloat(350.00)

	tests := []struct {
		name string
		fn   func() (*Obligation, error)
	}{
		{"nil student", func() (*Obligation, error) {
			return NewObligation(uuid.Nil, cycleID, 2025, 3, total, "", nil)
		}},
		{"nil cycle", func() (*Obligation, error) {
			return NewObligation(studentID, uuid.Nil, 2025, 3, total, "", nil)
		}},
		{"month zero", func() (*Obligation, error) {
			return NewObligation(studentID, cycleID, 2025, 0, total, "", nil)
		}},
		{"month thirteen", func() (*Obligation, error) {
			return NewObligation(studentID, cycleID, 2025, 13, total, "", nil)
		}},
		{"year too old", func() (*Obligation, error) {
			return NewObligation(studentID, cycleID, 1999, 3, total, "", nil)
		}},
		{"zero total", func() (*Obligation, error) {
			return NewObligation(studentID, cycleID, 2025, 3, valueobject.ZeroPEN(), "", nil)
		}},
		{"negative total", func() (*Obligation, error) {
			return NewObligation(studentID, cycleID, 2025, 3, valueobject.NewMoneyPENFromFloat(-10), "", nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := tt.fn()
			assert.Error(t, err)
			assert.Nil(t, o)
		})
	}
}

// ============================================
// Reprice Tests
// ============================================

func TestObligation_Reprice_PreservesPayments(t *testing.T) {
	o := createTestObligation(t)
	now := time.Now()
	o.ApplyLedgerTotal(decimal.NewFromFloat(100.00), now)
	require.Equal(t, ObligationStatusPartial, o.Status)

	err := o.Reprice(valueobject.NewMoneyPENFromFloat(500.00), "Pension marzo ajustada", nil, now)

	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.NewFromFloat(500.00)))
	assert.True(t, o.TotalPaid.Equal(decimal.NewFromFloat(100.00)))
	assert.True(t, o.Balance.Equal(decimal.NewFromFloat(400.00)))
	assert.Equal(t, ObligationStatusPartial, o.Status)
	assert.Equal(t, "Pension marzo ajustada", o.Concept)
}

func TestObligation_Reprice_CanFlipStatusToPaid(t *testing.T) {
	o := createTestObligation(t)
	now := time.Now()
	o.ApplyLedgerTotal(decimal.NewFromFloat(200.00), now)
	require.Equal(t, ObligationStatusPartial, o.Status)

	// Lowering the price below what was already paid flips the month to PAID
	err := o.Reprice(valueobject.NewMoneyPENFromFloat(150.00), "", nil, now)

	require.NoError(t, err)
	assert.Equal(t, ObligationStatusPaid, o.Status)
	assert.True(t, o.Balance.Equal(decimal.NewFromFloat(-50.00)))
	assert.NotNil(t, o.PaidAt)
}

func TestObligation_Reprice_KeepsConceptWhenEmpty(t *testing.T) {
	o := createTestObligation(t)

	err := o.Reprice(valueobject.NewMoneyPENFromFloat(400.00), "", nil, time.Now())

	require.NoError(t, err)
	assert.Equal(t, "Pension marzo", o.Concept)
}

func TestObligation_Reprice_RejectsNonPositiveTotal(t *testing.T) {
	o := createTestObligation(t)

	err := o.Reprice(valueobject.ZeroPEN(), "", nil, time.Now())

	assert.Error(t, err)
}

// ============================================
// ApplyLedgerTotal Tests
// ============================================

func TestObligation_ApplyLedgerTotal_Partial(t *testing.T) {
	o := createTestObligation(t)

	o.ApplyLedgerTotal(decimal.NewFromFloat(150.00), time.Now())

	assert.Equal(t, ObligationStatusPartial, o.Status)
	assert.True(t, o.TotalPaid.Equal(decimal.NewFromFloat(150.00)))
	assert.True(t, o.Balance.Equal(decimal.NewFromFloat(200.00)))
	assert.Nil(t, o.PaidAt)
}

func TestObligation_ApplyLedgerTotal_ExactPayment(t *testing.T) {
	o := createTestObligation(t)
	now := time.Now()

	o.ApplyLedgerTotal(decimal.NewFromFloat(350.00), now)

	assert.Equal(t, ObligationStatusPaid, o.Status)
	assert.True(t, o.Balance.IsZero())
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, now, *o.PaidAt)
}

func TestObligation_ApplyLedgerTotal_Overpayment(t *testing.T) {
	o := createTestObligation(t)

	o.ApplyLedgerTotal(decimal.NewFromFloat(400.00), time.Now())

	assert.Equal(t, ObligationStatusPaid, o.Status)
	assert.True(t, o.Balance.Equal(decimal.NewFromFloat(-50.00)))
}

func TestObligation_ApplyLedgerTotal_EmitsPaidEventOnce(t *testing.T) {
	o := createTestObligation(t)
	o.ClearDomainEvents()
	now := time.Now()

	o.ApplyLedgerTotal(decimal.NewFromFloat(350.00), now)
	require.Len(t, o.GetDomainEvents(), 1)
	assert.Equal(t, "ObligationPaid", o.GetDomainEvents()[0].EventType())

	// A later overpayment on an already paid month must not re-emit
	o.ClearDomainEvents()
	o.ApplyLedgerTotal(decimal.NewFromFloat(400.00), now)
	assert.Empty(t, o.GetDomainEvents())
}

func TestObligation_ApplyLedgerTotal_IncrementsVersion(t *testing.T) {
	o := createTestObligation(t)
	require.Equal(t, 1, o.Version)

	o.ApplyLedgerTotal(decimal.NewFromFloat(50.00), time.Now())
	assert.Equal(t, 2, o.Version)

	o.ApplyLedgerTotal(decimal.NewFromFloat(120.00), time.Now())
	assert.Equal(t, 3, o.Version)
}

// Balance == Total - TotalPaid must hold after any sequence of ledger
// re-aggregations and reprices, for any amounts.
func TestObligation_BalanceInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Now()

	for i := 0; i < 200; i++ {
		o := createTestObligation(t)

		steps := rng.Intn(8) + 1
		running := decimal.Zero
		for s := 0; s < steps; s++ {
			if rng.Intn(4) == 0 {
				newTotal := decimal.NewFromInt(rng.Int63n(100000) + 1).Div(decimal.NewFromInt(100))
				require.NoError(t, o.Reprice(valueobject.NewMoneyPEN(newTotal), "", nil, now))
			} else {
				running = running.Add(decimal.NewFromInt(rng.Int63n(20000) + 1).Div(decimal.NewFromInt(100)))
				o.ApplyLedgerTotal(running, now)
			}

			assert.True(t, o.Balance.Equal(o.Total.Sub(o.TotalPaid)),
				"balance %s != total %s - paid %s", o.Balance, o.Total, o.TotalPaid)
			assert.Equal(t, DeriveStatus(o.Total, o.TotalPaid), o.Status)
			assert.Equal(t, o.Status == ObligationStatusPaid, o.PaidAt != nil)
		}
	}
}

// ============================================
// Query helper Tests
// ============================================

func TestObligation_IsOverdue(t *testing.T) {
	t.Run("no due date", func(t *testing.T) {
		o := createTestObligation(t)
		assert.False(t, o.IsOverdue())
	})

	t.Run("due in the future", func(t *testing.T) {
		o := createTestObligationWithDueDate(t, 10)
		assert.False(t, o.IsOverdue())
	})

	t.Run("past due and unpaid", func(t *testing.T) {
		o := createTestObligationWithDueDate(t, -10)
		assert.True(t, o.IsOverdue())
	})

	t.Run("past due but paid", func(t *testing.T) {
		o := createTestObligationWithDueDate(t, -10)
		o.ApplyLedgerTotal(decimal.NewFromFloat(350.00), time.Now())
		assert.False(t, o.IsOverdue())
	})
}

func TestObligation_MoneyAccessors(t *testing.T) {
	o := createTestObligation(t)
	o.ApplyLedgerTotal(decimal.NewFromFloat(100.00), time.Now())

	assert.Equal(t, valueobject.PEN, o.GetTotalMoney().Currency())
	assert.True(t, o.GetTotalPaidMoney().Amount().Equal(decimal.NewFromFloat(100.00)))
	assert.True(t, o.GetBalanceMoney().Amount().Equal(decimal.NewFromFloat(250.00)))
}
