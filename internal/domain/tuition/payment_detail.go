package tuition

import (
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents the method used for an individual payment
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodYape       PaymentMethod = "YAPE"
	PaymentMethodPlin       PaymentMethod = "PLIN"
	PaymentMethodTransfer   PaymentMethod = "TRANSFER"
	PaymentMethodDeposit    PaymentMethod = "DEPOSIT"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodOther      PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodYape, PaymentMethodPlin, PaymentMethodTransfer,
		PaymentMethodDeposit, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentDetail is one individual payment event against an Obligation.
// The ledger is append-only: details are never updated or deleted, and
// TotalPaid on the Obligation is always re-derived by summing them.
type PaymentDetail struct {
	shared.BaseEntity
	ObligationID uuid.UUID       `json:"obligation_id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Method       PaymentMethod   `json:"payment_method"`
	Reference    string          `json:"reference,omitempty"`
}

// NewPaymentDetail creates a new payment ledger entry
func NewPaymentDetail(
	obligationID uuid.UUID,
	amount valueobject.Money,
	date time.Time,
	method PaymentMethod,
	reference string,
) (*PaymentDetail, error) {
	if obligationID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Obligation ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment method is not valid")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment date is required")
	}

	return &PaymentDetail{
		BaseEntity:   shared.NewBaseEntity(),
		ObligationID: obligationID,
		Amount:       amount.Amount(),
		Date:         date,
		Method:       method,
		Reference:    reference,
	}, nil
}

// GetAmountMoney returns the amount as Money
func (d *PaymentDetail) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPEN(d.Amount)
}
