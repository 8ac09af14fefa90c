package billing

import (
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationType classifies what an allocation settles
type AllocationType string

const (
	AllocationTypeInvoiceSettlement AllocationType = "invoice_settlement"
	AllocationTypeAdvance           AllocationType = "advance"
	AllocationTypeOnAccount         AllocationType = "on_account"
)

// IsValid checks if the type is a valid AllocationType
func (t AllocationType) IsValid() bool {
	switch t {
	case AllocationTypeInvoiceSettlement, AllocationTypeAdvance, AllocationTypeOnAccount:
		return true
	}
	return false
}

// PaymentAllocation assigns part or all of a payment's amount to an invoice.
// The invariant that a payment's allocations never sum past its amount is
// enforced by the allocation service inside one storage transaction; the
// aggregate itself only validates local field consistency.
type PaymentAllocation struct {
	shared.CompanyAggregateRoot
	PaymentID uuid.UUID  `json:"payment_id"`
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`

	AllocatedAmount decimal.Decimal      `json:"allocated_amount"`
	Currency        valueobject.Currency `json:"currency"`
	// INREquivalent is AllocatedAmount converted at ExchangeRate. For INR
	// allocations it equals AllocatedAmount and the rate is 1.
	INREquivalent decimal.Decimal `json:"inr_equivalent"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`

	AllocationDate time.Time      `json:"allocation_date"`
	AllocationType AllocationType `json:"allocation_type"`
	TDSAllocated   decimal.Decimal `json:"tds_allocated"`
	Notes          string          `json:"notes,omitempty"`
}

// NewPaymentAllocation creates a validated allocation. A zero allocationDate
// defaults to today; a zero exchange rate defaults to 1 for INR.
func NewPaymentAllocation(
	companyID uuid.UUID,
	paymentID uuid.UUID,
	invoiceID *uuid.UUID,
	amount decimal.Decimal,
	currency valueobject.Currency,
	allocationDate time.Time,
	allocationType AllocationType,
) (*PaymentAllocation, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocated amount must be positive")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency code")
	}
	if !allocationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALLOCATION_TYPE", "Allocation type is not valid")
	}
	if allocationDate.IsZero() {
		allocationDate = time.Now()
	}

	alloc := &PaymentAllocation{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		PaymentID:            paymentID,
		InvoiceID:            invoiceID,
		AllocatedAmount:      amount,
		Currency:             currency,
		AllocationDate:       allocationDate,
		AllocationType:       allocationType,
		ExchangeRate:         decimal.NewFromInt(1),
		INREquivalent:        amount,
	}
	if currency != valueobject.INR {
		// Non-INR allocations stay unconverted until a rate is applied
		alloc.INREquivalent = decimal.Zero
		alloc.ExchangeRate = decimal.Zero
	}
	return alloc, nil
}

// ApplyExchangeRate records the INR conversion for a foreign-currency
// allocation. INR allocations reject any rate other than 1.
func (a *PaymentAllocation) ApplyExchangeRate(rate decimal.Decimal) error {
	if a.Currency == valueobject.INR {
		if !rate.Equal(decimal.NewFromInt(1)) {
			return shared.NewDomainError("INVALID_EXCHANGE_RATE", "INR allocations always carry a rate of 1")
		}
		return nil
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_EXCHANGE_RATE", "Exchange rate must be positive")
	}

	a.ExchangeRate = rate
	a.INREquivalent = a.AllocatedAmount.Mul(rate).Round(2)
	a.Touch()
	a.IncrementVersion()
	return nil
}

// WithTDS records the TDS portion carried by this allocation
func (a *PaymentAllocation) WithTDS(tdsAmount decimal.Decimal) error {
	if tdsAmount.IsNegative() {
		return shared.NewDomainError("INVALID_TDS", "TDS allocated cannot be negative")
	}
	if tdsAmount.GreaterThan(a.AllocatedAmount) {
		return shared.NewDomainError("INVALID_TDS", "TDS allocated cannot exceed the allocated amount")
	}
	a.TDSAllocated = tdsAmount
	return nil
}

// Reallocate changes the allocated amount. Callers revalidate against the
// payment's available balance inside the same storage transaction.
func (a *PaymentAllocation) Reallocate(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocated amount must be positive")
	}
	if a.TDSAllocated.GreaterThan(amount) {
		return shared.NewDomainError("INVALID_TDS", "TDS allocated cannot exceed the allocated amount")
	}

	a.AllocatedAmount = amount
	if a.Currency == valueobject.INR {
		a.INREquivalent = amount
	} else if a.ExchangeRate.IsPositive() {
		a.INREquivalent = amount.Mul(a.ExchangeRate).Round(2)
	}
	a.Touch()
	a.IncrementVersion()
	return nil
}

// UnallocatedBalance computes a payment's remaining allocatable amount from
// its existing allocations, optionally excluding one allocation (the one
// being edited).
func UnallocatedBalance(payment *Payment, allocations []PaymentAllocation, exclude *uuid.UUID) decimal.Decimal {
	remaining := payment.Amount
	for i := range allocations {
		if exclude != nil && allocations[i].ID == *exclude {
			continue
		}
		remaining = remaining.Sub(allocations[i].AllocatedAmount)
	}
	return remaining
}
