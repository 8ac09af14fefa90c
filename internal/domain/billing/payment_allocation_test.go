package billing

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentForTest(amount float64) *Payment {
	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		CompanyID:   uuid.New(),
		PaymentDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromFloat(amount),
		Currency:    valueobject.INR,
	}
}

func allocationForTest(t *testing.T, payment *Payment, amount float64) *PaymentAllocation {
	t.Helper()
	invoiceID := uuid.New()
	alloc, err := NewPaymentAllocation(payment.CompanyID, payment.ID, &invoiceID,
		decimal.NewFromFloat(amount), valueobject.INR, time.Time{}, AllocationTypeInvoiceSettlement)
	require.NoError(t, err)
	return alloc
}

func TestNewPaymentAllocation(t *testing.T) {
	payment := paymentForTest(10000)
	alloc := allocationForTest(t, payment, 7000)

	assert.Equal(t, payment.ID, alloc.PaymentID)
	assert.True(t, alloc.AllocatedAmount.Equal(decimal.NewFromInt(7000)))
	assert.Equal(t, valueobject.INR, alloc.Currency)
	assert.True(t, alloc.ExchangeRate.Equal(decimal.NewFromInt(1)))
	assert.True(t, alloc.INREquivalent.Equal(alloc.AllocatedAmount))
	assert.False(t, alloc.AllocationDate.IsZero(), "zero date must default to today")

	_, err := NewPaymentAllocation(payment.CompanyID, uuid.Nil, nil,
		decimal.NewFromInt(1), valueobject.INR, time.Time{}, AllocationTypeInvoiceSettlement)
	assert.Error(t, err)

	_, err = NewPaymentAllocation(payment.CompanyID, payment.ID, nil,
		decimal.Zero, valueobject.INR, time.Time{}, AllocationTypeInvoiceSettlement)
	assert.Error(t, err)

	_, err = NewPaymentAllocation(payment.CompanyID, payment.ID, nil,
		decimal.NewFromInt(1), valueobject.INR, time.Time{}, AllocationType("bogus"))
	assert.Error(t, err)

	_, err = NewPaymentAllocation(payment.CompanyID, payment.ID, nil,
		decimal.NewFromInt(1), valueobject.Currency("XYZ"), time.Time{}, AllocationTypeInvoiceSettlement)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CURRENCY", domainErr.Code)
}

func TestPaymentAllocation_ForeignCurrency(t *testing.T) {
	payment := paymentForTest(1000)
	alloc, err := NewPaymentAllocation(payment.CompanyID, payment.ID, nil,
		decimal.NewFromInt(100), valueobject.USD, time.Now(), AllocationTypeAdvance)
	require.NoError(t, err)

	// Unconverted until a rate is applied
	assert.True(t, alloc.INREquivalent.IsZero())
	assert.True(t, alloc.ExchangeRate.IsZero())

	assert.Error(t, alloc.ApplyExchangeRate(decimal.Zero))
	require.NoError(t, alloc.ApplyExchangeRate(decimal.NewFromFloat(83.25)))
	assert.True(t, alloc.INREquivalent.Equal(decimal.NewFromInt(8325)))

	// INR allocations only accept a rate of 1
	inr := allocationForTest(t, payment, 500)
	assert.Error(t, inr.ApplyExchangeRate(decimal.NewFromInt(2)))
	assert.NoError(t, inr.ApplyExchangeRate(decimal.NewFromInt(1)))
}

func TestPaymentAllocation_WithTDS(t *testing.T) {
	payment := paymentForTest(10000)
	alloc := allocationForTest(t, payment, 1000)

	require.NoError(t, alloc.WithTDS(decimal.NewFromInt(100)))
	assert.True(t, alloc.TDSAllocated.Equal(decimal.NewFromInt(100)))

	assert.Error(t, alloc.WithTDS(decimal.NewFromInt(-1)))
	assert.Error(t, alloc.WithTDS(decimal.NewFromInt(1001)))
}

func TestPaymentAllocation_Reallocate(t *testing.T) {
	payment := paymentForTest(10000)
	alloc := allocationForTest(t, payment, 1000)
	require.NoError(t, alloc.WithTDS(decimal.NewFromInt(200)))

	require.NoError(t, alloc.Reallocate(decimal.NewFromInt(500)))
	assert.True(t, alloc.AllocatedAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, alloc.INREquivalent.Equal(decimal.NewFromInt(500)))

	// Cannot shrink below the recorded TDS portion
	assert.Error(t, alloc.Reallocate(decimal.NewFromInt(100)))
	assert.Error(t, alloc.Reallocate(decimal.Zero))
}

func TestUnallocatedBalance(t *testing.T) {
	payment := paymentForTest(10000)
	a1 := allocationForTest(t, payment, 7000)
	a2 := allocationForTest(t, payment, 2000)
	allocations := []PaymentAllocation{*a1, *a2}

	assert.True(t, UnallocatedBalance(payment, allocations, nil).Equal(decimal.NewFromInt(1000)))

	// Excluding the allocation being edited frees its own amount
	available := UnallocatedBalance(payment, allocations, &a1.ID)
	assert.True(t, available.Equal(decimal.NewFromInt(8000)))

	assert.True(t, UnallocatedBalance(payment, nil, nil).Equal(payment.Amount))
}

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.NewFromInt(12000)

	assert.Equal(t, PaymentStatusUnpaid, DerivePaymentStatus(total, decimal.Zero))
	assert.Equal(t, PaymentStatusPartiallyPaid, DerivePaymentStatus(total, decimal.NewFromInt(7000)))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(total, total))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(total, decimal.NewFromInt(13000)))
}

func TestDeriveInvoicePaymentStatus(t *testing.T) {
	invoice := &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		CompanyID:     uuid.New(),
		InvoiceNumber: "INV-1",
		InvoiceDate:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.NewFromInt(12000),
		Currency:      valueobject.INR,
	}
	payment := paymentForTest(10000)

	first := allocationForTest(t, payment, 7000)
	first.AllocationDate = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	second := allocationForTest(t, payment, 3000)
	second.AllocationDate = time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	status := DeriveInvoicePaymentStatus(invoice, []PaymentAllocation{*first, *second})

	assert.Equal(t, "INV-1", status.InvoiceNumber)
	assert.True(t, status.TotalPaid.Equal(decimal.NewFromInt(10000)))
	assert.True(t, status.BalanceDue.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, PaymentStatusPartiallyPaid, status.Status)
	assert.Equal(t, 2, status.AllocationCount)
	require.NotNil(t, status.LastAllocationAt)
	assert.Equal(t, second.AllocationDate, *status.LastAllocationAt)

	empty := DeriveInvoicePaymentStatus(invoice, nil)
	assert.Equal(t, PaymentStatusUnpaid, empty.Status)
	assert.True(t, empty.BalanceDue.Equal(invoice.TotalAmount))
	assert.Nil(t, empty.LastAllocationAt)
}
