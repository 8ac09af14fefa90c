package billing

import (
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a customer payment as the allocation engine sees it. Owned by
// the invoicing subsystem; this core reads payments and writes allocations
// against them, never mutating the payment row itself.
type Payment struct {
	shared.BaseEntity
	CompanyID  uuid.UUID  `json:"company_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	InvoiceID  *uuid.UUID `json:"invoice_id,omitempty"`

	PaymentDate time.Time            `json:"payment_date"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    valueobject.Currency `json:"currency"`

	PaymentType    string `json:"payment_type,omitempty"`
	IncomeCategory string `json:"income_category,omitempty"`

	// TDS (tax deducted at source) withheld by the payer
	TDSAmount  decimal.Decimal `json:"tds_amount"`
	TDSSection string          `json:"tds_section,omitempty"`
}

// Invoice is the allocation engine's read model of an invoice
type Invoice struct {
	shared.BaseEntity
	CompanyID     uuid.UUID            `json:"company_id"`
	CustomerID    *uuid.UUID           `json:"customer_id,omitempty"`
	InvoiceNumber string               `json:"invoice_number"`
	InvoiceDate   time.Time            `json:"invoice_date"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Currency      valueobject.Currency `json:"currency"`
}

// PaymentStatus is the derived settlement state of an invoice. It is never
// stored; it is recomputed from the allocation sum on every read.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// InvoicePaymentStatus is the derived settlement view of one invoice
type InvoicePaymentStatus struct {
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	InvoiceTotal     decimal.Decimal `json:"invoice_total"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	BalanceDue       decimal.Decimal `json:"balance_due"`
	Status           PaymentStatus   `json:"status"`
	AllocationCount  int             `json:"allocation_count"`
	LastAllocationAt *time.Time      `json:"last_allocation_at,omitempty"`
}

// DerivePaymentStatus computes the status from the paid sum against the
// invoice total. Overpayment still reports paid; the allocation invariant
// guards the payment side, not the invoice side.
func DerivePaymentStatus(invoiceTotal, totalPaid decimal.Decimal) PaymentStatus {
	switch {
	case totalPaid.LessThanOrEqual(decimal.Zero):
		return PaymentStatusUnpaid
	case totalPaid.GreaterThanOrEqual(invoiceTotal):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartiallyPaid
	}
}

// DeriveInvoicePaymentStatus builds the full derived view from an invoice
// and its allocations.
func DeriveInvoicePaymentStatus(invoice *Invoice, allocations []PaymentAllocation) InvoicePaymentStatus {
	status := InvoicePaymentStatus{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceTotal:  invoice.TotalAmount,
	}

	for i := range allocations {
		a := &allocations[i]
		status.TotalPaid = status.TotalPaid.Add(a.AllocatedAmount)
		status.AllocationCount++
		if status.LastAllocationAt == nil || a.AllocationDate.After(*status.LastAllocationAt) {
			date := a.AllocationDate
			status.LastAllocationAt = &date
		}
	}

	status.BalanceDue = invoice.TotalAmount.Sub(status.TotalPaid)
	status.Status = DerivePaymentStatus(invoice.TotalAmount, status.TotalPaid)
	return status
}
