package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines read access to payments. Payments are owned by
// the invoicing subsystem; this core never writes them.
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForCompany finds a payment by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Payment, error)
}

// InvoiceRepository defines read access to invoices
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForCompany finds an invoice by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Invoice, error)

	// ExistAllForCompany reports whether every given invoice exists for the
	// company. Used by bulk allocation to validate the whole batch up front.
	ExistAllForCompany(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (bool, error)
}

// PaymentAllocationRepository defines the interface for allocation persistence
type PaymentAllocationRepository interface {
	// FindByID finds an allocation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentAllocation, error)

	// FindByPayment lists all allocations of a payment
	FindByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]PaymentAllocation, error)

	// FindByInvoice lists all allocations against an invoice
	FindByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]PaymentAllocation, error)

	// SumByPayment totals the allocated amounts of a payment
	SumByPayment(ctx context.Context, companyID, paymentID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates an allocation
	Save(ctx context.Context, allocation *PaymentAllocation) error

	// Delete removes an allocation
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByPayment removes every allocation of a payment
	DeleteByPayment(ctx context.Context, companyID, paymentID uuid.UUID) error

	// AllocateWithinBalance runs fn inside one storage transaction while
	// holding a row lock on the payment, so the balance check and the
	// writes fn performs cannot race with a concurrent allocation. fn
	// receives the payment as locked and a repository view bound to the
	// same transaction.
	AllocateWithinBalance(ctx context.Context, companyID, paymentID uuid.UUID,
		fn func(payment *Payment, repo PaymentAllocationRepository) error) error
}
