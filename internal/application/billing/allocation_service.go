package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/billing"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocationService splits payments across invoices while enforcing that a
// payment's allocations never exceed its amount. Every balance check runs
// inside the same storage transaction as the write, with the payment row
// locked, so concurrent allocations cannot jointly overspend.
type AllocationService struct {
	paymentRepo billing.PaymentRepository
	invoiceRepo billing.InvoiceRepository
	allocRepo   billing.PaymentAllocationRepository
	logger      *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	paymentRepo billing.PaymentRepository,
	invoiceRepo billing.InvoiceRepository,
	allocRepo billing.PaymentAllocationRepository,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		allocRepo:   allocRepo,
		logger:      logger,
	}
}

// CreateAllocationRequest allocates part of a payment to an invoice
type CreateAllocationRequest struct {
	CompanyID      uuid.UUID
	PaymentID      uuid.UUID
	InvoiceID      *uuid.UUID
	Amount         decimal.Decimal
	Currency       valueobject.Currency
	AllocationDate time.Time
	AllocationType billing.AllocationType
	TDSAllocated   *decimal.Decimal
	Notes          string
}

// CreateAllocation validates and persists one allocation
func (s *AllocationService) CreateAllocation(ctx context.Context, req CreateAllocationRequest) (*billing.PaymentAllocation, error) {
	if req.InvoiceID != nil {
		if err := s.requireInvoice(ctx, req.CompanyID, *req.InvoiceID); err != nil {
			return nil, err
		}
	}

	alloc, err := billing.NewPaymentAllocation(req.CompanyID, req.PaymentID, req.InvoiceID,
		req.Amount, req.Currency, req.AllocationDate, req.AllocationType)
	if err != nil {
		return nil, err
	}
	if req.TDSAllocated != nil {
		if err := alloc.WithTDS(*req.TDSAllocated); err != nil {
			return nil, err
		}
	}
	alloc.Notes = req.Notes

	err = s.allocRepo.AllocateWithinBalance(ctx, req.CompanyID, req.PaymentID,
		func(payment *billing.Payment, repo billing.PaymentAllocationRepository) error {
			existing, err := repo.FindByPayment(ctx, req.CompanyID, req.PaymentID)
			if err != nil {
				return err
			}
			unallocated := billing.UnallocatedBalance(payment, existing, nil)
			if req.Amount.GreaterThan(unallocated) {
				return shared.NewDomainError("EXCEEDS_UNALLOCATED",
					fmt.Sprintf("Allocation %s exceeds the unallocated balance %s",
						req.Amount.StringFixed(2), unallocated.StringFixed(2)))
			}
			return repo.Save(ctx, alloc)
		})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// UpdateAllocation changes an allocation's amount, revalidating against the
// payment's balance excluding the allocation being edited.
func (s *AllocationService) UpdateAllocation(ctx context.Context, companyID, allocationID uuid.UUID, newAmount decimal.Decimal) (*billing.PaymentAllocation, error) {
	alloc, err := s.allocRepo.FindByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if alloc == nil || alloc.CompanyID != companyID {
		return nil, shared.NewDomainError("ALLOCATION_NOT_FOUND", "Payment allocation not found")
	}

	err = s.allocRepo.AllocateWithinBalance(ctx, companyID, alloc.PaymentID,
		func(payment *billing.Payment, repo billing.PaymentAllocationRepository) error {
			existing, err := repo.FindByPayment(ctx, companyID, alloc.PaymentID)
			if err != nil {
				return err
			}
			available := billing.UnallocatedBalance(payment, existing, &alloc.ID)
			if newAmount.GreaterThan(available) {
				return shared.NewDomainError("EXCEEDS_UNALLOCATED",
					fmt.Sprintf("Allocation %s exceeds the available balance %s",
						newAmount.StringFixed(2), available.StringFixed(2)))
			}
			if err := alloc.Reallocate(newAmount); err != nil {
				return err
			}
			return repo.Save(ctx, alloc)
		})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// BulkAllocationLine is one target invoice in a bulk allocation
type BulkAllocationLine struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	TDSAmount *decimal.Decimal
	Notes     string
}

// BulkAllocate splits a payment across several invoices in one shot. The
// whole batch is validated before any row is written: every invoice must
// exist, every amount must be positive and the batch sum must fit inside
// the payment's unallocated balance. All-or-nothing.
func (s *AllocationService) BulkAllocate(ctx context.Context, companyID, paymentID uuid.UUID, lines []BulkAllocationLine) ([]billing.PaymentAllocation, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "Bulk allocation needs at least one line")
	}

	batchSum := decimal.Zero
	invoiceIDs := make([]uuid.UUID, 0, len(lines))
	for i, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT",
				fmt.Sprintf("Line %d: allocated amount must be positive", i))
		}
		batchSum = batchSum.Add(line.Amount)
		invoiceIDs = append(invoiceIDs, line.InvoiceID)
	}

	allExist, err := s.invoiceRepo.ExistAllForCompany(ctx, companyID, invoiceIDs)
	if err != nil {
		return nil, err
	}
	if !allExist {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "One or more target invoices do not exist")
	}

	var created []billing.PaymentAllocation
	err = s.allocRepo.AllocateWithinBalance(ctx, companyID, paymentID,
		func(payment *billing.Payment, repo billing.PaymentAllocationRepository) error {
			existing, err := repo.FindByPayment(ctx, companyID, paymentID)
			if err != nil {
				return err
			}
			unallocated := billing.UnallocatedBalance(payment, existing, nil)
			if batchSum.GreaterThan(unallocated) {
				return shared.NewDomainError("EXCEEDS_UNALLOCATED",
					fmt.Sprintf("Batch total %s exceeds the unallocated balance %s",
						batchSum.StringFixed(2), unallocated.StringFixed(2)))
			}

			for i := range lines {
				line := lines[i]
				invoiceID := line.InvoiceID
				alloc, err := billing.NewPaymentAllocation(companyID, paymentID, &invoiceID,
					line.Amount, payment.Currency, time.Time{}, billing.AllocationTypeInvoiceSettlement)
				if err != nil {
					return err
				}
				if line.TDSAmount != nil {
					if err := alloc.WithTDS(*line.TDSAmount); err != nil {
						return err
					}
				}
				alloc.Notes = line.Notes
				if err := repo.Save(ctx, alloc); err != nil {
					return err
				}
				created = append(created, *alloc)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk allocation completed",
		zap.String("payment_id", paymentID.String()),
		zap.Int("lines", len(created)),
		zap.String("total", batchSum.StringFixed(2)))
	return created, nil
}

// GetUnallocatedAmount returns the payment's remaining allocatable amount
func (s *AllocationService) GetUnallocatedAmount(ctx context.Context, companyID, paymentID uuid.UUID) (decimal.Decimal, error) {
	payment, err := s.requirePayment(ctx, companyID, paymentID)
	if err != nil {
		return decimal.Zero, err
	}
	allocated, err := s.allocRepo.SumByPayment(ctx, companyID, paymentID)
	if err != nil {
		return decimal.Zero, err
	}
	return payment.Amount.Sub(allocated), nil
}

// AllocationDetail is one allocation with its resolved invoice number
type AllocationDetail struct {
	Allocation    billing.PaymentAllocation `json:"allocation"`
	InvoiceNumber string                    `json:"invoice_number,omitempty"`
}

// AllocationSummary is the per-payment allocation report
type AllocationSummary struct {
	PaymentID      uuid.UUID          `json:"payment_id"`
	PaymentAmount  decimal.Decimal    `json:"payment_amount"`
	TotalAllocated decimal.Decimal    `json:"total_allocated"`
	Unallocated    decimal.Decimal    `json:"unallocated"`
	Allocations    []AllocationDetail `json:"allocations"`
}

// GetPaymentAllocationSummary builds the per-payment report with resolved
// invoice numbers and totals.
func (s *AllocationService) GetPaymentAllocationSummary(ctx context.Context, companyID, paymentID uuid.UUID) (*AllocationSummary, error) {
	payment, err := s.requirePayment(ctx, companyID, paymentID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocRepo.FindByPayment(ctx, companyID, paymentID)
	if err != nil {
		return nil, err
	}

	summary := &AllocationSummary{
		PaymentID:     paymentID,
		PaymentAmount: payment.Amount,
		Allocations:   make([]AllocationDetail, 0, len(allocations)),
	}
	for i := range allocations {
		alloc := allocations[i]
		detail := AllocationDetail{Allocation: alloc}
		if alloc.InvoiceID != nil {
			invoice, err := s.invoiceRepo.FindByIDForCompany(ctx, companyID, *alloc.InvoiceID)
			if err == nil && invoice != nil {
				detail.InvoiceNumber = invoice.InvoiceNumber
			}
		}
		summary.TotalAllocated = summary.TotalAllocated.Add(alloc.AllocatedAmount)
		summary.Allocations = append(summary.Allocations, detail)
	}
	summary.Unallocated = payment.Amount.Sub(summary.TotalAllocated)
	return summary, nil
}

// GetInvoicePaymentStatus derives the invoice's settlement state from its
// allocations. Recomputed on every read, never stored.
func (s *AllocationService) GetInvoicePaymentStatus(ctx context.Context, companyID, invoiceID uuid.UUID) (*billing.InvoicePaymentStatus, error) {
	invoice, err := s.invoiceRepo.FindByIDForCompany(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}

	allocations, err := s.allocRepo.FindByInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	status := billing.DeriveInvoicePaymentStatus(invoice, allocations)
	return &status, nil
}

// RemoveAllAllocations deletes every allocation of a payment, used when a
// payment is voided or re-entered. The payment and invoices are untouched;
// callers re-read invoice status afterwards.
func (s *AllocationService) RemoveAllAllocations(ctx context.Context, companyID, paymentID uuid.UUID) error {
	if _, err := s.requirePayment(ctx, companyID, paymentID); err != nil {
		return err
	}
	if err := s.allocRepo.DeleteByPayment(ctx, companyID, paymentID); err != nil {
		return fmt.Errorf("failed to remove allocations: %w", err)
	}
	s.logger.Info("all allocations removed", zap.String("payment_id", paymentID.String()))
	return nil
}

func (s *AllocationService) requirePayment(ctx context.Context, companyID, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForCompany(ctx, companyID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

func (s *AllocationService) requireInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByIDForCompany(ctx, companyID, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	return nil
}
