package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/finbooks/backend/internal/application/billing"
	"github.com/finbooks/backend/internal/domain/billing"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
)

// AllocationHandler serves payment allocation endpoints
type AllocationHandler struct {
	BaseHandler
	allocations *appbilling.AllocationService
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(allocations *appbilling.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations}
}

type createAllocationRequest struct {
	InvoiceID      *string          `json:"invoice_id" binding:"omitempty,uuid"`
	Amount         decimal.Decimal  `json:"amount" binding:"required"`
	Currency       string           `json:"currency"`
	AllocationDate time.Time        `json:"allocation_date" binding:"required" time_format:"2006-01-02"`
	AllocationType string           `json:"allocation_type" binding:"required,oneof=invoice_settlement advance on_account"`
	TDSAllocated   *decimal.Decimal `json:"tds_allocated"`
	Notes          string           `json:"notes"`
}

// Create allocates part of a payment to an invoice, as advance or on account
// POST /api/v1/payments/:id/allocations
func (h *AllocationHandler) Create(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req createAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var invoiceID *uuid.UUID
	if req.InvoiceID != nil {
		id, err := uuid.Parse(*req.InvoiceID)
		if err != nil {
			h.BadRequest(c, "Invalid invoice_id")
			return
		}
		invoiceID = &id
	}

	alloc, err := h.allocations.CreateAllocation(c.Request.Context(), appbilling.CreateAllocationRequest{
		CompanyID:      companyID,
		PaymentID:      paymentID,
		InvoiceID:      invoiceID,
		Amount:         req.Amount,
		Currency:       valueobject.Currency(req.Currency),
		AllocationDate: req.AllocationDate,
		AllocationType: billing.AllocationType(req.AllocationType),
		TDSAllocated:   req.TDSAllocated,
		Notes:          req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, alloc)
}

type updateAllocationRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Update changes the amount of an existing allocation
// PUT /api/v1/allocations/:id
func (h *AllocationHandler) Update(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	allocationID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	alloc, err := h.allocations.UpdateAllocation(c.Request.Context(), companyID, allocationID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, alloc)
}

type bulkAllocationLineRequest struct {
	InvoiceID string           `json:"invoice_id" binding:"required,uuid"`
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	TDSAmount *decimal.Decimal `json:"tds_amount"`
	Notes     string           `json:"notes"`
}

type bulkAllocateRequest struct {
	Lines []bulkAllocationLineRequest `json:"lines" binding:"required,min=1"`
}

// BulkAllocate splits a payment across several invoices in one shot
// POST /api/v1/payments/:id/allocations/bulk
func (h *AllocationHandler) BulkAllocate(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req bulkAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lines := make([]appbilling.BulkAllocationLine, len(req.Lines))
	for i, line := range req.Lines {
		invoiceID, err := uuid.Parse(line.InvoiceID)
		if err != nil {
			h.BadRequest(c, "Invalid invoice_id in lines")
			return
		}
		lines[i] = appbilling.BulkAllocationLine{
			InvoiceID: invoiceID,
			Amount:    line.Amount,
			TDSAmount: line.TDSAmount,
			Notes:     line.Notes,
		}
	}

	allocs, err := h.allocations.BulkAllocate(c.Request.Context(), companyID, paymentID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, allocs)
}

// RemoveAll deletes every allocation of a payment
// DELETE /api/v1/payments/:id/allocations
func (h *AllocationHandler) RemoveAll(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.allocations.RemoveAllAllocations(c.Request.Context(), companyID, paymentID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Unallocated returns the payment amount not yet allocated
// GET /api/v1/payments/:id/unallocated
func (h *AllocationHandler) Unallocated(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	amount, err := h.allocations.GetUnallocatedAmount(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"payment_id": paymentID, "unallocated_amount": amount})
}

// Summary returns the allocation breakdown of one payment
// GET /api/v1/payments/:id/allocations
func (h *AllocationHandler) Summary(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	summary, err := h.allocations.GetPaymentAllocationSummary(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, summary)
}

// InvoiceStatus derives the payment status of one invoice
// GET /api/v1/invoices/:id/payment-status
func (h *AllocationHandler) InvoiceStatus(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	status, err := h.allocations.GetInvoicePaymentStatus(c.Request.Context(), companyID, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, status)
}
