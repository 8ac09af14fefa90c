package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbanking "github.com/finbooks/backend/internal/application/banking"
	"github.com/finbooks/backend/internal/domain/banking"
)

// ReconciliationHandler serves reconciliation endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconciliation *appbanking.ReconciliationService
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(reconciliation *appbanking.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliation: reconciliation}
}

type reconcileRequest struct {
	SourceKind string `json:"source_kind" binding:"required"`
	SourceID   string `json:"source_id" binding:"required,uuid"`
	Notes      string `json:"notes"`
}

// Reconcile links a transaction to an internal source document
// POST /api/v1/bank-transactions/:id/reconcile
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		h.BadRequest(c, "Invalid source_id")
		return
	}

	tx, err := h.reconciliation.Reconcile(c.Request.Context(), appbanking.ReconcileRequest{
		CompanyID:     companyID,
		TransactionID: txID,
		SourceKind:    banking.SourceKind(req.SourceKind),
		SourceID:      sourceID,
		ReconciledBy:  h.userID(c),
		Notes:         req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, tx)
}

// Unreconcile reverts a reconciliation
// POST /api/v1/bank-transactions/:id/unreconcile
func (h *ReconciliationHandler) Unreconcile(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	tx, err := h.reconciliation.Unreconcile(c.Request.Context(), companyID, txID, h.userID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, tx)
}

// ListUnreconciled returns unreconciled transactions, optionally scoped to
// one bank account
// GET /api/v1/reconciliation/unreconciled
func (h *ReconciliationHandler) ListUnreconciled(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txs, err := h.reconciliation.ListUnreconciled(c.Request.Context(), companyID, query.BankAccountID, query.toFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, txs)
}

// FindBySource returns transactions reconciled against one source document
// GET /api/v1/reconciliation/by-source/:kind/:source_id
func (h *ReconciliationHandler) FindBySource(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	sourceID, ok := h.pathUUID(c, "source_id")
	if !ok {
		return
	}
	txs, err := h.reconciliation.FindBySource(c.Request.Context(), companyID,
		banking.SourceKind(c.Param("kind")), sourceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, txs)
}

// AuditTrail returns the match audit log for one transaction, newest first
// GET /api/v1/bank-transactions/:id/audit-trail
func (h *ReconciliationHandler) AuditTrail(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	entries, err := h.reconciliation.AuditTrail(c.Request.Context(), companyID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entries)
}
