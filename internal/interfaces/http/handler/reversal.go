package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbanking "github.com/finbooks/backend/internal/application/banking"
)

// ReversalHandler serves reversal detection and pairing endpoints
type ReversalHandler struct {
	BaseHandler
	reversals *appbanking.ReversalService
}

// NewReversalHandler creates a new reversal handler
func NewReversalHandler(reversals *appbanking.ReversalService) *ReversalHandler {
	return &ReversalHandler{reversals: reversals}
}

// Detect runs reversal detection on one transaction
// POST /api/v1/bank-transactions/:id/detect-reversal
func (h *ReversalHandler) Detect(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.reversals.DetectReversal(c.Request.Context(), companyID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, report)
}

// Candidates lists originals this reversal could undo, best match first
// GET /api/v1/bank-transactions/:id/potential-originals
func (h *ReversalHandler) Candidates(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	candidates, err := h.reversals.FindPotentialOriginals(c.Request.Context(), companyID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, candidates)
}

type pairReversalRequest struct {
	ReversalTransactionID string `json:"reversal_transaction_id" binding:"required,uuid"`
	OriginalTransactionID string `json:"original_transaction_id" binding:"required,uuid"`
}

// Pair links a reversal to the original transaction it undoes
// POST /api/v1/reversals/pair
func (h *ReversalHandler) Pair(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req pairReversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	reversalID, err := uuid.Parse(req.ReversalTransactionID)
	if err != nil {
		h.BadRequest(c, "Invalid reversal_transaction_id")
		return
	}
	originalID, err := uuid.Parse(req.OriginalTransactionID)
	if err != nil {
		h.BadRequest(c, "Invalid original_transaction_id")
		return
	}

	if err := h.reversals.PairReversal(c.Request.Context(), companyID, reversalID, originalID, h.userID(c)); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Unpair breaks an existing reversal pairing
// POST /api/v1/reversals/:id/unpair
func (h *ReversalHandler) Unpair(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.reversals.UnpairReversal(c.Request.Context(), companyID, txID, h.userID(c)); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListUnpaired returns flagged reversals that have no paired original yet
// GET /api/v1/reversals/unpaired
func (h *ReversalHandler) ListUnpaired(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var bankAccountID *uuid.UUID
	if raw := c.Query("bank_account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid bank_account_id")
			return
		}
		bankAccountID = &id
	}

	txs, err := h.reversals.ListUnpairedReversals(c.Request.Context(), companyID, bankAccountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, txs)
}
