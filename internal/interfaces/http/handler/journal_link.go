package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbanking "github.com/finbooks/backend/internal/application/banking"
)

// JournalLinkHandler serves journal entry auto-linking endpoints
type JournalLinkHandler struct {
	BaseHandler
	links *appbanking.JournalLinkService
}

// NewJournalLinkHandler creates a new journal link handler
func NewJournalLinkHandler(links *appbanking.JournalLinkService) *JournalLinkHandler {
	return &JournalLinkHandler{links: links}
}

// AutoLink resolves and stores the journal entry behind one reconciled
// transaction
// POST /api/v1/bank-transactions/:id/auto-link
func (h *JournalLinkHandler) AutoLink(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	ref, err := h.links.AutoLink(c.Request.Context(), companyID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, ref)
}

type backfillRequest struct {
	Limit int `json:"limit" binding:"omitempty,min=1,max=1000"`
}

// Backfill links reconciled transactions that predate auto-linking
// POST /api/v1/journal-links/backfill
func (h *JournalLinkHandler) Backfill(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req backfillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}
	result, err := h.links.Backfill(c.Request.Context(), companyID, req.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// ListUnlinked returns reconciled transactions with no journal entry link
// GET /api/v1/journal-links/unlinked
func (h *JournalLinkHandler) ListUnlinked(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	txs, err := h.links.ListUnlinked(c.Request.Context(), companyID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, txs)
}
