package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appbanking "github.com/finbooks/backend/internal/application/banking"
)

// StatementHandler serves bank reconciliation statement endpoints
type StatementHandler struct {
	BaseHandler
	statements *appbanking.StatementService
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(statements *appbanking.StatementService) *StatementHandler {
	return &StatementHandler{statements: statements}
}

// Generate builds the reconciliation statement for one bank account.
// The optional as_of query parameter defaults to now.
// GET /api/v1/bank-accounts/:id/statement
func (h *StatementHandler) Generate(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	statement, err := h.statements.Generate(c.Request.Context(), companyID, accountID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, statement)
}
