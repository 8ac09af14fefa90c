package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbanking "github.com/finbooks/backend/internal/application/banking"
	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
)

// BankTransactionHandler serves bank transaction endpoints
type BankTransactionHandler struct {
	BaseHandler
	transactions *appbanking.TransactionService
}

// NewBankTransactionHandler creates a new bank transaction handler
func NewBankTransactionHandler(transactions *appbanking.TransactionService) *BankTransactionHandler {
	return &BankTransactionHandler{transactions: transactions}
}

type createTransactionRequest struct {
	BankAccountID   string          `json:"bank_account_id" binding:"required,uuid"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required" time_format:"2006-01-02"`
	ValueDate       *time.Time      `json:"value_date" time_format:"2006-01-02"`
	Type            string          `json:"type" binding:"required,oneof=credit debit"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
	ChequeNumber    string          `json:"cheque_number"`
	Category        string          `json:"category"`
}

// Create records a manual bank transaction
// POST /api/v1/bank-transactions
func (h *BankTransactionHandler) Create(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	bankAccountID, err := uuid.Parse(req.BankAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid bank_account_id")
		return
	}

	tx, err := h.transactions.CreateTransaction(c.Request.Context(), appbanking.CreateTransactionRequest{
		CompanyID:       companyID,
		BankAccountID:   bankAccountID,
		TransactionDate: req.TransactionDate,
		ValueDate:       req.ValueDate,
		Type:            banking.TransactionType(req.Type),
		Amount:          req.Amount,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		ChequeNumber:    req.ChequeNumber,
		Category:        req.Category,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, tx)
}

type importRowRequest struct {
	TransactionDate time.Time        `json:"transaction_date" binding:"required" time_format:"2006-01-02"`
	ValueDate       *time.Time       `json:"value_date" time_format:"2006-01-02"`
	Type            string           `json:"type" binding:"required,oneof=credit debit"`
	Amount          decimal.Decimal  `json:"amount" binding:"required"`
	Description     string           `json:"description" binding:"required"`
	ReferenceNumber string           `json:"reference_number"`
	ChequeNumber    string           `json:"cheque_number"`
	BalanceAfter    *decimal.Decimal `json:"balance_after"`
}

type importBatchRequest struct {
	BankAccountID string             `json:"bank_account_id" binding:"required,uuid"`
	ImportSource  string             `json:"import_source"`
	Rows          []importRowRequest `json:"rows" binding:"required"`
}

// Import ingests a bank statement batch, flagging duplicate rows
// POST /api/v1/bank-transactions/import
func (h *BankTransactionHandler) Import(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req importBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	bankAccountID, err := uuid.Parse(req.BankAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid bank_account_id")
		return
	}

	rows := make([]appbanking.ImportRow, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = appbanking.ImportRow{
			TransactionDate: row.TransactionDate,
			ValueDate:       row.ValueDate,
			Type:            banking.TransactionType(row.Type),
			Amount:          row.Amount,
			Description:     row.Description,
			ReferenceNumber: row.ReferenceNumber,
			ChequeNumber:    row.ChequeNumber,
			BalanceAfter:    row.BalanceAfter,
		}
	}

	result, err := h.transactions.ImportBatch(c.Request.Context(), appbanking.ImportBatchRequest{
		CompanyID:     companyID,
		BankAccountID: bankAccountID,
		ImportSource:  req.ImportSource,
		Rows:          rows,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

type listTransactionsQuery struct {
	dto.ListRequest
	BankAccountID *uuid.UUID       `form:"bank_account_id"`
	Type          *string          `form:"type" binding:"omitempty,oneof=credit debit"`
	FromDate      *time.Time       `form:"from_date" time_format:"2006-01-02"`
	ToDate        *time.Time       `form:"to_date" time_format:"2006-01-02"`
	IsReconciled  *bool            `form:"is_reconciled"`
	IsReversal    *bool            `form:"is_reversal"`
	IsPaired      *bool            `form:"is_paired"`
	SourceKind    *string          `form:"source_kind"`
	ImportBatchID *uuid.UUID       `form:"import_batch_id"`
	MinAmount     *decimal.Decimal `form:"min_amount"`
	MaxAmount     *decimal.Decimal `form:"max_amount"`
}

func (q listTransactionsQuery) toFilter() banking.TransactionFilter {
	filter := banking.TransactionFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
			Search:   q.Search,
		},
		BankAccountID: q.BankAccountID,
		FromDate:      q.FromDate,
		ToDate:        q.ToDate,
		IsReconciled:  q.IsReconciled,
		IsReversal:    q.IsReversal,
		IsPaired:      q.IsPaired,
		ImportBatchID: q.ImportBatchID,
		MinAmount:     q.MinAmount,
		MaxAmount:     q.MaxAmount,
	}
	if q.Type != nil {
		t := banking.TransactionType(*q.Type)
		filter.Type = &t
	}
	if q.SourceKind != nil {
		k := banking.SourceKind(*q.SourceKind)
		filter.SourceKind = &k
	}
	return filter
}

// List returns transactions for the company, filtered and paginated
// GET /api/v1/bank-transactions
func (h *BankTransactionHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.transactions.ListTransactions(c.Request.Context(), companyID, query.toFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one transaction
// GET /api/v1/bank-transactions/:id
func (h *BankTransactionHandler) Get(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	tx, err := h.transactions.GetTransaction(c.Request.Context(), companyID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, tx)
}

type updateTransactionRequest struct {
	TransactionDate *time.Time       `json:"transaction_date" time_format:"2006-01-02"`
	ValueDate       *time.Time       `json:"value_date" time_format:"2006-01-02"`
	Type            *string          `json:"type" binding:"omitempty,oneof=credit debit"`
	Amount          *decimal.Decimal `json:"amount"`
	Description     *string          `json:"description"`
	ReferenceNumber *string          `json:"reference_number"`
	ChequeNumber    *string          `json:"cheque_number"`
	BalanceAfter    *decimal.Decimal `json:"balance_after"`
	Category        *string          `json:"category"`
}

// Update applies a partial amendment to an unreconciled, unpaired transaction
// PATCH /api/v1/bank-transactions/:id
func (h *BankTransactionHandler) Update(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	update := appbanking.UpdateTransactionRequest{
		CompanyID:       companyID,
		TransactionID:   txID,
		TransactionDate: req.TransactionDate,
		ValueDate:       req.ValueDate,
		Amount:          req.Amount,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		ChequeNumber:    req.ChequeNumber,
		BalanceAfter:    req.BalanceAfter,
		Category:        req.Category,
	}
	if req.Type != nil {
		t := banking.TransactionType(*req.Type)
		update.Type = &t
	}

	tx, err := h.transactions.UpdateTransaction(c.Request.Context(), update)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, tx)
}

// Delete removes an unreconciled, unpaired transaction
// DELETE /api/v1/bank-transactions/:id
func (h *BankTransactionHandler) Delete(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.transactions.DeleteTransaction(c.Request.Context(), companyID, txID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Duplicates lists other transactions sharing this transaction's hash
// GET /api/v1/bank-transactions/:id/duplicates
func (h *BankTransactionHandler) Duplicates(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	txID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	duplicates, err := h.transactions.ListDuplicates(c.Request.Context(), companyID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, duplicates)
}

type accountSummaryQuery struct {
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// AccountSummary returns reconciliation counters for one bank account,
// optionally restricted to a transaction date window
// GET /api/v1/bank-accounts/:id/summary
func (h *BankTransactionHandler) AccountSummary(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var query accountSummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	summary, err := h.transactions.GetAccountSummary(c.Request.Context(), companyID, accountID, query.FromDate, query.ToDate)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, summary)
}
