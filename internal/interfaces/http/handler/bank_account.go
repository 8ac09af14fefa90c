package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbanking "github.com/finbooks/backend/internal/application/banking"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
)

// BankAccountHandler serves bank account endpoints
type BankAccountHandler struct {
	BaseHandler
	accounts *appbanking.AccountService
}

// NewBankAccountHandler creates a new bank account handler
func NewBankAccountHandler(accounts *appbanking.AccountService) *BankAccountHandler {
	return &BankAccountHandler{accounts: accounts}
}

type createBankAccountRequest struct {
	AccountName    string           `json:"account_name" binding:"required"`
	AccountNumber  string           `json:"account_number" binding:"required"`
	BankName       string           `json:"bank_name"`
	IFSCCode       string           `json:"ifsc_code" binding:"omitempty,ifsc"`
	Currency       string           `json:"currency"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
}

// Create registers a bank account
// POST /api/v1/bank-accounts
func (h *BankAccountHandler) Create(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req createBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), appbanking.CreateAccountRequest{
		CompanyID:      companyID,
		AccountName:    req.AccountName,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
		IFSCCode:       req.IFSCCode,
		Currency:       valueobject.Currency(req.Currency),
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, account)
}

// List returns all bank accounts for the company
// GET /api/v1/bank-accounts
func (h *BankAccountHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	accounts, err := h.accounts.ListAccounts(c.Request.Context(), companyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, accounts)
}

// Get returns one bank account
// GET /api/v1/bank-accounts/:id
func (h *BankAccountHandler) Get(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	account, err := h.accounts.GetAccount(c.Request.Context(), companyID, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, account)
}

type linkLedgerAccountRequest struct {
	LedgerAccountID string `json:"ledger_account_id" binding:"required,uuid"`
}

// LinkLedgerAccount maps the bank account to a chart-of-accounts account
// PUT /api/v1/bank-accounts/:id/ledger-account
func (h *BankAccountHandler) LinkLedgerAccount(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req linkLedgerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	ledgerAccountID, err := uuid.Parse(req.LedgerAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid ledger_account_id")
		return
	}

	account, err := h.accounts.LinkLedgerAccount(c.Request.Context(), companyID, accountID, ledgerAccountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, account)
}
