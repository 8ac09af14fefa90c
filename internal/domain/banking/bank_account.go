package banking

import (
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount represents a company bank account. Balance mutation happens
// outside this core; reconciliation only reads the stored balance and the
// optional chart-of-accounts mapping.
type BankAccount struct {
	shared.CompanyAggregateRoot
	AccountName           string               `json:"account_name"`
	AccountNumber         string               `json:"account_number"`
	BankName              string               `json:"bank_name"`
	IFSCCode              string               `json:"ifsc_code"`
	Currency              valueobject.Currency `json:"currency"`
	CurrentBalance        decimal.Decimal      `json:"current_balance"`
	LinkedLedgerAccountID *uuid.UUID           `json:"linked_ledger_account_id,omitempty"`
	IsActive              bool                 `json:"is_active"`
}

// NewBankAccount creates a new bank account
func NewBankAccount(
	companyID uuid.UUID,
	accountName string,
	accountNumber string,
	bankName string,
	currency valueobject.Currency,
) (*BankAccount, error) {
	if accountName == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency code")
	}

	return &BankAccount{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		AccountName:          accountName,
		AccountNumber:        accountNumber,
		BankName:             bankName,
		Currency:             currency,
		CurrentBalance:       decimal.Zero,
		IsActive:             true,
	}, nil
}

// LinkLedgerAccount maps the bank account to a chart-of-accounts account.
// Required before journal auto-linking can resolve posting lines.
func (a *BankAccount) LinkLedgerAccount(ledgerAccountID uuid.UUID) error {
	if ledgerAccountID == uuid.Nil {
		return shared.NewDomainError("INVALID_LEDGER_ACCOUNT", "Ledger account ID cannot be empty")
	}
	a.LinkedLedgerAccountID = &ledgerAccountID
	a.Touch()
	a.IncrementVersion()
	return nil
}

// IsLedgerIntegrated returns true when the account maps to a ledger account
func (a *BankAccount) IsLedgerIntegrated() bool {
	return a.LinkedLedgerAccountID != nil && *a.LinkedLedgerAccountID != uuid.Nil
}
