package banking

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
)

// AccountService manages company bank accounts
type AccountService struct {
	accountRepo banking.BankAccountRepository
	logger      *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo banking.BankAccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// CreateAccountRequest registers a bank account for a company
type CreateAccountRequest struct {
	CompanyID      uuid.UUID
	AccountName    string
	AccountNumber  string
	BankName       string
	IFSCCode       string
	Currency       valueobject.Currency
	OpeningBalance *decimal.Decimal
}

// CreateAccount validates and persists a bank account. Account numbers are
// unique per company.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*banking.BankAccount, error) {
	exists, err := s.accountRepo.ExistsByAccountNumber(ctx, req.CompanyID, req.AccountNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account number already registered for this company")
	}

	account, err := banking.NewBankAccount(req.CompanyID, req.AccountName, req.AccountNumber, req.BankName, req.Currency)
	if err != nil {
		return nil, err
	}
	account.IFSCCode = req.IFSCCode
	if req.OpeningBalance != nil {
		account.CurrentBalance = *req.OpeningBalance
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("bank account created",
		zap.String("account_id", account.ID.String()),
		zap.String("company_id", req.CompanyID.String()))
	return account, nil
}

// GetAccount fetches one bank account scoped to the company
func (s *AccountService) GetAccount(ctx context.Context, companyID, accountID uuid.UUID) (*banking.BankAccount, error) {
	account, err := s.accountRepo.FindByIDForCompany(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	}
	return account, nil
}

// ListAccounts returns all bank accounts for the company
func (s *AccountService) ListAccounts(ctx context.Context, companyID uuid.UUID) ([]banking.BankAccount, error) {
	return s.accountRepo.FindAllForCompany(ctx, companyID)
}

// LinkLedgerAccount maps the bank account to a chart-of-accounts account
func (s *AccountService) LinkLedgerAccount(ctx context.Context, companyID, accountID, ledgerAccountID uuid.UUID) (*banking.BankAccount, error) {
	account, err := s.GetAccount(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.LinkLedgerAccount(ledgerAccountID); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
