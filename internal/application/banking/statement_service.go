package banking

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StatementService generates bank reconciliation statements
type StatementService struct {
	accountRepo banking.BankAccountRepository
	txRepo      banking.BankTransactionRepository
}

// NewStatementService creates a new StatementService
func NewStatementService(
	accountRepo banking.BankAccountRepository,
	txRepo banking.BankTransactionRepository,
) *StatementService {
	return &StatementService{
		accountRepo: accountRepo,
		txRepo:      txRepo,
	}
}

// Generate builds the BRS for one account as of the given date. A zero asOf
// defaults to now. The statement is a point-in-time snapshot; it is not
// transactionally consistent with concurrent writes.
func (s *StatementService) Generate(ctx context.Context, companyID, bankAccountID uuid.UUID, asOf time.Time) (*banking.ReconciliationStatement, error) {
	account, err := s.accountRepo.FindByIDForCompany(ctx, companyID, bankAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	}

	if asOf.IsZero() {
		asOf = time.Now()
	}

	rows, err := s.txRepo.FindForStatement(ctx, companyID, bankAccountID, asOf)
	if err != nil {
		return nil, err
	}

	txs := make([]*banking.BankTransaction, len(rows))
	for i := range rows {
		txs[i] = &rows[i]
	}
	return banking.BuildReconciliationStatement(account, asOf, txs), nil
}
