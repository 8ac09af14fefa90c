package banking

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	// FindByID finds a bank account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)

	// FindByIDForCompany finds a bank account by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*BankAccount, error)

	// FindAllForCompany finds all bank accounts for a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]BankAccount, error)

	// Save creates or updates a bank account
	Save(ctx context.Context, account *BankAccount) error

	// ExistsByAccountNumber checks if an account number exists for a company
	ExistsByAccountNumber(ctx context.Context, companyID uuid.UUID, accountNumber string) (bool, error)
}

// TransactionFilter defines filtering options for transaction queries
type TransactionFilter struct {
	shared.Filter
	BankAccountID *uuid.UUID       // Filter by bank account
	Type          *TransactionType // Filter by direction
	FromDate      *time.Time       // Transaction date range start
	ToDate        *time.Time       // Transaction date range end
	IsReconciled  *bool            // Filter by reconciliation state
	IsReversal    *bool            // Filter by reversal flag
	IsPaired      *bool            // Filter by pairing state
	SourceKind    *SourceKind      // Filter by reconciled source kind
	ImportBatchID *uuid.UUID       // Filter by import batch
	MinAmount     *decimal.Decimal // Filter by minimum amount
	MaxAmount     *decimal.Decimal // Filter by maximum amount
}

// CandidateQuery describes the search for originals a reversal could undo
type CandidateQuery struct {
	BankAccountID uuid.UUID
	Amount        decimal.Decimal
	FromDate      time.Time
	ToDate        time.Time
}

// BankTransactionRepository defines the interface for bank transaction persistence
type BankTransactionRepository interface {
	// FindByID finds a bank transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BankTransaction, error)

	// FindByIDForCompany finds a transaction by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*BankTransaction, error)

	// FindAllForCompany finds transactions for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter TransactionFilter) ([]BankTransaction, error)

	// CountForCompany counts transactions for a company with filtering
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter TransactionFilter) (int64, error)

	// FindByHash finds transactions sharing a duplicate-suppression hash on
	// one bank account. More than one row means duplicates were imported.
	FindByHash(ctx context.Context, companyID, bankAccountID uuid.UUID, hash string) ([]BankTransaction, error)

	// FindBySource finds transactions reconciled against a source document
	FindBySource(ctx context.Context, companyID uuid.UUID, source SourceDocumentRef) ([]BankTransaction, error)

	// FindForStatement loads all transactions of an account dated on or
	// before the cut-off, for reconciliation statement generation.
	FindForStatement(ctx context.Context, companyID, bankAccountID uuid.UUID, asOf time.Time) ([]BankTransaction, error)

	// FindCandidateOriginals finds unpaired debits matching the query's
	// exact amount inside its date window, newest first.
	FindCandidateOriginals(ctx context.Context, companyID uuid.UUID, query CandidateQuery) ([]BankTransaction, error)

	// FindUnlinkedReconciled finds reconciled transactions that have no
	// journal entry link yet, oldest first. Feed for the backfill job.
	FindUnlinkedReconciled(ctx context.Context, companyID uuid.UUID, limit int) ([]BankTransaction, error)

	// Save creates or updates a bank transaction
	Save(ctx context.Context, tx *BankTransaction) error

	// SaveBatch persists a set of imported transactions atomically
	SaveBatch(ctx context.Context, txs []*BankTransaction) error

	// Delete hard deletes a transaction. Callers check CanDelete first.
	Delete(ctx context.Context, id uuid.UUID) error

	// PairTransactions records the symmetric pairing of both rows in one
	// database transaction. It fails with ErrAlreadyPaired when either row
	// was paired concurrently since it was read.
	PairTransactions(ctx context.Context, reversal, original *BankTransaction) error

	// UnpairTransactions clears the pairing of both rows in one database
	// transaction.
	UnpairTransactions(ctx context.Context, first, second *BankTransaction) error

	// SummaryForAccount computes the dashboard aggregate for one account.
	// Nil window bounds mean unbounded; set bounds restrict the aggregate
	// to transactions dated inside the window.
	SummaryForAccount(ctx context.Context, companyID, bankAccountID uuid.UUID, from, to *time.Time) (*ReconciliationSummary, error)
}
