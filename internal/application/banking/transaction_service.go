package banking

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImportGuard is the duplicate-suppression gate consulted at the import
// boundary. Seen returns true when the hash was already imported into the
// account; implementations remember hashes they are asked about.
type ImportGuard interface {
	Seen(ctx context.Context, bankAccountID uuid.UUID, hash string) (bool, error)
}

// TransactionService manages the bank transaction store
type TransactionService struct {
	accountRepo banking.BankAccountRepository
	txRepo      banking.BankTransactionRepository
	importGuard ImportGuard
	logger      *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	accountRepo banking.BankAccountRepository,
	txRepo banking.BankTransactionRepository,
	importGuard ImportGuard,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		importGuard: importGuard,
		logger:      logger,
	}
}

// CreateTransactionRequest represents a manual transaction entry
type CreateTransactionRequest struct {
	CompanyID       uuid.UUID
	BankAccountID   uuid.UUID
	TransactionDate time.Time
	ValueDate       *time.Time
	Type            banking.TransactionType
	Amount          decimal.Decimal
	Description     string
	ReferenceNumber string
	ChequeNumber    string
	Category        string
}

// CreateTransaction validates the bank account and persists a manual entry
func (s *TransactionService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*banking.BankTransaction, error) {
	account, err := s.accountRepo.FindByIDForCompany(ctx, req.CompanyID, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	}

	tx, err := banking.NewBankTransaction(req.CompanyID, req.BankAccountID,
		req.TransactionDate, req.Type, req.Amount, req.Description)
	if err != nil {
		return nil, err
	}
	tx.ValueDate = req.ValueDate
	tx.ReferenceNumber = req.ReferenceNumber
	tx.ChequeNumber = req.ChequeNumber
	tx.Category = req.Category

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	return tx, nil
}

// ImportRow is one statement row supplied by the import pipeline
type ImportRow struct {
	TransactionDate time.Time
	ValueDate       *time.Time
	Type            banking.TransactionType
	Amount          decimal.Decimal
	Description     string
	ReferenceNumber string
	ChequeNumber    string
	BalanceAfter    *decimal.Decimal
}

// ImportBatchRequest represents a statement import
type ImportBatchRequest struct {
	CompanyID     uuid.UUID
	BankAccountID uuid.UUID
	ImportSource  string
	Rows          []ImportRow
}

// ImportRowResult describes the fate of one imported row
type ImportRowResult struct {
	Index         int        `json:"index"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	Duplicate     bool       `json:"duplicate"`
	Error         string     `json:"error,omitempty"`
}

// ImportBatchResult summarizes an import
type ImportBatchResult struct {
	BatchID        uuid.UUID         `json:"batch_id"`
	ImportedCount  int               `json:"imported_count"`
	DuplicateCount int               `json:"duplicate_count"`
	FailedCount    int               `json:"failed_count"`
	Rows           []ImportRowResult `json:"rows"`
}

// ImportBatch ingests statement rows. Duplicates are flagged via the import
// guard rather than rejected; flagged rows are still stored so accountants
// can inspect and delete them. Row failures are isolated per row.
func (s *TransactionService) ImportBatch(ctx context.Context, req ImportBatchRequest) (*ImportBatchResult, error) {
	account, err := s.accountRepo.FindByIDForCompany(ctx, req.CompanyID, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	}
	if len(req.Rows) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "Import batch contains no rows")
	}

	batchID := uuid.New()
	result := &ImportBatchResult{
		BatchID: batchID,
		Rows:    make([]ImportRowResult, 0, len(req.Rows)),
	}
	batch := make([]*banking.BankTransaction, 0, len(req.Rows))

	for i, row := range req.Rows {
		rowResult := ImportRowResult{Index: i}

		tx, err := banking.NewBankTransaction(req.CompanyID, req.BankAccountID,
			row.TransactionDate, row.Type, row.Amount, row.Description)
		if err != nil {
			rowResult.Error = err.Error()
			result.FailedCount++
			result.Rows = append(result.Rows, rowResult)
			continue
		}
		tx.ValueDate = row.ValueDate
		tx.ReferenceNumber = row.ReferenceNumber
		tx.ChequeNumber = row.ChequeNumber
		tx.BalanceAfter = row.BalanceAfter
		tx.ImportSource = req.ImportSource
		tx.ImportBatchID = &batchID

		// The guard remembers the hash as soon as it is consulted, before
		// SaveBatch commits. If the save fails and the batch is retried, the
		// retried rows arrive flagged as duplicates. That is tolerated:
		// flagged rows are still stored, so a retry loses no data and the
		// flags are reviewable alongside genuine duplicates.
		seen, err := s.importGuard.Seen(ctx, req.BankAccountID, tx.TransactionHash)
		if err != nil {
			// Guard unavailability degrades to importing without dedup
			s.logger.Warn("import guard unavailable, skipping dedup check",
				zap.String("bank_account_id", req.BankAccountID.String()),
				zap.Error(err))
		} else if seen {
			rowResult.Duplicate = true
			result.DuplicateCount++
		}

		batch = append(batch, tx)
		txID := tx.ID
		rowResult.TransactionID = &txID
		result.ImportedCount++
		result.Rows = append(result.Rows, rowResult)
	}

	if len(batch) > 0 {
		if err := s.txRepo.SaveBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to save import batch: %w", err)
		}
	}

	s.logger.Info("statement import completed",
		zap.String("batch_id", batchID.String()),
		zap.Int("imported", result.ImportedCount),
		zap.Int("duplicates", result.DuplicateCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

// UpdateTransactionRequest carries a partial update
type UpdateTransactionRequest struct {
	CompanyID       uuid.UUID
	TransactionID   uuid.UUID
	TransactionDate *time.Time
	ValueDate       *time.Time
	Type            *banking.TransactionType
	Amount          *decimal.Decimal
	Description     *string
	ReferenceNumber *string
	ChequeNumber    *string
	BalanceAfter    *decimal.Decimal
	Category        *string
}

// UpdateTransaction applies a partial update, rehashing when needed
func (s *TransactionService) UpdateTransaction(ctx context.Context, req UpdateTransactionRequest) (*banking.BankTransaction, error) {
	tx, err := s.findTransaction(ctx, req.CompanyID, req.TransactionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Amend(banking.Amendment{
		TransactionDate: req.TransactionDate,
		ValueDate:       req.ValueDate,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		ChequeNumber:    req.ChequeNumber,
		Type:            req.Type,
		Amount:          req.Amount,
		BalanceAfter:    req.BalanceAfter,
		Category:        req.Category,
	}); err != nil {
		return nil, err
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	return tx, nil
}

// DeleteTransaction hard deletes an unreconciled, unpaired transaction
func (s *TransactionService) DeleteTransaction(ctx context.Context, companyID, transactionID uuid.UUID) error {
	tx, err := s.findTransaction(ctx, companyID, transactionID)
	if err != nil {
		return err
	}
	if err := tx.CanDelete(); err != nil {
		return err
	}
	return s.txRepo.Delete(ctx, transactionID)
}

// GetTransaction loads one transaction
func (s *TransactionService) GetTransaction(ctx context.Context, companyID, transactionID uuid.UUID) (*banking.BankTransaction, error) {
	return s.findTransaction(ctx, companyID, transactionID)
}

// ListTransactions queries transactions with pagination
func (s *TransactionService) ListTransactions(ctx context.Context, companyID uuid.UUID, filter banking.TransactionFilter) (*shared.Paginated[banking.BankTransaction], error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "From date must not be after to date")
	}
	filter.Normalize()

	items, err := s.txRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.txRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListDuplicates returns all transactions on an account sharing a hash with
// the given transaction, so suspected duplicates can be reviewed.
func (s *TransactionService) ListDuplicates(ctx context.Context, companyID, transactionID uuid.UUID) ([]banking.BankTransaction, error) {
	tx, err := s.findTransaction(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	return s.txRepo.FindByHash(ctx, companyID, tx.BankAccountID, tx.TransactionHash)
}

// GetAccountSummary computes the per-account dashboard aggregate, optionally
// restricted to a transaction date window. Nil bounds mean unbounded.
func (s *TransactionService) GetAccountSummary(ctx context.Context, companyID, bankAccountID uuid.UUID, from, to *time.Time) (*banking.ReconciliationSummary, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "From date must not be after to date")
	}

	account, err := s.accountRepo.FindByIDForCompany(ctx, companyID, bankAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	}
	return s.txRepo.SummaryForAccount(ctx, companyID, bankAccountID, from, to)
}

func (s *TransactionService) findTransaction(ctx context.Context, companyID, transactionID uuid.UUID) (*banking.BankTransaction, error) {
	tx, err := s.txRepo.FindByIDForCompany(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewDomainError("TRANSACTION_NOT_FOUND", "Bank transaction not found")
	}
	return tx, nil
}
