package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBankTransactionRepository implements banking.BankTransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// FindByID finds a bank transaction by ID
func (r *GormBankTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankTransaction, error) {
	var model models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a transaction by ID within a company
func (r *GormBankTransactionRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*banking.BankTransaction, error) {
	var model models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// applyFilter translates the domain filter into WHERE conditions
func (r *GormBankTransactionRepository) applyFilter(query *gorm.DB, filter banking.TransactionFilter) *gorm.DB {
	if filter.BankAccountID != nil {
		query = query.Where("bank_account_id = ?", *filter.BankAccountID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	if filter.IsReconciled != nil {
		query = query.Where("is_reconciled = ?", *filter.IsReconciled)
	}
	if filter.IsReversal != nil {
		query = query.Where("is_reversal_transaction = ?", *filter.IsReversal)
	}
	if filter.IsPaired != nil {
		if *filter.IsPaired {
			query = query.Where("paired_transaction_id IS NOT NULL")
		} else {
			query = query.Where("paired_transaction_id IS NULL")
		}
	}
	if filter.SourceKind != nil {
		query = query.Where("reconciled_source_kind = ?", *filter.SourceKind)
	}
	if filter.ImportBatchID != nil {
		query = query.Where("import_batch_id = ?", *filter.ImportBatchID)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ? OR reference_number ILIKE ?", pattern, pattern)
	}
	return query
}

// FindAllForCompany finds transactions of a company with filtering and pagination
func (r *GormBankTransactionRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter banking.TransactionFilter) ([]banking.BankTransaction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BankTransactionModel{}).
		Where("company_id = ?", companyID)
	query = r.applyFilter(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(transactionOrderClause(filter.OrderBy, filter.OrderDir))

	var txModels []models.BankTransactionModel
	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// CountForCompany counts transactions of a company with filtering
func (r *GormBankTransactionRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter banking.TransactionFilter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BankTransactionModel{}).
		Where("company_id = ?", companyID)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// FindByHash finds transactions of one account sharing a duplicate-suppression hash
func (r *GormBankTransactionRepository) FindByHash(ctx context.Context, companyID, bankAccountID uuid.UUID, hash string) ([]banking.BankTransaction, error) {
	var txModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND bank_account_id = ? AND transaction_hash = ?", companyID, bankAccountID, hash).
		Order("created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindBySource finds transactions reconciled against a source document
func (r *GormBankTransactionRepository) FindBySource(ctx context.Context, companyID uuid.UUID, source banking.SourceDocumentRef) ([]banking.BankTransaction, error) {
	var txModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND reconciled_source_kind = ? AND reconciled_source_id = ?",
			companyID, source.Kind, source.ID).
		Order("transaction_date DESC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindForStatement loads all transactions of an account dated on or before the cut-off
func (r *GormBankTransactionRepository) FindForStatement(ctx context.Context, companyID, bankAccountID uuid.UUID, asOf time.Time) ([]banking.BankTransaction, error) {
	var txModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND bank_account_id = ? AND transaction_date <= ?", companyID, bankAccountID, asOf).
		Order("transaction_date ASC, created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindCandidateOriginals finds unpaired debits matching the exact amount
// inside the date window, newest first
func (r *GormBankTransactionRepository) FindCandidateOriginals(ctx context.Context, companyID uuid.UUID, query banking.CandidateQuery) ([]banking.BankTransaction, error) {
	var txModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND bank_account_id = ?", companyID, query.BankAccountID).
		Where("type = ?", banking.TransactionTypeDebit).
		Where("paired_transaction_id IS NULL").
		Where("amount = ?", query.Amount).
		Where("transaction_date >= ? AND transaction_date <= ?", query.FromDate, query.ToDate).
		Order("transaction_date DESC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindUnlinkedReconciled finds reconciled transactions without a journal link, oldest first
func (r *GormBankTransactionRepository) FindUnlinkedReconciled(ctx context.Context, companyID uuid.UUID, limit int) ([]banking.BankTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ? AND is_reconciled = ? AND journal_entry_id IS NULL", companyID, true).
		Order("reconciled_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var txModels []models.BankTransactionModel
	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// Save creates or updates a bank transaction
func (r *GormBankTransactionRepository) Save(ctx context.Context, tx *banking.BankTransaction) error {
	model := models.BankTransactionModelFromDomain(tx)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// SaveBatch persists a set of imported transactions atomically
func (r *GormBankTransactionRepository) SaveBatch(ctx context.Context, txs []*banking.BankTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	txModels := make([]models.BankTransactionModel, len(txs))
	for i, tx := range txs {
		txModels[i] = *models.BankTransactionModelFromDomain(tx)
	}
	return r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		return dbTx.CreateInBatches(txModels, 200).Error
	})
}

// Delete hard deletes a transaction
func (r *GormBankTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.BankTransactionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// PairTransactions records the symmetric pairing of both rows in one
// database transaction. The unpaired precondition sits in the WHERE clause,
// so a row paired concurrently since it was read makes the update miss and
// the whole pairing fails with ErrAlreadyPaired.
func (r *GormBankTransactionRepository) PairTransactions(ctx context.Context, reversal, original *banking.BankTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		if err := r.pairOne(dbTx, reversal, original.ID, true); err != nil {
			return err
		}
		return r.pairOne(dbTx, original, reversal.ID, false)
	})
}

func (r *GormBankTransactionRepository) pairOne(dbTx *gorm.DB, tx *banking.BankTransaction, counterpartID uuid.UUID, markReversal bool) error {
	updates := map[string]any{
		"paired_transaction_id": counterpartID,
		"version":               tx.Version,
		"updated_at":            tx.UpdatedAt,
	}
	if markReversal {
		updates["is_reversal_transaction"] = true
	}

	result := dbTx.Model(&models.BankTransactionModel{}).
		Where("id = ? AND paired_transaction_id IS NULL", tx.ID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyPaired
	}
	return nil
}

// UnpairTransactions clears the pairing of both rows in one database transaction
func (r *GormBankTransactionRepository) UnpairTransactions(ctx context.Context, first, second *banking.BankTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		for _, tx := range []*banking.BankTransaction{first, second} {
			result := dbTx.Model(&models.BankTransactionModel{}).
				Where("id = ?", tx.ID).
				Updates(map[string]any{
					"paired_transaction_id": nil,
					"version":               tx.Version,
					"updated_at":            tx.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}
		return nil
	})
}

// transactionSummaryRow is the scan target for the summary aggregate query
type transactionSummaryRow struct {
	TotalTransactions int64
	ReconciledCount   int64
	CreditTotal       decimal.Decimal
	DebitTotal        decimal.Decimal
	UnreconciledValue decimal.Decimal
	ReversalCount     int64
	UnpairedReversals int64
}

// SummaryForAccount computes the dashboard aggregate for one account in a
// single query, optionally restricted to a transaction date window.
func (r *GormBankTransactionRepository) SummaryForAccount(ctx context.Context, companyID, bankAccountID uuid.UUID, from, to *time.Time) (*banking.ReconciliationSummary, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BankTransactionModel{}).
		Select(`
			COUNT(*) AS total_transactions,
			COUNT(*) FILTER (WHERE is_reconciled) AS reconciled_count,
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0) AS credit_total,
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0) AS debit_total,
			COALESCE(SUM(amount) FILTER (WHERE NOT is_reconciled), 0) AS unreconciled_value,
			COUNT(*) FILTER (WHERE is_reversal_transaction) AS reversal_count,
			COUNT(*) FILTER (WHERE is_reversal_transaction AND paired_transaction_id IS NULL) AS unpaired_reversals`).
		Where("company_id = ? AND bank_account_id = ?", companyID, bankAccountID)
	if from != nil {
		query = query.Where("transaction_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("transaction_date <= ?", *to)
	}

	var row transactionSummaryRow
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	return &banking.ReconciliationSummary{
		BankAccountID:     bankAccountID,
		TotalTransactions: int(row.TotalTransactions),
		ReconciledCount:   int(row.ReconciledCount),
		UnreconciledCount: int(row.TotalTransactions - row.ReconciledCount),
		CreditTotal:       row.CreditTotal,
		DebitTotal:        row.DebitTotal,
		UnreconciledValue: row.UnreconciledValue,
		ReversalCount:     int(row.ReversalCount),
		UnpairedReversals: int(row.UnpairedReversals),
	}, nil
}

func toDomainTransactions(txModels []models.BankTransactionModel) []banking.BankTransaction {
	txs := make([]banking.BankTransaction, len(txModels))
	for i := range txModels {
		txs[i] = *txModels[i].ToDomain()
	}
	return txs
}
