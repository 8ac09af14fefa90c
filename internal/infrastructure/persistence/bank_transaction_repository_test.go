package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockTransactionRepository creates a GormBankTransactionRepository with a mocked SQL connection
func newMockTransactionRepository(t *testing.T) (*GormBankTransactionRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBankTransactionRepository(gormDB), mock, mockDB
}

func TestGormBankTransactionRepository_FindByID(t *testing.T) {
	t.Run("finds existing transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		txID := uuid.New()
		companyID := uuid.New()
		accountID := uuid.New()
		date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{
			"id", "company_id", "bank_account_id", "transaction_date", "description",
			"type", "amount", "transaction_hash", "import_source", "is_reconciled",
			"is_reversal_transaction", "version",
		}).AddRow(
			txID, companyID, accountID, date, "NEFT to Vendor X",
			"debit", decimal.NewFromInt(5000), "abc123", "manual", false,
			false, 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "bank_transactions" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(txID, 1).
			WillReturnRows(rows)

		tx, err := repo.FindByID(context.Background(), txID)

		require.NoError(t, err)
		require.NotNil(t, tx)
		assert.Equal(t, txID, tx.ID)
		assert.Equal(t, companyID, tx.CompanyID)
		assert.Equal(t, banking.TransactionTypeDebit, tx.Type)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(5000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		txID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "bank_transactions" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(txID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		tx, err := repo.FindByID(context.Background(), txID)

		assert.Nil(t, tx)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBankTransactionRepository_PairTransactions(t *testing.T) {
	buildPair := func(t *testing.T) (*banking.BankTransaction, *banking.BankTransaction) {
		t.Helper()
		companyID := uuid.New()
		accountID := uuid.New()
		original, err := banking.NewBankTransaction(companyID, accountID,
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			banking.TransactionTypeDebit, decimal.NewFromInt(5000), "NEFT to Vendor X")
		require.NoError(t, err)
		reversal, err := banking.NewBankTransaction(companyID, accountID,
			time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			banking.TransactionTypeCredit, decimal.NewFromInt(5000), "NEFT return - insufficient funds")
		require.NoError(t, err)
		require.NoError(t, reversal.PairWith(original))
		return reversal, original
	}

	t.Run("pairs both rows in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		reversal, original := buildPair(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bank_transactions" SET .* WHERE id = \$\d+ AND paired_transaction_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "bank_transactions" SET .* WHERE id = \$\d+ AND paired_transaction_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.PairTransactions(context.Background(), reversal, original)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back with ErrAlreadyPaired when a row was paired concurrently", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		reversal, original := buildPair(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bank_transactions" SET .* WHERE id = \$\d+ AND paired_transaction_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.PairTransactions(context.Background(), reversal, original)

		assert.ErrorIs(t, err, shared.ErrAlreadyPaired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBankTransactionRepository_SummaryForAccount(t *testing.T) {
	summaryRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"total_transactions", "reconciled_count", "credit_total", "debit_total",
			"unreconciled_value", "reversal_count", "unpaired_reversals",
		}).AddRow(4, 2, decimal.NewFromInt(10000), decimal.NewFromInt(7000),
			decimal.NewFromInt(3000), 1, 1)
	}

	t.Run("unbounded aggregate", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()
		accountID := uuid.New()
		mock.ExpectQuery(`SELECT .* FROM "bank_transactions" WHERE company_id = \$1 AND bank_account_id = \$2`).
			WithArgs(companyID, accountID).
			WillReturnRows(summaryRows())

		summary, err := repo.SummaryForAccount(context.Background(), companyID, accountID, nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 4, summary.TotalTransactions)
		assert.Equal(t, 2, summary.ReconciledCount)
		assert.Equal(t, 2, summary.UnreconciledCount)
		assert.True(t, summary.UnreconciledValue.Equal(decimal.NewFromInt(3000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("date window bounds the query", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()
		accountID := uuid.New()
		from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .* FROM "bank_transactions" WHERE company_id = \$1 AND bank_account_id = \$2 AND transaction_date >= \$3 AND transaction_date <= \$4`).
			WithArgs(companyID, accountID, from, to).
			WillReturnRows(summaryRows())

		_, err := repo.SummaryForAccount(context.Background(), companyID, accountID, &from, &to)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBankTransactionRepository_Delete(t *testing.T) {
	repo, mock, mockDB := newMockTransactionRepository(t)
	defer mockDB.Close()

	txID := uuid.New()
	mock.ExpectExec(`DELETE FROM "bank_transactions" WHERE id = \$1`).
		WithArgs(txID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), txID)

	assert.Equal(t, shared.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
