package banking

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountForTest(t *testing.T, balance float64) *BankAccount {
	t.Helper()
	account, err := NewBankAccount(uuid.New(), "Operating Account", "50100012345678", "HDFC Bank", valueobject.INR)
	require.NoError(t, err)
	account.CurrentBalance = decimal.NewFromFloat(balance)
	return account
}

func reconciledTx(t *testing.T, txType TransactionType, date time.Time, amount float64) *BankTransaction {
	t.Helper()
	tx := txForTest(t, txType, date, amount, "statement row")
	ref, err := NewSourceDocumentRef(SourceKindPayment, uuid.New())
	require.NoError(t, err)
	require.NoError(t, tx.Reconcile(ref, uuid.New()))
	return tx
}

func TestBuildReconciliationStatement(t *testing.T) {
	account := accountForTest(t, 7200)
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }

	txs := []*BankTransaction{
		reconciledTx(t, TransactionTypeCredit, day(1), 10000), // customer receipt
		reconciledTx(t, TransactionTypeDebit, day(5), 3000),   // vendor payment
		txForTest(t, TransactionTypeCredit, day(10), 500, "interest credit"),
		txForTest(t, TransactionTypeDebit, day(12), 200, "bank charges"),
		txForTest(t, TransactionTypeDebit, day(15), 100, "sms charges"),
	}

	stmt := BuildReconciliationStatement(account, asOf, txs)

	assert.Equal(t, account.ID, stmt.BankAccountID)
	assert.Equal(t, 5, stmt.TotalTransactions)
	assert.Equal(t, 2, stmt.ReconciledCount)
	assert.Equal(t, 3, stmt.UnreconciledCount)
	assert.Len(t, stmt.UnreconciledTransactions, 3)

	// Book: 10000 - 3000; adjusted book: book + 500 - 300
	assert.True(t, stmt.BookBalance.Equal(decimal.NewFromInt(7000)), "book=%s", stmt.BookBalance)
	assert.True(t, stmt.AdjustedBookBalance.Equal(decimal.NewFromInt(7200)), "adjusted=%s", stmt.AdjustedBookBalance)

	assert.True(t, stmt.UnreconciledCredits.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 1, stmt.UnreconciledCreditsCount)
	assert.True(t, stmt.UnreconciledDebits.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, stmt.UnreconciledDebitsCount)

	// Deposits in transit and outstanding cheques stay zero, so the
	// adjusted bank balance equals the stored statement balance.
	assert.True(t, stmt.DepositsInTransit.IsZero())
	assert.True(t, stmt.OutstandingCheques.IsZero())
	assert.True(t, stmt.AdjustedBankBalance.Equal(decimal.NewFromInt(7200)))
	assert.True(t, stmt.Difference().IsZero(), "difference=%s", stmt.Difference())

	assert.True(t, stmt.ReconciledPercent.Equal(decimal.NewFromInt(40)))
	assert.False(t, stmt.IsFullyReconciled())
}

func TestBuildReconciliationStatement_IgnoresRowsAfterCutoff(t *testing.T) {
	account := accountForTest(t, 0)
	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	txs := []*BankTransaction{
		txForTest(t, TransactionTypeCredit, asOf, 100, "on cutoff"),
		txForTest(t, TransactionTypeCredit, asOf.AddDate(0, 0, 1), 999, "after cutoff"),
		nil,
	}

	stmt := BuildReconciliationStatement(account, asOf, txs)
	assert.Equal(t, 1, stmt.TotalTransactions)
	assert.True(t, stmt.UnreconciledCredits.Equal(decimal.NewFromInt(100)))
}

func TestBuildReconciliationStatement_ReportsDifference(t *testing.T) {
	account := accountForTest(t, 1000)
	stmt := BuildReconciliationStatement(account, time.Now(), []*BankTransaction{
		txForTest(t, TransactionTypeDebit, time.Now().AddDate(0, 0, -1), 50, "charges"),
	})

	assert.True(t, stmt.AdjustedBookBalance.Equal(decimal.NewFromInt(-50)))
	assert.True(t, stmt.Difference().Equal(decimal.NewFromInt(1050)))
}

func TestBuildReconciliationStatement_Empty(t *testing.T) {
	stmt := BuildReconciliationStatement(accountForTest(t, 0), time.Now(), nil)

	assert.Zero(t, stmt.TotalTransactions)
	assert.True(t, stmt.ReconciledPercent.IsZero())
	assert.False(t, stmt.IsFullyReconciled())
	assert.NotNil(t, stmt.UnreconciledTransactions)
}

func TestBuildReconciliationStatement_FullyReconciled(t *testing.T) {
	account := accountForTest(t, 600)
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	stmt := BuildReconciliationStatement(account, asOf, []*BankTransaction{
		reconciledTx(t, TransactionTypeCredit, asOf.AddDate(0, 0, -3), 1000),
		reconciledTx(t, TransactionTypeDebit, asOf.AddDate(0, 0, -2), 400),
	})

	assert.True(t, stmt.IsFullyReconciled())
	assert.True(t, stmt.ReconciledPercent.Equal(decimal.NewFromInt(100)))
	assert.True(t, stmt.BookBalance.Equal(stmt.AdjustedBookBalance))
	assert.True(t, stmt.Difference().IsZero())
}
