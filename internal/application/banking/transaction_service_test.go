package banking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type txServiceFixture struct {
	service     *TransactionService
	accountRepo *fakeAccountRepo
	txRepo      *fakeTxRepo
	guard       *fakeImportGuard
	companyID   uuid.UUID
	account     *banking.BankAccount
}

func newTxServiceFixture(t *testing.T) *txServiceFixture {
	t.Helper()
	companyID := uuid.New()
	account, err := banking.NewBankAccount(companyID, "Operating", "50100012345678", "HDFC Bank", valueobject.INR)
	require.NoError(t, err)

	accountRepo := newFakeAccountRepo()
	require.NoError(t, accountRepo.Save(context.Background(), account))
	txRepo := newFakeTxRepo()
	guard := newFakeImportGuard()

	return &txServiceFixture{
		service:     NewTransactionService(accountRepo, txRepo, guard, zap.NewNop()),
		accountRepo: accountRepo,
		txRepo:      txRepo,
		guard:       guard,
		companyID:   companyID,
		account:     account,
	}
}

func TestTransactionService_CreateTransaction(t *testing.T) {
	f := newTxServiceFixture(t)
	ctx := context.Background()

	tx, err := f.service.CreateTransaction(ctx, CreateTransactionRequest{
		CompanyID:       f.companyID,
		BankAccountID:   f.account.ID,
		TransactionDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Type:            banking.TransactionTypeDebit,
		Amount:          decimal.NewFromInt(5000),
		Description:     "NEFT to Vendor X",
		ReferenceNumber: "N123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, banking.ImportSourceManual, tx.ImportSource)
	assert.NotEmpty(t, tx.TransactionHash)

	stored, err := f.txRepo.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Unknown account
	_, err = f.service.CreateTransaction(ctx, CreateTransactionRequest{
		CompanyID:     f.companyID,
		BankAccountID: uuid.New(),
		Type:          banking.TransactionTypeDebit,
		Amount:        decimal.NewFromInt(1),
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BANK_ACCOUNT_NOT_FOUND", domainErr.Code)
}

func TestTransactionService_ImportBatch(t *testing.T) {
	f := newTxServiceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	row := ImportRow{
		TransactionDate: date,
		Type:            banking.TransactionTypeDebit,
		Amount:          decimal.NewFromInt(5000),
		Description:     "NEFT DR ACME",
	}

	result, err := f.service.ImportBatch(ctx, ImportBatchRequest{
		CompanyID:     f.companyID,
		BankAccountID: f.account.ID,
		ImportSource:  "csv",
		Rows: []ImportRow{
			row,
			{TransactionDate: date, Type: banking.TransactionTypeCredit, Amount: decimal.NewFromInt(200), Description: "interest"},
			{TransactionDate: date, Type: banking.TransactionType("bad"), Amount: decimal.NewFromInt(1), Description: "broken row"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 0, result.DuplicateCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.NotEqual(t, uuid.Nil, result.BatchID)
	require.Len(t, result.Rows, 3)
	assert.NotEmpty(t, result.Rows[2].Error)

	// Same row imported again is flagged, not rejected
	second, err := f.service.ImportBatch(ctx, ImportBatchRequest{
		CompanyID:     f.companyID,
		BankAccountID: f.account.ID,
		ImportSource:  "csv",
		Rows:          []ImportRow{row},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.ImportedCount)
	assert.Equal(t, 1, second.DuplicateCount)
	assert.True(t, second.Rows[0].Duplicate)

	// Both copies are stored and discoverable by hash
	dups, err := f.service.ListDuplicates(ctx, f.companyID, *second.Rows[0].TransactionID)
	require.NoError(t, err)
	assert.Len(t, dups, 2)
}

func TestTransactionService_ImportBatch_GuardUnavailable(t *testing.T) {
	f := newTxServiceFixture(t)
	f.guard.err = errors.New("redis down")

	result, err := f.service.ImportBatch(context.Background(), ImportBatchRequest{
		CompanyID:     f.companyID,
		BankAccountID: f.account.ID,
		ImportSource:  "csv",
		Rows: []ImportRow{{
			TransactionDate: time.Now(),
			Type:            banking.TransactionTypeDebit,
			Amount:          decimal.NewFromInt(100),
			Description:     "row",
		}},
	})
	require.NoError(t, err, "guard failure must not block the import")
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 0, result.DuplicateCount)
}

func TestTransactionService_ImportBatch_Validation(t *testing.T) {
	f := newTxServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.ImportBatch(ctx, ImportBatchRequest{
		CompanyID:     f.companyID,
		BankAccountID: f.account.ID,
	})
	assert.Error(t, err, "empty batch is rejected")

	_, err = f.service.ImportBatch(ctx, ImportBatchRequest{
		CompanyID:     f.companyID,
		BankAccountID: uuid.New(),
		Rows:          []ImportRow{{}},
	})
	assert.Error(t, err, "unknown account is rejected")
}

func TestTransactionService_UpdateTransaction(t *testing.T) {
	f := newTxServiceFixture(t)
	ctx := context.Background()

	tx, err := f.service.CreateTransaction(ctx, CreateTransactionRequest{
		CompanyID:       f.companyID,
		BankAccountID:   f.account.ID,
		TransactionDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Type:            banking.TransactionTypeDebit,
		Amount:          decimal.NewFromInt(100),
		Description:     "before",
	})
	require.NoError(t, err)
	oldHash := tx.TransactionHash

	newDesc := "after"
	updated, err := f.service.UpdateTransaction(ctx, UpdateTransactionRequest{
		CompanyID:     f.companyID,
		TransactionID: tx.ID,
		Description:   &newDesc,
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Description)
	assert.NotEqual(t, oldHash, updated.TransactionHash)

	_, err = f.service.UpdateTransaction(ctx, UpdateTransactionRequest{
		CompanyID:     f.companyID,
		TransactionID: uuid.New(),
	})
	assert.Error(t, err)

	// Reconciled rows are locked against amendment
	source, err := banking.NewSourceDocumentRef(banking.SourceKindPayment, uuid.New())
	require.NoError(t, err)
	require.NoError(t, updated.Reconcile(source, uuid.Nil))
	require.NoError(t, f.txRepo.Save(ctx, updated))

	amount := decimal.NewFromInt(500)
	_, err = f.service.UpdateTransaction(ctx, UpdateTransactionRequest{
		CompanyID:     f.companyID,
		TransactionID: updated.ID,
		Amount:        &amount,
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestTransactionService_DeleteTransaction(t *testing.T) {
	f := newTxServiceFixture(t)
	ctx := context.Background()

	tx, err := f.service.CreateTransaction(ctx, CreateTransactionRequest{
		CompanyID:       f.companyID,
		BankAccountID:   f.account.ID,
		TransactionDate: time.Now(),
		Type:            banking.TransactionTypeDebit,
		Amount:          decimal.NewFromInt(100),
		Description:     "row",
	})
	require.NoError(t, err)

	// Reconciled rows are protected
	source, _ := banking.NewSourceDocumentRef(banking.SourceKindPayment, uuid.New())
	require.NoError(t, tx.Reconcile(source, uuid.Nil))
	require.NoError(t, f.txRepo.Save(ctx, tx))
	assert.Error(t, f.service.DeleteTransaction(ctx, f.companyID, tx.ID))

	require.NoError(t, tx.Unreconcile())
	require.NoError(t, f.txRepo.Save(ctx, tx))
	require.NoError(t, f.service.DeleteTransaction(ctx, f.companyID, tx.ID))

	gone, err := f.txRepo.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestTransactionService_ListTransactions(t *testing.T) {
	f := newTxServiceFixture(t)
	ctx := context.Background()

	from := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.service.ListTransactions(ctx, f.companyID, banking.TransactionFilter{
		FromDate: &from,
		ToDate:   &to,
	})
	assert.Error(t, err, "inverted range is rejected")

	for i := 0; i < 3; i++ {
		_, err := f.service.CreateTransaction(ctx, CreateTransactionRequest{
			CompanyID:       f.companyID,
			BankAccountID:   f.account.ID,
			TransactionDate: time.Now(),
			Type:            banking.TransactionTypeCredit,
			Amount:          decimal.NewFromInt(int64(100 + i)),
			Description:     "row",
		})
		require.NoError(t, err)
	}

	page, err := f.service.ListTransactions(ctx, f.companyID, banking.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 3)
}

func TestTransactionService_GetAccountSummary(t *testing.T) {
	f := newTxServiceFixture(t)
	ctx := context.Background()

	march := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	for _, row := range []struct {
		date   time.Time
		amount int64
	}{{march, 100}, {april, 200}} {
		_, err := f.service.CreateTransaction(ctx, CreateTransactionRequest{
			CompanyID:       f.companyID,
			BankAccountID:   f.account.ID,
			TransactionDate: row.date,
			Type:            banking.TransactionTypeDebit,
			Amount:          decimal.NewFromInt(row.amount),
			Description:     "row",
		})
		require.NoError(t, err)
	}

	summary, err := f.service.GetAccountSummary(ctx, f.companyID, f.account.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTransactions)
	assert.Equal(t, 2, summary.UnreconciledCount)
	assert.True(t, summary.DebitTotal.Equal(decimal.NewFromInt(300)))

	// Window bounds restrict the aggregate to transactions dated inside them
	aprilStart := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	windowed, err := f.service.GetAccountSummary(ctx, f.companyID, f.account.ID, &aprilStart, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, windowed.TotalTransactions)
	assert.True(t, windowed.DebitTotal.Equal(decimal.NewFromInt(200)))

	onlyMarch, err := f.service.GetAccountSummary(ctx, f.companyID, f.account.ID, nil, &march)
	require.NoError(t, err)
	assert.Equal(t, 1, onlyMarch.TotalTransactions)
	assert.True(t, onlyMarch.DebitTotal.Equal(decimal.NewFromInt(100)))

	_, err = f.service.GetAccountSummary(ctx, f.companyID, f.account.ID, &april, &march)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DATE_RANGE", domainErr.Code)

	_, err = f.service.GetAccountSummary(ctx, f.companyID, uuid.New(), nil, nil)
	assert.Error(t, err)
}
