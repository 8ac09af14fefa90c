package banking

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type linkFixture struct {
	service     *JournalLinkService
	accountRepo *fakeAccountRepo
	txRepo      *fakeTxRepo
	journalRepo *fakeJournalRepo
	companyID   uuid.UUID
	account     *banking.BankAccount
	ledgerAcct  uuid.UUID
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	companyID := uuid.New()
	account, err := banking.NewBankAccount(companyID, "Operating", "50100012345678", "HDFC Bank", valueobject.INR)
	require.NoError(t, err)
	ledgerAcct := uuid.New()
	require.NoError(t, account.LinkLedgerAccount(ledgerAcct))

	accountRepo := newFakeAccountRepo()
	require.NoError(t, accountRepo.Save(context.Background(), account))
	txRepo := newFakeTxRepo()
	journalRepo := &fakeJournalRepo{}

	return &linkFixture{
		service:     NewJournalLinkService(accountRepo, txRepo, journalRepo, &fakeAuditRepo{}, zap.NewNop()),
		accountRepo: accountRepo,
		txRepo:      txRepo,
		journalRepo: journalRepo,
		companyID:   companyID,
		account:     account,
		ledgerAcct:  ledgerAcct,
	}
}

func (f *linkFixture) addReconciledTx(t *testing.T, kind banking.SourceKind, sourceID uuid.UUID) *banking.BankTransaction {
	t.Helper()
	tx, err := banking.NewBankTransaction(f.companyID, f.account.ID, time.Now(),
		banking.TransactionTypeDebit, decimal.NewFromInt(1000), "vendor payment")
	require.NoError(t, err)
	source, err := banking.NewSourceDocumentRef(kind, sourceID)
	require.NoError(t, err)
	require.NoError(t, tx.Reconcile(source, uuid.Nil))
	require.NoError(t, f.txRepo.Save(context.Background(), tx))
	return tx
}

func (f *linkFixture) addJournalEntry(status ledger.EntryStatus, sourceType string, sourceID, lineAccount uuid.UUID) *ledger.JournalEntry {
	entry := &ledger.JournalEntry{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  f.companyID,
		EntryDate:  time.Now(),
		Status:     status,
		SourceType: sourceType,
		SourceID:   &sourceID,
	}
	entry.Lines = []ledger.JournalEntryLine{
		{
			ID:              uuid.New(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: lineAccount,
			Credit:          decimal.NewFromInt(1000),
		},
		{
			ID:              uuid.New(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: uuid.New(),
			Debit:           decimal.NewFromInt(1000),
		},
	}
	f.journalRepo.entries = append(f.journalRepo.entries, entry)
	return entry
}

func TestJournalLinkService_AutoLink(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()
	sourceID := uuid.New()

	tx := f.addReconciledTx(t, banking.SourceKindPayment, sourceID)
	entry := f.addJournalEntry(ledger.EntryStatusPosted, "payment", sourceID, f.ledgerAcct)

	ref, err := f.service.AutoLink(ctx, f.companyID, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, entry.ID, ref.JournalEntryID)
	assert.Equal(t, entry.Lines[0].ID, ref.JournalEntryLineID)

	stored, _ := f.txRepo.FindByID(ctx, tx.ID)
	assert.True(t, stored.HasJournalLink())

	// Linking again is a no-op returning the stored link
	again, err := f.service.AutoLink(ctx, f.companyID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ref.JournalEntryID, again.JournalEntryID)
}

func TestJournalLinkService_NoLinkOutcomes(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()

	t.Run("account not ledger integrated", func(t *testing.T) {
		plain, err := banking.NewBankAccount(f.companyID, "Petty Cash", "999", "HDFC Bank", valueobject.INR)
		require.NoError(t, err)
		require.NoError(t, f.accountRepo.Save(ctx, plain))

		source, _ := banking.NewSourceDocumentRef(banking.SourceKindPayment, uuid.New())
		ref, err := f.service.FindBankJournalLine(ctx, f.companyID, source, plain.ID)
		require.NoError(t, err)
		assert.Nil(t, ref)
	})

	t.Run("no entry for source", func(t *testing.T) {
		source, _ := banking.NewSourceDocumentRef(banking.SourceKindPayment, uuid.New())
		ref, err := f.service.FindBankJournalLine(ctx, f.companyID, source, f.account.ID)
		require.NoError(t, err)
		assert.Nil(t, ref)
	})

	t.Run("entry does not touch the bank ledger account", func(t *testing.T) {
		sourceID := uuid.New()
		f.addJournalEntry(ledger.EntryStatusPosted, "payment", sourceID, uuid.New())
		source, _ := banking.NewSourceDocumentRef(banking.SourceKindPayment, sourceID)
		ref, err := f.service.FindBankJournalLine(ctx, f.companyID, source, f.account.ID)
		require.NoError(t, err)
		assert.Nil(t, ref)
	})
}

func TestJournalLinkService_EntryStatusSelection(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()

	t.Run("draft entry is linkable when no posted entry exists", func(t *testing.T) {
		sourceID := uuid.New()
		draft := f.addJournalEntry(ledger.EntryStatusDraft, "payment", sourceID, f.ledgerAcct)
		source, _ := banking.NewSourceDocumentRef(banking.SourceKindPayment, sourceID)

		ref, err := f.service.FindBankJournalLine(ctx, f.companyID, source, f.account.ID)
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, draft.ID, ref.JournalEntryID)
		assert.Equal(t, draft.Lines[0].ID, ref.JournalEntryLineID)
	})

	t.Run("posted entry wins over a draft for the same source", func(t *testing.T) {
		sourceID := uuid.New()
		f.addJournalEntry(ledger.EntryStatusDraft, "payment", sourceID, f.ledgerAcct)
		posted := f.addJournalEntry(ledger.EntryStatusPosted, "payment", sourceID, f.ledgerAcct)
		source, _ := banking.NewSourceDocumentRef(banking.SourceKindPayment, sourceID)

		ref, err := f.service.FindBankJournalLine(ctx, f.companyID, source, f.account.ID)
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, posted.ID, ref.JournalEntryID)
		assert.Equal(t, posted.Lines[0].ID, ref.JournalEntryLineID)
	})
}

func TestJournalLinkService_AutoLinkRequiresReconciled(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()

	tx, err := banking.NewBankTransaction(f.companyID, f.account.ID, time.Now(),
		banking.TransactionTypeDebit, decimal.NewFromInt(100), "row")
	require.NoError(t, err)
	require.NoError(t, f.txRepo.Save(ctx, tx))

	_, err = f.service.AutoLink(ctx, f.companyID, tx.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_RECONCILED", domainErr.Code)
}

func TestJournalLinkService_Backfill(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()

	// One linkable, one with no posted entry, plus an already-linked row
	// that must not be revisited.
	linkableSource := uuid.New()
	linkable := f.addReconciledTx(t, banking.SourceKindPayment, linkableSource)
	f.addJournalEntry(ledger.EntryStatusPosted, "payment", linkableSource, f.ledgerAcct)

	f.addReconciledTx(t, banking.SourceKindExpense, uuid.New())

	preLinkedSource := uuid.New()
	preLinked := f.addReconciledTx(t, banking.SourceKindPayment, preLinkedSource)
	require.NoError(t, preLinked.LinkJournalEntry(uuid.New(), uuid.New()))
	require.NoError(t, f.txRepo.Save(ctx, preLinked))

	result, err := f.service.Backfill(ctx, f.companyID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.LinkedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 0, result.FailedCount)

	stored, _ := f.txRepo.FindByID(ctx, linkable.ID)
	assert.True(t, stored.HasJournalLink())

	remaining, err := f.service.ListUnlinked(ctx, f.companyID, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "only the no-entry row stays unlinked")
}
