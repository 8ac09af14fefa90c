package banking

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// In-memory fakes backing the service tests. They implement only the
// semantics the services rely on, not full query fidelity.

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*banking.BankAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*banking.BankAccount)}
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*banking.BankAccount, error) {
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*banking.BankAccount, error) {
	account, ok := r.accounts[id]
	if !ok || account.CompanyID != companyID {
		return nil, nil
	}
	return account, nil
}

func (r *fakeAccountRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID) ([]banking.BankAccount, error) {
	var out []banking.BankAccount
	for _, a := range r.accounts {
		if a.CompanyID == companyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, account *banking.BankAccount) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) ExistsByAccountNumber(_ context.Context, companyID uuid.UUID, accountNumber string) (bool, error) {
	for _, a := range r.accounts {
		if a.CompanyID == companyID && a.AccountNumber == accountNumber {
			return true, nil
		}
	}
	return false, nil
}

type fakeTxRepo struct {
	txs map[uuid.UUID]*banking.BankTransaction
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{txs: make(map[uuid.UUID]*banking.BankTransaction)}
}

func (r *fakeTxRepo) FindByID(_ context.Context, id uuid.UUID) (*banking.BankTransaction, error) {
	if tx, ok := r.txs[id]; ok {
		clone := *tx
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeTxRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*banking.BankTransaction, error) {
	tx, ok := r.txs[id]
	if !ok || tx.CompanyID != companyID {
		return nil, nil
	}
	clone := *tx
	return &clone, nil
}

func (r *fakeTxRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, filter banking.TransactionFilter) ([]banking.BankTransaction, error) {
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID != companyID {
			continue
		}
		if filter.BankAccountID != nil && tx.BankAccountID != *filter.BankAccountID {
			continue
		}
		if filter.IsReconciled != nil && tx.IsReconciled != *filter.IsReconciled {
			continue
		}
		if filter.IsReversal != nil && tx.IsReversalTransaction != *filter.IsReversal {
			continue
		}
		if filter.IsPaired != nil && tx.IsPaired() != *filter.IsPaired {
			continue
		}
		out = append(out, *tx)
	}
	return out, nil
}

func (r *fakeTxRepo) CountForCompany(ctx context.Context, companyID uuid.UUID, filter banking.TransactionFilter) (int64, error) {
	rows, _ := r.FindAllForCompany(ctx, companyID, filter)
	return int64(len(rows)), nil
}

func (r *fakeTxRepo) FindByHash(_ context.Context, companyID, bankAccountID uuid.UUID, hash string) ([]banking.BankTransaction, error) {
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID == companyID && tx.BankAccountID == bankAccountID && tx.TransactionHash == hash {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) FindBySource(_ context.Context, companyID uuid.UUID, source banking.SourceDocumentRef) ([]banking.BankTransaction, error) {
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID == companyID && tx.ReconciledSource != nil && *tx.ReconciledSource == source {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) FindForStatement(_ context.Context, companyID, bankAccountID uuid.UUID, asOf time.Time) ([]banking.BankTransaction, error) {
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID == companyID && tx.BankAccountID == bankAccountID && !tx.TransactionDate.After(asOf) {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) FindCandidateOriginals(_ context.Context, companyID uuid.UUID, query banking.CandidateQuery) ([]banking.BankTransaction, error) {
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID != companyID || tx.BankAccountID != query.BankAccountID {
			continue
		}
		if tx.Type != banking.TransactionTypeDebit || tx.IsPaired() {
			continue
		}
		if !tx.Amount.Equal(query.Amount) {
			continue
		}
		if tx.TransactionDate.Before(query.FromDate) || tx.TransactionDate.After(query.ToDate) {
			continue
		}
		out = append(out, *tx)
	}
	return out, nil
}

func (r *fakeTxRepo) FindUnlinkedReconciled(_ context.Context, companyID uuid.UUID, limit int) ([]banking.BankTransaction, error) {
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID == companyID && tx.IsReconciled && !tx.HasJournalLink() {
			out = append(out, *tx)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeTxRepo) Save(_ context.Context, tx *banking.BankTransaction) error {
	clone := *tx
	r.txs[tx.ID] = &clone
	return nil
}

func (r *fakeTxRepo) SaveBatch(ctx context.Context, txs []*banking.BankTransaction) error {
	for _, tx := range txs {
		if err := r.Save(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeTxRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.txs, id)
	return nil
}

func (r *fakeTxRepo) PairTransactions(ctx context.Context, reversal, original *banking.BankTransaction) error {
	stored1, ok1 := r.txs[reversal.ID]
	stored2, ok2 := r.txs[original.ID]
	if !ok1 || !ok2 {
		return shared.ErrNotFound
	}
	// Write-time guard, mirrors the SQL precondition on paired_transaction_id
	if stored1.IsPaired() || stored2.IsPaired() {
		return shared.ErrAlreadyPaired
	}
	return r.SaveBatch(ctx, []*banking.BankTransaction{reversal, original})
}

func (r *fakeTxRepo) UnpairTransactions(ctx context.Context, first, second *banking.BankTransaction) error {
	return r.SaveBatch(ctx, []*banking.BankTransaction{first, second})
}

func (r *fakeTxRepo) SummaryForAccount(_ context.Context, companyID, bankAccountID uuid.UUID, from, to *time.Time) (*banking.ReconciliationSummary, error) {
	summary := &banking.ReconciliationSummary{BankAccountID: bankAccountID}
	for _, tx := range r.txs {
		if tx.CompanyID != companyID || tx.BankAccountID != bankAccountID {
			continue
		}
		if from != nil && tx.TransactionDate.Before(*from) {
			continue
		}
		if to != nil && tx.TransactionDate.After(*to) {
			continue
		}
		summary.TotalTransactions++
		if tx.IsReconciled {
			summary.ReconciledCount++
		} else {
			summary.UnreconciledCount++
			summary.UnreconciledValue = summary.UnreconciledValue.Add(tx.Amount)
		}
		if tx.Type == banking.TransactionTypeCredit {
			summary.CreditTotal = summary.CreditTotal.Add(tx.Amount)
		} else {
			summary.DebitTotal = summary.DebitTotal.Add(tx.Amount)
		}
		if tx.IsReversalTransaction {
			summary.ReversalCount++
			if !tx.IsPaired() {
				summary.UnpairedReversals++
			}
		}
	}
	return summary, nil
}

type fakeAuditRepo struct {
	entries []banking.MatchAuditEntry
}

func (r *fakeAuditRepo) Append(_ context.Context, entry *banking.MatchAuditEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) FindByTransaction(_ context.Context, companyID, transactionID uuid.UUID) ([]banking.MatchAuditEntry, error) {
	var out []banking.MatchAuditEntry
	for _, e := range r.entries {
		if e.CompanyID == companyID && e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) FindRecentForCompany(_ context.Context, companyID uuid.UUID, limit int) ([]banking.MatchAuditEntry, error) {
	var out []banking.MatchAuditEntry
	for _, e := range r.entries {
		if e.CompanyID == companyID {
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type fakeJournalRepo struct {
	entries []*ledger.JournalEntry
}

func (r *fakeJournalRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeJournalRepo) FindBySource(_ context.Context, companyID uuid.UUID, sourceType string, sourceID uuid.UUID) (*ledger.JournalEntry, error) {
	// Prefer posted entries over drafts, like the SQL implementation
	var draft *ledger.JournalEntry
	for _, e := range r.entries {
		if e.CompanyID != companyID || e.SourceType != sourceType {
			continue
		}
		if e.SourceID == nil || *e.SourceID != sourceID {
			continue
		}
		if e.IsPosted() {
			return e, nil
		}
		draft = e
	}
	if draft != nil {
		return draft, nil
	}
	return nil, shared.ErrNotFound
}

type fakeImportGuard struct {
	seen map[string]bool
	err  error
}

func newFakeImportGuard() *fakeImportGuard {
	return &fakeImportGuard{seen: make(map[string]bool)}
}

func (g *fakeImportGuard) Seen(_ context.Context, bankAccountID uuid.UUID, hash string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	key := bankAccountID.String() + ":" + hash
	if g.seen[key] {
		return true, nil
	}
	g.seen[key] = true
	return false, nil
}
