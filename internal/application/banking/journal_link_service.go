package banking

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalLinkService resolves the ledger posting line behind a reconciled
// bank transaction and records the link for the audit trail.
type JournalLinkService struct {
	accountRepo banking.BankAccountRepository
	txRepo      banking.BankTransactionRepository
	journalRepo ledger.JournalEntryRepository
	auditRepo   banking.MatchAuditRepository
	logger      *zap.Logger
}

// NewJournalLinkService creates a new JournalLinkService
func NewJournalLinkService(
	accountRepo banking.BankAccountRepository,
	txRepo banking.BankTransactionRepository,
	journalRepo ledger.JournalEntryRepository,
	auditRepo banking.MatchAuditRepository,
	logger *zap.Logger,
) *JournalLinkService {
	return &JournalLinkService{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		journalRepo: journalRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// JournalLineRef identifies one posting line inside a journal entry
type JournalLineRef struct {
	JournalEntryID     uuid.UUID `json:"journal_entry_id"`
	JournalEntryLineID uuid.UUID `json:"journal_entry_line_id"`
}

// FindBankJournalLine resolves the posting line that moved the bank account
// for a source document. Posted entries win over drafts; a draft is still
// linkable so early-entered documents connect before period close. Returns
// (nil, nil) when no link can be found, that is an expected outcome, not an
// error: the account may not be ledger integrated or the document may have
// produced no entry yet.
func (s *JournalLinkService) FindBankJournalLine(
	ctx context.Context,
	companyID uuid.UUID,
	source banking.SourceDocumentRef,
	bankAccountID uuid.UUID,
) (*JournalLineRef, error) {
	account, err := s.accountRepo.FindByIDForCompany(ctx, companyID, bankAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsLedgerIntegrated() {
		return nil, nil
	}

	entry, err := s.journalRepo.FindBySource(ctx, companyID, source.Kind.JournalSourceType(), source.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	line := entry.LineForAccount(*account.LinkedLedgerAccountID)
	if line == nil {
		return nil, nil
	}
	return &JournalLineRef{JournalEntryID: entry.ID, JournalEntryLineID: line.ID}, nil
}

// AutoLink resolves and persists the journal link for one reconciled
// transaction. No-ops when the transaction already carries a link or when
// no link can be resolved.
func (s *JournalLinkService) AutoLink(ctx context.Context, companyID, transactionID uuid.UUID) (*JournalLineRef, error) {
	tx, err := s.txRepo.FindByIDForCompany(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewDomainError("TRANSACTION_NOT_FOUND", "Bank transaction not found")
	}
	if !tx.IsReconciled || tx.ReconciledSource == nil {
		return nil, shared.NewDomainError("NOT_RECONCILED", "Transaction must be reconciled before linking")
	}
	if tx.HasJournalLink() {
		return &JournalLineRef{
			JournalEntryID:     *tx.JournalEntryID,
			JournalEntryLineID: *tx.JournalEntryLineID,
		}, nil
	}

	ref, err := s.FindBankJournalLine(ctx, companyID, *tx.ReconciledSource, tx.BankAccountID)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, nil
	}

	if err := tx.LinkJournalEntry(ref.JournalEntryID, ref.JournalEntryLineID); err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save journal link: %w", err)
	}

	s.appendAudit(ctx, companyID, tx.ID, ref.JournalEntryID)
	return ref, nil
}

// BackfillResult summarizes a backfill run
type BackfillResult struct {
	LinkedCount  int               `json:"linked_count"`
	SkippedCount int               `json:"skipped_count"`
	FailedCount  int               `json:"failed_count"`
	Failures     []BackfillFailure `json:"failures,omitempty"`
}

// BackfillFailure records one transaction the backfill could not link
type BackfillFailure struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Reason        string    `json:"reason"`
}

// Backfill links every reconciled-but-unlinked transaction of a company.
// Each row is attempted independently; one failure never aborts the batch.
func (s *JournalLinkService) Backfill(ctx context.Context, companyID uuid.UUID, limit int) (*BackfillResult, error) {
	rows, err := s.txRepo.FindUnlinkedReconciled(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}

	result := &BackfillResult{}
	for i := range rows {
		tx := &rows[i]
		if tx.ReconciledSource == nil {
			result.SkippedCount++
			continue
		}

		ref, err := s.FindBankJournalLine(ctx, companyID, *tx.ReconciledSource, tx.BankAccountID)
		if err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, BackfillFailure{
				TransactionID: tx.ID,
				Reason:        err.Error(),
			})
			continue
		}
		if ref == nil {
			result.SkippedCount++
			continue
		}

		if err := tx.LinkJournalEntry(ref.JournalEntryID, ref.JournalEntryLineID); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, BackfillFailure{TransactionID: tx.ID, Reason: err.Error()})
			continue
		}
		if err := s.txRepo.Save(ctx, tx); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, BackfillFailure{TransactionID: tx.ID, Reason: err.Error()})
			continue
		}
		result.LinkedCount++
	}

	s.logger.Info("journal link backfill completed",
		zap.String("company_id", companyID.String()),
		zap.Int("linked", result.LinkedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

// ListUnlinked returns reconciled transactions lacking a journal link
func (s *JournalLinkService) ListUnlinked(ctx context.Context, companyID uuid.UUID, limit int) ([]banking.BankTransaction, error) {
	return s.txRepo.FindUnlinkedReconciled(ctx, companyID, limit)
}

func (s *JournalLinkService) appendAudit(ctx context.Context, companyID, txID, entryID uuid.UUID) {
	entry, err := banking.NewMatchAuditEntry(companyID, txID, banking.MatchActionJournalLink)
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}
	entry.WithSource("journal_entry", entryID)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("transaction_id", txID.String()),
			zap.Error(err))
	}
}
