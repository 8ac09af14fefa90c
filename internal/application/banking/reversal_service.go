package banking

import (
	"context"
	"fmt"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReversalService detects reversal transactions, finds their originals and
// manages the symmetric pairing between the two.
type ReversalService struct {
	txRepo    banking.BankTransactionRepository
	auditRepo banking.MatchAuditRepository
	detector  *banking.ReversalDetector
	logger    *zap.Logger
}

// NewReversalService creates a new ReversalService
func NewReversalService(
	txRepo banking.BankTransactionRepository,
	auditRepo banking.MatchAuditRepository,
	detector *banking.ReversalDetector,
	logger *zap.Logger,
) *ReversalService {
	return &ReversalService{
		txRepo:    txRepo,
		auditRepo: auditRepo,
		detector:  detector,
		logger:    logger,
	}
}

// DetectionReport is the outcome of running detection on a transaction
type DetectionReport struct {
	Transaction *banking.BankTransaction `json:"transaction"`
	Detection   banking.DetectionResult  `json:"detection"`
	Candidates  []banking.MatchCandidate `json:"candidates"`
}

// DetectReversal classifies a transaction and, when flagged, ranks candidate
// originals within the look-back window. The first successful detection
// persists the reversal flag; re-running is idempotent.
func (s *ReversalService) DetectReversal(ctx context.Context, companyID, transactionID uuid.UUID) (*DetectionReport, error) {
	tx, err := s.findTransaction(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}

	report := &DetectionReport{
		Transaction: tx,
		Detection:   s.detector.Detect(tx.Description),
	}
	if !report.Detection.IsReversal {
		return report, nil
	}

	if !tx.IsReversalTransaction {
		tx.MarkAsReversal()
		if err := s.txRepo.Save(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to persist reversal flag: %w", err)
		}
	}

	report.Candidates, err = s.findCandidates(ctx, companyID, tx)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// FindPotentialOriginals ranks candidate originals for a flagged reversal
func (s *ReversalService) FindPotentialOriginals(ctx context.Context, companyID, transactionID uuid.UUID) ([]banking.MatchCandidate, error) {
	tx, err := s.findTransaction(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	return s.findCandidates(ctx, companyID, tx)
}

func (s *ReversalService) findCandidates(ctx context.Context, companyID uuid.UUID, tx *banking.BankTransaction) ([]banking.MatchCandidate, error) {
	from, to := s.detector.LookbackWindow(tx.TransactionDate)
	rows, err := s.txRepo.FindCandidateOriginals(ctx, companyID, banking.CandidateQuery{
		BankAccountID: tx.BankAccountID,
		Amount:        tx.Amount,
		FromDate:      from,
		ToDate:        to,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]*banking.BankTransaction, len(rows))
	for i := range rows {
		candidates[i] = &rows[i]
	}
	return s.detector.RankCandidates(tx, candidates), nil
}

// PairReversal pairs a reversal credit with its original debit. The two-row
// update happens atomically in the repository; a concurrent pairing of
// either side surfaces as ErrAlreadyPaired.
func (s *ReversalService) PairReversal(ctx context.Context, companyID, reversalID, originalID, actorID uuid.UUID) error {
	reversal, err := s.findTransaction(ctx, companyID, reversalID)
	if err != nil {
		return err
	}
	original, err := s.findTransaction(ctx, companyID, originalID)
	if err != nil {
		return err
	}

	if err := reversal.PairWith(original); err != nil {
		return err
	}
	if err := s.txRepo.PairTransactions(ctx, reversal, original); err != nil {
		return err
	}

	s.appendAudit(ctx, companyID, reversal.ID, banking.MatchActionPair, original.ID, actorID)
	s.logger.Info("reversal paired",
		zap.String("reversal_id", reversal.ID.String()),
		zap.String("original_id", original.ID.String()))
	return nil
}

// UnpairReversal clears the pairing of a transaction and its counterpart
func (s *ReversalService) UnpairReversal(ctx context.Context, companyID, transactionID, actorID uuid.UUID) error {
	tx, err := s.findTransaction(ctx, companyID, transactionID)
	if err != nil {
		return err
	}
	if !tx.IsPaired() {
		return shared.NewDomainError("NOT_PAIRED", "Transaction is not paired")
	}

	counterpart, err := s.findTransaction(ctx, companyID, *tx.PairedTransactionID)
	if err != nil {
		return err
	}
	if err := tx.UnpairFrom(counterpart); err != nil {
		return err
	}
	if err := s.txRepo.UnpairTransactions(ctx, tx, counterpart); err != nil {
		return err
	}

	s.appendAudit(ctx, companyID, tx.ID, banking.MatchActionUnpair, counterpart.ID, actorID)
	return nil
}

// ListUnpairedReversals returns flagged reversals with no counterpart yet
func (s *ReversalService) ListUnpairedReversals(ctx context.Context, companyID uuid.UUID, bankAccountID *uuid.UUID) ([]banking.BankTransaction, error) {
	isReversal := true
	isPaired := false
	filter := banking.TransactionFilter{
		Filter:        shared.DefaultFilter(),
		BankAccountID: bankAccountID,
		IsReversal:    &isReversal,
		IsPaired:      &isPaired,
	}
	filter.Normalize()
	return s.txRepo.FindAllForCompany(ctx, companyID, filter)
}

func (s *ReversalService) appendAudit(ctx context.Context, companyID, txID uuid.UUID,
	action banking.MatchAction, counterpartID, actorID uuid.UUID) {
	entry, err := banking.NewMatchAuditEntry(companyID, txID, action)
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}
	entry.WithSource("bank_transaction", counterpartID).WithActor(actorID)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("transaction_id", txID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (s *ReversalService) findTransaction(ctx context.Context, companyID, transactionID uuid.UUID) (*banking.BankTransaction, error) {
	tx, err := s.txRepo.FindByIDForCompany(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewDomainError("TRANSACTION_NOT_FOUND", "Bank transaction not found")
	}
	return tx, nil
}
