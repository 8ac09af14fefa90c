package banking

import (
	"context"
	"fmt"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationService links bank transactions to the source documents
// that caused them and keeps the audit trail of those actions.
type ReconciliationService struct {
	txRepo    banking.BankTransactionRepository
	auditRepo banking.MatchAuditRepository
	logger    *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	txRepo banking.BankTransactionRepository,
	auditRepo banking.MatchAuditRepository,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		txRepo:    txRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// ReconcileRequest links a transaction to a source document
type ReconcileRequest struct {
	CompanyID     uuid.UUID
	TransactionID uuid.UUID
	SourceKind    banking.SourceKind
	SourceID      uuid.UUID
	ReconciledBy  uuid.UUID
	Notes         string
}

// Reconcile marks the transaction as reconciled against a source document
func (s *ReconciliationService) Reconcile(ctx context.Context, req ReconcileRequest) (*banking.BankTransaction, error) {
	tx, err := s.findTransaction(ctx, req.CompanyID, req.TransactionID)
	if err != nil {
		return nil, err
	}

	source, err := banking.NewSourceDocumentRef(req.SourceKind, req.SourceID)
	if err != nil {
		return nil, err
	}
	if err := tx.Reconcile(source, req.ReconciledBy); err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.appendAudit(ctx, req.CompanyID, tx.ID, banking.MatchActionReconcile,
		source.Kind.String(), source.ID, req.ReconciledBy, req.Notes)
	return tx, nil
}

// Unreconcile detaches a transaction from its source document
func (s *ReconciliationService) Unreconcile(ctx context.Context, companyID, transactionID, actorID uuid.UUID) (*banking.BankTransaction, error) {
	tx, err := s.findTransaction(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}

	var sourceKind string
	var sourceID uuid.UUID
	if tx.ReconciledSource != nil {
		sourceKind = tx.ReconciledSource.Kind.String()
		sourceID = tx.ReconciledSource.ID
	}

	if err := tx.Unreconcile(); err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.appendAudit(ctx, companyID, tx.ID, banking.MatchActionUnreconcile, sourceKind, sourceID, actorID, "")
	return tx, nil
}

// ListUnreconciled returns the unreconciled working set, optionally scoped
// to one bank account.
func (s *ReconciliationService) ListUnreconciled(ctx context.Context, companyID uuid.UUID, bankAccountID *uuid.UUID, filter banking.TransactionFilter) ([]banking.BankTransaction, error) {
	reconciled := false
	filter.IsReconciled = &reconciled
	filter.BankAccountID = bankAccountID
	filter.Normalize()
	return s.txRepo.FindAllForCompany(ctx, companyID, filter)
}

// FindBySource returns the transactions reconciled against a source document
func (s *ReconciliationService) FindBySource(ctx context.Context, companyID uuid.UUID, kind banking.SourceKind, sourceID uuid.UUID) ([]banking.BankTransaction, error) {
	source, err := banking.NewSourceDocumentRef(kind, sourceID)
	if err != nil {
		return nil, err
	}
	return s.txRepo.FindBySource(ctx, companyID, source)
}

// AuditTrail lists the reconciliation history of one transaction
func (s *ReconciliationService) AuditTrail(ctx context.Context, companyID, transactionID uuid.UUID) ([]banking.MatchAuditEntry, error) {
	return s.auditRepo.FindByTransaction(ctx, companyID, transactionID)
}

// appendAudit records the action. Audit failures are logged, never surfaced;
// the reconciliation itself already committed.
func (s *ReconciliationService) appendAudit(ctx context.Context, companyID, txID uuid.UUID,
	action banking.MatchAction, sourceKind string, sourceID, actorID uuid.UUID, notes string) {
	entry, err := banking.NewMatchAuditEntry(companyID, txID, action)
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}
	entry.WithSource(sourceKind, sourceID).WithActor(actorID).WithNotes(notes)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("transaction_id", txID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (s *ReconciliationService) findTransaction(ctx context.Context, companyID, transactionID uuid.UUID) (*banking.BankTransaction, error) {
	tx, err := s.txRepo.FindByIDForCompany(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewDomainError("TRANSACTION_NOT_FOUND", "Bank transaction not found")
	}
	return tx, nil
}
