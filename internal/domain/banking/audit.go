package banking

import (
	"context"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MatchAction enumerates the reconciliation actions worth an audit trail
type MatchAction string

const (
	MatchActionReconcile   MatchAction = "reconcile"
	MatchActionUnreconcile MatchAction = "unreconcile"
	MatchActionPair        MatchAction = "pair"
	MatchActionUnpair      MatchAction = "unpair"
	MatchActionJournalLink MatchAction = "journal_link"
)

// IsValid checks if the action is a valid MatchAction
func (a MatchAction) IsValid() bool {
	switch a {
	case MatchActionReconcile, MatchActionUnreconcile,
		MatchActionPair, MatchActionUnpair, MatchActionJournalLink:
		return true
	}
	return false
}

// MatchAuditEntry records one reconciliation action against a transaction.
// Entries are append-only; nothing in the system updates or deletes them.
type MatchAuditEntry struct {
	shared.BaseEntity
	CompanyID     uuid.UUID   `json:"company_id"`
	TransactionID uuid.UUID   `json:"transaction_id"`
	Action        MatchAction `json:"action"`

	// SourceKind/SourceID describe the counterparty of the action: the
	// reconciled source document, the paired transaction, or the linked
	// journal entry, depending on the action.
	SourceKind string     `json:"source_kind,omitempty"`
	SourceID   *uuid.UUID `json:"source_id,omitempty"`

	ActorID *uuid.UUID `json:"actor_id,omitempty"`
	Notes   string     `json:"notes,omitempty"`
}

// NewMatchAuditEntry creates a validated audit entry
func NewMatchAuditEntry(
	companyID uuid.UUID,
	transactionID uuid.UUID,
	action MatchAction,
) (*MatchAuditEntry, error) {
	if companyID == uuid.Nil || transactionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUDIT_ENTRY", "Company and transaction IDs are required")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_AUDIT_ACTION", "Audit action is not valid")
	}

	return &MatchAuditEntry{
		BaseEntity:    shared.NewBaseEntity(),
		CompanyID:     companyID,
		TransactionID: transactionID,
		Action:        action,
	}, nil
}

// WithSource attaches the counterparty reference
func (e *MatchAuditEntry) WithSource(kind string, id uuid.UUID) *MatchAuditEntry {
	e.SourceKind = kind
	if id != uuid.Nil {
		e.SourceID = &id
	}
	return e
}

// WithActor attaches the acting user
func (e *MatchAuditEntry) WithActor(actorID uuid.UUID) *MatchAuditEntry {
	if actorID != uuid.Nil {
		e.ActorID = &actorID
	}
	return e
}

// WithNotes attaches free-form context
func (e *MatchAuditEntry) WithNotes(notes string) *MatchAuditEntry {
	e.Notes = notes
	return e
}

// MatchAuditRepository defines the interface for audit trail persistence
type MatchAuditRepository interface {
	// Append stores a new audit entry
	Append(ctx context.Context, entry *MatchAuditEntry) error

	// FindByTransaction lists entries for a transaction, newest first
	FindByTransaction(ctx context.Context, companyID, transactionID uuid.UUID) ([]MatchAuditEntry, error)

	// FindRecentForCompany lists the latest entries across a company
	FindRecentForCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]MatchAuditEntry, error)
}
