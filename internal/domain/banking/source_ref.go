package banking

import (
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SourceKind identifies the type of internal source document a bank
// transaction settles. It is a closed set so that source-type branching
// (journal lookup, display) is exhaustive.
type SourceKind string

const (
	SourceKindPayment    SourceKind = "payment"
	SourceKindExpense    SourceKind = "expense"
	SourceKindPayroll    SourceKind = "payroll"
	SourceKindTaxPayment SourceKind = "tax_payment"
	SourceKindTransfer   SourceKind = "transfer"
	SourceKindContractor SourceKind = "contractor"
)

// IsValid checks if the kind is a valid SourceKind
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindPayment, SourceKindExpense, SourceKindPayroll,
		SourceKindTaxPayment, SourceKindTransfer, SourceKindContractor:
		return true
	}
	return false
}

// String returns the string representation of SourceKind
func (k SourceKind) String() string {
	return string(k)
}

// JournalSourceType returns the source-type discriminator the ledger
// subsystem uses when posting entries for this kind of document.
func (k SourceKind) JournalSourceType() string {
	switch k {
	case SourceKindPayment:
		return "payment"
	case SourceKindExpense:
		return "expense_claim"
	case SourceKindPayroll:
		return "payroll_run"
	case SourceKindTaxPayment:
		return "tax_deposit"
	case SourceKindTransfer:
		return "bank_transfer"
	case SourceKindContractor:
		return "contractor_payment"
	}
	return ""
}

// SourceDocumentRef is a typed reference to the source document a bank
// transaction was reconciled against.
type SourceDocumentRef struct {
	Kind SourceKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// NewSourceDocumentRef creates a validated source document reference
func NewSourceDocumentRef(kind SourceKind, id uuid.UUID) (SourceDocumentRef, error) {
	if !kind.IsValid() {
		return SourceDocumentRef{}, shared.NewDomainError("INVALID_SOURCE_KIND", "Source document kind is not valid")
	}
	if id == uuid.Nil {
		return SourceDocumentRef{}, shared.NewDomainError("INVALID_SOURCE_ID", "Source document ID cannot be empty")
	}
	return SourceDocumentRef{Kind: kind, ID: id}, nil
}
