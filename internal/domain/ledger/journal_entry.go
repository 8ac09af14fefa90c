package ledger

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry
type EntryStatus string

const (
	EntryStatusDraft  EntryStatus = "draft"
	EntryStatusPosted EntryStatus = "posted"
)

// JournalEntry is the reconciliation core's read model of a double-entry
// posting. Entries are created and posted by the accounting subsystem; this
// package only reads them to link bank transactions to their ledger effects.
type JournalEntry struct {
	shared.BaseEntity
	CompanyID   uuid.UUID   `json:"company_id"`
	EntryNumber string      `json:"entry_number"`
	EntryDate   time.Time   `json:"entry_date"`
	Narration   string      `json:"narration"`
	Status      EntryStatus `json:"status"`

	// SourceType/SourceID identify the document that produced this entry,
	// e.g. ("payment", paymentID). Matches SourceKind.JournalSourceType.
	SourceType string     `json:"source_type"`
	SourceID   *uuid.UUID `json:"source_id,omitempty"`

	Lines []JournalEntryLine `json:"lines"`
}

// JournalEntryLine is one debit or credit leg of an entry
type JournalEntryLine struct {
	ID              uuid.UUID       `json:"id"`
	JournalEntryID  uuid.UUID       `json:"journal_entry_id"`
	LedgerAccountID uuid.UUID       `json:"ledger_account_id"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Description     string          `json:"description,omitempty"`
}

// IsPosted reports whether the entry has been posted to the ledger
func (e *JournalEntry) IsPosted() bool {
	return e.Status == EntryStatusPosted
}

// IsBalanced reports whether debits equal credits across all lines
func (e *JournalEntry) IsBalanced() bool {
	var debits, credits decimal.Decimal
	for _, line := range e.Lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits.Equal(credits)
}

// LineForAccount returns the first line posted to the given ledger account,
// or nil when the entry never touches it.
func (e *JournalEntry) LineForAccount(ledgerAccountID uuid.UUID) *JournalEntryLine {
	for i := range e.Lines {
		if e.Lines[i].LedgerAccountID == ledgerAccountID {
			return &e.Lines[i]
		}
	}
	return nil
}

// JournalEntryRepository defines read access to posted journal entries
type JournalEntryRepository interface {
	// FindByID finds a journal entry with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*JournalEntry, error)

	// FindBySource finds the entry produced by a source document, preferring
	// posted entries over drafts. Returns shared.ErrNotFound when the
	// document has produced no entry at all.
	FindBySource(ctx context.Context, companyID uuid.UUID, sourceType string, sourceID uuid.UUID) (*JournalEntry, error)
}
