package banking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a bank transaction
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// ImportSourceManual marks transactions entered by hand rather than imported
const ImportSourceManual = "manual"

// BankTransaction is the aggregate root of the reconciliation core. It is
// created on import or manual entry and then carries reconciliation, ledger
// link and reversal-pairing state through its lifecycle.
type BankTransaction struct {
	shared.CompanyAggregateRoot
	BankAccountID   uuid.UUID       `json:"bank_account_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	ValueDate       *time.Time      `json:"value_date,omitempty"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	ChequeNumber    string          `json:"cheque_number,omitempty"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    *decimal.Decimal `json:"balance_after,omitempty"`
	Category        string          `json:"category,omitempty"`
	TransactionHash string          `json:"transaction_hash"`
	ImportSource    string          `json:"import_source"`
	ImportBatchID   *uuid.UUID      `json:"import_batch_id,omitempty"`

	// Reconciliation state
	IsReconciled     bool               `json:"is_reconciled"`
	ReconciledSource *SourceDocumentRef `json:"reconciled_source,omitempty"`
	ReconciledAt     *time.Time         `json:"reconciled_at,omitempty"`
	ReconciledBy     *uuid.UUID         `json:"reconciled_by,omitempty"`

	// Ledger link (audit trail into double-entry postings)
	JournalEntryID     *uuid.UUID `json:"reconciled_journal_entry_id,omitempty"`
	JournalEntryLineID *uuid.UUID `json:"reconciled_journal_entry_line_id,omitempty"`

	// Reversal pairing
	IsReversalTransaction  bool       `json:"is_reversal_transaction"`
	PairedTransactionID    *uuid.UUID `json:"paired_transaction_id,omitempty"`
	ReversalJournalEntryID *uuid.UUID `json:"reversal_journal_entry_id,omitempty"`
}

// NewBankTransaction creates a new bank transaction
func NewBankTransaction(
	companyID uuid.UUID,
	bankAccountID uuid.UUID,
	date time.Time,
	txType TransactionType,
	amount decimal.Decimal,
	description string,
) (*BankTransaction, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE",
			fmt.Sprintf("Transaction type must be %s or %s", TransactionTypeCredit, TransactionTypeDebit))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}

	tx := &BankTransaction{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		BankAccountID:        bankAccountID,
		TransactionDate:      date,
		Description:          description,
		Type:                 txType,
		Amount:               amount,
		ImportSource:         ImportSourceManual,
	}
	tx.TransactionHash = ComputeTransactionHash(date, amount, description)

	return tx, nil
}

// ComputeTransactionHash produces the deterministic digest used for duplicate
// suppression on import. The hash covers date, amount and description only;
// identical statements rows always hash identically regardless of import batch.
func ComputeTransactionHash(date time.Time, amount decimal.Decimal, description string) string {
	payload := fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), amount.StringFixed(2), description)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Amendment describes a partial update to a transaction. Nil fields are
// left untouched.
type Amendment struct {
	TransactionDate *time.Time
	ValueDate       *time.Time
	Description     *string
	ReferenceNumber *string
	ChequeNumber    *string
	Type            *TransactionType
	Amount          *decimal.Decimal
	BalanceAfter    *decimal.Decimal
	Category        *string
}

// Amend applies a partial update. Reconciled or paired transactions cannot be
// amended; their amounts and dates are referenced by downstream state. The
// transaction hash is recomputed whenever date, amount or description change
// so it stays consistent with field values.
func (tx *BankTransaction) Amend(a Amendment) error {
	if tx.IsReconciled {
		return shared.NewDomainError("INVALID_STATE", "Cannot amend a reconciled transaction; unreconcile it first")
	}
	if tx.IsPaired() {
		return shared.NewDomainError("INVALID_STATE", "Cannot amend a paired transaction; unpair it first")
	}
	if a.Type != nil && !a.Type.IsValid() {
		return shared.NewDomainError("INVALID_TRANSACTION_TYPE",
			fmt.Sprintf("Transaction type must be %s or %s", TransactionTypeCredit, TransactionTypeDebit))
	}
	if a.Amount != nil && a.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}

	rehash := false
	if a.TransactionDate != nil {
		tx.TransactionDate = *a.TransactionDate
		rehash = true
	}
	if a.ValueDate != nil {
		tx.ValueDate = a.ValueDate
	}
	if a.Description != nil {
		tx.Description = *a.Description
		rehash = true
	}
	if a.ReferenceNumber != nil {
		tx.ReferenceNumber = *a.ReferenceNumber
	}
	if a.ChequeNumber != nil {
		tx.ChequeNumber = *a.ChequeNumber
	}
	if a.Type != nil {
		tx.Type = *a.Type
	}
	if a.Amount != nil {
		tx.Amount = *a.Amount
		rehash = true
	}
	if a.BalanceAfter != nil {
		tx.BalanceAfter = a.BalanceAfter
	}
	if a.Category != nil {
		tx.Category = *a.Category
	}

	if rehash {
		tx.TransactionHash = ComputeTransactionHash(tx.TransactionDate, tx.Amount, tx.Description)
	}

	tx.Touch()
	tx.IncrementVersion()
	return nil
}

// SignedAmount returns the amount with credits positive and debits negative
func (tx *BankTransaction) SignedAmount() decimal.Decimal {
	if tx.Type == TransactionTypeDebit {
		return tx.Amount.Neg()
	}
	return tx.Amount
}

// Reconcile links the transaction to the source document that caused it
func (tx *BankTransaction) Reconcile(source SourceDocumentRef, reconciledBy uuid.UUID) error {
	if tx.IsReconciled {
		return shared.ErrAlreadyReconciled
	}
	if !source.Kind.IsValid() || source.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_SOURCE", "A valid source document reference is required")
	}

	now := time.Now()
	tx.IsReconciled = true
	tx.ReconciledSource = &source
	tx.ReconciledAt = &now
	if reconciledBy != uuid.Nil {
		tx.ReconciledBy = &reconciledBy
	}
	tx.Touch()
	tx.IncrementVersion()
	return nil
}

// Unreconcile detaches the transaction from its source document. The journal
// link is cleared as well; it is meaningless without a source reference.
func (tx *BankTransaction) Unreconcile() error {
	if !tx.IsReconciled {
		return shared.NewDomainError("NOT_RECONCILED", "Transaction is not reconciled")
	}

	tx.IsReconciled = false
	tx.ReconciledSource = nil
	tx.ReconciledAt = nil
	tx.ReconciledBy = nil
	tx.JournalEntryID = nil
	tx.JournalEntryLineID = nil
	tx.Touch()
	tx.IncrementVersion()
	return nil
}

// LinkJournalEntry records the ledger posting line that moved the bank
// account for this transaction's source document.
func (tx *BankTransaction) LinkJournalEntry(entryID, lineID uuid.UUID) error {
	if !tx.IsReconciled || tx.ReconciledSource == nil {
		return shared.NewDomainError("NOT_RECONCILED", "Cannot link a journal entry to an unreconciled transaction")
	}
	if entryID == uuid.Nil || lineID == uuid.Nil {
		return shared.NewDomainError("INVALID_JOURNAL_REF", "Journal entry and line IDs are required")
	}

	tx.JournalEntryID = &entryID
	tx.JournalEntryLineID = &lineID
	tx.Touch()
	tx.IncrementVersion()
	return nil
}

// HasJournalLink returns true when the ledger posting reference is recorded
func (tx *BankTransaction) HasJournalLink() bool {
	return tx.JournalEntryID != nil && tx.JournalEntryLineID != nil
}

// MarkAsReversal flags the transaction as a probable reversal. Idempotent.
func (tx *BankTransaction) MarkAsReversal() {
	if tx.IsReversalTransaction {
		return
	}
	tx.IsReversalTransaction = true
	tx.Touch()
	tx.IncrementVersion()
}

// IsPaired returns true when the transaction is paired with a counterpart
func (tx *BankTransaction) IsPaired() bool {
	return tx.PairedTransactionID != nil
}

// ValidatePairing checks the preconditions for pairing this transaction (the
// reversal credit) with an original debit. It reports the first violation.
func (tx *BankTransaction) ValidatePairing(original *BankTransaction) error {
	if original == nil {
		return shared.ErrNotFound
	}
	if tx.ID == original.ID {
		return shared.NewDomainError("INVALID_PAIRING", "A transaction cannot be paired with itself")
	}
	if tx.Type != TransactionTypeCredit {
		return shared.NewDomainError("INVALID_PAIRING", "Reversal transaction must be a credit")
	}
	if original.Type != TransactionTypeDebit {
		return shared.NewDomainError("INVALID_PAIRING", "Original transaction must be a debit")
	}
	if tx.BankAccountID != original.BankAccountID {
		return shared.NewDomainError("INVALID_PAIRING", "Both transactions must belong to the same bank account")
	}
	if !tx.Amount.Equal(original.Amount) {
		return shared.NewDomainError("INVALID_PAIRING",
			fmt.Sprintf("Amounts must match exactly: %s vs %s", tx.Amount.StringFixed(2), original.Amount.StringFixed(2)))
	}
	if tx.IsPaired() || original.IsPaired() {
		return shared.ErrAlreadyPaired
	}
	return nil
}

// PairWith records the symmetric pairing on both transactions. Callers must
// persist both rows in a single transaction guarded by the unpaired
// precondition; see the repository's PairTransactions.
func (tx *BankTransaction) PairWith(original *BankTransaction) error {
	if err := tx.ValidatePairing(original); err != nil {
		return err
	}

	tx.PairedTransactionID = &original.ID
	original.PairedTransactionID = &tx.ID
	tx.MarkAsReversal()
	tx.Touch()
	tx.IncrementVersion()
	original.Touch()
	original.IncrementVersion()
	return nil
}

// UnpairFrom clears the pairing on both sides
func (tx *BankTransaction) UnpairFrom(counterpart *BankTransaction) error {
	if !tx.IsPaired() {
		return shared.NewDomainError("NOT_PAIRED", "Transaction is not paired")
	}
	if counterpart == nil || tx.PairedTransactionID == nil || *tx.PairedTransactionID != counterpart.ID {
		return shared.NewDomainError("INVALID_PAIRING", "Counterpart does not match the recorded pairing")
	}

	tx.PairedTransactionID = nil
	counterpart.PairedTransactionID = nil
	tx.Touch()
	tx.IncrementVersion()
	counterpart.Touch()
	counterpart.IncrementVersion()
	return nil
}

// CanDelete reports whether the transaction may be hard-deleted. Reconciled
// or paired transactions carry downstream state and must be detached first.
func (tx *BankTransaction) CanDelete() error {
	if tx.IsReconciled {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete a reconciled transaction; unreconcile it first")
	}
	if tx.IsPaired() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete a paired transaction; unpair it first")
	}
	return nil
}
