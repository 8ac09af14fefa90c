package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountModel is the persistence model for the BankAccount aggregate root.
type BankAccountModel struct {
	CompanyAggregateModel
	AccountName           string               `gorm:"type:varchar(200);not null"`
	AccountNumber         string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_bank_account_company_number,priority:2"`
	BankName              string               `gorm:"type:varchar(200)"`
	IFSCCode              string               `gorm:"column:ifsc_code;type:varchar(11)"`
	Currency              valueobject.Currency `gorm:"type:varchar(3);not null;default:'INR'"`
	CurrentBalance        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	LinkedLedgerAccountID *uuid.UUID           `gorm:"type:uuid;index"`
	IsActive              bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount.
func (m *BankAccountModel) ToDomain() *banking.BankAccount {
	account := &banking.BankAccount{
		AccountName:           m.AccountName,
		AccountNumber:         m.AccountNumber,
		BankName:              m.BankName,
		IFSCCode:              m.IFSCCode,
		Currency:              m.Currency,
		CurrentBalance:        m.CurrentBalance,
		LinkedLedgerAccountID: m.LinkedLedgerAccountID,
		IsActive:              m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&account.CompanyAggregateRoot)
	return account
}

// FromDomain populates the persistence model from a domain BankAccount.
func (m *BankAccountModel) FromDomain(a *banking.BankAccount) {
	m.FromDomainCompanyAggregateRoot(a.CompanyAggregateRoot)
	m.AccountName = a.AccountName
	m.AccountNumber = a.AccountNumber
	m.BankName = a.BankName
	m.IFSCCode = a.IFSCCode
	m.Currency = a.Currency
	m.CurrentBalance = a.CurrentBalance
	m.LinkedLedgerAccountID = a.LinkedLedgerAccountID
	m.IsActive = a.IsActive
}

// BankAccountModelFromDomain creates a new persistence model from a domain BankAccount.
func BankAccountModelFromDomain(a *banking.BankAccount) *BankAccountModel {
	m := &BankAccountModel{}
	m.FromDomain(a)
	return m
}

// BankTransactionModel is the persistence model for the BankTransaction
// aggregate root. The reconciled source document reference is flattened into
// two columns; the pairing is a self-referencing nullable FK.
type BankTransactionModel struct {
	CompanyAggregateModel
	BankAccountID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	TransactionDate time.Time                `gorm:"not null;index"`
	ValueDate       *time.Time
	Description     string                   `gorm:"type:text;not null"`
	ReferenceNumber string                   `gorm:"type:varchar(100);index"`
	ChequeNumber    string                   `gorm:"type:varchar(50)"`
	Type            banking.TransactionType  `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	BalanceAfter    *decimal.Decimal         `gorm:"type:decimal(18,2)"`
	Category        string                   `gorm:"type:varchar(100)"`
	TransactionHash string                   `gorm:"type:char(64);not null;index:idx_bank_tx_hash"`
	ImportSource    string                   `gorm:"type:varchar(50);not null;default:'manual'"`
	ImportBatchID   *uuid.UUID               `gorm:"type:uuid;index"`

	IsReconciled         bool                `gorm:"not null;default:false;index"`
	ReconciledSourceKind *banking.SourceKind `gorm:"type:varchar(30);index"`
	ReconciledSourceID   *uuid.UUID          `gorm:"type:uuid;index"`
	ReconciledAt         *time.Time
	ReconciledBy         *uuid.UUID          `gorm:"type:uuid"`

	JournalEntryID     *uuid.UUID `gorm:"type:uuid;index"`
	JournalEntryLineID *uuid.UUID `gorm:"type:uuid"`

	IsReversalTransaction  bool       `gorm:"not null;default:false;index"`
	PairedTransactionID    *uuid.UUID `gorm:"type:uuid;index"`
	ReversalJournalEntryID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the persistence model to a domain BankTransaction.
func (m *BankTransactionModel) ToDomain() *banking.BankTransaction {
	tx := &banking.BankTransaction{
		BankAccountID:   m.BankAccountID,
		TransactionDate: m.TransactionDate,
		ValueDate:       m.ValueDate,
		Description:     m.Description,
		ReferenceNumber: m.ReferenceNumber,
		ChequeNumber:    m.ChequeNumber,
		Type:            m.Type,
		Amount:          m.Amount,
		BalanceAfter:    m.BalanceAfter,
		Category:        m.Category,
		TransactionHash: m.TransactionHash,
		ImportSource:    m.ImportSource,
		ImportBatchID:   m.ImportBatchID,

		IsReconciled: m.IsReconciled,
		ReconciledAt: m.ReconciledAt,
		ReconciledBy: m.ReconciledBy,

		JournalEntryID:     m.JournalEntryID,
		JournalEntryLineID: m.JournalEntryLineID,

		IsReversalTransaction:  m.IsReversalTransaction,
		PairedTransactionID:    m.PairedTransactionID,
		ReversalJournalEntryID: m.ReversalJournalEntryID,
	}
	if m.ReconciledSourceKind != nil && m.ReconciledSourceID != nil {
		tx.ReconciledSource = &banking.SourceDocumentRef{
			Kind: *m.ReconciledSourceKind,
			ID:   *m.ReconciledSourceID,
		}
	}
	m.PopulateCompanyAggregateRoot(&tx.CompanyAggregateRoot)
	return tx
}

// FromDomain populates the persistence model from a domain BankTransaction.
func (m *BankTransactionModel) FromDomain(tx *banking.BankTransaction) {
	m.FromDomainCompanyAggregateRoot(tx.CompanyAggregateRoot)
	m.BankAccountID = tx.BankAccountID
	m.TransactionDate = tx.TransactionDate
	m.ValueDate = tx.ValueDate
	m.Description = tx.Description
	m.ReferenceNumber = tx.ReferenceNumber
	m.ChequeNumber = tx.ChequeNumber
	m.Type = tx.Type
	m.Amount = tx.Amount
	m.BalanceAfter = tx.BalanceAfter
	m.Category = tx.Category
	m.TransactionHash = tx.TransactionHash
	m.ImportSource = tx.ImportSource
	m.ImportBatchID = tx.ImportBatchID

	m.IsReconciled = tx.IsReconciled
	m.ReconciledSourceKind = nil
	m.ReconciledSourceID = nil
	if tx.ReconciledSource != nil {
		kind := tx.ReconciledSource.Kind
		id := tx.ReconciledSource.ID
		m.ReconciledSourceKind = &kind
		m.ReconciledSourceID = &id
	}
	m.ReconciledAt = tx.ReconciledAt
	m.ReconciledBy = tx.ReconciledBy

	m.JournalEntryID = tx.JournalEntryID
	m.JournalEntryLineID = tx.JournalEntryLineID

	m.IsReversalTransaction = tx.IsReversalTransaction
	m.PairedTransactionID = tx.PairedTransactionID
	m.ReversalJournalEntryID = tx.ReversalJournalEntryID
}

// BankTransactionModelFromDomain creates a new persistence model from a domain BankTransaction.
func BankTransactionModelFromDomain(tx *banking.BankTransaction) *BankTransactionModel {
	m := &BankTransactionModel{}
	m.FromDomain(tx)
	return m
}

// MatchAuditEntryModel is the persistence model for the append-only
// reconciliation audit trail.
type MatchAuditEntryModel struct {
	BaseModel
	CompanyID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	TransactionID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Action        banking.MatchAction `gorm:"type:varchar(20);not null"`
	SourceKind    string              `gorm:"type:varchar(30)"`
	SourceID      *uuid.UUID          `gorm:"type:uuid"`
	ActorID       *uuid.UUID          `gorm:"type:uuid"`
	Notes         string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MatchAuditEntryModel) TableName() string {
	return "match_audit_log"
}

// ToDomain converts the persistence model to a domain MatchAuditEntry.
func (m *MatchAuditEntryModel) ToDomain() *banking.MatchAuditEntry {
	return &banking.MatchAuditEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CompanyID:     m.CompanyID,
		TransactionID: m.TransactionID,
		Action:        m.Action,
		SourceKind:    m.SourceKind,
		SourceID:      m.SourceID,
		ActorID:       m.ActorID,
		Notes:         m.Notes,
	}
}

// FromDomain populates the persistence model from a domain MatchAuditEntry.
func (m *MatchAuditEntryModel) FromDomain(e *banking.MatchAuditEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.CompanyID = e.CompanyID
	m.TransactionID = e.TransactionID
	m.Action = e.Action
	m.SourceKind = e.SourceKind
	m.SourceID = e.SourceID
	m.ActorID = e.ActorID
	m.Notes = e.Notes
}

// MatchAuditEntryModelFromDomain creates a new persistence model from a domain MatchAuditEntry.
func MatchAuditEntryModelFromDomain(e *banking.MatchAuditEntry) *MatchAuditEntryModel {
	m := &MatchAuditEntryModel{}
	m.FromDomain(e)
	return m
}
