package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntryModel is the read model of the journal_entries table owned by
// the accounting subsystem. The reconciliation core only reads entries to
// resolve bank posting lines.
type JournalEntryModel struct {
	BaseModel
	CompanyID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	EntryNumber string                  `gorm:"type:varchar(50)"`
	EntryDate   time.Time               `gorm:"not null"`
	Narration   string                  `gorm:"type:text"`
	Status      ledger.EntryStatus      `gorm:"type:varchar(20);not null"`
	SourceType  string                  `gorm:"type:varchar(30);index"`
	SourceID    *uuid.UUID              `gorm:"type:uuid;index"`
	Lines       []JournalEntryLineModel `gorm:"foreignKey:JournalEntryID;references:ID"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// JournalEntryLineModel is the read model of one posting leg.
type JournalEntryLineModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalEntryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LedgerAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Credit          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (JournalEntryLineModel) TableName() string {
	return "journal_entry_lines"
}

// ToDomain converts the read model to a domain JournalEntry with its lines.
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	entry := &ledger.JournalEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CompanyID:   m.CompanyID,
		EntryNumber: m.EntryNumber,
		EntryDate:   m.EntryDate,
		Narration:   m.Narration,
		Status:      m.Status,
		SourceType:  m.SourceType,
		SourceID:    m.SourceID,
	}
	entry.Lines = make([]ledger.JournalEntryLine, len(m.Lines))
	for i, line := range m.Lines {
		entry.Lines[i] = ledger.JournalEntryLine{
			ID:              line.ID,
			JournalEntryID:  line.JournalEntryID,
			LedgerAccountID: line.LedgerAccountID,
			Debit:           line.Debit,
			Credit:          line.Credit,
			Description:     line.Description,
		}
	}
	return entry
}
