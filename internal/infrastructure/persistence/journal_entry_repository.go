package persistence

import (
	"context"
	"errors"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements ledger.JournalEntryRepository using
// GORM. Journal entries are written by the accounting subsystem; this
// repository only reads them.
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// FindByID finds a journal entry with its lines
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource finds the entry produced by a source document. Posted entries
// rank above drafts; a draft is returned only when no posted entry exists.
func (r *GormJournalEntryRepository) FindBySource(ctx context.Context, companyID uuid.UUID, sourceType string, sourceID uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("company_id = ? AND source_type = ? AND source_id = ?",
			companyID, sourceType, sourceID).
		Order("status = 'posted' DESC").
		Order("entry_date DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
