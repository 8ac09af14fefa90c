package persistence

import (
	"context"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMatchAuditRepository implements banking.MatchAuditRepository using GORM.
// The audit log is append-only; there is no update or delete path.
type GormMatchAuditRepository struct {
	db *gorm.DB
}

// NewGormMatchAuditRepository creates a new GormMatchAuditRepository
func NewGormMatchAuditRepository(db *gorm.DB) *GormMatchAuditRepository {
	return &GormMatchAuditRepository{db: db}
}

// Append stores a new audit entry
func (r *GormMatchAuditRepository) Append(ctx context.Context, entry *banking.MatchAuditEntry) error {
	model := models.MatchAuditEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByTransaction lists entries for a transaction, newest first
func (r *GormMatchAuditRepository) FindByTransaction(ctx context.Context, companyID, transactionID uuid.UUID) ([]banking.MatchAuditEntry, error) {
	var entryModels []models.MatchAuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND transaction_id = ?", companyID, transactionID).
		Order("created_at DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainAuditEntries(entryModels), nil
}

// FindRecentForCompany lists the latest entries across a company
func (r *GormMatchAuditRepository) FindRecentForCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]banking.MatchAuditEntry, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entryModels []models.MatchAuditEntryModel
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainAuditEntries(entryModels), nil
}

func toDomainAuditEntries(entryModels []models.MatchAuditEntryModel) []banking.MatchAuditEntry {
	entries := make([]banking.MatchAuditEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries
}
