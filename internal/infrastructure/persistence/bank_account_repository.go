package persistence

import (
	"context"
	"errors"

	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBankAccountRepository implements banking.BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a bank account by ID within a company
func (r *GormBankAccountRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*banking.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds all bank accounts of a company
func (r *GormBankAccountRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]banking.BankAccount, error) {
	var accountModels []models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("account_name ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]banking.BankAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *banking.BankAccount) error {
	model := models.BankAccountModelFromDomain(account)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// ExistsByAccountNumber checks if an account number exists within a company
func (r *GormBankAccountRepository) ExistsByAccountNumber(ctx context.Context, companyID uuid.UUID, accountNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BankAccountModel{}).
		Where("company_id = ? AND account_number = ?", companyID, accountNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
