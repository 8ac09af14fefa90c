package persistence

import (
	"context"
	"errors"

	"github.com/finbooks/backend/internal/domain/billing"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentAllocationRepository implements billing.PaymentAllocationRepository using GORM
type GormPaymentAllocationRepository struct {
	db *gorm.DB
}

// NewGormPaymentAllocationRepository creates a new GormPaymentAllocationRepository
func NewGormPaymentAllocationRepository(db *gorm.DB) *GormPaymentAllocationRepository {
	return &GormPaymentAllocationRepository{db: db}
}

// FindByID finds an allocation by ID
func (r *GormPaymentAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentAllocation, error) {
	var model models.PaymentAllocationModel
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

// FindByPayment lists all allocations of a payment, oldest first
func (r *GormPaymentAllocationRepository) FindByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocModels []models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND payment_id = ?", companyID, paymentID).
		Order("allocation_date ASC, created_at ASC").
		Find(&allocModels).Error; err != nil {
		return nil, err
	}
	return toDomainAllocations(allocModels), nil
}

// FindByInvoice lists all allocations against an invoice
func (r *GormPaymentAllocationRepository) FindByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocModels []models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND invoice_id = ?", companyID, invoiceID).
		Order("allocation_date ASC, created_at ASC").
		Find(&allocModels).Error; err != nil {
		return nil, err
	}
	return toDomainAllocations(allocModels), nil
}

// SumByPayment totals the allocated amounts of a payment
func (r *GormPaymentAllocationRepository) SumByPayment(ctx context.Context, companyID, paymentID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("COALESCE(SUM(allocated_amount), 0) AS total").
		Where("company_id = ? AND payment_id = ?", companyID, paymentID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates an allocation
func (r *GormPaymentAllocationRepository) Save(ctx context.Context, allocation *billing.PaymentAllocation) error {
	model := models.PaymentAllocationModelFromDomain(allocation)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Delete removes an allocation
func (r *GormPaymentAllocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PaymentAllocationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByPayment removes every allocation of a payment
func (r *GormPaymentAllocationRepository) DeleteByPayment(ctx context.Context, companyID, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("company_id = ? AND payment_id = ?", companyID, paymentID).
		Delete(&models.PaymentAllocationModel{}).Error
}

// AllocateWithinBalance runs fn inside one database transaction while
// holding a FOR UPDATE lock on the payment row. Concurrent allocations
// against the same payment serialize on that lock, so the balance check fn
// performs cannot race with another writer.
func (r *GormPaymentAllocationRepository) AllocateWithinBalance(ctx context.Context, companyID, paymentID uuid.UUID,
	fn func(payment *billing.Payment, repo billing.PaymentAllocationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		var paymentModel models.PaymentModel
		if err := dbTx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ? AND id = ?", companyID, paymentID).
			First(&paymentModel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		return fn(paymentModel.ToDomain(), &GormPaymentAllocationRepository{db: dbTx})
	})
}

func toDomainAllocations(allocModels []models.PaymentAllocationModel) []billing.PaymentAllocation {
	allocations := make([]billing.PaymentAllocation, len(allocModels))
	for i := range allocModels {
		allocations[i] = *allocModels[i].ToDomain()
	}
	return allocations
}
