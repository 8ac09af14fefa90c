package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/billing"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentAllocationModel is the persistence model for the PaymentAllocation
// aggregate root.
type PaymentAllocationModel struct {
	CompanyAggregateModel
	PaymentID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	InvoiceID       *uuid.UUID             `gorm:"type:uuid;index"`
	AllocatedAmount decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Currency        valueobject.Currency   `gorm:"type:varchar(3);not null;default:'INR'"`
	INREquivalent   decimal.Decimal        `gorm:"column:inr_equivalent;type:decimal(18,2);not null"`
	ExchangeRate    decimal.Decimal        `gorm:"type:decimal(18,6);not null"`
	AllocationDate  time.Time              `gorm:"not null;index"`
	AllocationType  billing.AllocationType `gorm:"type:varchar(30);not null"`
	TDSAllocated    decimal.Decimal        `gorm:"column:tds_allocated;type:decimal(18,2);not null"`
	Notes           string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation.
func (m *PaymentAllocationModel) ToDomain() *billing.PaymentAllocation {
	alloc := &billing.PaymentAllocation{
		PaymentID:       m.PaymentID,
		InvoiceID:       m.InvoiceID,
		AllocatedAmount: m.AllocatedAmount,
		Currency:        m.Currency,
		INREquivalent:   m.INREquivalent,
		ExchangeRate:    m.ExchangeRate,
		AllocationDate:  m.AllocationDate,
		AllocationType:  m.AllocationType,
		TDSAllocated:    m.TDSAllocated,
		Notes:           m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&alloc.CompanyAggregateRoot)
	return alloc
}

// FromDomain populates the persistence model from a domain PaymentAllocation.
func (m *PaymentAllocationModel) FromDomain(a *billing.PaymentAllocation) {
	m.FromDomainCompanyAggregateRoot(a.CompanyAggregateRoot)
	m.PaymentID = a.PaymentID
	m.InvoiceID = a.InvoiceID
	m.AllocatedAmount = a.AllocatedAmount
	m.Currency = a.Currency
	m.INREquivalent = a.INREquivalent
	m.ExchangeRate = a.ExchangeRate
	m.AllocationDate = a.AllocationDate
	m.AllocationType = a.AllocationType
	m.TDSAllocated = a.TDSAllocated
	m.Notes = a.Notes
}

// PaymentAllocationModelFromDomain creates a new persistence model from a domain PaymentAllocation.
func PaymentAllocationModelFromDomain(a *billing.PaymentAllocation) *PaymentAllocationModel {
	m := &PaymentAllocationModel{}
	m.FromDomain(a)
	return m
}

// PaymentModel is the read model of the payments table owned by the
// invoicing subsystem. The allocation engine never writes it.
type PaymentModel struct {
	BaseModel
	CompanyID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID     *uuid.UUID           `gorm:"type:uuid;index"`
	InvoiceID      *uuid.UUID           `gorm:"type:uuid;index"`
	PaymentDate    time.Time            `gorm:"not null"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null;default:'INR'"`
	PaymentType    string               `gorm:"type:varchar(50)"`
	IncomeCategory string               `gorm:"type:varchar(100)"`
	TDSAmount      decimal.Decimal      `gorm:"column:tds_amount;type:decimal(18,2);not null"`
	TDSSection     string               `gorm:"column:tds_section;type:varchar(20)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the read model to a domain Payment.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CompanyID:      m.CompanyID,
		CustomerID:     m.CustomerID,
		InvoiceID:      m.InvoiceID,
		PaymentDate:    m.PaymentDate,
		Amount:         m.Amount,
		Currency:       m.Currency,
		PaymentType:    m.PaymentType,
		IncomeCategory: m.IncomeCategory,
		TDSAmount:      m.TDSAmount,
		TDSSection:     m.TDSSection,
	}
}

// InvoiceModel is the read model of the invoices table owned by the
// invoicing subsystem.
type InvoiceModel struct {
	BaseModel
	CompanyID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID           `gorm:"type:uuid;index"`
	InvoiceNumber string               `gorm:"type:varchar(50);not null"`
	InvoiceDate   time.Time            `gorm:"not null"`
	DueDate       *time.Time
	TotalAmount   decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null;default:'INR'"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the read model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CompanyID:     m.CompanyID,
		CustomerID:    m.CustomerID,
		InvoiceNumber: m.InvoiceNumber,
		InvoiceDate:   m.InvoiceDate,
		DueDate:       m.DueDate,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
	}
}
