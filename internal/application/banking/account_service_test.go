package banking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
)

func TestAccountService_CreateAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, zap.NewNop())
	companyID := uuid.New()

	opening := decimal.NewFromInt(50000)
	account, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		CompanyID:      companyID,
		AccountName:    "Operating Account",
		AccountNumber:  "916010045678901",
		BankName:       "Axis Bank",
		IFSCCode:       "UTIB0000001",
		OpeningBalance: &opening,
	})
	require.NoError(t, err)

	assert.Equal(t, companyID, account.CompanyID)
	assert.Equal(t, valueobject.INR, account.Currency)
	assert.True(t, opening.Equal(account.CurrentBalance))
	assert.True(t, account.IsActive)

	stored, err := repo.FindByIDForCompany(context.Background(), companyID, account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestAccountService_CreateAccount_DuplicateNumber(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, zap.NewNop())
	companyID := uuid.New()

	req := CreateAccountRequest{
		CompanyID:     companyID,
		AccountName:   "Operating Account",
		AccountNumber: "916010045678901",
		BankName:      "Axis Bank",
	}
	_, err := svc.CreateAccount(context.Background(), req)
	require.NoError(t, err)

	req.AccountName = "Second Account"
	_, err = svc.CreateAccount(context.Background(), req)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestAccountService_GetAccount_WrongCompany(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, zap.NewNop())

	account, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		CompanyID:     uuid.New(),
		AccountName:   "Operating Account",
		AccountNumber: "916010045678901",
	})
	require.NoError(t, err)

	_, err = svc.GetAccount(context.Background(), uuid.New(), account.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BANK_ACCOUNT_NOT_FOUND", domainErr.Code)
}

func TestAccountService_LinkLedgerAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, zap.NewNop())
	companyID := uuid.New()

	account, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		CompanyID:     companyID,
		AccountName:   "Operating Account",
		AccountNumber: "916010045678901",
	})
	require.NoError(t, err)
	assert.False(t, account.IsLedgerIntegrated())

	ledgerAccountID := uuid.New()
	linked, err := svc.LinkLedgerAccount(context.Background(), companyID, account.ID, ledgerAccountID)
	require.NoError(t, err)

	assert.True(t, linked.IsLedgerIntegrated())
	assert.Equal(t, ledgerAccountID, *linked.LinkedLedgerAccountID)
}
