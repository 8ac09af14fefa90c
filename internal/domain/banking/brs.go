package banking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationStatement is a bank reconciliation statement (BRS) for one
// bank account as of a cut-off date. All figures derive purely from the
// inputs supplied; the computation itself is side-effect free. The generator
// reports the two adjusted figures without enforcing their equality, that
// comparison belongs to the accountant reading the statement.
type ReconciliationStatement struct {
	BankAccountID uuid.UUID `json:"bank_account_id"`
	AsOfDate      time.Time `json:"as_of_date"`
	GeneratedAt   time.Time `json:"generated_at"`

	// BankStatementBalance is the balance the bank reports, taken from the
	// account's stored current balance.
	BankStatementBalance decimal.Decimal `json:"bank_statement_balance"`

	// BookBalance is the balance implied by reconciled transactions only:
	// reconciled credits minus reconciled debits.
	BookBalance decimal.Decimal `json:"book_balance"`

	// DepositsInTransit and OutstandingCheques require book-side records
	// with no statement counterpart yet. This core only sees imported
	// statement rows, so both stay zero; the fields keep the statement
	// shape complete for accountants.
	DepositsInTransit  decimal.Decimal `json:"deposits_in_transit"`
	OutstandingCheques decimal.Decimal `json:"outstanding_cheques"`

	// AdjustedBankBalance is statement balance plus deposits in transit
	// minus outstanding cheques.
	AdjustedBankBalance decimal.Decimal `json:"adjusted_bank_balance"`

	// AdjustedBookBalance adds unreconciled movements on top of the book
	// balance. Equals AdjustedBankBalance when everything is explained.
	AdjustedBookBalance decimal.Decimal `json:"adjusted_book_balance"`

	// UnreconciledCredits are bank credits not yet in the books
	UnreconciledCredits      decimal.Decimal `json:"unreconciled_credits"`
	UnreconciledCreditsCount int             `json:"unreconciled_credits_count"`
	// UnreconciledDebits are bank debits not yet in the books
	UnreconciledDebits      decimal.Decimal `json:"unreconciled_debits"`
	UnreconciledDebitsCount int             `json:"unreconciled_debits_count"`

	TotalTransactions int             `json:"total_transactions"`
	ReconciledCount   int             `json:"reconciled_count"`
	UnreconciledCount int             `json:"unreconciled_count"`
	ReconciledPercent decimal.Decimal `json:"reconciled_percent"`

	UnreconciledTransactions []*BankTransaction `json:"unreconciled_transactions"`
}

// BuildReconciliationStatement computes a BRS from the account's stored
// balance and its transactions dated on or before asOf. Transactions after
// the cut-off are ignored.
func BuildReconciliationStatement(
	account *BankAccount,
	asOf time.Time,
	transactions []*BankTransaction,
) *ReconciliationStatement {
	stmt := &ReconciliationStatement{
		BankAccountID:            account.ID,
		AsOfDate:                 asOf,
		GeneratedAt:              time.Now(),
		BankStatementBalance:     account.CurrentBalance,
		UnreconciledTransactions: make([]*BankTransaction, 0),
	}

	for _, tx := range transactions {
		if tx == nil || tx.TransactionDate.After(asOf) {
			continue
		}
		stmt.TotalTransactions++

		if tx.IsReconciled {
			stmt.ReconciledCount++
			stmt.BookBalance = stmt.BookBalance.Add(tx.SignedAmount())
			continue
		}

		stmt.UnreconciledCount++
		stmt.UnreconciledTransactions = append(stmt.UnreconciledTransactions, tx)
		if tx.Type == TransactionTypeCredit {
			stmt.UnreconciledCredits = stmt.UnreconciledCredits.Add(tx.Amount)
			stmt.UnreconciledCreditsCount++
		} else {
			stmt.UnreconciledDebits = stmt.UnreconciledDebits.Add(tx.Amount)
			stmt.UnreconciledDebitsCount++
		}
	}

	stmt.AdjustedBankBalance = stmt.BankStatementBalance.
		Add(stmt.DepositsInTransit).
		Sub(stmt.OutstandingCheques)
	stmt.AdjustedBookBalance = stmt.BookBalance.
		Add(stmt.UnreconciledCredits).
		Sub(stmt.UnreconciledDebits)

	if stmt.TotalTransactions > 0 {
		stmt.ReconciledPercent = decimal.NewFromInt(int64(stmt.ReconciledCount)).
			Div(decimal.NewFromInt(int64(stmt.TotalTransactions))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return stmt
}

// Difference returns adjusted bank balance minus adjusted book balance.
// Zero means the statement fully explains the bank's figure.
func (s *ReconciliationStatement) Difference() decimal.Decimal {
	return s.AdjustedBankBalance.Sub(s.AdjustedBookBalance)
}

// IsFullyReconciled reports whether every transaction up to the cut-off has
// been reconciled.
func (s *ReconciliationStatement) IsFullyReconciled() bool {
	return s.TotalTransactions > 0 && s.UnreconciledCount == 0
}

// ReconciliationSummary is the lightweight dashboard aggregate per account
type ReconciliationSummary struct {
	BankAccountID     uuid.UUID       `json:"bank_account_id"`
	TotalTransactions int             `json:"total_transactions"`
	ReconciledCount   int             `json:"reconciled_count"`
	UnreconciledCount int             `json:"unreconciled_count"`
	CreditTotal       decimal.Decimal `json:"credit_total"`
	DebitTotal        decimal.Decimal `json:"debit_total"`
	UnreconciledValue decimal.Decimal `json:"unreconciled_value"`
	ReversalCount     int             `json:"reversal_count"`
	UnpairedReversals int             `json:"unpaired_reversals"`
}
