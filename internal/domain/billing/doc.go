// Package billing provides domain models for payment allocation.
//
// This package implements the receivables settlement bounded context, which
// is responsible for:
//   - Splitting customer payments across invoices, advances and on-account
//     balances
//   - Enforcing that allocations never exceed the payment amount
//   - Tracking TDS (tax deducted at source) per allocation
//   - Deriving invoice payment status from the allocation ledger
//
// Key Aggregates:
//   - PaymentAllocation: One slice of a payment applied to a target
//
// Payments and invoices are owned by the invoicing subsystem; this package
// reads them through repository interfaces but never mutates them.
package billing
