package persistence

import "strings"

// transactionSortColumns is the whitelist of columns list queries may order
// by. Anything else falls back to the default ordering instead of reaching
// the SQL string.
var transactionSortColumns = map[string]string{
	"transaction_date": "transaction_date",
	"amount":           "amount",
	"created_at":       "created_at",
	"description":      "description",
	"reference_number": "reference_number",
}

const defaultTransactionOrder = "transaction_date DESC, created_at DESC"

// transactionOrderClause builds a safe ORDER BY clause from user-supplied
// sort parameters.
func transactionOrderClause(orderBy, orderDir string) string {
	column, ok := transactionSortColumns[strings.ToLower(orderBy)]
	if !ok {
		return defaultTransactionOrder
	}
	dir := "DESC"
	if strings.EqualFold(orderDir, "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}
