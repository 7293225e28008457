package ledger

import (
	"fmt"
	"time"

	"github.com/warungledger/warungledger/internal/shared"
)

// Direction marks a journal line as debit or credit.
type Direction string

const (
	// DirectionDebit increases debit-normal accounts.
	DirectionDebit Direction = "DEBIT"
	// DirectionCredit increases credit-normal accounts.
	DirectionCredit Direction = "CREDIT"
)

// NormalSide is the side on which an account's balance grows.
type NormalSide string

const (
	NormalDebit  NormalSide = "DEBIT"
	NormalCredit NormalSide = "CREDIT"
)

// Account names of the fixed seeded chart. Accounts are not user-creatable.
const (
	AccountCash               = "Cash"
	AccountAccountsReceivable = "Accounts Receivable"
	AccountSalesRevenue       = "Sales Revenue"
	AccountCOGS               = "COGS"
	AccountInventory          = "Inventory"
	AccountShrinkage          = "Inventory Shrinkage Expense"
)

// accountAliases maps accepted shorthand names onto the seeded chart.
var accountAliases = map[string]string{
	"Inventory Shrinkage": AccountShrinkage,
	"Cost of Goods Sold":  AccountCOGS,
}

// CanonicalAccount resolves an accepted alias to its seeded chart name.
// Unknown names pass through unchanged and fail lookup at posting time.
func CanonicalAccount(name string) string {
	if canonical, ok := accountAliases[name]; ok {
		return canonical
	}
	return name
}

// AccountType classifies an account in the chart.
type AccountType string

const (
	TypeAsset   AccountType = "ASSET"
	TypeRevenue AccountType = "REVENUE"
	TypeExpense AccountType = "EXPENSE"
)

// Account is a general ledger account.
type Account struct {
	ID     int64
	Name   string
	Type   AccountType
	Normal NormalSide
}

// Entry is a posted journal line joined with its account name.
type Entry struct {
	ID        int64
	TxRef     string
	TxDate    time.Time
	Account   string
	Direction Direction
	Amount    shared.Cents
	Note      *string
}

// LineInput describes a journal line to post. Amount must be positive.
type LineInput struct {
	TxRef     string
	TxDate    time.Time
	Account   string
	Direction Direction
	Amount    shared.Cents
	Note      string
}

// DoubleEntry builds the matched debit/credit pair for one amount. Amounts
// of zero or less produce no lines, so promotional zero-value transactions
// post nothing rather than a zero pair.
func DoubleEntry(txRef string, txDate time.Time, debitAccount, creditAccount string, amount shared.Cents, note string) []LineInput {
	if amount <= 0 {
		return nil
	}
	return []LineInput{
		{TxRef: txRef, TxDate: txDate, Account: debitAccount, Direction: DirectionDebit, Amount: amount, Note: note},
		{TxRef: txRef, TxDate: txDate, Account: creditAccount, Direction: DirectionCredit, Amount: amount, Note: note},
	}
}

// UnknownAccountError indicates a posting referenced an account outside the
// seeded chart.
type UnknownAccountError struct {
	Name string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("ledger: unknown account %q", e.Name)
}

// EntryFilter narrows ledger listings.
type EntryFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// AccountBalance aggregates one account's posted debits and credits.
type AccountBalance struct {
	Account string
	Normal  NormalSide
	Debit   shared.Cents
	Credit  shared.Cents
}

// Balance computes the closing balance on the account's normal side.
func (a AccountBalance) Balance() shared.Cents {
	if a.Normal == NormalCredit {
		return a.Credit - a.Debit
	}
	return a.Debit - a.Credit
}

// TrialBalance is the aggregated report over all accounts.
type TrialBalance struct {
	Rows        []AccountBalance
	TotalDebit  shared.Cents
	TotalCredit shared.Cents
}

// Balanced reports whether total debits equal total credits.
func (t TrialBalance) Balanced() bool {
	return t.TotalDebit == t.TotalCredit
}

// BuildTrialBalance sums rows into the final report.
func BuildTrialBalance(rows []AccountBalance) TrialBalance {
	tb := TrialBalance{Rows: rows}
	for _, row := range rows {
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	return tb
}
