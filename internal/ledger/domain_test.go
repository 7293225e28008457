package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoubleEntryBuildsMatchedPair(t *testing.T) {
	txDate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lines := DoubleEntry("ORD-1", txDate, AccountCash, AccountSalesRevenue, 9000, "sale")

	require.Len(t, lines, 2)
	require.Equal(t, DirectionDebit, lines[0].Direction)
	require.Equal(t, AccountCash, lines[0].Account)
	require.Equal(t, DirectionCredit, lines[1].Direction)
	require.Equal(t, AccountSalesRevenue, lines[1].Account)
	require.Equal(t, lines[0].Amount, lines[1].Amount)
	require.Equal(t, lines[0].TxRef, lines[1].TxRef)
}

func TestDoubleEntryOmitsNonPositiveAmounts(t *testing.T) {
	txDate := time.Now()
	require.Nil(t, DoubleEntry("X", txDate, AccountCOGS, AccountInventory, 0, ""))
	require.Nil(t, DoubleEntry("X", txDate, AccountCOGS, AccountInventory, -500, ""))
}

func TestCanonicalAccountResolvesAliases(t *testing.T) {
	require.Equal(t, AccountShrinkage, CanonicalAccount("Inventory Shrinkage"))
	require.Equal(t, AccountCOGS, CanonicalAccount("Cost of Goods Sold"))
	require.Equal(t, AccountCash, CanonicalAccount(AccountCash))
	require.Equal(t, "Petty Cash", CanonicalAccount("Petty Cash"))
}

func TestAccountBalanceNormalSides(t *testing.T) {
	cash := AccountBalance{Account: AccountCash, Normal: NormalDebit, Debit: 9000, Credit: 2000}
	require.EqualValues(t, 7000, cash.Balance())

	revenue := AccountBalance{Account: AccountSalesRevenue, Normal: NormalCredit, Debit: 0, Credit: 9000}
	require.EqualValues(t, 9000, revenue.Balance())
}

func TestBuildTrialBalance(t *testing.T) {
	tb := BuildTrialBalance([]AccountBalance{
		{Account: AccountCash, Normal: NormalDebit, Debit: 9000},
		{Account: AccountSalesRevenue, Normal: NormalCredit, Credit: 9000},
		{Account: AccountCOGS, Normal: NormalDebit, Debit: 6000},
		{Account: AccountInventory, Normal: NormalDebit, Credit: 6000},
	})

	require.EqualValues(t, 15000, tb.TotalDebit)
	require.EqualValues(t, 15000, tb.TotalCredit)
	require.True(t, tb.Balanced())
}

func TestBuildTrialBalanceDetectsImbalance(t *testing.T) {
	tb := BuildTrialBalance([]AccountBalance{
		{Account: AccountCash, Normal: NormalDebit, Debit: 9000},
		{Account: AccountSalesRevenue, Normal: NormalCredit, Credit: 8000},
	})
	require.False(t, tb.Balanced())
}
