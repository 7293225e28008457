package ledger

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates read access to the journal.
type Repository interface {
	ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error)
	TrialBalance(ctx context.Context, filter EntryFilter) ([]AccountBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// seededAccounts is the fixed chart installed by EnsureAccounts.
var seededAccounts = []Account{
	{Name: AccountCash, Type: TypeAsset, Normal: NormalDebit},
	{Name: AccountAccountsReceivable, Type: TypeAsset, Normal: NormalDebit},
	{Name: AccountInventory, Type: TypeAsset, Normal: NormalDebit},
	{Name: AccountCOGS, Type: TypeExpense, Normal: NormalDebit},
	{Name: AccountShrinkage, Type: TypeExpense, Normal: NormalDebit},
	{Name: AccountSalesRevenue, Type: TypeRevenue, Normal: NormalCredit},
}

// EnsureAccounts installs the fixed chart of accounts. Safe to run on every
// startup.
func EnsureAccounts(ctx context.Context, db *pgxpool.Pool) error {
	for _, acc := range seededAccounts {
		if _, err := db.Exec(ctx, `INSERT INTO accounts (name, type, normal_side) VALUES ($1,$2,$3) ON CONFLICT (name) DO NOTHING`, acc.Name, acc.Type, acc.Normal); err != nil {
			return err
		}
	}
	return nil
}

// PostLines inserts journal lines inside the caller's transaction, resolving
// accounts by name. Used by the checkout and adjustment engines so their
// postings commit or roll back with the rest of their writes.
func PostLines(ctx context.Context, tx pgx.Tx, lines []LineInput) error {
	for _, line := range lines {
		if line.Amount <= 0 {
			return errors.New("ledger: line amount must be positive")
		}
		var accountID int64
		err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE name=$1`, line.Account).Scan(&accountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &UnknownAccountError{Name: line.Account}
			}
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO journal_lines (tx_ref, tx_date, account_id, direction, amount, note)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))`, line.TxRef, line.TxDate, accountID, line.Direction, line.Amount, line.Note); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	query := `SELECT jl.id, jl.tx_ref, jl.tx_date, a.name, jl.direction, jl.amount, jl.note
FROM journal_lines jl JOIN accounts a ON a.id = jl.account_id`
	args := make([]any, 0, 3)
	query, args = appendDateFilters(query, args, filter, "jl.tx_date")
	query += ` ORDER BY jl.tx_date DESC, jl.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT ` + placeholder(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TxRef, &e.TxDate, &e.Account, &e.Direction, &e.Amount, &e.Note); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) TrialBalance(ctx context.Context, filter EntryFilter) ([]AccountBalance, error) {
	query := `SELECT a.name, a.normal_side,
COALESCE(SUM(jl.amount) FILTER (WHERE jl.direction = 'DEBIT'), 0),
COALESCE(SUM(jl.amount) FILTER (WHERE jl.direction = 'CREDIT'), 0)
FROM journal_lines jl JOIN accounts a ON a.id = jl.account_id`
	args := make([]any, 0, 2)
	query, args = appendDateFilters(query, args, filter, "jl.tx_date")
	query += ` GROUP BY a.name, a.normal_side ORDER BY a.name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.Account, &b.Normal, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func appendDateFilters(query string, args []any, filter EntryFilter, column string) (string, []any) {
	conj := " WHERE "
	if filter.From != nil {
		args = append(args, *filter.From)
		query += conj + column + " >= " + placeholder(len(args))
		conj = " AND "
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += conj + column + " <= " + placeholder(len(args))
	}
	return query, args
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
