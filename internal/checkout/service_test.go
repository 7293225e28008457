package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warungledger/warungledger/internal/catalog"
	"github.com/warungledger/warungledger/internal/inventory"
	"github.com/warungledger/warungledger/internal/ledger"
	"github.com/warungledger/warungledger/internal/platform/db"
	"github.com/warungledger/warungledger/internal/shared"
)

type fakeState struct {
	products   map[int64]catalog.Product
	movements  []inventory.Movement
	journal    []ledger.LineInput
	orders     []Order
	orderLines map[int64][]OrderLine
	counters   map[string]int64
	nextID     int64
}

func newFakeState(products ...catalog.Product) *fakeState {
	s := &fakeState{
		products:   make(map[int64]catalog.Product),
		orderLines: make(map[int64][]OrderLine),
		counters:   make(map[string]int64),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeState) clone() *fakeState {
	out := &fakeState{
		products:   make(map[int64]catalog.Product, len(s.products)),
		movements:  append([]inventory.Movement(nil), s.movements...),
		journal:    append([]ledger.LineInput(nil), s.journal...),
		orders:     append([]Order(nil), s.orders...),
		orderLines: make(map[int64][]OrderLine, len(s.orderLines)),
		counters:   make(map[string]int64, len(s.counters)),
		nextID:     s.nextID,
	}
	for id, p := range s.products {
		out.products[id] = p
	}
	for id, lines := range s.orderLines {
		out.orderLines[id] = append([]OrderLine(nil), lines...)
	}
	for day, seq := range s.counters {
		out.counters[day] = seq
	}
	return out
}

// fakeRepo runs the transaction closure against a copy of the state and only
// publishes the copy on success, mirroring rollback semantics.
type fakeRepo struct {
	state         *fakeState
	conflictsLeft int
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return db.ErrTxConflict
	}
	trial := r.state.clone()
	if err := fn(ctx, &fakeTx{state: trial}); err != nil {
		return err
	}
	r.state = trial
	return nil
}

func (r *fakeRepo) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit > len(r.state.orders) {
		limit = len(r.state.orders)
	}
	out := make([]Order, 0, limit)
	for i := len(r.state.orders) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.state.orders[i])
	}
	return out, nil
}

type fakeTx struct {
	state *fakeState
}

func (t *fakeTx) GetProductsForUpdate(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := make(map[int64]catalog.Product)
	for _, id := range ids {
		if p, ok := t.state.products[id]; ok && p.IsActive {
			out[id] = p
		}
	}
	return out, nil
}

func (t *fakeTx) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	key := day.Format("2006-01-02")
	t.state.counters[key]++
	return fmt.Sprintf("ORD-%s-%06d", day.Format("20060102"), t.state.counters[key]), nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, o Order) (Order, error) {
	t.state.nextID++
	o.ID = t.state.nextID
	o.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t.state.orders = append(t.state.orders, o)
	return o, nil
}

func (t *fakeTx) InsertOrderLines(ctx context.Context, orderID int64, lines []OrderLine) error {
	t.state.orderLines[orderID] = append([]OrderLine(nil), lines...)
	return nil
}

func (t *fakeTx) UpdateProductStock(ctx context.Context, id int64, stockQty int64) error {
	p, ok := t.state.products[id]
	if !ok {
		return &catalog.ProductNotFoundError{ID: id}
	}
	p.StockQty = stockQty
	t.state.products[id] = p
	return nil
}

func (t *fakeTx) InsertMovement(ctx context.Context, m inventory.Movement) error {
	t.state.movements = append(t.state.movements, m)
	return nil
}

func (t *fakeTx) PostJournal(ctx context.Context, lines []ledger.LineInput) error {
	t.state.journal = append(t.state.journal, lines...)
	return nil
}

type countingMetric struct {
	n int
}

func (c *countingMetric) Inc() {
	c.n++
}

func newTestService(repo *fakeRepo) (*Service, *countingMetric, *countingMetric) {
	checkouts := &countingMetric{}
	conflicts := &countingMetric{}
	svc := NewService(repo, nil, nil, nil, checkouts, conflicts)
	svc.WithNow(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	return svc, checkouts, conflicts
}

func requireJournalBalanced(t *testing.T, lines []ledger.LineInput) {
	t.Helper()
	sums := make(map[string]shared.Cents)
	for _, line := range lines {
		if line.Direction == ledger.DirectionDebit {
			sums[line.TxRef] += line.Amount
		} else {
			sums[line.TxRef] -= line.Amount
		}
	}
	for txRef, sum := range sums {
		require.EqualValues(t, 0, sum, "journal for %s out of balance", txRef)
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	repo := &fakeRepo{state: newFakeState(
		catalog.Product{ID: 1, SKU: "SKU-A", Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 10, MinStock: 2, IsActive: true},
	)}
	svc, checkouts, _ := newTestService(repo)

	receipt, err := svc.Checkout(context.Background(), CheckoutInput{
		Items:    []CartLine{{ProductID: 1, Quantity: 2}},
		Discount: 2000,
		Tax:      1000,
	})
	require.NoError(t, err)

	require.Equal(t, "ORD-20260301-000001", receipt.OrderNumber)
	require.Equal(t, "cash", receipt.PaymentMethod)
	require.EqualValues(t, 10000, receipt.Subtotal)
	require.EqualValues(t, 9000, receipt.Total)
	require.EqualValues(t, 6000, receipt.COGS)
	require.EqualValues(t, 3000, receipt.GrossProfit)
	require.Equal(t, 1, checkouts.n)

	require.EqualValues(t, 8, repo.state.products[1].StockQty)
	require.Len(t, repo.state.movements, 1)
	movement := repo.state.movements[0]
	require.Equal(t, inventory.MovementSale, movement.Type)
	require.EqualValues(t, -2, movement.QuantityChange)
	require.EqualValues(t, 10, movement.BeforeQty)
	require.EqualValues(t, 8, movement.AfterQty)
	require.NotNil(t, movement.RefID)
	require.Equal(t, receipt.OrderNumber, *movement.RefID)

	require.Len(t, repo.state.journal, 4)
	requireJournalBalanced(t, repo.state.journal)
	byAccount := make(map[string]shared.Cents)
	for _, line := range repo.state.journal {
		byAccount[line.Account+":"+string(line.Direction)] += line.Amount
	}
	require.EqualValues(t, 9000, byAccount[ledger.AccountCash+":DEBIT"])
	require.EqualValues(t, 9000, byAccount[ledger.AccountSalesRevenue+":CREDIT"])
	require.EqualValues(t, 6000, byAccount[ledger.AccountCOGS+":DEBIT"])
	require.EqualValues(t, 6000, byAccount[ledger.AccountInventory+":CREDIT"])
}

func TestCheckoutInsufficientStockLeavesNoTrace(t *testing.T) {
	repo := &fakeRepo{state: newFakeState(
		catalog.Product{ID: 1, Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 10, IsActive: true},
		catalog.Product{ID: 2, Name: "Croissant", SellPrice: 18000, CostPrice: 7000, StockQty: 1, IsActive: true},
	)}
	svc, checkouts, _ := newTestService(repo)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 5},
		},
	})
	var insufficient *inventory.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	require.EqualValues(t, 2, insufficient.ProductID)
	require.EqualValues(t, 5, insufficient.Requested)
	require.EqualValues(t, 1, insufficient.Available)

	require.Equal(t, 0, checkouts.n)
	require.EqualValues(t, 10, repo.state.products[1].StockQty)
	require.EqualValues(t, 1, repo.state.products[2].StockQty)
	require.Empty(t, repo.state.orders)
	require.Empty(t, repo.state.movements)
	require.Empty(t, repo.state.journal)
}

func TestCheckoutSequentialOrdersCannotOversell(t *testing.T) {
	repo := &fakeRepo{state: newFakeState(
		catalog.Product{ID: 1, Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 5, IsActive: true},
	)}
	svc, checkouts, _ := newTestService(repo)

	first, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{{ProductID: 1, Quantity: 3}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.state.products[1].StockQty)

	// The second sale is priced against the committed stock, not the
	// snapshot the first sale started from.
	_, err = svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{{ProductID: 1, Quantity: 3}},
	})
	var insufficient *inventory.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	require.EqualValues(t, 3, insufficient.Requested)
	require.EqualValues(t, 2, insufficient.Available)

	require.Equal(t, 1, checkouts.n)
	require.EqualValues(t, 2, repo.state.products[1].StockQty)
	require.Len(t, repo.state.orders, 1)
	require.Equal(t, first.OrderNumber, repo.state.orders[0].OrderNumber)
	require.Len(t, repo.state.movements, 1)
	requireJournalBalanced(t, repo.state.journal)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	repo := &fakeRepo{state: newFakeState()}
	svc, _, _ := newTestService(repo)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{{ProductID: 42, Quantity: 1}},
	})
	var notFound *catalog.ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.EqualValues(t, 42, notFound.ID)
}

func TestCheckoutCreditPaymentDebitsReceivables(t *testing.T) {
	repo := &fakeRepo{state: newFakeState(
		catalog.Product{ID: 1, Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 10, IsActive: true},
	)}
	svc, _, _ := newTestService(repo)

	receipt, err := svc.Checkout(context.Background(), CheckoutInput{
		Items:         []CartLine{{ProductID: 1, Quantity: 1}},
		PaymentMethod: PaymentMethodCredit,
	})
	require.NoError(t, err)
	require.Equal(t, PaymentMethodCredit, receipt.PaymentMethod)

	var receivableDebit, cashDebit shared.Cents
	for _, line := range repo.state.journal {
		if line.Direction != ledger.DirectionDebit {
			continue
		}
		switch line.Account {
		case ledger.AccountAccountsReceivable:
			receivableDebit += line.Amount
		case ledger.AccountCash:
			cashDebit += line.Amount
		}
	}
	require.EqualValues(t, 5000, receivableDebit)
	require.EqualValues(t, 0, cashDebit)
}

func TestCheckoutZeroTotalSkipsRevenuePair(t *testing.T) {
	repo := &fakeRepo{state: newFakeState(
		catalog.Product{ID: 1, Name: "Sample Cup", SellPrice: 5000, CostPrice: 3000, StockQty: 10, IsActive: true},
	)}
	svc, _, _ := newTestService(repo)

	receipt, err := svc.Checkout(context.Background(), CheckoutInput{
		Items:    []CartLine{{ProductID: 1, Quantity: 1}},
		Discount: 5000,
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, receipt.Total)

	// Only the COGS pair should be posted when the sale nets to zero.
	require.Len(t, repo.state.journal, 2)
	require.Equal(t, ledger.AccountCOGS, repo.state.journal[0].Account)
	require.Equal(t, ledger.AccountInventory, repo.state.journal[1].Account)
	requireJournalBalanced(t, repo.state.journal)
}

func TestCheckoutRetriesOnConflict(t *testing.T) {
	repo := &fakeRepo{
		state: newFakeState(
			catalog.Product{ID: 1, Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 10, IsActive: true},
		),
		conflictsLeft: 2,
	}
	svc, checkouts, conflicts := newTestService(repo)

	receipt, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-20260301-000001", receipt.OrderNumber)
	require.Equal(t, 2, conflicts.n)
	require.Equal(t, 1, checkouts.n)
}

func TestCheckoutConflictExhaustion(t *testing.T) {
	repo := &fakeRepo{
		state: newFakeState(
			catalog.Product{ID: 1, Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 10, IsActive: true},
		),
		conflictsLeft: 10,
	}
	svc, checkouts, conflicts := newTestService(repo)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, db.ErrTxConflict)
	require.Equal(t, conflictRetries, conflicts.n)
	require.Equal(t, 0, checkouts.n)
}

func TestCheckoutAggregatesDuplicateCartLines(t *testing.T) {
	repo := &fakeRepo{state: newFakeState(
		catalog.Product{ID: 1, Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 10, IsActive: true},
	)}
	svc, _, _ := newTestService(repo)

	receipt, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{
			{ProductID: 1, Quantity: 1},
			{ProductID: 1, Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, receipt.Items, 1)
	require.EqualValues(t, 3, receipt.Items[0].Quantity)
	require.Len(t, repo.state.movements, 1)
	require.EqualValues(t, -3, repo.state.movements[0].QuantityChange)
	require.EqualValues(t, 7, repo.state.products[1].StockQty)
}

func TestCheckoutLowStockCollection(t *testing.T) {
	repo := &fakeRepo{state: newFakeState(
		catalog.Product{ID: 1, Name: "Americano", SellPrice: 5000, CostPrice: 3000, StockQty: 3, MinStock: 2, IsActive: true},
	)}
	enqueued := make(chan []int64, 1)
	svc := NewService(repo, nil, nil, enqueueFunc(func(ctx context.Context, ids []int64) error {
		enqueued <- ids
		return nil
	}), nil, nil)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CartLine{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	select {
	case ids := <-enqueued:
		require.Equal(t, []int64{1}, ids)
	default:
		t.Fatal("expected low stock scan to be enqueued")
	}
}

type enqueueFunc func(ctx context.Context, productIDs []int64) error

func (f enqueueFunc) EnqueueLowStockScan(ctx context.Context, productIDs []int64) error {
	return f(ctx, productIDs)
}
