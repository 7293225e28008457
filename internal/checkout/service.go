package checkout

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/warungledger/warungledger/internal/inventory"
	"github.com/warungledger/warungledger/internal/ledger"
	"github.com/warungledger/warungledger/internal/platform/db"
	"github.com/warungledger/warungledger/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Invalidator bumps derived read caches after a mutation.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// JobEnqueuer submits background work after a committed checkout.
type JobEnqueuer interface {
	EnqueueLowStockScan(ctx context.Context, productIDs []int64) error
}

// Counter increments a metric.
type Counter interface {
	Inc()
}

const (
	conflictRetries = 3
	retryBackoff    = 25 * time.Millisecond
)

// Service is the checkout transaction engine. One Checkout call performs the
// stock validation, price snapshot, stock decrement, movement append, order
// creation and journal posting as a single all-or-nothing transaction.
type Service struct {
	repo        Repository
	audit       AuditPort
	invalidator Invalidator
	jobs        JobEnqueuer
	checkouts   Counter
	conflicts   Counter
	now         func() time.Time
}

// NewService builds Service. All ports but repo may be nil.
func NewService(repo Repository, audit AuditPort, invalidator Invalidator, jobs JobEnqueuer, checkouts, conflicts Counter) *Service {
	return &Service{
		repo:        repo,
		audit:       audit,
		invalidator: invalidator,
		jobs:        jobs,
		checkouts:   checkouts,
		conflicts:   conflicts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock, used in tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ListOrders returns completed orders, newest first.
func (s *Service) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListOrders(ctx, limit)
}

// Checkout executes one sale. Transaction conflicts are retried a bounded
// number of times; every other failure rolls the whole transaction back and
// propagates to the caller.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (Receipt, error) {
	if len(input.Items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if input.Discount < 0 || input.Tax < 0 {
		return Receipt{}, ErrInvalidAmount
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "cash"
	}

	var receipt Receipt
	var lowStock []int64
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		receipt, lowStock, err = s.checkoutOnce(ctx, input)
		if err == nil || !errors.Is(err, db.ErrTxConflict) {
			break
		}
		if s.conflicts != nil {
			s.conflicts.Inc()
		}
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-time.After(retryBackoff << attempt):
		}
	}
	if err != nil {
		return Receipt{}, err
	}

	if s.checkouts != nil {
		s.checkouts.Inc()
	}
	if s.invalidator != nil {
		_ = s.invalidator.Bump(ctx)
	}
	if s.jobs != nil && len(lowStock) > 0 {
		_ = s.jobs.EnqueueLowStockScan(ctx, lowStock)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "checkout.complete",
			Entity:   "order",
			EntityID: receipt.OrderNumber,
			Meta: map[string]any{
				"total":          int64(receipt.Total),
				"payment_method": receipt.PaymentMethod,
				"items":          len(receipt.Items),
			},
			At: receipt.CreatedAt,
		})
	}
	return receipt, nil
}

func (s *Service) checkoutOnce(ctx context.Context, input CheckoutInput) (Receipt, []int64, error) {
	var receipt Receipt
	var lowStock []int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ids := uniqueProductIDs(input.Items)
		products, err := tx.GetProductsForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		// Pure validation and pricing run before any write, so a doomed
		// request leaves no trace even inside the transaction.
		cart, err := PriceCart(products, input.Items, input.Discount, input.Tax)
		if err != nil {
			return err
		}
		for _, line := range cart.Lines {
			available := products[line.ProductID].StockQty
			if line.Quantity > available {
				return &inventory.InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: available,
				}
			}
		}

		now := s.now()
		orderNumber, err := tx.NextOrderNumber(ctx, now)
		if err != nil {
			return err
		}

		order, err := tx.InsertOrder(ctx, Order{
			OrderNumber:   orderNumber,
			PaymentMethod: input.PaymentMethod,
			Subtotal:      cart.Subtotal,
			Discount:      cart.Discount,
			Tax:           cart.Tax,
			Total:         cart.Total,
			COGS:          cart.COGS,
			GrossProfit:   cart.GrossProfit,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertOrderLines(ctx, order.ID, cart.Lines); err != nil {
			return err
		}

		lowStock = lowStock[:0]
		reason := "Checkout " + orderNumber
		refType := "order"
		for _, line := range cart.Lines {
			product := products[line.ProductID]
			before := product.StockQty
			after := before - line.Quantity
			if err := tx.UpdateProductStock(ctx, product.ID, after); err != nil {
				return err
			}
			if err := tx.InsertMovement(ctx, inventory.Movement{
				ProductID:      product.ID,
				Type:           inventory.MovementSale,
				QuantityChange: -line.Quantity,
				BeforeQty:      before,
				AfterQty:       after,
				Reason:         &reason,
				RefType:        &refType,
				RefID:          &orderNumber,
			}); err != nil {
				return err
			}
			if after <= product.MinStock {
				lowStock = append(lowStock, product.ID)
			}
		}

		receiptAccount := ledger.AccountCash
		if input.PaymentMethod == PaymentMethodCredit {
			receiptAccount = ledger.AccountAccountsReceivable
		}
		note := "Checkout order " + orderNumber
		lines := ledger.DoubleEntry(orderNumber, now, receiptAccount, ledger.AccountSalesRevenue, cart.Total, note)
		lines = append(lines, ledger.DoubleEntry(orderNumber, now, ledger.AccountCOGS, ledger.AccountInventory, cart.COGS, note)...)
		if len(lines) > 0 {
			if err := tx.PostJournal(ctx, lines); err != nil {
				return err
			}
		}

		receipt = Receipt{
			OrderNumber:   order.OrderNumber,
			CreatedAt:     order.CreatedAt,
			PaymentMethod: order.PaymentMethod,
			Subtotal:      cart.Subtotal,
			Discount:      cart.Discount,
			Tax:           cart.Tax,
			Total:         cart.Total,
			COGS:          cart.COGS,
			GrossProfit:   cart.GrossProfit,
			TotalDisplay:  shared.FormatIDR(cart.Total),
			Items:         cart.Lines,
		}
		return nil
	})
	if err != nil {
		return Receipt{}, nil, err
	}
	return receipt, lowStock, nil
}

func uniqueProductIDs(items []CartLine) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
