package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

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

// Counter increments a metric.
type Counter interface {
	Inc()
}

const (
	conflictRetries = 3
	retryBackoff    = 25 * time.Millisecond
)

// Service is the adjustment engine: manual stock corrections with an
// offsetting journal entry, atomic with the movement and stock write.
type Service struct {
	repo        Repository
	audit       AuditPort
	invalidator Invalidator
	adjustments Counter
	now         func() time.Time
}

// NewService builds Service. audit, invalidator and counter may be nil.
func NewService(repo Repository, audit AuditPort, invalidator Invalidator, adjustments Counter) *Service {
	return &Service{
		repo:        repo,
		audit:       audit,
		invalidator: invalidator,
		adjustments: adjustments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock, used in tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ListMovements returns movements, newest first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.ListMovements(ctx, filter)
}

// Adjust applies a manual stock correction. The movement, the stock write and
// the journal pair commit together or not at all.
func (s *Service) Adjust(ctx context.Context, input AdjustmentInput) (Movement, error) {
	if input.QuantityChange == 0 {
		return Movement{}, ErrInvalidAdjustment
	}

	var movement Movement
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		movement, err = s.adjustOnce(ctx, input)
		if err == nil || !errors.Is(err, db.ErrTxConflict) {
			break
		}
		select {
		case <-ctx.Done():
			return Movement{}, ctx.Err()
		case <-time.After(retryBackoff << attempt):
		}
	}
	if err != nil {
		return Movement{}, err
	}

	if s.adjustments != nil {
		s.adjustments.Inc()
	}
	if s.invalidator != nil {
		_ = s.invalidator.Bump(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "inventory.adjust",
			Entity:   "product",
			EntityID: fmt.Sprintf("%d", input.ProductID),
			Meta: map[string]any{
				"quantity_change": input.QuantityChange,
				"reason":          input.Reason,
			},
			At: s.now(),
		})
	}
	return movement, nil
}

func (s *Service) adjustOnce(ctx context.Context, input AdjustmentInput) (Movement, error) {
	var movement Movement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}

		before := product.StockQty
		after := before + input.QuantityChange
		if after < 0 {
			return &InsufficientStockError{
				ProductID: product.ID,
				Requested: -input.QuantityChange,
				Available: before,
			}
		}
		if err := tx.UpdateProductStock(ctx, product.ID, after); err != nil {
			return err
		}

		movementType := MovementAdjustment
		if input.QuantityChange > 0 {
			movementType = MovementRestock
		}
		refType := "manual"
		m := Movement{
			ProductID:      product.ID,
			Type:           movementType,
			QuantityChange: input.QuantityChange,
			BeforeQty:      before,
			AfterQty:       after,
			RefType:        &refType,
		}
		if input.Reason != "" {
			reason := input.Reason
			m.Reason = &reason
		}
		movement, err = tx.InsertMovement(ctx, m)
		if err != nil {
			return err
		}

		value := product.CostPrice.MulQty(input.QuantityChange).Abs()
		txRef := "ADJ-" + uuid.NewString()
		note := input.Reason
		if note == "" {
			note = "Manual stock adjustment " + product.SKU
		}
		counterparty := ledger.CanonicalAccount(input.CounterpartyAccount)
		var lines []ledger.LineInput
		if input.QuantityChange > 0 {
			if counterparty == "" {
				counterparty = ledger.AccountCash
			}
			lines = ledger.DoubleEntry(txRef, s.now(), ledger.AccountInventory, counterparty, value, note)
		} else {
			if counterparty == "" {
				counterparty = ledger.AccountShrinkage
			}
			lines = ledger.DoubleEntry(txRef, s.now(), counterparty, ledger.AccountInventory, value, note)
		}
		if len(lines) > 0 {
			if err := tx.PostJournal(ctx, lines); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}
