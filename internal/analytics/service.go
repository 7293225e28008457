package analytics

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service coordinates report execution with the cache layer. Concurrent
// requests for the same uncached report are collapsed into one query.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// SalesSummary reports order totals. Nil bounds aggregate over all orders.
func (s *Service) SalesSummary(ctx context.Context, start, end *time.Time) (SalesSummary, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "sales_summary", dayToken(start), dayToken(end))
	if err != nil {
		return SalesSummary{}, err
	}
	var summary SalesSummary
	err = s.fetch(ctx, key, &summary, func(ctx context.Context) (any, error) {
		return s.repo.SalesSummary(ctx, start, end)
	})
	return summary, err
}

// TopProducts reports best sellers ranked by quantity sold with revenue as
// the tiebreak. Nil bounds aggregate over all orders.
func (s *Service) TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key, err := s.cache.BuildKey(ctx, "reports", "top_products", dayToken(start), dayToken(end), strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	var products []TopProduct
	err = s.fetch(ctx, key, &products, func(ctx context.Context) (any, error) {
		return s.repo.TopProducts(ctx, start, end, limit)
	})
	return products, err
}

// StockValuation reports the cost and retail value of current stock on hand.
func (s *Service) StockValuation(ctx context.Context) (StockValuation, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "stock_valuation")
	if err != nil {
		return StockValuation{}, err
	}
	var valuation StockValuation
	err = s.fetch(ctx, key, &valuation, func(ctx context.Context) (any, error) {
		return s.repo.StockValuation(ctx)
	})
	return valuation, err
}

func (s *Service) fetch(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	value, err, _ := s.group.Do(key, func() (any, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(value.(json.RawMessage), dest)
}

func dayToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
