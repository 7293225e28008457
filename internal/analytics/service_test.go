package analytics

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	summary       SalesSummary
	summaryCalls  int
	lastStart     *time.Time
	lastEnd       *time.Time
	top           []TopProduct
	topCalls      int
	valuation     StockValuation
	valuationCall int
}

func (m *mockRepo) SalesSummary(ctx context.Context, start, end *time.Time) (SalesSummary, error) {
	m.summaryCalls++
	m.lastStart, m.lastEnd = start, end
	return m.summary, nil
}

func (m *mockRepo) TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]TopProduct, error) {
	m.topCalls++
	m.lastStart, m.lastEnd = start, end
	return m.top, nil
}

func (m *mockRepo) StockValuation(ctx context.Context) (StockValuation, error) {
	m.valuationCall++
	return m.valuation, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(repo, cache), cache
}

func TestSalesSummaryCaches(t *testing.T) {
	repo := &mockRepo{summary: SalesSummary{OrderCount: 3, ItemsSold: 7, NetRevenue: 27000, COGS: 18000, GrossProfit: 9000, AvgOrderValue: 9000}}
	svc, _ := newTestService(t, repo)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	first, err := svc.SalesSummary(context.Background(), &start, &end)
	require.NoError(t, err)
	require.EqualValues(t, 3, first.OrderCount)
	require.EqualValues(t, 7, first.ItemsSold)
	require.EqualValues(t, 27000, first.NetRevenue)
	require.EqualValues(t, 9000, first.AvgOrderValue)

	second, err := svc.SalesSummary(context.Background(), &start, &end)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.summaryCalls)
}

func TestSalesSummaryUnrangedPassesOpenBounds(t *testing.T) {
	repo := &mockRepo{summary: SalesSummary{OrderCount: 42}}
	svc, _ := newTestService(t, repo)

	_, err := svc.SalesSummary(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, repo.summaryCalls)
	require.Nil(t, repo.lastStart)
	require.Nil(t, repo.lastEnd)

	// The open-bounded report caches under its own key.
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.SalesSummary(context.Background(), &start, nil)
	require.NoError(t, err)
	require.Equal(t, 2, repo.summaryCalls)
}

func TestBumpInvalidatesCachedReports(t *testing.T) {
	repo := &mockRepo{summary: SalesSummary{OrderCount: 1}}
	svc, cache := newTestService(t, repo)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	_, err := svc.SalesSummary(context.Background(), &start, &end)
	require.NoError(t, err)
	require.Equal(t, 1, repo.summaryCalls)

	require.NoError(t, cache.Bump(context.Background()))

	_, err = svc.SalesSummary(context.Background(), &start, &end)
	require.NoError(t, err)
	require.Equal(t, 2, repo.summaryCalls)
}

func TestTopProductsCaches(t *testing.T) {
	repo := &mockRepo{top: []TopProduct{
		{ProductID: 1, ProductName: "Americano", QuantitySold: 12, Revenue: 300000},
		{ProductID: 2, ProductName: "Croissant", QuantitySold: 5, Revenue: 90000},
	}}
	svc, _ := newTestService(t, repo)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	first, err := svc.TopProducts(context.Background(), &start, &end, 10)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, "Americano", first[0].ProductName)

	_, err = svc.TopProducts(context.Background(), &start, &end, 10)
	require.NoError(t, err)
	require.Equal(t, 1, repo.topCalls)
}

func TestStockValuationWithoutRedis(t *testing.T) {
	repo := &mockRepo{valuation: StockValuation{
		Rows: []ValuationRow{
			{ProductID: 1, SKU: "SKU-A", Name: "Americano", StockQty: 10, CostPrice: 9000, SellPrice: 15000, CostValue: 90000, RetailValue: 150000},
			{ProductID: 2, SKU: "SKU-B", Name: "Croissant", StockQty: 4, CostPrice: 5000, SellPrice: 8000, CostValue: 20000, RetailValue: 32000},
		},
		ActiveProducts:  2,
		TotalUnits:      14,
		CostValue:       110000,
		RetailValue:     182000,
		PotentialMargin: 72000,
	}}
	svc := NewService(repo, NewCache(nil, time.Minute))

	valuation, err := svc.StockValuation(context.Background())
	require.NoError(t, err)
	require.Len(t, valuation.Rows, 2)
	require.EqualValues(t, 2, valuation.ActiveProducts)
	require.EqualValues(t, 14, valuation.TotalUnits)
	require.EqualValues(t, 110000, valuation.CostValue)
	require.EqualValues(t, 182000, valuation.RetailValue)
	require.EqualValues(t, 72000, valuation.PotentialMargin)

	// Every call reloads when no cache backend is configured.
	_, err = svc.StockValuation(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.valuationCall)
}
