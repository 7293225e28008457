package catalog

import (
	"context"
	"fmt"
	"log/slog"
)

// starterCatalog is the fixed catalog installed on an empty database.
var starterCatalog = []CreateInput{
	{SKU: "SKU-COF-01", Name: "Americano", Category: ptr("Beverage"), SellPrice: 25000, CostPrice: 9000, StockQty: 120, MinStock: 20},
	{SKU: "SKU-COF-02", Name: "Cappuccino", Category: ptr("Beverage"), SellPrice: 32000, CostPrice: 12000, StockQty: 90, MinStock: 15},
	{SKU: "SKU-FNB-01", Name: "Croissant", Category: ptr("Food"), SellPrice: 18000, CostPrice: 7000, StockQty: 70, MinStock: 10},
}

// Bootstrap seeds the starter catalog when the product set is empty. It is
// invoked explicitly by the owning process with injected handles.
func Bootstrap(ctx context.Context, logger *slog.Logger, repo Repository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("catalog: count products: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, in := range starterCatalog {
		if _, err := repo.Create(ctx, in); err != nil {
			return fmt.Errorf("catalog: seed %s: %w", in.SKU, err)
		}
	}
	logger.Info("seeded starter catalog", slog.Int("products", len(starterCatalog)))
	return nil
}

func ptr(s string) *string {
	return &s
}
