package products

import (
	"context"

	"Storefront/internal/catalog"
)

const SimilarLimit = 4

// Similar returns up to limit products from items sharing current's
// category, current itself excluded.
func Similar(items []catalog.Product, current catalog.Product, limit int) []catalog.Product {
	out := make([]catalog.Product, 0, limit)
	for _, p := range items {
		if len(out) >= limit {
			break
		}
		if p.Category == current.Category && p.ID != current.ID {
			out = append(out, p)
		}
	}
	return out
}

type SimilarView struct {
	Items  []catalog.Product `json:"items"`
	Status Status            `json:"status"`
	Error  string            `json:"error,omitempty"`
}

// FetchSimilar loads current's category straight from the gateway, so the
// list slice a visitor was browsing is left alone.
func FetchSimilar(ctx context.Context, gw Gateway, current catalog.Product, observe Observer) SimilarView {
	items, err := gw.ByCategory(ctx, current.Category)
	if err != nil {
		observe.observe(SliceSimilar, StatusFailed)
		return SimilarView{Items: []catalog.Product{}, Status: StatusFailed, Error: fetchMessage(err)}
	}
	observe.observe(SliceSimilar, StatusSucceeded)
	return SimilarView{Items: Similar(items, current, SimilarLimit), Status: StatusSucceeded}
}
