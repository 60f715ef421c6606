// Package products is the storefront's product cache: the list slice, the
// detail slice and the category names, each fed one-way by the catalog
// gateway.
package products

import (
	"context"
	"errors"

	"Storefront/internal/catalog"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

const (
	AllCategories = "all"

	SliceList       = "list"
	SliceCategory   = "category"
	SliceDetail     = "detail"
	SliceCategories = "categories"
	SliceSimilar    = "similar"
)

// Gateway is the subset of catalog.Client the cache reads from.
type Gateway interface {
	List(ctx context.Context, limit, skip int) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	ByCategory(ctx context.Context, category string) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Observer is told the final status of every fetch that was committed.
type Observer func(slice string, result Status)

func (o Observer) observe(slice string, result Status) {
	if o != nil {
		o(slice, result)
	}
}

const (
	msgListFailed   = "Network response was not ok"
	msgDetailFailed = "Failed to fetch product"
)

// fetchMessage turns a gateway error into the text stored in a slice.
// Status failures read the same regardless of code; transport and decode
// failures keep their own description.
func fetchMessage(err error) string {
	if errors.Is(err, catalog.ErrBadStatus) || errors.Is(err, catalog.ErrNotFound) {
		return msgListFailed
	}
	return err.Error()
}
