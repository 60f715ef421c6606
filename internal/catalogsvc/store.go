// Package catalogsvc is a stand-in for the third-party product catalog. It
// serves the same HTTP shape the storefront's gateway consumes so the
// storefront can run and be tested without the real service.
package catalogsvc

import (
	"context"

	"Storefront/internal/catalog"
)

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, limit, skip int) (products []catalog.Product, total int, err error)
	Get(ctx context.Context, id int64) (catalog.Product, bool, error)
	ByCategory(ctx context.Context, category string) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}
