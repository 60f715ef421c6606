package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/catalogsvc"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalogsvc.Server{Store: catalogsvc.NewSeededStore()}
	ts := httptest.NewServer(catalogsvc.NewHandler(s, catalogsvc.HTTPDeps{Log: zap.NewNop(), Service: "catalog"}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_List(t *testing.T) {
	c := catalog.NewClient(newCatalogTS(t).URL+"/", time.Second)

	ps, err := c.List(context.Background(), 120, 2)
	require.NoError(t, err)
	require.Len(t, ps, len(catalogsvc.SeedProducts())-2)
	assert.Equal(t, int64(3), ps[0].ID)
}

func TestClient_GetAndCategories(t *testing.T) {
	c := catalog.NewClient(newCatalogTS(t).URL, time.Second)
	ctx := context.Background()

	p, err := c.Get(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "Calvin Klein CK One", p.Title)
	assert.Equal(t, 49.99, p.Price)

	names, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "groceries")

	ps, err := c.ByCategory(ctx, "groceries")
	require.NoError(t, err)
	require.Len(t, ps, 2)
}

func TestClient_NotFoundKeepsUpstreamMessage(t *testing.T) {
	c := catalog.NewClient(newCatalogTS(t).URL, time.Second)

	_, err := c.Get(context.Background(), 4242)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, "Product with id '4242' not found", catalog.UpstreamMessage(err, "fallback"))
}

func TestClient_FailureModes(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: catalog.ErrBadStatus,
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"products": [`))
			},
			want: catalog.ErrMalformed,
		},
		{
			name: "wrong shape",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`["not", "products"]`))
			},
			want: catalog.ErrMalformed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(tc.handler)
			defer ts.Close()

			_, err := catalog.NewClient(ts.URL, time.Second).List(context.Background(), 10, 0)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, "fallback", catalog.UpstreamMessage(err, "fallback"))
		})
	}
}

func TestClient_MissingProductsKeyIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total": 0}`))
	}))
	defer ts.Close()

	ps, err := catalog.NewClient(ts.URL, time.Second).List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ps)
	assert.NotNil(t, ps)
}

func TestClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := catalog.NewClient(url, time.Second).Categories(context.Background())
	require.ErrorIs(t, err, catalog.ErrUnavailable)
}
