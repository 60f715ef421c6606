package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://dummyjson.com"
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 8 << 20
)

var (
	ErrNotFound    = errors.New("catalog product not found")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
	ErrMalformed   = errors.New("catalog malformed response")
)

// Client is the Remote Catalog Gateway. It does not retry: every failure
// is returned to the caller as-is.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type listResponse struct {
	Products []Product `json:"products"`
}

// List returns one page of the catalog.
func (c *Client) List(ctx context.Context, limit, skip int) ([]Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))

	var out listResponse
	if err := c.getJSON(ctx, "/products?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return nonNil(out.Products), nil
}

func (c *Client) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	if err := c.getJSON(ctx, "/products/"+strconv.FormatInt(id, 10), &p); err != nil {
		return Product{}, err
	}
	if p.ID == 0 {
		return Product{}, fmt.Errorf("%w: product without id", ErrMalformed)
	}
	return p, nil
}

func (c *Client) ByCategory(ctx context.Context, category string) ([]Product, error) {
	var out listResponse
	if err := c.getJSON(ctx, "/products/category/"+url.PathEscape(category), &out); err != nil {
		return nil, err
	}
	return nonNil(out.Products), nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "/products/category-list", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

type upstreamError struct {
	Message string `json:"message"`
}

// StatusError is a non-2xx catalog response. Message carries the catalog's
// own explanation when the body had one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: status=%d", e.Unwrap(), e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrBadStatus
}

// UpstreamMessage returns the catalog-supplied message carried by err, or
// fallback when there is none.
func UpstreamMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ue upstreamError
		_ = json.NewDecoder(body).Decode(&ue)
		_, _ = io.Copy(io.Discard, body)
		return &StatusError{Status: resp.StatusCode, Message: strings.TrimSpace(ue.Message)}
	}

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func nonNil(ps []Product) []Product {
	if ps == nil {
		return []Product{}
	}
	return ps
}
