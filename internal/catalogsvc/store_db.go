package catalogsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"Storefront/internal/catalog"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const productColumns = `id, title, description, price, discount_percentage, rating, stock, category, brand, thumbnail, images`

// PostgresStore reads products from a `products` table; images are a
// jsonb array of URLs.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context, limit, skip int) ([]catalog.Product, int, error) {
	var (
		out   []catalog.Product
		total int
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
			return err
		}

		var lim any
		if limit > 0 {
			lim = limit
		}
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			ORDER BY id ASC
			LIMIT $1 OFFSET $2
		`, lim, skip)
		if err != nil {
			return err
		}
		out, err = scanProducts(rows)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (catalog.Product, bool, error) {
	var p catalog.Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE id = $1
		`, id)
		return scanProduct(row, &p)
	})

	if err == sql.ErrNoRows {
		return catalog.Product{}, false, nil
	}
	if err != nil {
		return catalog.Product{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) ByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	var out []catalog.Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE category = $1
			ORDER BY id ASC
		`, category)
		if err != nil {
			return err
		}
		out, err = scanProducts(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Categories(ctx context.Context) ([]string, error) {
	var out []string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT DISTINCT category
			FROM products
			ORDER BY category ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]string, 0, 16)
		for rows.Next() {
			var c string
			if err := rows.Scan(&c); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner, p *catalog.Product) error {
	var (
		brand  sql.NullString
		images []byte
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.DiscountPercentage,
		&p.Rating, &p.Stock, &p.Category, &brand, &p.Thumbnail, &images); err != nil {
		return err
	}
	p.Brand = brand.String
	p.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return err
		}
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]catalog.Product, error) {
	defer rows.Close()

	out := make([]catalog.Product, 0, 16)
	for rows.Next() {
		var p catalog.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
