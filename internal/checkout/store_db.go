package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const queryTimeout = 5 * time.Second

// PostgresStore keeps orders in `orders` (ship_to as jsonb) and their
// lines in `order_items`.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	shipTo, err := json.Marshal(o.ShipTo)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, payment_method, card_last4, ship_to,
			subtotal, shipping, tax, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, o.ID, o.UserID, o.Status, o.PaymentMethod, o.CardLast4, shipTo,
		o.Quote.Subtotal, o.Quote.Shipping, o.Quote.Tax, o.Quote.Total, o.CreatedAt)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, product_id, title, price, qty)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range o.Items {
		if _, err := stmt.ExecContext(ctx, o.ID, it.ProductID, it.Title, it.Price, it.Qty); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		o      Order
		shipTo []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, payment_method, card_last4, ship_to,
			subtotal, shipping, tax, total, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentMethod, &o.CardLast4, &shipTo,
		&o.Quote.Subtotal, &o.Quote.Shipping, &o.Quote.Tax, &o.Quote.Total, &o.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	if err := json.Unmarshal(shipTo, &o.ShipTo); err != nil {
		return Order{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, title, price, qty
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id ASC
	`, id)
	if err != nil {
		return Order{}, false, err
	}
	defer rows.Close()

	items := make([]Item, 0, 8)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Price, &it.Qty); err != nil {
			return Order{}, false, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return Order{}, false, err
	}
	o.Items = items

	return o, true, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id string, st Status) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, st)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}
