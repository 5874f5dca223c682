package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// createLockKey is the advisory lock that serializes inserts so ids and
// creation times advance together.
const createLockKey int64 = 0x6b617274

var orderColumns = []string{
	"id", "address", "phone", "note", "items",
	"total_amount", "currency", "status", "created_at",
}

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new order. The database assigns the id, status and
// creation time while the transaction holds createLockKey. Items are stored
// as a JSONB array.
func (r *OrderRepository) Create(ctx context.Context, d order.Draft) (*order.Order, error) {
	query, args, err := r.builder.Insert("orders").
		Columns("address", "phone", "note", "items", "total", "total_amount", "currency").
		Values(
			d.Address,
			d.Phone,
			d.Note,
			order.MarshalItems(d.Items),
			d.Total.String(),
			d.Total.Amount,
			d.Total.Currency,
		).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build insert")
	}

	var (
		id        int64
		status    string
		createdAt time.Time
	)
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", createLockKey); err != nil {
			return errors.Wrap(err, "acquire create lock")
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&id, &status, &createdAt); err != nil {
			return errors.Wrap(err, "insert order")
		}
		return nil
	})
	if err != nil {
		return nil, order.Unavailable("create", err)
	}

	o := order.FromDraft(id, d, createdAt)
	o.Status = status
	return &o, nil
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	query, args, err := r.builder.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, order.Unavailable("list", errors.Wrap(err, "query orders"))
	}
	defer rows.Close()

	orders := make([]order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, order.Unavailable("list", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, order.Unavailable("list", errors.Wrap(err, "iterate orders"))
	}
	return orders, nil
}

// Reset removes every order and restarts id assignment at 1.
func (r *OrderRepository) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "TRUNCATE orders RESTART IDENTITY"); err != nil {
		return errors.Wrap(err, "truncate orders")
	}
	return nil
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var (
		o     order.Order
		items []byte
		amt   decimal.Decimal
		cur   string
	)
	if err := row.Scan(
		&o.ID,
		&o.Address,
		&o.Phone,
		&o.Note,
		&items,
		&amt,
		&cur,
		&o.Status,
		&o.CreatedAt,
	); err != nil {
		return order.Order{}, errors.Wrap(err, "scan order")
	}

	parsed, err := order.UnmarshalItems(items)
	if err != nil {
		return order.Order{}, errors.Wrapf(err, "decode items of order %d", o.ID)
	}
	o.Items = parsed
	o.Total = order.Total{Amount: amt, Currency: cur}
	return o, nil
}
