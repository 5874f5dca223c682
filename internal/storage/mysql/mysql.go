// Package mysql implements the order store on MySQL through gorm.
package mysql

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// orderRow mirrors the orders table.
type orderRow struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Address     string          `gorm:"column:address;type:text;not null"`
	Phone       string          `gorm:"column:phone;type:text;not null"`
	Note        *string         `gorm:"column:note;type:text"`
	Items       []byte          `gorm:"column:items;type:json;not null"`
	Total       string          `gorm:"column:total;type:text;not null"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null"`
	Currency    string          `gorm:"column:currency;type:varchar(16);not null"`
	Status      string          `gorm:"column:status;type:varchar(32);not null;default:'pending'"`
	CreatedAt   time.Time       `gorm:"column:created_at;type:datetime(6);not null;default:CURRENT_TIMESTAMP(6);autoCreateTime:false;index:idx_orders_created_at"`
}

func (orderRow) TableName() string {
	return "orders"
}

// createLock serializes inserts so ids and creation times advance together.
const createLock = "kitty_cart_orders_create"

// createLockTimeout is the GET_LOCK timeout in seconds.
const createLockTimeout = 10

// Open connects to MySQL using dsn. The DSN must enable parseTime with
// loc=UTC, and the session time zone must be UTC since creation times are
// stamped by the server.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping mysql")
	}
	return gdb, nil
}

// OrderRepository implements order.Repository backed by MySQL.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository returns an OrderRepository that uses db.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Migrate creates or updates the orders table.
func (r *OrderRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&orderRow{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

// Create inserts a new order. AUTO_INCREMENT assigns the id and the server
// stamps created_at while holding createLock.
func (r *OrderRepository) Create(ctx context.Context, d order.Draft) (*order.Order, error) {
	row := orderRow{
		Address:     d.Address,
		Phone:       d.Phone,
		Note:        d.Note,
		Items:       order.MarshalItems(d.Items),
		Total:       d.Total.String(),
		TotalAmount: d.Total.Amount,
		Currency:    d.Total.Currency,
		Status:      order.StatusPending,
	}
	var stamped orderRow

	err := r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var acquired int64
		if err := conn.Raw("SELECT COALESCE(GET_LOCK(?, ?), 0)", createLock, createLockTimeout).Row().Scan(&acquired); err != nil {
			return errors.Wrap(err, "acquire create lock")
		}
		if acquired != 1 {
			return errors.New("acquire create lock: timed out")
		}
		defer conn.Exec("DO RELEASE_LOCK(?)", createLock)

		if err := conn.Create(&row).Error; err != nil {
			return errors.Wrap(err, "insert order")
		}
		if err := conn.Select("created_at", "status").Take(&stamped, row.ID).Error; err != nil {
			return errors.Wrap(err, "read back order")
		}
		return nil
	})
	if err != nil {
		return nil, order.Unavailable("create", err)
	}

	o := order.FromDraft(row.ID, d, stamped.CreatedAt.UTC())
	o.Status = stamped.Status
	return &o, nil
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	var rows []orderRow
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, order.Unavailable("list", errors.Wrap(err, "select orders"))
	}

	orders := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		items, err := order.UnmarshalItems(row.Items)
		if err != nil {
			return nil, order.Unavailable("list", errors.Wrapf(err, "decode items of order %d", row.ID))
		}
		orders = append(orders, order.Order{
			ID:        row.ID,
			Address:   row.Address,
			Phone:     row.Phone,
			Note:      row.Note,
			Items:     items,
			Total:     order.Total{Amount: row.TotalAmount, Currency: row.Currency},
			Status:    row.Status,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return orders, nil
}

// Reset removes every order and restarts id assignment at 1.
func (r *OrderRepository) Reset(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("TRUNCATE TABLE orders").Error; err != nil {
		return errors.Wrap(err, "truncate orders")
	}
	return nil
}

// Ping checks that the database answers.
func (r *OrderRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connections.
func (r *OrderRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return sqlDB.Close()
}
