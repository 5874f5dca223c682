// Package storage selects and opens the configured order store.
package storage

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kitty-cart/internal/domain/order"
	"github.com/xenking/kitty-cart/internal/storage/memory"
	"github.com/xenking/kitty-cart/internal/storage/mysql"
	"github.com/xenking/kitty-cart/internal/storage/postgres"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config selects a backend.
type Config struct {
	// Driver is one of memory, postgres or mysql. When empty, postgres is
	// used if DatabaseURL is set and memory otherwise.
	Driver      string
	DatabaseURL string
	MySQLDSN    string
}

// ResolveDriver returns the driver Open will use for cfg.
func (c Config) ResolveDriver() string {
	if c.Driver != "" {
		return c.Driver
	}
	if c.DatabaseURL != "" {
		return DriverPostgres
	}
	return DriverMemory
}

// Backend is an opened order store.
type Backend struct {
	Driver string
	Orders order.Repository
	// Check reports whether the store is reachable.
	Check func(ctx context.Context) error
	Close func()
}

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	driver := cfg.ResolveDriver()
	lg := zctx.From(ctx).With(zap.String("driver", driver))

	switch driver {
	case DriverMemory:
		lg.Warn("Using in-memory order store, orders are lost on restart")
		return &Backend{
			Driver: driver,
			Orders: memory.New(),
			Check:  func(context.Context) error { return nil },
			Close:  func() {},
		}, nil
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("postgres driver requires a database URL")
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		lg.Info("Order store ready")
		return &Backend{
			Driver: driver,
			Orders: postgres.NewOrderRepository(pool),
			Check:  pool.Ping,
			Close:  pool.Close,
		}, nil
	case DriverMySQL:
		if cfg.MySQLDSN == "" {
			return nil, errors.New("mysql driver requires a DSN")
		}
		gdb, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		repo := mysql.NewOrderRepository(gdb)
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		lg.Info("Order store ready")
		return &Backend{
			Driver: driver,
			Orders: repo,
			Check:  repo.Ping,
			Close: func() {
				if err := repo.Close(); err != nil {
					lg.Warn("Close mysql", zap.Error(err))
				}
			},
		}, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", driver)
	}
}
