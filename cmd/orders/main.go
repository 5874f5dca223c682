// Command orders is the back-office tool for the order store: it applies the
// schema, prints the order dashboard and exports an archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kitty-cart/internal/storage"
)

const usage = `Usage: orders <command> [flags]

Commands:
  migrate   apply the order schema
  list      print stored orders, newest first
  export    write every order to a gzip NDJSON archive
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	lg, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		lg.Error("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	var cfg storage.Config
	fs.StringVar(&cfg.Driver, "driver", "", "order store: postgres or mysql (default postgres when a database URL is set)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	fs.StringVar(&cfg.MySQLDSN, "mysql-dsn", "", "MySQL DSN (or KART_STORAGE_MYSQL_DSN env)")
	out := fs.String("out", "orders.ndjson.gz", "export destination, - for stdout")

	switch command {
	case "migrate", "list", "export":
	default:
		return errors.Errorf("unknown command %q", command)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.MySQLDSN == "" {
		cfg.MySQLDSN = os.Getenv("KART_STORAGE_MYSQL_DSN")
	}
	if cfg.ResolveDriver() == storage.DriverMemory {
		return errors.New("a durable store is required: set --database-url or --driver=mysql with --mysql-dsn")
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer backend.Close()

	switch command {
	case "migrate":
		zctx.From(ctx).Info("Schema applied", zap.String("driver", backend.Driver))
		return nil
	case "list":
		orders, err := backend.Orders.List(ctx)
		if err != nil {
			return err
		}
		return renderTable(os.Stdout, orders)
	default:
		orders, err := backend.Orders.List(ctx)
		if err != nil {
			return err
		}
		return exportTo(ctx, *out, orders)
	}
}
