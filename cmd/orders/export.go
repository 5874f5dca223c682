package main

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

func exportTo(ctx context.Context, path string, orders []order.Order) error {
	if path == "-" {
		return writeArchive(os.Stdout, orders)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create archive")
	}
	if err := writeArchive(f, orders); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close archive")
	}

	zctx.From(ctx).Info("Orders exported",
		zap.String("path", path),
		zap.Int("orders", len(orders)),
	)
	return nil
}

// writeArchive writes one JSON order per line, gzip compressed.
func writeArchive(w io.Writer, orders []order.Order) error {
	gz := pgzip.NewWriter(w)
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	for i := range orders {
		e.Reset()
		orders[i].Encode(e)
		if _, err := gz.Write(append(e.Bytes(), '\n')); err != nil {
			_ = gz.Close()
			return errors.Wrapf(err, "write order %d", orders[i].ID)
		}
	}
	return errors.Wrap(gz.Close(), "flush archive")
}
