// Command checkout places a storefront order from the command line. It makes
// the same selection and submission steps as the web checkout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/AlekSi/pointer"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/xenking/kitty-cart/internal/checkout"
	"github.com/xenking/kitty-cart/internal/domain/catalog"
	"github.com/xenking/kitty-cart/internal/domain/order"
)

type options struct {
	api      string
	selected string
	colors   string
	sizes    string
	address  string
	phone    string
	note     *string
	catalog  bool
	dryRun   bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var o options
	var note string
	fs.StringVar(&o.api, "api", "http://localhost:8080", "storefront API base URL")
	fs.StringVar(&o.selected, "select", "", "comma separated product ids to add, e.g. 2,4")
	fs.StringVar(&o.colors, "color", "", "colors per product, e.g. 2=Black,4=Blue")
	fs.StringVar(&o.sizes, "size", "", "sizes per product, e.g. 2=M")
	fs.StringVar(&o.address, "address", "", "delivery address")
	fs.StringVar(&o.phone, "phone", "", "contact phone number")
	fs.StringVar(&note, "note", "", "optional note for the order")
	fs.BoolVar(&o.catalog, "catalog", false, "print the catalog and exit")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the cart without submitting")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "note" {
			o.note = pointer.ToString(note)
		}
	})
	return &o, nil
}

func main() {
	lg, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, os.Stdout, opts, checkout.NewClient(opts.api)); err != nil {
		lg.Error("Checkout failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, opts *options, submitter checkout.Submitter) error {
	products := catalog.Default()
	if opts.catalog {
		return printCatalog(w, products)
	}

	flow := checkout.NewFlow(products, submitter, checkout.WithCelebration(func(o *order.Order) {
		_, _ = fmt.Fprintf(w, "Order #%d placed, total %s. Thank you!\n", o.ID, o.Total)
	}))
	if err := applySelection(flow, opts); err != nil {
		return err
	}

	items, total := flow.Cart()
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "- %s\n", describe(it))
	}
	_, _ = fmt.Fprintf(w, "Total: %s\n", total)
	if opts.dryRun {
		return nil
	}

	flow.OpenCheckout()
	if _, err := flow.Submit(ctx, checkout.Details{
		Address: opts.address,
		Phone:   opts.phone,
		Note:    opts.note,
	}); err != nil {
		return errors.Wrap(err, flow.State().Notice)
	}
	return nil
}

// applySelection replays the command line choices on flow.
func applySelection(flow *checkout.Flow, opts *options) error {
	ids, err := parseIDs(opts.selected)
	if err != nil {
		return errors.Wrap(err, "select")
	}
	for _, id := range ids {
		if _, err := flow.Toggle(id); err != nil && !errors.Is(err, checkout.ErrLocked) {
			return errors.Wrapf(err, "select %d", id)
		}
	}

	colors, err := parseAssignments(opts.colors)
	if err != nil {
		return errors.Wrap(err, "color")
	}
	for id, color := range colors {
		if err := flow.SelectColor(id, color); err != nil {
			return errors.Wrapf(err, "color %d", id)
		}
	}

	sizes, err := parseAssignments(opts.sizes)
	if err != nil {
		return errors.Wrap(err, "size")
	}
	for id, size := range sizes {
		if err := flow.SelectSize(id, size); err != nil {
			return errors.Wrapf(err, "size %d", id)
		}
	}
	return nil
}

func parseIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "product id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseAssignments parses "id=value,id=value".
func parseAssignments(s string) (map[int64]string, error) {
	out := make(map[int64]string)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		rawID, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(value) == "" {
			return nil, errors.Errorf("expected id=value, got %q", part)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "product id %q", rawID)
		}
		out[id] = strings.TrimSpace(value)
	}
	return out, nil
}

func describe(it order.Item) string {
	s := it.Name + " " + it.Price.StringFixed(2)
	if it.SelectedColor != "" {
		s += " color " + it.SelectedColor
	}
	if it.SelectedSize != "" {
		s += " size " + it.SelectedSize
	}
	return s
}

func printCatalog(w io.Writer, c *catalog.Catalog) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Price", "Category", "Colors", "Sizes", "Locked")
	for _, p := range c.List() {
		if err := table.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Price.StringFixed(2),
			p.Category,
			strings.Join(p.Colors, ", "),
			strings.Join(p.Sizes, ", "),
			strconv.FormatBool(p.Locked),
		}); err != nil {
			return errors.Wrap(err, "append row")
		}
	}
	return errors.Wrap(table.Render(), "render catalog")
}
