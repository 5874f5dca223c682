package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/go-faster/errors"
	"github.com/olekukonko/tablewriter"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

const emptyDashboard = "No orders received yet."

// renderTable prints orders as the admin dashboard table.
func renderTable(w io.Writer, orders []order.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, emptyDashboard)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Placed", "Address", "Phone", "Items", "Total", "Status", "Note")
	for _, o := range orders {
		if err := table.Append([]string{
			fmt.Sprint(o.ID),
			o.CreatedAt.UTC().Format(time.DateTime),
			o.Address,
			o.Phone,
			describeItems(o.Items),
			o.Total.String(),
			o.Status,
			pointer.GetString(o.Note),
		}); err != nil {
			return errors.Wrap(err, "append row")
		}
	}
	return errors.Wrap(table.Render(), "render table")
}

// describeItems lists item names with the chosen variant, e.g.
// "Parapluie (Gray), Cardigan (Black, M)".
func describeItems(items []order.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		var variant []string
		if it.SelectedColor != "" {
			variant = append(variant, it.SelectedColor)
		}
		if it.SelectedSize != "" {
			variant = append(variant, it.SelectedSize)
		}
		if len(variant) == 0 {
			parts = append(parts, it.Name)
			continue
		}
		parts = append(parts, it.Name+" ("+strings.Join(variant, ", ")+")")
	}
	return strings.Join(parts, ", ")
}
