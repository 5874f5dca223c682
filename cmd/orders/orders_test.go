package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

func sampleOrders() []order.Order {
	placed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return []order.Order{
		{
			ID:      2,
			Address: "8 Avenue Hassan II",
			Phone:   "0698765432",
			Items: []order.Item{
				{ID: 1, Name: "Parapluie", Price: decimal.RequireFromString("0.1"), SelectedColor: "Gray"},
				{ID: 2, Name: "Cardigan", Price: decimal.RequireFromString("0.1"), SelectedColor: "Black", SelectedSize: "M"},
			},
			Total:     order.Total{Amount: decimal.RequireFromString("0.2"), Currency: "DH"},
			Status:    order.StatusPending,
			CreatedAt: placed.Add(time.Minute),
		},
		{
			ID:      1,
			Address: "12 Rue X",
			Phone:   "0612345678",
			Note:    pointer.ToString("leave at the door"),
			Items: []order.Item{
				{ID: 1, Name: "Parapluie", Price: decimal.RequireFromString("0.1")},
			},
			Total:     order.Total{Amount: decimal.RequireFromString("0.1"), Currency: "DH"},
			Status:    order.StatusPending,
			CreatedAt: placed,
		},
	}
}

func readArchive(t *testing.T, r io.Reader) []order.Order {
	t.Helper()
	gz, err := pgzip.NewReader(r)
	require.NoError(t, err)
	defer func() { _ = gz.Close() }()

	var orders []order.Order
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		var o order.Order
		require.NoError(t, o.Decode(jx.DecodeBytes(sc.Bytes())))
		orders = append(orders, o)
	}
	require.NoError(t, sc.Err())
	return orders
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, sampleOrders()))

	out := buf.String()
	for _, want := range []string{
		"8 Avenue Hassan II",
		"Parapluie (Gray), Cardigan (Black, M)",
		"0.20 DH",
		"leave at the door",
		"2026-03-14 09:26:53",
		"pending",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("0698765432")), bytes.Index(buf.Bytes(), []byte("0612345678")),
		"rows keep the newest-first order")
}

func TestRenderTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, nil))
	assert.Equal(t, emptyDashboard+"\n", buf.String())
}

func TestDescribeItems(t *testing.T) {
	assert.Equal(t, "", describeItems(nil))
	assert.Equal(t, "Pull Rayé (S)", describeItems([]order.Item{{Name: "Pull Rayé", SelectedSize: "S"}}))
}

func TestWriteArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeArchive(&buf, sampleOrders()))

	got := readArchive(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "0.20 DH", got[0].Total.String())
	assert.Equal(t, "M", got[0].Items[1].SelectedSize)
	assert.Equal(t, "leave at the door", pointer.GetString(got[1].Note))
	assert.True(t, got[1].CreatedAt.Equal(sampleOrders()[1].CreatedAt))
}

func TestWriteArchive_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeArchive(&buf, nil))
	assert.Empty(t, readArchive(t, &buf))
}

func TestRun_RequiresDurableStore(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KART_STORAGE_MYSQL_DSN", "")

	err := run(context.Background(), "list", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "durable store is required")

	err = run(context.Background(), "drop", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "drop"`)
}
