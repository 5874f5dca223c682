package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kitty-cart/internal/storage/memory"
)

func TestConfig_ResolveDriver(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "default memory", cfg: Config{}, want: DriverMemory},
		{name: "url implies postgres", cfg: Config{DatabaseURL: "postgres://x"}, want: DriverPostgres},
		{name: "explicit wins", cfg: Config{Driver: DriverMySQL, DatabaseURL: "postgres://x"}, want: DriverMySQL},
		{name: "explicit memory with url", cfg: Config{Driver: DriverMemory, DatabaseURL: "postgres://x"}, want: DriverMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolveDriver())
		})
	}
}

func TestOpen_Memory(t *testing.T) {
	b, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, DriverMemory, b.Driver)
	assert.IsType(t, &memory.Store{}, b.Orders)
	assert.NoError(t, b.Check(context.Background()))
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown driver", cfg: Config{Driver: "sqlite"}},
		{name: "postgres without url", cfg: Config{Driver: DriverPostgres}},
		{name: "mysql without dsn", cfg: Config{Driver: DriverMySQL}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}
