package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/xenking/kitty-cart/internal/domain/order"
	"github.com/xenking/kitty-cart/internal/storage"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (KART_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (KART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string `default:"" usage:"Base URL prepended to relative product image paths" flag:"image-base-url"`
	MaxBodyBytes int64  `default:"1048576" usage:"Maximum order submission body size" flag:"max-body-bytes"`
	Storage      StorageConfig
	Checkout     CheckoutConfig
	Duplicates   DuplicatesConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// StorageConfig selects the order store.
type StorageConfig struct {
	Driver   string `default:"" usage:"Order store: memory, postgres or mysql (empty picks postgres when a database URL is set)"`
	MySQLDSN string `default:"" env:"MYSQL_DSN" usage:"MySQL DSN for the mysql driver" flag:"mysql-dsn"`
}

// CheckoutConfig controls submission validation.
type CheckoutConfig struct {
	AddressMinLength int    `default:"1" usage:"Minimum address length"`
	PhoneMinLength   int    `default:"9" usage:"Minimum phone length"`
	PhoneMaxLength   int    `default:"0" usage:"Maximum phone length, 0 for unbounded"`
	RequireItems     bool   `default:"false" usage:"Reject submissions without items"`
	Currency         string `default:"DH" usage:"Currency assumed when a total carries none"`
}

// DuplicatesConfig sizes the probable-duplicate observer.
type DuplicatesConfig struct {
	Capacity          uint          `default:"10000" usage:"Expected submissions per window"`
	FalsePositiveRate float64       `default:"0.001" usage:"Bloom filter false positive rate"`
	Window            time.Duration `default:"10m" usage:"How long a fingerprint is remembered"`
}

// RateLimitConfig controls the per-client token bucket on order submission.
type RateLimitConfig struct {
	Max    int           `default:"30" usage:"Order submissions per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig reads an optional .env file, then loads configuration from
// environment variables, flags and YAML config files.
func LoadConfig() (*Config, error) {
	return loadConfig(false)
}

func loadConfig(skipFlags bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:        "KART",
		SkipFlags:        skipFlags,
		AllowUnknownEnvs: true,
		Files:            []string{"config.yaml", "/etc/kart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's KART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch c.Store().ResolveDriver() {
	case storage.DriverMemory, storage.DriverPostgres, storage.DriverMySQL:
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Checkout.PhoneMaxLength > 0 && c.Checkout.PhoneMaxLength < c.Checkout.PhoneMinLength {
		return errors.Errorf("phone max length %d is below min length %d",
			c.Checkout.PhoneMaxLength, c.Checkout.PhoneMinLength)
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	if c.Duplicates.FalsePositiveRate <= 0 || c.Duplicates.FalsePositiveRate >= 1 {
		return errors.Errorf("duplicate false positive rate %v must be in (0, 1)", c.Duplicates.FalsePositiveRate)
	}
	return nil
}

// Store returns the storage selection.
func (c *Config) Store() storage.Config {
	return storage.Config{
		Driver:      c.Storage.Driver,
		DatabaseURL: c.DatabaseURL,
		MySQLDSN:    c.Storage.MySQLDSN,
	}
}

// Rules returns the submission validation rules.
func (c *Config) Rules() order.Rules {
	return order.Rules{
		AddressMinLength: c.Checkout.AddressMinLength,
		PhoneMinLength:   c.Checkout.PhoneMinLength,
		PhoneMaxLength:   c.Checkout.PhoneMaxLength,
		RequireItems:     c.Checkout.RequireItems,
		Currency:         c.Checkout.Currency,
	}
}
