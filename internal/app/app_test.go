package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/kitty-cart/internal/domain/order"
	"github.com/xenking/kitty-cart/internal/storage/memory"
	"github.com/xenking/kitty-cart/pkg/health"
	"github.com/xenking/kitty-cart/pkg/httpmiddleware"
)

const orderBody = `{
	"address": "12 Rue X",
	"phone": "0612345678",
	"items": [{"id":1,"name":"Parapluie","price":0.1,"category":"Mumuso","image":"/parapluie-gray.png","selectedColor":"Gray"}],
	"total": "0.10 DH"
}`

func testConfig() *Config {
	return &Config{
		MaxBodyBytes: 1 << 20,
		Checkout:     CheckoutConfig{AddressMinLength: 1, PhoneMinLength: 9, Currency: "DH"},
		Duplicates:   DuplicatesConfig{Capacity: 100, FalsePositiveRate: 0.01, Window: time.Minute},
		RateLimit:    RateLimitConfig{Max: 3, Window: time.Minute},
		CORS:         CORSConfig{Origins: []string{"*"}},
	}
}

type testServer struct {
	handler http.Handler
	health  *health.Health
	store   *memory.Store
}

func newTestServer(t *testing.T, cfg *Config) *testServer {
	t.Helper()
	store := memory.New()
	hs := health.New()
	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})
	h, err := newHandler(zap.NewNop(), cfg, store, hs, limiter,
		tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	return &testServer{handler: h, health: hs, store: store}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler_PlaceAndListOrders(t *testing.T) {
	s := newTestServer(t, testConfig())

	first := s.do(http.MethodPost, "/api/orders", orderBody)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.NotEmpty(t, first.Header().Get(httpmiddleware.HeaderRequestID))

	second := s.do(http.MethodPost, "/api/orders", orderBody)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	rec := s.do(http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ids []int64
	require.NoError(t, jx.DecodeBytes(rec.Body.Bytes()).Arr(func(d *jx.Decoder) error {
		var o order.Order
		if err := o.Decode(d); err != nil {
			return err
		}
		ids = append(ids, o.ID)
		return nil
	}))
	assert.Equal(t, []int64{2, 1}, ids)
}

func TestHandler_ValidationLeavesStoreUntouched(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := s.do(http.MethodPost, "/api/orders", strings.Replace(orderBody, `"0612345678"`, `""`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"phone"`)
	assert.Zero(t, s.store.Len())
}

func TestHandler_RateLimitsSubmissionsOnly(t *testing.T) {
	s := newTestServer(t, testConfig())

	for range 3 {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/orders", orderBody).Code)
	}
	rec := s.do(http.MethodPost, "/api/orders", orderBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 3, s.store.Len())

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/orders", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/products", "").Code)
}

func TestHandler_Products(t *testing.T) {
	cfg := testConfig()
	cfg.ImageBaseURL = "https://cdn.example/"
	s := newTestServer(t, cfg)

	rec := s.do(http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Parapluie"`)
	assert.Contains(t, rec.Body.String(), `https://cdn.example/`)
}

func TestHandler_Health(t *testing.T) {
	s := newTestServer(t, testConfig())

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/livez", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/readyz", "").Code)

	s.health.SetReady(true)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/readyz", "").Code)
}

func TestHandler_Preflight(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_UnknownRoute(t *testing.T) {
	s := newTestServer(t, testConfig())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodDelete, "/api/orders", "").Code)
}
