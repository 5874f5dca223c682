package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kitty-cart/internal/domain/catalog"
	"github.com/xenking/kitty-cart/internal/domain/order"
	"github.com/xenking/kitty-cart/internal/handler"
	"github.com/xenking/kitty-cart/internal/storage"
	"github.com/xenking/kitty-cart/pkg/health"
	"github.com/xenking/kitty-cart/pkg/httpmiddleware"
)

const serviceName = "kitty-cart-api"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	backend, err := storage.Open(ctx, cfg.Store())
	if err != nil {
		return errors.Wrap(err, "open order store")
	}
	defer backend.Close()

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, backend.Check)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))

	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})

	h, err := newHandler(lg, cfg, backend.Orders, healthSvc, limiter, m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           h,
	}

	// Background loops stop with the server; ctx only triggers the drain.
	bgCtx, stopBackground := context.WithCancel(context.WithoutCancel(ctx))
	defer stopBackground()

	g, gCtx := errgroup.WithContext(bgCtx)
	g.Go(func() error {
		return healthSvc.Run(gCtx, 10*time.Second)
	})
	g.Go(func() error {
		return limiter.Run(gCtx)
	})
	g.Go(func() error {
		defer stopBackground()
		select {
		case <-ctx.Done():
		case <-gCtx.Done():
			return nil
		}
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		return errors.Wrap(server.Shutdown(shutdownCtx), "shutdown")
	})
	g.Go(func() error {
		defer stopBackground()
		healthSvc.SetReady(true)
		lg.Info("Server listening",
			zap.String("addr", cfg.Addr),
			zap.String("store", backend.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}

// newHandler assembles the API routes, the health probes and the middleware
// chain around them.
func newHandler(
	lg *zap.Logger,
	cfg *Config,
	orders order.Repository,
	healthSvc *health.Health,
	limiter *httpmiddleware.Limiter,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (http.Handler, error) {
	svc, err := order.NewService(orders, order.NewValidator(cfg.Rules()),
		order.WithTracerProvider(tp),
		order.WithMeterProvider(mp),
		order.WithDuplicateDetector(order.NewDuplicateDetector(
			cfg.Duplicates.Capacity,
			cfg.Duplicates.FalsePositiveRate,
			cfg.Duplicates.Window,
		)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}

	api := handler.New(handler.Config{
		ImageBaseURL: cfg.ImageBaseURL,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, catalog.Default(), svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	api.Register(mux, limiter.Middleware())

	find := httpmiddleware.MakeRouteFinder(mux)
	return httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", httpmiddleware.HeaderRequestID},
			ExposeHeaders:    []string{httpmiddleware.HeaderRequestID, "Retry-After"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Instrument(serviceName, find, tp, mp),
		httpmiddleware.LogRequests(find),
	), nil
}
