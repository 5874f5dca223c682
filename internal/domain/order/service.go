package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/xenking/kitty-cart/internal/domain/order"

// Option configures a Service.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	duplicates     *DuplicateDetector
}

// WithTracerProvider sets the tracer provider used for service spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider used for service counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithDuplicateDetector enables probable-duplicate reporting.
func WithDuplicateDetector(d *DuplicateDetector) Option {
	return func(o *options) { o.duplicates = d }
}

// Service accepts checkout submissions and lists stored orders.
type Service struct {
	orders    Repository
	validator *Validator
	dupes     *DuplicateDetector
	tracer    trace.Tracer

	created    metric.Int64Counter
	rejected   metric.Int64Counter
	failed     metric.Int64Counter
	duplicates metric.Int64Counter
}

// NewService creates an order Service backed by orders.
func NewService(orders Repository, validator *Validator, opts ...Option) (*Service, error) {
	o := options{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	s := &Service{
		orders:    orders,
		validator: validator,
		dupes:     o.duplicates,
		tracer:    o.tracerProvider.Tracer(instrumentationName),
	}

	var err error
	if s.created, err = meter.Int64Counter("kart.orders.created",
		metric.WithDescription("Orders successfully persisted"),
	); err != nil {
		return nil, errors.Wrap(err, "create counter")
	}
	if s.rejected, err = meter.Int64Counter("kart.orders.rejected",
		metric.WithDescription("Submissions rejected by validation"),
	); err != nil {
		return nil, errors.Wrap(err, "create counter")
	}
	if s.failed, err = meter.Int64Counter("kart.orders.store_failures",
		metric.WithDescription("Store operations that failed"),
	); err != nil {
		return nil, errors.Wrap(err, "create counter")
	}
	if s.duplicates, err = meter.Int64Counter("kart.orders.probable_duplicates",
		metric.WithDescription("Submissions whose content was probably seen recently"),
	); err != nil {
		return nil, errors.Wrap(err, "create counter")
	}

	return s, nil
}

// PlaceOrder validates sub and, when it is valid, creates exactly one order.
//
// Validation failures are returned as *ValidationError and never reach the
// store. Store failures are returned as *StoreUnavailableError and mean no
// order was created. Submissions are not deduplicated.
func (s *Service) PlaceOrder(ctx context.Context, sub Submission) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder")
	defer span.End()

	lg := zctx.From(ctx)

	draft, err := s.validator.Validate(sub)
	if err != nil {
		s.rejected.Add(ctx, 1)
		span.SetStatus(codes.Error, "validation failed")
		lg.Debug("Order submission rejected", zap.Error(err))
		return nil, err
	}

	o, err := s.orders.Create(ctx, draft)
	if err != nil {
		s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "create")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order")
		lg.Error("Create order failed", zap.Error(err))
		return nil, errors.Wrap(Unavailable("create", err), "create order")
	}

	s.created.Add(ctx, 1)
	duplicate := s.dupes != nil && s.dupes.Observe(draft)
	if duplicate {
		s.duplicates.Add(ctx, 1)
	}
	span.SetAttributes(
		attribute.Int64("order.id", o.ID),
		attribute.Int("order.items", len(o.Items)),
	)
	lg.Info("Order created",
		zap.Int64("order_id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.Total.String()),
		zap.Bool("probable_duplicate", duplicate),
	)
	return o, nil
}

// ListOrders returns every stored order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.ListOrders")
	defer span.End()

	orders, err := s.orders.List(ctx)
	if err != nil {
		s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "list")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list orders")
		zctx.From(ctx).Error("List orders failed", zap.Error(err))
		return nil, errors.Wrap(Unavailable("list", err), "list orders")
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}
