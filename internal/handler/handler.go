// Package handler exposes the order service and the catalog over HTTP.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/jx"

	"github.com/xenking/kitty-cart/internal/domain/catalog"
	"github.com/xenking/kitty-cart/internal/domain/order"
)

// DefaultMaxBodyBytes limits order submission bodies when no limit is set.
const DefaultMaxBodyBytes = 1 << 20

// OrderService places and lists orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, sub order.Submission) (*order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as defined in the catalog.
	ImageBaseURL string
	// MaxBodyBytes limits the size of a submitted order.
	MaxBodyBytes int64
}

// Handler serves the storefront API.
type Handler struct {
	orders       OrderService
	catalog      *catalog.Catalog
	imageBaseURL string
	maxBodyBytes int64
}

// New constructs a Handler with the required domain dependencies.
func New(cfg Config, products *catalog.Catalog, orders OrderService) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		orders:       orders,
		catalog:      products,
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Register mounts the API routes on mux. submit wraps the order submission
// route only, e.g. with a rate limiter.
func (h *Handler) Register(mux *http.ServeMux, submit func(http.Handler) http.Handler) {
	if submit == nil {
		submit = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("POST /api/orders", submit(http.HandlerFunc(h.PlaceOrder)))
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/products", h.ListProducts)
}

// ListProducts returns the fixed catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	products := h.catalog.List()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range products {
			p := h.withImageBase(products[i])
			p.Encode(e)
		}
		e.ArrEnd()
	})
}

func (h *Handler) withImageBase(p catalog.Product) catalog.Product {
	if h.imageBaseURL == "" {
		return p
	}
	p.Image = h.imageURL(p.Image)
	if p.ColorImages != nil {
		images := make(map[string]string, len(p.ColorImages))
		for color, img := range p.ColorImages {
			images[color] = h.imageURL(img)
		}
		p.ColorImages = images
	}
	return p
}

func (h *Handler) imageURL(path string) string {
	if path == "" || strings.Contains(path, "://") {
		return path
	}
	return h.imageBaseURL + "/" + strings.TrimLeft(path, "/")
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
