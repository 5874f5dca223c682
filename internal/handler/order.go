package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

// apiError is the error response body.
type apiError struct {
	Code    int
	Message string
	Fields  []fieldError
}

type fieldError struct {
	Name    string
	Message string
}

func (a *apiError) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Int(a.Code)
	e.FieldStart("message")
	e.Str(a.Message)
	if a.Fields != nil {
		e.FieldStart("fields")
		e.ArrStart()
		for _, f := range a.Fields {
			e.ObjStart()
			e.FieldStart("name")
			e.Str(f.Name)
			e.FieldStart("message")
			e.Str(f.Message)
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}

// PlaceOrder decodes a checkout submission, delegates to the order service,
// and responds with the created order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, &apiError{Code: http.StatusRequestEntityTooLarge, Message: "request body too large"})
			return
		}
		writeError(w, &apiError{Code: http.StatusBadRequest, Message: "read request body"})
		return
	}

	var sub order.Submission
	d := jx.DecodeBytes(body)
	if err := sub.Decode(d); err != nil {
		writeError(w, &apiError{Code: http.StatusBadRequest, Message: "invalid request body: " + err.Error()})
		return
	}
	if d.Next() != jx.Invalid {
		writeError(w, &apiError{Code: http.StatusBadRequest, Message: "invalid request body: unexpected data after object"})
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), sub)
	if err != nil {
		writeError(w, mapOrderError(r, err, "failed to create order"))
		return
	}

	writeJSON(w, http.StatusCreated, o.Encode)
}

// ListOrders responds with every stored order, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeError(w, mapOrderError(r, err, "failed to list orders"))
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			orders[i].Encode(e)
		}
		e.ArrEnd()
	})
}

// mapOrderError converts domain errors to API error responses. Anything that
// is not a validation failure is reported with a generic message and logged.
func mapOrderError(r *http.Request, err error, generic string) *apiError {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		fields := make([]fieldError, len(vErr.Fields))
		for i, f := range vErr.Fields {
			fields[i] = fieldError{Name: f.Name, Message: f.Error.Error()}
		}
		return &apiError{
			Code:    http.StatusBadRequest,
			Message: vErr.Error(),
			Fields:  fields,
		}
	}

	zctx.From(r.Context()).Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	return &apiError{Code: http.StatusInternalServerError, Message: generic}
}

func writeError(w http.ResponseWriter, a *apiError) {
	writeJSON(w, a.Code, a.Encode)
}
