package checkout

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

// Messages shown to the customer when a submission fails.
const (
	MsgCheckInformation = "Please check your information"
	MsgValidationFailed = "Validation failed"
	MsgCreateFailed     = "Failed to create order"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// SubmitError is returned by Client when the server does not create the
// order. Message is suitable for display.
type SubmitError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether the server rejected the submission as invalid.
func (e *SubmitError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// Client submits orders to the order API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// NewClient returns a Client for the API at baseURL, e.g.
// "http://localhost:8080". Requests are traced through otelhttp.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts sub and returns the created order.
func (c *Client) Submit(ctx context.Context, sub order.Submission) (*order.Order, error) {
	e := &jx.Encoder{}
	sub.Encode(e)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(e.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SubmitError{Message: MsgCreateFailed, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, readSubmitError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SubmitError{StatusCode: resp.StatusCode, Message: MsgCreateFailed, Err: err}
	}
	var o order.Order
	if err := o.Decode(jx.DecodeBytes(body)); err != nil {
		return nil, &SubmitError{
			StatusCode: resp.StatusCode,
			Message:    MsgCreateFailed,
			Err:        errors.Wrap(err, "decode order"),
		}
	}
	return &o, nil
}

// List fetches every stored order, newest first.
func (c *Client) List(ctx context.Context) ([]order.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders", http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("list orders: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	orders := make([]order.Order, 0)
	if err := jx.DecodeBytes(body).Arr(func(d *jx.Decoder) error {
		var o order.Order
		if err := o.Decode(d); err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

// readSubmitError maps a failed response to a displayable error. A 400 uses
// the server message when there is one; anything else is a generic failure.
func readSubmitError(resp *http.Response) error {
	if resp.StatusCode != http.StatusBadRequest {
		return &SubmitError{
			StatusCode: resp.StatusCode,
			Message:    MsgCreateFailed,
			Err:        errors.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &SubmitError{StatusCode: resp.StatusCode, Message: MsgValidationFailed, Err: err}
	}

	var message string
	err = jx.DecodeBytes(body).ObjBytes(func(d *jx.Decoder, k []byte) error {
		if string(k) == "message" && d.Next() == jx.String {
			var err error
			message, err = d.Str()
			return err
		}
		return d.Skip()
	})
	if err != nil {
		return &SubmitError{
			StatusCode: resp.StatusCode,
			Message:    MsgValidationFailed,
			Err:        errors.Wrap(err, "decode error body"),
		}
	}
	if message == "" {
		message = MsgCheckInformation
	}
	return &SubmitError{StatusCode: resp.StatusCode, Message: message}
}
