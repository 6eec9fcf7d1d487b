// Package backend is the REST client for the order and capacity services. Every call is
// bounded by a fixed timeout and every failure is classified as a network, server, or
// client error before it leaves this package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	capports "github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	orderports "github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

// DefaultTimeout bounds every request, reads and writes alike.
const DefaultTimeout = 5 * time.Second

// RequestIDHeader carries a per-call correlation id.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

// Client calls the order and capacity REST endpoints.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client rooted at baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend base URL %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: parsed,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c, nil
}

func (c *Client) ListAllOrders(ctx context.Context) ([]orderdomain.Order, error) {
	return c.listOrders(ctx, "list orders", "/api/orders")
}

func (c *Client) ListOrdersByRegion(ctx context.Context, region orderdomain.Region) ([]orderdomain.Order, error) {
	if strings.TrimSpace(string(region)) == "" {
		return nil, apierrors.NewClientError(apierrors.KindSelectionUnset, "region is required", nil)
	}
	segment, err := pathSegment("region", string(region))
	if err != nil {
		return nil, err
	}
	return c.listOrders(ctx, "list region orders", "/api/orders/region/"+segment)
}

func (c *Client) ListOrdersByPriority(ctx context.Context) ([]orderdomain.Order, error) {
	return c.listOrders(ctx, "list priority orders", "/api/orders/priority")
}

func (c *Client) ListOrdersByPendingStatus(ctx context.Context) ([]orderdomain.Order, error) {
	return c.listOrders(ctx, "list pending orders", "/api/orders/pending")
}

func (c *Client) CreateOrder(ctx context.Context, req orderdomain.NewOrderRequest) (*orderdomain.Order, error) {
	const op = "create order"
	var payload orderPayload
	if err := c.do(ctx, op, http.MethodPost, "/api/orders", "", newCreateOrderBody(req), &payload); err != nil {
		return nil, err
	}
	order, err := payload.toDomain()
	if err != nil {
		return nil, malformed(op, err)
	}
	return &order, nil
}

// SetOrderStatus sends PATCH /api/orders/{id}/status?newStatus=... with no body.
func (c *Client) SetOrderStatus(ctx context.Context, orderID int64, status orderdomain.Status) (*orderdomain.Order, error) {
	const op = "set order status"
	if orderID <= 0 {
		return nil, apierrors.NewClientError(apierrors.KindMalformedRequest, "order id must be positive", nil)
	}
	if !status.IsValid() {
		return nil, apierrors.NewClientError(apierrors.KindMalformedRequest, fmt.Sprintf("unknown status %q", status), nil)
	}
	segment, err := pathSegment("id", orderID)
	if err != nil {
		return nil, err
	}
	query, err := runtime.StyleParamWithLocation("form", true, "newStatus", runtime.ParamLocationQuery, string(status))
	if err != nil {
		return nil, apierrors.NewClientError(apierrors.KindMalformedRequest, "encode newStatus", err)
	}
	var payload orderPayload
	if err := c.do(ctx, op, http.MethodPatch, "/api/orders/"+segment+"/status", query, nil, &payload); err != nil {
		return nil, err
	}
	order, err := payload.toDomain()
	if err != nil {
		return nil, malformed(op, err)
	}
	return &order, nil
}

func (c *Client) ListCapacitiesByProducer(ctx context.Context, producer capdomain.Producer) ([]capdomain.Capacity, error) {
	const op = "list capacities"
	if strings.TrimSpace(string(producer)) == "" {
		return nil, apierrors.NewClientError(apierrors.KindSelectionUnset, "producer is required", nil)
	}
	segment, err := pathSegment("producerName", string(producer))
	if err != nil {
		return nil, err
	}
	var payload []capacityPayload
	if err := c.do(ctx, op, http.MethodGet, "/api/producers/capacities/"+segment, "", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]capdomain.Capacity, 0, len(payload))
	for _, p := range payload {
		capacity, err := p.toDomain()
		if err != nil {
			return nil, malformed(op, err)
		}
		out = append(out, capacity)
	}
	return out, nil
}

func (c *Client) CreateCapacity(ctx context.Context, req capdomain.NewCapacityRequest) (*capdomain.Capacity, error) {
	const op = "create capacity"
	var payload capacityPayload
	if err := c.do(ctx, op, http.MethodPost, "/api/producers/capacities", "", newCreateCapacityBody(req), &payload); err != nil {
		return nil, err
	}
	capacity, err := payload.toDomain()
	if err != nil {
		return nil, malformed(op, err)
	}
	return &capacity, nil
}

func (c *Client) listOrders(ctx context.Context, op, path string) ([]orderdomain.Order, error) {
	var payload []orderPayload
	if err := c.do(ctx, op, http.MethodGet, path, "", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]orderdomain.Order, 0, len(payload))
	for _, p := range payload {
		order, err := p.toDomain()
		if err != nil {
			return nil, malformed(op, err)
		}
		out = append(out, order)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path, rawQuery string, body any, out any) error {
	if c == nil || c.httpClient == nil {
		return apierrors.NewClientError(apierrors.KindMalformedRequest, "backend client not configured", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apierrors.NewClientError(apierrors.KindMalformedRequest, "encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}
	endpoint := c.baseURL.String() + path
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apierrors.NewClientError(apierrors.KindMalformedRequest, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable",
			slog.String("op", op), slog.String("request_id", requestID), slog.String("error", err.Error()))
		return &apierrors.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &apierrors.NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "backend call",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", req.URL.EscapedPath()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
		slog.String("request_id", requestID),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apierrors.ServerError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apierrors.ServerError{StatusCode: resp.StatusCode, Body: "malformed response body: " + err.Error()}
	}
	return nil
}

func pathSegment(name string, value any) (string, error) {
	segment, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return "", apierrors.NewClientError(apierrors.KindMalformedRequest, "encode "+name, err)
	}
	return segment, nil
}

func malformed(op string, err error) error {
	return &apierrors.ServerError{StatusCode: http.StatusOK, Body: op + ": malformed response body: " + err.Error()}
}

var (
	_ orderports.Backend = (*Client)(nil)
	_ capports.Backend   = (*Client)(nil)
)
