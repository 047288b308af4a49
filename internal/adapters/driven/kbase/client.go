package kbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout           = 30 * time.Minute
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 5

	// maxErrorBody bounds how much of a non-JSON error body is kept.
	maxErrorBody = 1024
)

// Config holds configuration for a service client.
type Config struct {
	// URL is the service endpoint.
	URL string

	// Token authenticates calls made without a token in the context.
	Token string

	// Timeout is the per-request timeout (default: 30m; packaging can be slow).
	Timeout time.Duration

	// RequestsPerSecond is the sustained request rate (default: 10).
	RequestsPerSecond float64

	// Burst is the maximum burst size (default: 5).
	Burst int
}

// Client calls one JSON-RPC 1.1 service.
type Client struct {
	client  *http.Client
	service string
	url     string
	token   string
	limiter *rate.Limiter
	nextID  atomic.Int64
}

type rpcRequest struct {
	Version string `json:"version"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      string `json:"id"`
}

type rpcError struct {
	Name    string `json:"name"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type rpcResponse struct {
	Result []json.RawMessage `json:"result"`
	Error  *rpcError         `json:"error"`
}

// NewClient creates a client for the named service (e.g. "Workspace").
func NewClient(service string, cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		service: service,
		url:     cfg.URL,
		token:   cfg.Token,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Service returns the service name the client calls.
func (c *Client) Service() string {
	return c.service
}

// Call invokes method with params and decodes the first result element
// into result. result may be nil if the return value is not needed.
func (c *Client) Call(ctx context.Context, method string, params []any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s.%s: %w", c.service, method, err)
	}

	reqBody := rpcRequest{
		Version: "1.1",
		Method:  c.service + "." + method,
		Params:  params,
		ID:      strconv.FormatInt(c.nextID.Add(1), 10),
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", token)
	}

	logger.Debug("calling %s at %s", reqBody.Method, c.url)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp rpcResponse
	decodeErr := json.Unmarshal(body, &rpcResp)
	if decodeErr == nil && rpcResp.Error != nil {
		return &RemoteError{
			Service: c.service,
			Method:  method,
			Code:    rpcResp.Error.Code,
			Name:    rpcResp.Error.Name,
			Message: rpcResp.Error.Message,
			Detail:  rpcResp.Error.Error,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &RemoteError{
			Service: c.service,
			Method:  method,
			Code:    resp.StatusCode,
			Name:    "HTTPError",
			Message: string(body),
		}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if result == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("%s.%s: empty result", c.service, method)
	}
	if err := json.Unmarshal(rpcResp.Result[0], result); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// tokenFor prefers the caller's token over the configured one.
func (c *Client) tokenFor(ctx context.Context) string {
	if token := domain.AuthToken(ctx); token != "" {
		return token
	}
	return c.token
}
