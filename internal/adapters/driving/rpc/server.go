package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
	"github.com/custodia-labs/treeutils/internal/logger"
)

// maxRequestBody bounds the size of a request body.
const maxRequestBody = 64 << 20

// unknownMethod labels metrics for calls to methods that do not exist.
const unknownMethod = "unknown"

// Server is the JSON-RPC endpoint for the tree service.
type Server struct {
	tree    driving.TreeService
	metrics *Metrics
	mux     *http.ServeMux
}

// NewServer creates a server dispatching to tree.
func NewServer(tree driving.TreeService) (*Server, error) {
	if tree == nil {
		return nil, ErrMissingTreeService
	}

	s := &Server{
		tree:    tree,
		metrics: NewMetrics(),
		mux:     http.NewServeMux(),
	}
	s.mux.Handle("POST /{$}", http.HandlerFunc(s.serveRPC))
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	logger.Info("JSON-RPC server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp, method := s.handle(r)

	code := 0
	status := http.StatusOK
	if resp.Error != nil {
		code = resp.Error.Code
		status = http.StatusInternalServerError
	}
	s.metrics.Observe(method, code, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("writing response: %v", err)
	}
}

// handle decodes and runs one call. It returns the response and the
// method name used for metrics.
func (s *Server) handle(r *http.Request) (*Response, string) {
	resp := &Response{Version: "1.1"}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		resp.Error = newError(CodeParseError, fmt.Sprintf("reading request: %v", err))
		return resp, unknownMethod
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		resp.Error = newError(CodeParseError, fmt.Sprintf("parse error: %v", err))
		return resp, unknownMethod
	}
	resp.ID = req.ID

	service, name, ok := strings.Cut(req.Method, ".")
	if req.Method == "" || !ok {
		resp.Error = newError(CodeInvalidRequest, fmt.Sprintf("invalid method %q", req.Method))
		return resp, unknownMethod
	}
	fn, found := s.methods()[name]
	if service != ServiceName || !found {
		resp.Error = newError(CodeMethodNotFound, fmt.Sprintf("no such method %s", req.Method))
		return resp, unknownMethod
	}

	var params json.RawMessage
	switch {
	case len(req.Params) == 1:
		params = req.Params[0]
	case len(req.Params) > 1:
		resp.Error = newError(CodeInvalidParams, fmt.Sprintf("expected 1 param, got %d", len(req.Params)))
		return resp, name
	case name != "status":
		resp.Error = newError(CodeInvalidParams, "expected 1 param, got 0")
		return resp, name
	}

	ctx := domain.WithAuthToken(r.Context(), r.Header.Get("Authorization"))
	result, warnings, err := fn(ctx, params)
	for _, w := range warnings {
		logger.Warn("%s: %s", req.Method, w)
	}
	resp.Warnings = warnings
	if err != nil {
		logger.Error("%s failed: %v", req.Method, err)
		resp.Error = toError(err)
		return resp, name
	}

	resp.Result = []any{result}
	return resp, name
}

// toError maps a call failure to a JSON-RPC error object.
func toError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	code := CodeServerError
	if domain.IsValidationError(err) {
		code = CodeInvalidParams
	}
	e := newError(code, err.Error())
	e.Detail = err.Error()
	return e
}
