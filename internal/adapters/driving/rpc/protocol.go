package rpc

import (
	"encoding/json"

	"github.com/custodia-labs/treeutils/internal/core/services"
)

// ServiceName prefixes every method name.
const ServiceName = "TreeUtils"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32500
)

// errorName is the error class reported in every error object.
const errorName = "JSONRPCError"

// Request is a JSON-RPC 1.1 call.
type Request struct {
	Version string            `json:"version"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id,omitempty"`
}

// Response is a JSON-RPC 1.1 reply. Exactly one of Result and Error is set.
type Response struct {
	Version  string                  `json:"version"`
	ID       json.RawMessage         `json:"id,omitempty"`
	Result   []any                   `json:"result,omitempty"`
	Error    *Error                  `json:"error,omitempty"`
	Warnings []services.ParamWarning `json:"warnings,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Name    string `json:"name"`
	Code    int    `json:"code"`
	Message string `json:"message"`

	// Detail repeats the full error text, as KBase servers do.
	Detail string `json:"error,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code int, message string) *Error {
	return &Error{Name: errorName, Code: code, Message: message}
}
