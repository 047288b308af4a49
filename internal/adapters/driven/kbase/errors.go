package kbase

import (
	"fmt"
)

// RemoteError is a failure reported by a remote service, either as a
// JSON-RPC error object or as a non-2xx HTTP response.
type RemoteError struct {
	Service string
	Method  string

	// Code is the JSON-RPC error code, or the HTTP status if the
	// response carried no error object.
	Code int

	// Name is the error class reported by the server (e.g. "JSONRPCError").
	Name    string
	Message string

	// Detail is the server-side trace, if any.
	Detail string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s.%s: %s (%s %d)", e.Service, e.Method, e.Message, e.Name, e.Code)
}
