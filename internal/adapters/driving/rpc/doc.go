// Package rpc serves the tree service as a JSON-RPC 1.1 endpoint.
//
// Requests are POSTed to "/" as
//
//	{"version": "1.1", "method": "TreeUtils.get_trees", "params": [{...}], "id": "1"}
//
// and answered with the return value wrapped in a one-element result list,
// or with an error object carrying a JSON-RPC code. Unexpected parameter
// keys do not fail a call; they are logged and listed in the response's
// warnings member.
//
// The Authorization header of a request is attached to the call context,
// so remote collaborators are called as the requesting user.
//
// GET /metrics exposes Prometheus request counters and latencies.
package rpc
