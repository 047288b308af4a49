// Package kbase provides driven adapters backed by remote KBase services.
//
// Services speak JSON-RPC 1.1 over HTTP POST. A request names the method as
// "Service.method" and carries a positional params list; a successful
// response wraps the return values in a result list, and a failed one
// carries an error object instead.
//
//   - ObjectStore reads through Workspace.get_objects2 and saves through
//     DataFileUtil.save_objects.
//   - PackageExporter packages directories through
//     DataFileUtil.package_for_download.
//
// Remote failures are returned as *RemoteError and never retried.
//
// # Authentication
//
// Each call sends the token attached to the request context with
// domain.WithAuthToken, falling back to the token the Client was
// configured with.
package kbase
