// Package kit holds the transport plumbing shared by the service binaries:
// the endpoint shape and MCP tool registration.
package kit

import "context"

// Endpoint is a transport-agnostic handler: decoded request in, response out.
type Endpoint func(ctx context.Context, req any) (any, error)
