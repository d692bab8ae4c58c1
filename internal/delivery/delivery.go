// Package delivery defines the contract implemented by every transport entrypoint.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, worker, ...) started by the composition root.
type Delivery interface {
	Serve(ctx context.Context) error
}
