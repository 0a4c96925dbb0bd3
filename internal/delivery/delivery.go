// Package delivery defines the contract every transport surface satisfies.
package delivery

import "context"

// Delivery is a serving surface (HTTP today). Serve blocks until the
// surface stops; shutdown happens through lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
