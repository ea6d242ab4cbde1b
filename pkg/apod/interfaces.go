//go:generate mockgen -destination=./mocks/apod.go . Getter

package apod

import "context"

// Getter is the raw HTTP capability the locator and fetcher are built on.
// *http.Client from pkg/http satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL, accept string) ([]byte, error)
}
