package apod

import (
	"context"
	"fmt"
	"strings"

	"github.com/glorpus-work/apodex/pkg/errors"
)

// Fetcher downloads image payloads.
type Fetcher struct {
	getter Getter
}

// NewFetcher creates a fetcher on top of getter.
func NewFetcher(getter Getter) *Fetcher {
	return &Fetcher{getter: getter}
}

// Fetch downloads rawURL in a single attempt. Every failure wraps errors.ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: empty URL", errors.ErrFetch)
	}
	data, err := f.getter.Get(ctx, rawURL, "")
	if err != nil {
		return nil, errors.Mark(errors.ErrFetch, errors.Wrapf(err, "failed to download %s", rawURL))
	}
	return data, nil
}
