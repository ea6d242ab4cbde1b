// Package apod resolves APOD dates to image URLs and downloads the images.
package apod

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/model"
)

const (
	// DefaultEndpoint is the public APOD metadata endpoint.
	DefaultEndpoint = "https://api.nasa.gov/planetary/apod"
	// DefaultAPIKey is NASA's rate-limited demo key, used when no key is configured.
	DefaultAPIKey = "DEMO_KEY"
)

// Metadata is the subset of the APOD metadata document apodex reads.
type Metadata struct {
	Date      string `json:"date"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	HDURL     string `json:"hdurl,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// Locator resolves a date key to the image URL published for that date.
type Locator struct {
	getter   Getter
	endpoint string
	apiKey   string
}

// NewLocator creates a locator. Empty endpoint and apiKey fall back to the defaults.
func NewLocator(getter Getter, endpoint, apiKey string) *Locator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	return &Locator{getter: getter, endpoint: endpoint, apiKey: apiKey}
}

// Locate performs one metadata lookup for key. Every failure wraps errors.ErrLocate.
func (l *Locator) Locate(ctx context.Context, key model.Key) (string, error) {
	meta, err := l.Metadata(ctx, key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(meta.URL) == "" {
		return "", fmt.Errorf("%w: no image URL in metadata for %s", errors.ErrLocate, key)
	}
	return meta.URL, nil
}

// Metadata fetches and decodes the metadata document for key.
func (l *Locator) Metadata(ctx context.Context, key model.Key) (*Metadata, error) {
	if strings.TrimSpace(string(key)) == "" {
		return nil, fmt.Errorf("%w: empty key", errors.ErrLocate)
	}
	metadataURL, err := l.metadataURL(key)
	if err != nil {
		return nil, errors.Mark(errors.ErrLocate, err)
	}

	body, err := l.getter.Get(ctx, metadataURL, "application/json")
	if err != nil {
		return nil, errors.Mark(errors.ErrLocate, errors.Wrapf(err, "failed to fetch metadata for %s", key))
	}

	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, errors.Mark(errors.ErrLocate, errors.Wrapf(err, "malformed metadata for %s", key))
	}
	return &meta, nil
}

func (l *Locator) metadataURL(key model.Key) (string, error) {
	u, err := url.Parse(l.endpoint)
	if err != nil {
		return "", errors.Wrap(err, "invalid metadata endpoint")
	}
	q := u.Query()
	q.Set("api_key", l.apiKey)
	q.Set("date", string(key))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
