package apod

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/apodex/pkg/model"
)

type countingResolver struct {
	calls map[model.Key]int
	fail  map[model.Key]bool
}

func (r *countingResolver) Locate(_ context.Context, key model.Key) (string, error) {
	r.calls[key]++
	if r.fail[key] {
		return "", stderrors.New("lookup failed")
	}
	return "https://example.com/" + string(key) + ".jpg", nil
}

func TestCachingLocator(t *testing.T) {
	next := &countingResolver{calls: map[model.Key]int{}, fail: map[model.Key]bool{"bad": true}}
	c, err := NewCachingLocator(next, 0)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		u, err := c.Locate(ctx, "2020-03-01")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/2020-03-01.jpg", u)
	}
	assert.Equal(t, 1, next.calls["2020-03-01"])

	for i := 0; i < 2; i++ {
		_, err := c.Locate(ctx, "bad")
		require.Error(t, err)
	}
	assert.Equal(t, 2, next.calls["bad"], "failures must not be cached")
	assert.Equal(t, 1, c.Len())
}

func TestCachingLocator_Eviction(t *testing.T) {
	next := &countingResolver{calls: map[model.Key]int{}}
	c, err := NewCachingLocator(next, 1)
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = c.Locate(ctx, "a")
	_, _ = c.Locate(ctx, "b")
	_, _ = c.Locate(ctx, "a")
	assert.Equal(t, 2, next.calls["a"])
	assert.Equal(t, 1, c.Len())
}
