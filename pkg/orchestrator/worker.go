package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/model"
)

// Execute runs locate, fetch and persist for one work item and returns its outcome.
// It never returns an error or panics: every failure becomes a Failure outcome for
// the step that failed, and later steps are skipped.
func Execute(ctx context.Context, item model.WorkItem, locator Locator, fetcher Fetcher, persister Persister, opts WorkerOptions) model.Outcome {
	opts = opts.withDefaults()

	var url string
	err := runStep(ctx, opts.CallTimeout, func(ctx context.Context) error {
		var err error
		url, err = locator.Locate(ctx, item.Key)
		return err
	})
	if err == nil && strings.TrimSpace(url) == "" {
		err = fmt.Errorf("no download URL resolved for %s", item.Key)
	}
	if err != nil {
		return model.NewFailure(item, model.ErrorKindLocate, tag(errors.ErrLocate, err))
	}

	var data []byte
	err = runStep(ctx, opts.CallTimeout, func(ctx context.Context) error {
		var err error
		data, err = fetcher.Fetch(ctx, url)
		return err
	})
	if err != nil {
		return model.NewFailure(item, model.ErrorKindFetch, tag(errors.ErrFetch, err))
	}

	name := opts.Naming(item.Index)
	err = runStep(ctx, opts.CallTimeout, func(ctx context.Context) error {
		return persister.Persist(ctx, name, data)
	})
	if err != nil {
		return model.NewFailure(item, model.ErrorKindPersist, tag(errors.ErrPersist, err))
	}

	return model.NewSuccess(item, name, int64(len(data)))
}

// runStep runs fn under its own timeout and converts a panic into an error.
func runStep(ctx context.Context, timeout time.Duration, fn func(context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// tag makes sure err matches sentinel without double-wrapping errors that already do.
func tag(sentinel, err error) error {
	if stderrors.Is(err, sentinel) {
		return err
	}
	return errors.Mark(sentinel, err)
}
