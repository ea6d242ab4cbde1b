// Package orchestrator runs batches of fetch-and-persist work items under a
// concurrency ceiling and collects one outcome per item.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/model"
)

// Orchestrator ties Locator, Fetcher and Persister together for batch exports.
type Orchestrator struct {
	Locator   Locator
	Fetcher   Fetcher
	Persister Persister
	Naming    NameFunc
	// CallTimeout bounds each collaborator call; DefaultCallTimeout when zero.
	CallTimeout time.Duration
	// ExportLimit, when positive, additionally bounds concurrent Persist calls.
	ExportLimit int
	Hooks       Hooks
}

// New constructs an Orchestrator from its collaborators. Helper for wiring.
func New(locator Locator, fetcher Fetcher, persister Persister, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		Locator:   locator,
		Fetcher:   fetcher,
		Persister: persister,
		Hooks:     hooks,
	}
}

// Run executes one work item per key with at most limit items in flight and returns
// the outcomes ordered by input index. Per-item failures are reported in the result;
// the only error returned is a configuration error, raised before any work starts.
func (o *Orchestrator) Run(ctx context.Context, keys []model.Key, limit int) (*model.BatchResult, error) {
	if err := o.validate(limit); err != nil {
		return nil, err
	}

	items := make([]model.WorkItem, len(keys))
	for i, k := range keys {
		items[i] = model.WorkItem{Key: k, Index: i}
	}

	outcomes := o.runWorkers(ctx, items, limit)

	result := model.NewBatchResult(outcomes)
	emit(o.Hooks, Event{Phase: PhaseDone, Msg: result.RunID})
	return result, nil
}

func (o *Orchestrator) validate(limit int) error {
	if limit < 1 {
		return fmt.Errorf("%w: concurrency limit must be at least 1, got %d", errors.ErrConfiguration, limit)
	}
	if o.ExportLimit < 0 {
		return fmt.Errorf("%w: export limit cannot be negative, got %d", errors.ErrConfiguration, o.ExportLimit)
	}
	if o.Locator == nil || o.Fetcher == nil || o.Persister == nil {
		return fmt.Errorf("%w: locator, fetcher and persister are required", errors.ErrConfiguration)
	}
	return nil
}

// runWorkers starts min(limit, len(items)) workers that pull items in input order.
// Each outcome slot is written by exactly one worker; wg.Wait orders those writes
// before the caller reads them.
func (o *Orchestrator) runWorkers(ctx context.Context, items []model.WorkItem, limit int) []model.Outcome {
	outcomes := make([]model.Outcome, len(items))
	if len(items) == 0 {
		return outcomes
	}

	persister := o.Persister
	if o.ExportLimit > 0 {
		persister = newGatedPersister(persister, o.ExportLimit)
	}
	opts := WorkerOptions{Naming: o.Naming, CallTimeout: o.CallTimeout}

	tasks := make(chan model.WorkItem)
	var wg sync.WaitGroup

	for w := 0; w < min(limit, len(items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				emit(o.Hooks, Event{Phase: PhaseStarted, Key: item.Key, Index: item.Index})
				out := Execute(ctx, item, o.Locator, o.Fetcher, persister, opts)
				outcomes[item.Index] = out
				phase := PhaseSucceeded
				if !out.Succeeded() {
					phase = PhaseFailed
				}
				emit(o.Hooks, Event{Phase: phase, Key: item.Key, Index: item.Index, Outcome: &out, Msg: out.Message})
			}
		}()
	}

	for _, item := range items {
		tasks <- item
	}
	close(tasks)
	wg.Wait()
	return outcomes
}

// gatedPersister admits at most cap(sem) concurrent Persist calls.
type gatedPersister struct {
	next Persister
	sem  chan struct{}
}

func newGatedPersister(next Persister, limit int) *gatedPersister {
	return &gatedPersister{next: next, sem: make(chan struct{}, limit)}
}

func (g *gatedPersister) Persist(ctx context.Context, name string, data []byte) error {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.sem }()
	return g.next.Persist(ctx, name, data)
}
