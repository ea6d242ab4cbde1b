//go:generate mockgen -destination=./mocks/orchestrator.go . Locator,Fetcher,Persister

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/glorpus-work/apodex/pkg/model"
)

// Locator resolves a key to a download URL.
type Locator interface {
	Locate(ctx context.Context, key model.Key) (string, error)
}

// Fetcher retrieves the payload behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Persister stores a payload under an artifact name.
type Persister interface {
	Persist(ctx context.Context, name string, data []byte) error
}

// DefaultCallTimeout bounds each Locate, Fetch and Persist call.
const DefaultCallTimeout = 30 * time.Second

// NameFunc derives the artifact name from a work item's input index.
type NameFunc func(index int) string

// DefaultName names artifacts apod-export-<index>.jpg.
func DefaultName(index int) string {
	return fmt.Sprintf("apod-export-%d.jpg", index)
}

// NameWith returns a NameFunc producing <prefix><index><ext>.
func NameWith(prefix, ext string) NameFunc {
	return func(index int) string {
		return fmt.Sprintf("%s%d%s", prefix, index, ext)
	}
}

// Event phases.
const (
	PhaseStarted   = "started"
	PhaseSucceeded = "succeeded"
	PhaseFailed    = "failed"
	PhaseDone      = "done"
)

// Event represents a simple progress notification.
type Event struct {
	Phase   string // started|succeeded|failed|done
	Key     model.Key
	Index   int
	Outcome *model.Outcome // set for succeeded and failed
	Msg     string
}

// Hooks carries callbacks for progress events. OnEvent may be called from
// several goroutines at once.
type Hooks struct {
	OnEvent func(Event)
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// WorkerOptions control a single Execute call.
type WorkerOptions struct {
	Naming      NameFunc
	CallTimeout time.Duration
}

func (o WorkerOptions) withDefaults() WorkerOptions {
	if o.Naming == nil {
		o.Naming = DefaultName
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	return o
}
