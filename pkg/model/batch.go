package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Key identifies one unit of work in a batch (for APOD exports, a date in YYYY-MM-DD form).
type Key string

// WorkItem pairs a Key with its position in the input sequence. The index alone decides
// the artifact name.
type WorkItem struct {
	Key   Key
	Index int
}

// ErrorKind classifies the step at which a work item failed.
type ErrorKind string

const (
	// ErrorKindLocate means the key could not be resolved to a download URL.
	ErrorKindLocate ErrorKind = "locate"
	// ErrorKindFetch means the payload could not be retrieved.
	ErrorKindFetch ErrorKind = "fetch"
	// ErrorKindPersist means the payload could not be written to storage.
	ErrorKindPersist ErrorKind = "persist"
)

// OutcomeStatus tags an Outcome as a success or a failure.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Outcome is the terminal result of one WorkItem. Success outcomes carry Artifact and
// BytesWritten; failure outcomes carry Kind, Message and the underlying Err.
type Outcome struct {
	Key          Key           `json:"key" yaml:"key"`
	Index        int           `json:"index" yaml:"index"`
	Status       OutcomeStatus `json:"status" yaml:"status"`
	Artifact     string        `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	BytesWritten int64         `json:"bytes_written,omitempty" yaml:"bytes_written,omitempty"`
	Kind         ErrorKind     `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Message      string        `json:"message,omitempty" yaml:"message,omitempty"`
	Err          error         `json:"-" yaml:"-"`
}

// NewSuccess builds a success outcome for item.
func NewSuccess(item WorkItem, artifact string, bytesWritten int64) Outcome {
	return Outcome{
		Key:          item.Key,
		Index:        item.Index,
		Status:       OutcomeSuccess,
		Artifact:     artifact,
		BytesWritten: bytesWritten,
	}
}

// NewFailure builds a failure outcome for item. err may be nil.
func NewFailure(item WorkItem, kind ErrorKind, err error) Outcome {
	o := Outcome{
		Key:    item.Key,
		Index:  item.Index,
		Status: OutcomeFailure,
		Kind:   kind,
		Err:    err,
	}
	if err != nil {
		o.Message = err.Error()
	}
	return o
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// Error describes a failed outcome; it returns an empty string for successes.
func (o Outcome) Error() string {
	if o.Succeeded() {
		return ""
	}
	return fmt.Sprintf("item %d (%s): %s: %s", o.Index, o.Key, o.Kind, o.Message)
}

// BatchResult is the complete, index-ordered set of outcomes of one batch run.
type BatchResult struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	Outcomes     []Outcome `json:"outcomes" yaml:"outcomes"`
	AllSucceeded bool      `json:"all_succeeded" yaml:"all_succeeded"`
}

// NewBatchResult assembles a result from outcomes that are already ordered by index.
func NewBatchResult(outcomes []Outcome) *BatchResult {
	if outcomes == nil {
		outcomes = []Outcome{}
	}
	all := true
	for _, o := range outcomes {
		if !o.Succeeded() {
			all = false
			break
		}
	}
	return &BatchResult{
		RunID:        uuid.NewString(),
		Outcomes:     outcomes,
		AllSucceeded: all,
	}
}

// Succeeded returns the success outcomes in index order.
func (r *BatchResult) Succeeded() []Outcome {
	return r.filter(OutcomeSuccess)
}

// Failures returns the failure outcomes in index order.
func (r *BatchResult) Failures() []Outcome {
	return r.filter(OutcomeFailure)
}

// BytesWritten sums the bytes persisted by all successful items.
func (r *BatchResult) BytesWritten() int64 {
	var total int64
	for _, o := range r.Outcomes {
		total += o.BytesWritten
	}
	return total
}

// Err aggregates every failure into a single error, or returns nil when all items succeeded.
func (r *BatchResult) Err() error {
	var result *multierror.Error
	for _, o := range r.Failures() {
		result = multierror.Append(result, outcomeError{o})
	}
	return result.ErrorOrNil()
}

func (r *BatchResult) filter(status OutcomeStatus) []Outcome {
	out := make([]Outcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// outcomeError lets errors.Is reach the cause recorded in a failed outcome.
type outcomeError struct {
	o Outcome
}

func (e outcomeError) Error() string { return e.o.Error() }

func (e outcomeError) Unwrap() error { return e.o.Err }
