// Package checks runs one integration check per managed service and
// aggregates the outcome. A check is a single round trip through the
// service's wrapper; the runner never stops at the first failure so the
// report always covers every requested check.
package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/rcoundon/sqs-sdk-error/internal/dyndb"
	"github.com/rcoundon/sqs-sdk-error/internal/queue"
)

// ObjectStore is the object storage surface exercised by the storage check.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Queue is the FIFO queue surface exercised by the queue check.
type Queue interface {
	SendBatch(ctx context.Context, bodies []string, groupID string) error
	Receive(ctx context.Context, max int32, wait time.Duration) ([]queue.Message, error)
	DeleteMessage(ctx context.Context, receiptHandle string) error
}

// Table is the key-value surface exercised by the table check.
type Table interface {
	Put(ctx context.Context, key dyndb.Key, item any) error
	Get(ctx context.Context, key dyndb.Key, out any) (bool, error)
	Delete(ctx context.Context, key dyndb.Key) error
	Query(ctx context.Context, pk string, out any, opts ...dyndb.QueryOption) error
	QueryPrefix(ctx context.Context, pk, skPrefix string, out any, opts ...dyndb.QueryOption) error
	QueryRange(ctx context.Context, pk, skFrom, skTo string, out any, opts ...dyndb.QueryOption) error
}

// ParamReader is the parameter store surface exercised by the params check.
type ParamReader interface {
	Get(ctx context.Context, name string) (string, error)
	GetUncached(ctx context.Context, name string) (string, error)
	CacheHits() int64
}

// Check is a named integration check. Run receives the id of the current
// harness run for namespacing the data it writes.
type Check struct {
	Name string
	Run  func(ctx context.Context, runID string) error
}

// Result is the reported outcome of one check.
type Result struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Deps holds the service wrappers the runner exercises. A nil wrapper leaves
// its check unregistered.
type Deps struct {
	ObjectStore ObjectStore
	Queue       Queue
	Table       Table
	Params      ParamReader

	// ParameterName is the parameter read by the params check.
	ParameterName string
}

type captureFunc func(ctx context.Context, name string, fn func(context.Context) error) error

type Runner struct {
	checks []Check

	capture  captureFunc
	newRunID func() string
}

func NewRunner(deps Deps) *Runner {
	r := &Runner{
		capture:  xray.Capture,
		newRunID: uuid.NewString,
	}

	if deps.ObjectStore != nil {
		r.checks = append(r.checks, storageCheck(deps.ObjectStore))
	}
	if deps.Queue != nil {
		r.checks = append(r.checks, queueCheck(deps.Queue))
	}
	if deps.Table != nil {
		r.checks = append(r.checks, tableCheck(deps.Table))
	}
	if deps.Params != nil {
		r.checks = append(r.checks, paramsCheck(deps.Params, deps.ParameterName))
	}

	return r
}

// Names lists the registered checks in execution order.
func (r *Runner) Names() []string {
	names := make([]string, len(r.checks))
	for i, check := range r.checks {
		names[i] = check.Name
	}
	return names
}

// Run executes the requested checks sequentially and returns one result per
// check plus the joined failures. A nil or empty filter runs everything;
// an unknown name in the filter is reported as a failed result.
func (r *Runner) Run(ctx context.Context, filter []string) ([]Result, error) {
	runID := r.newRunID()
	slog.Info("Starting harness run", "run_id", runID, "checks", len(r.checks))

	selected, unknown := r.resolve(filter)

	var results []Result
	var failures []error

	for _, name := range unknown {
		results = append(results, Result{Name: name, Error: "unknown check"})
		failures = append(failures, fmt.Errorf("%s: unknown check", name))
	}

	for _, check := range selected {
		start := time.Now()
		err := r.capture(ctx, "harness.check."+check.Name, func(tracedCtx context.Context) error {
			xray.AddAnnotation(tracedCtx, "run_id", runID)
			return check.Run(tracedCtx, runID)
		})
		duration := time.Since(start)

		result := Result{
			Name:       check.Name,
			OK:         err == nil,
			DurationMS: duration.Milliseconds(),
		}
		if err != nil {
			result.Error = err.Error()
			failures = append(failures, fmt.Errorf("%s: %w", check.Name, err))
			slog.Error("Check failed", "check", check.Name, "run_id", runID, "error", err)
		} else {
			slog.Info("Check passed", "check", check.Name, "run_id", runID, "duration", duration)
		}
		results = append(results, result)
	}

	return results, errors.Join(failures...)
}

func (r *Runner) resolve(filter []string) ([]Check, []string) {
	if len(filter) == 0 {
		return r.checks, nil
	}

	byName := make(map[string]Check, len(r.checks))
	for _, check := range r.checks {
		byName[check.Name] = check
	}

	var selected []Check
	var unknown []string
	for _, name := range filter {
		check, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, check)
	}

	return selected, unknown
}
