package checks

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestRunner(checks ...Check) *Runner {
	return &Runner{
		checks: checks,
		capture: func(ctx context.Context, name string, fn func(context.Context) error) error {
			return fn(ctx)
		},
		newRunID: func() string { return "test-run" },
	}
}

func passing(name string) Check {
	return Check{Name: name, Run: func(ctx context.Context, runID string) error { return nil }}
}

func failing(name string, err error) Check {
	return Check{Name: name, Run: func(ctx context.Context, runID string) error { return err }}
}

func TestRunReportsEveryCheckDespiteFailures(t *testing.T) {
	r := newTestRunner(
		passing("storage"),
		failing("queue", fmt.Errorf("boom")),
		passing("table"),
	)

	results, err := r.Run(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected aggregated error")
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	var names []string
	for _, result := range results {
		names = append(names, result.Name)
	}
	if diff := cmp.Diff([]string{"storage", "queue", "table"}, names); diff != "" {
		t.Fatalf("result order mismatch (-want +got):\n%s", diff)
	}

	if results[0].OK != true || results[1].OK != false || results[2].OK != true {
		t.Fatalf("unexpected outcomes: %+v", results)
	}
	if results[1].Error != "boom" {
		t.Fatalf("unexpected error message: %s", results[1].Error)
	}
}

func TestRunAllPassing(t *testing.T) {
	r := newTestRunner(passing("storage"), passing("queue"))

	results, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, result := range results {
		if !result.OK {
			t.Fatalf("expected %s to pass", result.Name)
		}
	}
}

func TestRunFilter(t *testing.T) {
	var ran []string
	record := func(name string) Check {
		return Check{Name: name, Run: func(ctx context.Context, runID string) error {
			ran = append(ran, name)
			return nil
		}}
	}

	r := newTestRunner(record("storage"), record("queue"), record("table"))

	results, err := r.Run(context.Background(), []string{"table", "storage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"table", "storage"}, ran); diff != "" {
		t.Fatalf("executed checks mismatch (-want +got):\n%s", diff)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestRunUnknownCheckName(t *testing.T) {
	r := newTestRunner(passing("storage"))

	results, err := r.Run(context.Background(), []string{"storage", "nonesuch"})
	if err == nil {
		t.Fatalf("expected error for unknown check name")
	}

	var unknown *Result
	for i := range results {
		if results[i].Name == "nonesuch" {
			unknown = &results[i]
		}
	}
	if unknown == nil {
		t.Fatalf("expected a result for the unknown check")
	}
	if unknown.OK || unknown.Error != "unknown check" {
		t.Fatalf("unexpected unknown-check result: %+v", unknown)
	}
}

func TestNamesMatchRegistrationOrder(t *testing.T) {
	r := NewRunner(Deps{
		ObjectStore:   &fakeObjectStore{objects: map[string][]byte{}},
		Queue:         &fakeQueue{},
		Table:         newFakeTable(),
		Params:        &fakeParams{value: "v"},
		ParameterName: "/harness/test",
	})

	if diff := cmp.Diff([]string{"storage", "queue", "table", "params"}, r.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
