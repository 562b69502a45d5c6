package checks

import (
	"context"
	"fmt"
)

// paramsCheck reads a known parameter twice and verifies the second read was
// served from the cache.
func paramsCheck(reader ParamReader, name string) Check {
	return Check{
		Name: "params",
		Run: func(ctx context.Context, runID string) error {
			if name == "" {
				return fmt.Errorf("no parameter name configured")
			}

			first, err := reader.GetUncached(ctx, name)
			if err != nil {
				return fmt.Errorf("get uncached: %w", err)
			}

			hitsBefore := reader.CacheHits()

			second, err := reader.Get(ctx, name)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			if first != second {
				return fmt.Errorf("cached value diverged from fetched value")
			}
			if reader.CacheHits() == hitsBefore {
				return fmt.Errorf("second read was not served from the cache")
			}

			return nil
		},
	}
}
