package checks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type storagePayload struct {
	RunID   string    `json:"run_id"`
	Written time.Time `json:"written"`
}

// storageCheck performs a put/head/get/delete round trip against the object
// store and verifies the body survives unchanged.
func storageCheck(store ObjectStore) Check {
	return Check{
		Name: "storage",
		Run: func(ctx context.Context, runID string) error {
			key := fmt.Sprintf("harness/%s.json", runID)

			body, err := json.Marshal(storagePayload{RunID: runID, Written: time.Now().UTC()})
			if err != nil {
				return fmt.Errorf("could not marshal payload: %w", err)
			}

			if err := store.Put(ctx, key, body, "application/json"); err != nil {
				return fmt.Errorf("put: %w", err)
			}

			exists, err := store.Exists(ctx, key)
			if err != nil {
				return fmt.Errorf("head: %w", err)
			}
			if !exists {
				return fmt.Errorf("object %s missing after put", key)
			}

			got, err := store.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			if !bytes.Equal(got, body) {
				return fmt.Errorf("object body did not round trip: wrote %d bytes, read %d", len(body), len(got))
			}

			if err := store.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete: %w", err)
			}

			exists, err = store.Exists(ctx, key)
			if err != nil {
				return fmt.Errorf("head after delete: %w", err)
			}
			if exists {
				return fmt.Errorf("object %s still present after delete", key)
			}

			return nil
		},
	}
}
