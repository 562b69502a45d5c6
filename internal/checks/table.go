package checks

import (
	"context"
	"fmt"

	"github.com/rcoundon/sqs-sdk-error/internal/dyndb"
)

const tableCheckItems = 5

type tableRecord struct {
	Label string `dynamodbav:"label"`
	Index int    `dynamodbav:"index"`
}

// tableCheck writes a small partition of sorted records and exercises every
// read shape of the key-value layer: point get, full partition query, prefix
// query, inclusive range query and the GSI1 variant. It verifies ordering and
// that key attributes never appear in returned records, then deletes what it
// wrote.
func tableCheck(table Table) Check {
	return Check{
		Name: "table",
		Run: func(ctx context.Context, runID string) error {
			pk := "HARNESS#" + runID

			keys := make([]dyndb.Key, tableCheckItems)
			for i := range keys {
				sk := fmt.Sprintf("ITEM#%03d", i+1)
				keys[i] = dyndb.Key{
					PK:     pk,
					SK:     sk,
					GSI1PK: "RUN#" + runID,
					GSI1SK: sk,
				}
				record := tableRecord{Label: fmt.Sprintf("record-%d", i+1), Index: i + 1}
				if err := table.Put(ctx, keys[i], record); err != nil {
					return fmt.Errorf("put %s: %w", sk, err)
				}
			}

			var got tableRecord
			found, err := table.Get(ctx, keys[2], &got)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			if !found {
				return fmt.Errorf("record %s missing after put", keys[2].SK)
			}
			if got.Index != 3 {
				return fmt.Errorf("point get returned record %d, want 3", got.Index)
			}

			var all []tableRecord
			if err := table.Query(ctx, pk, &all); err != nil {
				return fmt.Errorf("query: %w", err)
			}
			if err := verifyOrdered(all, 1, tableCheckItems); err != nil {
				return fmt.Errorf("query: %w", err)
			}

			var prefixed []tableRecord
			if err := table.QueryPrefix(ctx, pk, "ITEM#", &prefixed); err != nil {
				return fmt.Errorf("query prefix: %w", err)
			}
			if err := verifyOrdered(prefixed, 1, tableCheckItems); err != nil {
				return fmt.Errorf("query prefix: %w", err)
			}

			var ranged []tableRecord
			if err := table.QueryRange(ctx, pk, "ITEM#002", "ITEM#004", &ranged); err != nil {
				return fmt.Errorf("query range: %w", err)
			}
			if err := verifyOrdered(ranged, 2, 4); err != nil {
				return fmt.Errorf("query range: %w", err)
			}

			var indexed []tableRecord
			if err := table.QueryPrefix(ctx, "RUN#"+runID, "ITEM#", &indexed, dyndb.OnGSI1()); err != nil {
				return fmt.Errorf("query gsi1: %w", err)
			}
			if err := verifyOrdered(indexed, 1, tableCheckItems); err != nil {
				return fmt.Errorf("query gsi1: %w", err)
			}

			// Struct unmarshalling cannot see leaked key attributes, so the
			// stripping contract is checked against raw maps.
			var raw []map[string]any
			if err := table.Query(ctx, pk, &raw); err != nil {
				return fmt.Errorf("query raw: %w", err)
			}
			if len(raw) != tableCheckItems {
				return fmt.Errorf("query raw: got %d records, want %d", len(raw), tableCheckItems)
			}
			for i, item := range raw {
				for _, attr := range []string{dyndb.AttrPK, dyndb.AttrSK, dyndb.AttrGSI1PK, dyndb.AttrGSI1SK} {
					if _, leaked := item[attr]; leaked {
						return fmt.Errorf("key attribute %s leaked into record %d", attr, i)
					}
				}
			}

			for _, key := range keys {
				if err := table.Delete(ctx, key); err != nil {
					return fmt.Errorf("delete %s: %w", key.SK, err)
				}
			}

			return nil
		},
	}
}

// verifyOrdered checks that records hold exactly the indices from..to in
// ascending order.
func verifyOrdered(records []tableRecord, from, to int) error {
	want := to - from + 1
	if len(records) != want {
		return fmt.Errorf("got %d records, want %d", len(records), want)
	}
	for i, record := range records {
		if record.Index != from+i {
			return fmt.Errorf("record %d out of order: index %d, want %d", i, record.Index, from+i)
		}
	}
	return nil
}
