package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/rcoundon/sqs-sdk-error/internal/queue"
)

const (
	// queueCheckMessages is deliberately above the SQS batch ceiling so the
	// check always exercises the chunking path.
	queueCheckMessages = queue.MaxBatchSize + 2

	queueReceiveWait = 2 * time.Second
)

// queueCheck sends a chunked batch through the FIFO queue, receives and
// acknowledges what comes back, and verifies at least one body round-tripped.
func queueCheck(q Queue) Check {
	return Check{
		Name: "queue",
		Run: func(ctx context.Context, runID string) error {
			sent := make(map[string]bool, queueCheckMessages)
			bodies := make([]string, queueCheckMessages)
			for i := range bodies {
				bodies[i] = fmt.Sprintf("%s/%02d", runID, i)
				sent[bodies[i]] = true
			}

			if err := q.SendBatch(ctx, bodies, runID); err != nil {
				return fmt.Errorf("send batch: %w", err)
			}

			messages, err := q.Receive(ctx, queue.MaxBatchSize, queueReceiveWait)
			if err != nil {
				return fmt.Errorf("receive: %w", err)
			}
			if len(messages) == 0 {
				return fmt.Errorf("no messages received after sending %d", queueCheckMessages)
			}

			var matched int
			for _, msg := range messages {
				if sent[msg.Body] {
					matched++
				}
				if err := q.DeleteMessage(ctx, msg.ReceiptHandle); err != nil {
					return fmt.Errorf("delete message: %w", err)
				}
			}

			if matched == 0 {
				return fmt.Errorf("received %d messages but none from this run", len(messages))
			}

			return nil
		},
	}
}
