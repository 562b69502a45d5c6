// Package queue wraps a single SQS FIFO queue. Sends are deduplicated with a
// fresh UUID per message; batch sends are chunked to the SQS ceiling of ten
// entries per call.
package queue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// MaxBatchSize is the SQS ceiling on entries per SendMessageBatch call.
const MaxBatchSize = 10

// SQSAPI is the subset of the SQS client used by the handler.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

var _ SQSAPI = (*sqs.Client)(nil)

type Handler struct {
	QueueURL *string
	Client   SQSAPI

	// newDeduplicationID is swapped out in tests.
	newDeduplicationID func() string
}

func NewHandler(awsConfig aws.Config, queueURL string) *Handler {
	sqsClient := sqs.NewFromConfig(awsConfig)

	return &Handler{
		QueueURL:           aws.String(queueURL),
		Client:             sqsClient,
		newDeduplicationID: uuid.NewString,
	}
}

// Message is a received message along with the handle needed to delete it.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Send delivers a single message to the queue under groupID.
func (h *Handler) Send(ctx context.Context, body, groupID string) error {
	_, err := h.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               h.QueueURL,
		MessageBody:            aws.String(body),
		MessageGroupId:         aws.String(groupID),
		MessageDeduplicationId: aws.String(h.newDeduplicationID()),
	})
	if err != nil {
		slog.Error("Failed to send message", "group_id", groupID, "error", err)
		return fmt.Errorf("got error calling SendMessage: %w", err)
	}

	return nil
}

// SendBatch delivers bodies to the queue under groupID, in order, chunked
// into SendMessageBatch calls of at most MaxBatchSize entries. Entries the
// service rejects surface as a single error naming the failed entry ids; no
// entry is retried.
func (h *Handler) SendBatch(ctx context.Context, bodies []string, groupID string) error {
	if len(bodies) == 0 {
		return nil
	}

	for start := 0; start < len(bodies); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(bodies) {
			end = len(bodies)
		}

		chunk := bodies[start:end]
		entries := make([]types.SendMessageBatchRequestEntry, len(chunk))
		for i, body := range chunk {
			entries[i] = types.SendMessageBatchRequestEntry{
				Id:                     aws.String(strconv.Itoa(i)),
				MessageBody:            aws.String(body),
				MessageGroupId:         aws.String(groupID),
				MessageDeduplicationId: aws.String(h.newDeduplicationID()),
			}
		}

		result, err := h.Client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: h.QueueURL,
			Entries:  entries,
		})
		if err != nil {
			slog.Error("Failed to send message batch", "group_id", groupID, "error", err)
			return fmt.Errorf("got error calling SendMessageBatch: %w", err)
		}

		if len(result.Failed) > 0 {
			ids := make([]string, len(result.Failed))
			for i, failed := range result.Failed {
				ids[i] = aws.ToString(failed.Id)
			}
			return fmt.Errorf("batch entries failed to send: %s", strings.Join(ids, ", "))
		}
	}

	return nil
}

// Receive long-polls the queue for up to max messages.
func (h *Handler) Receive(ctx context.Context, max int32, wait time.Duration) ([]Message, error) {
	result, err := h.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            h.QueueURL,
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		slog.Error("Failed to receive messages", "error", err)
		return nil, fmt.Errorf("got error calling ReceiveMessage: %w", err)
	}

	messages := make([]Message, len(result.Messages))
	for i, msg := range result.Messages {
		messages[i] = Message{
			Body:          aws.ToString(msg.Body),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		}
	}

	return messages, nil
}

// DeleteMessage acknowledges a received message.
func (h *Handler) DeleteMessage(ctx context.Context, receiptHandle string) error {
	_, err := h.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      h.QueueURL,
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		slog.Error("Failed to delete message", "error", err)
		return fmt.Errorf("got error calling DeleteMessage: %w", err)
	}

	return nil
}
