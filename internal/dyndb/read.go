package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/exp/slog"
)

// Get reads the record under key into out and reports whether it exists. An
// absent record is not an error: Get returns false, nil and leaves out
// untouched.
func (h *Handler) Get(ctx context.Context, key Key, out any) (bool, error) {
	if err := key.validate(); err != nil {
		return false, err
	}

	result, err := h.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: h.TableName,
		Key:       key.primary(),
	})
	if err != nil {
		slog.Error("Failed to get item", "pk", key.PK, "sk", key.SK, "error", err)
		return false, fmt.Errorf("got error calling GetItem: %w", err)
	}

	if len(result.Item) == 0 {
		return false, nil
	}

	stripKeyAttributes(result.Item)

	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("got error unmarshalling dynamodb item: %w", err)
	}

	return true, nil
}
