package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/exp/slog"
)

// Put marshals item and writes it under key, overwriting any existing record.
// The key attributes are injected after marshalling, so item may not carry
// attributes named PK, SK, GSI1PK or GSI1SK of its own.
func (h *Handler) Put(ctx context.Context, key Key, item any) error {
	if err := key.validate(); err != nil {
		return err
	}

	marshalledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("got error marshalling dynamodb item: %w", err)
	}

	marshalledItem[AttrPK] = &types.AttributeValueMemberS{Value: key.PK}
	marshalledItem[AttrSK] = &types.AttributeValueMemberS{Value: key.SK}
	if key.GSI1PK != "" && key.GSI1SK != "" {
		marshalledItem[AttrGSI1PK] = &types.AttributeValueMemberS{Value: key.GSI1PK}
		marshalledItem[AttrGSI1SK] = &types.AttributeValueMemberS{Value: key.GSI1SK}
	}

	_, err = h.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: h.TableName,
		Item:      marshalledItem,
	})
	if err != nil {
		slog.Error("Failed to put item", "pk", key.PK, "sk", key.SK, "error", err)
		return fmt.Errorf("got error calling PutItem: %w", err)
	}

	return nil
}

// Delete removes the record under key. Deleting an absent record is not an
// error.
func (h *Handler) Delete(ctx context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}

	_, err := h.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: h.TableName,
		Key:       key.primary(),
	})
	if err != nil {
		slog.Error("Failed to delete item", "pk", key.PK, "sk", key.SK, "error", err)
		return fmt.Errorf("got error calling DeleteItem: %w", err)
	}

	return nil
}
