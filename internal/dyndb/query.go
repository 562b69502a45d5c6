package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// QueryOption adjusts how a query traverses the table.
type QueryOption func(*queryOptions)

type queryOptions struct {
	index      bool
	descending bool
}

// OnGSI1 runs the query against the GSI1 secondary index instead of the
// table's primary key.
func OnGSI1() QueryOption {
	return func(o *queryOptions) { o.index = true }
}

// Descending reverses the sort-key traversal order.
func Descending() QueryOption {
	return func(o *queryOptions) { o.descending = true }
}

// Query reads every record in the partition pk, ascending by sort key, into
// out (a pointer to a slice). Pagination is handled internally; an empty
// partition yields an empty slice and a nil error.
func (h *Handler) Query(ctx context.Context, pk string, out any, opts ...QueryOption) error {
	if pk == "" {
		return fmt.Errorf("partition key is required")
	}

	o := applyOptions(opts)
	input := h.queryInput(o)
	input.KeyConditionExpression = aws.String("#pk = :pk")
	input.ExpressionAttributeValues = map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: pk},
	}

	return h.runQuery(ctx, input, out)
}

// QueryPrefix reads the records in partition pk whose sort key begins with
// skPrefix. The prefix must be non-empty: a full-partition read must go
// through Query so the intent is explicit.
func (h *Handler) QueryPrefix(ctx context.Context, pk, skPrefix string, out any, opts ...QueryOption) error {
	if pk == "" {
		return fmt.Errorf("partition key is required")
	}
	if skPrefix == "" {
		return fmt.Errorf("sort key prefix is required")
	}

	o := applyOptions(opts)
	input := h.queryInput(o)
	input.KeyConditionExpression = aws.String("#pk = :pk AND begins_with(#sk, :prefix)")
	input.ExpressionAttributeNames["#sk"] = o.skAttr()
	input.ExpressionAttributeValues = map[string]types.AttributeValue{
		":pk":     &types.AttributeValueMemberS{Value: pk},
		":prefix": &types.AttributeValueMemberS{Value: skPrefix},
	}

	return h.runQuery(ctx, input, out)
}

// QueryRange reads the records in partition pk whose sort key lies between
// skFrom and skTo, inclusive at both ends.
func (h *Handler) QueryRange(ctx context.Context, pk, skFrom, skTo string, out any, opts ...QueryOption) error {
	if pk == "" {
		return fmt.Errorf("partition key is required")
	}

	o := applyOptions(opts)
	input := h.queryInput(o)
	input.KeyConditionExpression = aws.String("#pk = :pk AND #sk BETWEEN :from AND :to")
	input.ExpressionAttributeNames["#sk"] = o.skAttr()
	input.ExpressionAttributeValues = map[string]types.AttributeValue{
		":pk":   &types.AttributeValueMemberS{Value: pk},
		":from": &types.AttributeValueMemberS{Value: skFrom},
		":to":   &types.AttributeValueMemberS{Value: skTo},
	}

	return h.runQuery(ctx, input, out)
}

func applyOptions(opts []QueryOption) *queryOptions {
	o := &queryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *queryOptions) pkAttr() string {
	if o.index {
		return AttrGSI1PK
	}
	return AttrPK
}

func (o *queryOptions) skAttr() string {
	if o.index {
		return AttrGSI1SK
	}
	return AttrSK
}

func (h *Handler) queryInput(o *queryOptions) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName: h.TableName,
		ExpressionAttributeNames: map[string]string{
			"#pk": o.pkAttr(),
		},
	}
	if o.index {
		input.IndexName = aws.String(IndexGSI1)
	}
	if o.descending {
		input.ScanIndexForward = aws.Bool(false)
	}
	return input
}

// runQuery drains every page of the query and unmarshals the accumulated
// records, key attributes stripped, into out.
func (h *Handler) runQuery(ctx context.Context, input *dynamodb.QueryInput, out any) error {
	var items []map[string]types.AttributeValue

	for {
		result, err := h.Client.Query(ctx, input)
		if err != nil {
			return fmt.Errorf("got error calling Query: %w", err)
		}

		for _, item := range result.Items {
			stripKeyAttributes(item)
			items = append(items, item)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("got error unmarshalling dynamodb items: %w", err)
	}

	return nil
}
