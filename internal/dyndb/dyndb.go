// Package dyndb provides a generic key-value access layer over a single
// DynamoDB table. Every record lives under a composite primary key (partition
// key PK, sort key SK) and may additionally be projected into one global
// secondary index (GSI1). Callers marshal their own structs through
// attributevalue; the layer owns the key attributes and strips them from
// every record it returns.
package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// AttrPK and AttrSK are the table's composite primary key attributes.
	AttrPK = "PK"
	AttrSK = "SK"

	// AttrGSI1PK and AttrGSI1SK key the GSI1 secondary index.
	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"

	// IndexGSI1 is the name of the single global secondary index.
	IndexGSI1 = "GSI1"
)

// DynamoAPI is the subset of the DynamoDB client used by the handler. The
// real *dynamodb.Client satisfies it; tests substitute a mock.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

type Handler struct {
	TableName *string
	Client    DynamoAPI
}

func NewHandler(awsConfig aws.Config, tableName string) *Handler {
	ddbClient := dynamodb.NewFromConfig(awsConfig)

	return &Handler{
		TableName: aws.String(tableName),
		Client:    ddbClient,
	}
}

// Key addresses a single record. PK and SK are required; the GSI1 pair is
// optional and only written when both halves are set.
type Key struct {
	PK string
	SK string

	GSI1PK string
	GSI1SK string
}

func (k Key) validate() error {
	if k.PK == "" {
		return fmt.Errorf("partition key is required")
	}
	if k.SK == "" {
		return fmt.Errorf("sort key is required")
	}
	return nil
}

func (k Key) primary() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: k.PK},
		AttrSK: &types.AttributeValueMemberS{Value: k.SK},
	}
}

// stripKeyAttributes removes the table and index key attributes from a raw
// item. Returned records must never leak them back to callers.
func stripKeyAttributes(item map[string]types.AttributeValue) {
	delete(item, AttrPK)
	delete(item, AttrSK)
	delete(item, AttrGSI1PK)
	delete(item, AttrGSI1SK)
}
