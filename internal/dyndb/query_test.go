package dyndb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"
)

func TestQueryDrainsAllPages(t *testing.T) {
	pages := []*dynamodb.QueryOutput{
		{
			Items: []map[string]types.AttributeValue{
				{AttrPK: s("RUN#1"), AttrSK: s("ITEM#001"), "name": s("a")},
				{AttrPK: s("RUN#1"), AttrSK: s("ITEM#002"), "name": s("b")},
			},
			LastEvaluatedKey: map[string]types.AttributeValue{AttrPK: s("RUN#1"), AttrSK: s("ITEM#002")},
		},
		{
			Items: []map[string]types.AttributeValue{
				{AttrPK: s("RUN#1"), AttrSK: s("ITEM#003"), "name": s("c")},
			},
		},
	}

	var calls int
	h := newTestHandler(&mockDynamo{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			page := pages[calls]
			if calls > 0 && in.ExclusiveStartKey == nil {
				t.Fatalf("expected ExclusiveStartKey on page %d", calls)
			}
			calls++
			return page, nil
		},
	})

	var got []testRecord
	if err := h.Query(context.Background(), "RUN#1", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 {
		t.Fatalf("expected 2 query pages, got %d", calls)
	}

	want := []testRecord{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryEmptyPartition(t *testing.T) {
	h := newTestHandler(&mockDynamo{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{}, nil
		},
	})

	var got []testRecord
	if err := h.Query(context.Background(), "RUN#empty", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestQueryPrefixExpression(t *testing.T) {
	var captured *dynamodb.QueryInput
	h := newTestHandler(&mockDynamo{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			captured = in
			return &dynamodb.QueryOutput{}, nil
		},
	})

	var got []testRecord
	if err := h.QueryPrefix(context.Background(), "RUN#1", "ITEM#", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *captured.KeyConditionExpression != "#pk = :pk AND begins_with(#sk, :prefix)" {
		t.Fatalf("unexpected key condition: %s", *captured.KeyConditionExpression)
	}
	if captured.ExpressionAttributeNames["#pk"] != AttrPK || captured.ExpressionAttributeNames["#sk"] != AttrSK {
		t.Fatalf("unexpected attribute names: %v", captured.ExpressionAttributeNames)
	}
	if captured.IndexName != nil {
		t.Fatalf("expected no index name for a primary-key query")
	}
}

func TestQueryPrefixRejectsEmptyPrefix(t *testing.T) {
	h := newTestHandler(&mockDynamo{})

	var got []testRecord
	if err := h.QueryPrefix(context.Background(), "RUN#1", "", &got); err == nil {
		t.Fatalf("expected error for empty prefix")
	}
}

func TestQueryRangeExpression(t *testing.T) {
	var captured *dynamodb.QueryInput
	h := newTestHandler(&mockDynamo{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			captured = in
			return &dynamodb.QueryOutput{}, nil
		},
	})

	var got []testRecord
	if err := h.QueryRange(context.Background(), "RUN#1", "ITEM#001", "ITEM#005", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *captured.KeyConditionExpression != "#pk = :pk AND #sk BETWEEN :from AND :to" {
		t.Fatalf("unexpected key condition: %s", *captured.KeyConditionExpression)
	}

	from := captured.ExpressionAttributeValues[":from"].(*types.AttributeValueMemberS)
	to := captured.ExpressionAttributeValues[":to"].(*types.AttributeValueMemberS)
	if from.Value != "ITEM#001" || to.Value != "ITEM#005" {
		t.Fatalf("unexpected range bounds: %s .. %s", from.Value, to.Value)
	}
}

func TestQueryOnGSI1(t *testing.T) {
	var captured *dynamodb.QueryInput
	h := newTestHandler(&mockDynamo{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			captured = in
			return &dynamodb.QueryOutput{}, nil
		},
	})

	var got []testRecord
	if err := h.QueryPrefix(context.Background(), "STATUS#ok", "ITEM#", &got, OnGSI1()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.IndexName == nil || *captured.IndexName != IndexGSI1 {
		t.Fatalf("expected query against %s", IndexGSI1)
	}
	if captured.ExpressionAttributeNames["#pk"] != AttrGSI1PK || captured.ExpressionAttributeNames["#sk"] != AttrGSI1SK {
		t.Fatalf("unexpected attribute names: %v", captured.ExpressionAttributeNames)
	}
}

func TestQueryDescending(t *testing.T) {
	var captured *dynamodb.QueryInput
	h := newTestHandler(&mockDynamo{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			captured = in
			return &dynamodb.QueryOutput{}, nil
		},
	})

	var got []testRecord
	if err := h.Query(context.Background(), "RUN#1", &got, Descending()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.ScanIndexForward == nil || *captured.ScanIndexForward {
		t.Fatalf("expected ScanIndexForward to be false")
	}
}

func TestQueryStripsIndexKeyAttributes(t *testing.T) {
	h := newTestHandler(&mockDynamo{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{
					{
						AttrPK:     s("RUN#1"),
						AttrSK:     s("ITEM#001"),
						AttrGSI1PK: s("STATUS#ok"),
						AttrGSI1SK: s("ITEM#001"),
						"name":     s("a"),
					},
				},
			}, nil
		},
	})

	var got []map[string]string
	if err := h.Query(context.Background(), "RUN#1", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []map[string]string{{"name": "a"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}
