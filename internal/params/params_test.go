package params

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type mockSSM struct {
	calls        int
	getParameter func(*ssm.GetParameterInput) (*ssm.GetParameterOutput, error)
}

func (m *mockSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	m.calls++
	return m.getParameter(in)
}

func newTestHandler(client SSMAPI) *Handler {
	return &Handler{
		Client: client,
		cache:  expirable.NewLRU[string, string](DefaultCacheSize, nil, time.Minute),
	}
}

func parameterOutput(value string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String(value)},
	}
}

func TestGetCachesValue(t *testing.T) {
	mock := &mockSSM{
		getParameter: func(in *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
			if !aws.ToBool(in.WithDecryption) {
				t.Fatalf("expected decryption to be requested")
			}
			return parameterOutput("secret-value"), nil
		},
	}
	h := newTestHandler(mock)

	for i := 0; i < 3; i++ {
		value, err := h.Get(context.Background(), "/harness/token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "secret-value" {
			t.Fatalf("unexpected value: %s", value)
		}
	}

	if mock.calls != 1 {
		t.Fatalf("expected a single service call, got %d", mock.calls)
	}
	if h.CacheHits() != 2 {
		t.Fatalf("expected 2 cache hits, got %d", h.CacheHits())
	}
}

func TestGetUncachedBypassesCache(t *testing.T) {
	mock := &mockSSM{
		getParameter: func(in *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
			return parameterOutput("fresh"), nil
		},
	}
	h := newTestHandler(mock)

	if _, err := h.Get(context.Background(), "/harness/token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.GetUncached(context.Background(), "/harness/token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.calls != 2 {
		t.Fatalf("expected 2 service calls, got %d", mock.calls)
	}
}
