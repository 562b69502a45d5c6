// Package params reads SSM Parameter Store values through a bounded,
// TTL-expiring LRU cache. Eviction is entirely the cache library's concern;
// this package only checks, fills and bypasses it.
package params

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/exp/slog"
)

const (
	// DefaultCacheSize bounds the number of cached parameter values.
	DefaultCacheSize = 128

	// DefaultCacheTTL is how long a cached value is served before the next
	// read goes back to the service.
	DefaultCacheTTL = 5 * time.Minute
)

// SSMAPI is the subset of the SSM client used by the handler.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ SSMAPI = (*ssm.Client)(nil)

type Handler struct {
	Client SSMAPI

	cache *expirable.LRU[string, string]
	hits  atomic.Int64
}

func NewHandler(awsConfig aws.Config) *Handler {
	ssmClient := ssm.NewFromConfig(awsConfig)

	return &Handler{
		Client: ssmClient,
		cache:  expirable.NewLRU[string, string](DefaultCacheSize, nil, DefaultCacheTTL),
	}
}

// Get returns the decrypted value of the named parameter, serving it from the
// cache when present.
func (h *Handler) Get(ctx context.Context, name string) (string, error) {
	if value, ok := h.cache.Get(name); ok {
		h.hits.Add(1)
		return value, nil
	}

	return h.GetUncached(ctx, name)
}

// GetUncached always calls the service and refreshes the cache with the
// fetched value.
func (h *Handler) GetUncached(ctx context.Context, name string) (string, error) {
	result, err := h.Client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		slog.Error("Failed to get parameter", "name", name, "error", err)
		return "", fmt.Errorf("got error calling GetParameter: %w", err)
	}

	value := aws.ToString(result.Parameter.Value)
	h.cache.Add(name, value)

	return value, nil
}

// CacheHits reports how many reads were served from the cache.
func (h *Handler) CacheHits() int64 {
	return h.hits.Load()
}
