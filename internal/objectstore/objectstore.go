// Package objectstore wraps S3 with a small CRUD surface over a single
// bucket. Each call is one request against the SDK; errors wrap and surface
// immediately.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/exp/slog"
)

// S3API is the subset of the S3 client used by the handler.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var _ S3API = (*s3.Client)(nil)

type Handler struct {
	Bucket *string
	Client S3API
}

func NewHandler(awsConfig aws.Config, bucket string) *Handler {
	s3Client := s3.NewFromConfig(awsConfig)

	return &Handler{
		Bucket: aws.String(bucket),
		Client: s3Client,
	}
}

func (h *Handler) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: h.Bucket,
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := h.Client.PutObject(ctx, input); err != nil {
		slog.Error("Failed to put object", "key", key, "error", err)
		return fmt.Errorf("got error calling PutObject: %w", err)
	}

	return nil
}

func (h *Handler) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := h.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: h.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Error("Failed to get object", "key", key, "error", err)
		return nil, fmt.Errorf("got error calling GetObject: %w", err)
	}
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read object body: %w", err)
	}

	return body, nil
}

// Exists reports whether key is present in the bucket. A NotFound response is
// not an error.
func (h *Handler) Exists(ctx context.Context, key string) (bool, error) {
	_, err := h.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: h.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("got error calling HeadObject: %w", err)
	}

	return true, nil
}

func (h *Handler) Delete(ctx context.Context, key string) error {
	if _, err := h.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: h.Bucket,
		Key:    aws.String(key),
	}); err != nil {
		slog.Error("Failed to delete object", "key", key, "error", err)
		return fmt.Errorf("got error calling DeleteObject: %w", err)
	}

	return nil
}

// List returns every key under prefix, draining all pages.
func (h *Handler) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(h.Client, &s3.ListObjectsV2Input{
		Bucket: h.Bucket,
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("got error calling ListObjectsV2: %w", err)
		}

		for _, object := range page.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
	}

	return keys, nil
}
