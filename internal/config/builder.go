package config

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/rcoundon/sqs-sdk-error/internal/dyndb"
	"github.com/rcoundon/sqs-sdk-error/internal/objectstore"
	"github.com/rcoundon/sqs-sdk-error/internal/params"
	"github.com/rcoundon/sqs-sdk-error/internal/queue"
	"github.com/rcoundon/sqs-sdk-error/internal/secrets"
)

type Builder struct {
	IncludeObjectStore bool
	IncludeQueue       bool
	IncludeTable       bool
	IncludeParams      bool

	AWSConfig      aws.Config
	SecretsHandler *secrets.Handler
	APIToken       string
}

func NewBuilder(options ...func(*Builder)) *Builder {
	configBuilder := &Builder{}
	for _, option := range options {
		option(configBuilder)
	}
	return configBuilder
}

func WithObjectStore() func(*Builder) {
	return func(builder *Builder) {
		builder.IncludeObjectStore = true
	}
}

func WithQueue() func(*Builder) {
	return func(builder *Builder) {
		builder.IncludeQueue = true
	}
}

func WithTable() func(*Builder) {
	return func(builder *Builder) {
		builder.IncludeTable = true
	}
}

func WithParams() func(*Builder) {
	return func(builder *Builder) {
		builder.IncludeParams = true
	}
}

func (b *Builder) SetupAWS(ctx context.Context) error {
	var err error
	b.AWSConfig, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	return err
}

func (b *Builder) SetupSecrets() {
	b.SecretsHandler = secrets.NewHandler(b.AWSConfig)
}

func (b *Builder) SetupObjectStore() *objectstore.Handler {
	if !b.IncludeObjectStore {
		return nil
	}

	bucket := os.Getenv("HARNESS_BUCKET_NAME")
	if bucket == "" {
		panic("HARNESS_BUCKET_NAME environment variable not set")
	}
	return objectstore.NewHandler(b.AWSConfig, bucket)
}

func (b *Builder) SetupQueue() *queue.Handler {
	if !b.IncludeQueue {
		return nil
	}

	queueURL := os.Getenv("HARNESS_QUEUE_URL")
	if queueURL == "" {
		panic("HARNESS_QUEUE_URL environment variable not set")
	}
	return queue.NewHandler(b.AWSConfig, queueURL)
}

func (b *Builder) SetupTable() *dyndb.Handler {
	if !b.IncludeTable {
		return nil
	}

	tableName := os.Getenv("HARNESS_TABLE_NAME")
	if tableName == "" {
		panic("HARNESS_TABLE_NAME environment variable not set")
	}
	return dyndb.NewHandler(b.AWSConfig, tableName)
}

func (b *Builder) SetupParams() *params.Handler {
	if !b.IncludeParams {
		return nil
	}
	return params.NewHandler(b.AWSConfig)
}

// FetchAPIToken loads the bearer token guarding the run endpoint. The secret
// reference is optional: without API_TOKEN_SECRET_NAME the endpoint stays
// open, which is how local stacks run.
func (b *Builder) FetchAPIToken(ctx context.Context) error {
	if os.Getenv("API_TOKEN_SECRET_NAME") == "" {
		return nil
	}

	var err error
	b.APIToken, err = b.SecretsHandler.GetValueFromEnvReference(ctx, "API_TOKEN_SECRET_NAME")
	return err
}

func (b *Builder) BuildConfig(ctx context.Context, xraySegmentName string) (*Config, error) {
	var err error
	if err = xray.Configure(xray.Config{ServiceVersion: "1.2.3"}); err != nil {
		return nil, fmt.Errorf("could not configure X-Ray: %w", err)
	}

	ctx, segment := xray.BeginSegment(ctx, xraySegmentName)
	defer func() { segment.Close(err) }()

	if err = b.SetupAWS(ctx); err != nil {
		return nil, fmt.Errorf("could not load AWS configuration: %w", err)
	}

	b.SetupSecrets()

	if err = b.FetchAPIToken(ctx); err != nil {
		return nil, fmt.Errorf("could not get API token: %w", err)
	}

	return &Config{
		ObjectStore:    b.SetupObjectStore(),
		Queue:          b.SetupQueue(),
		Table:          b.SetupTable(),
		Params:         b.SetupParams(),
		SecretsHandler: b.SecretsHandler,
		ParameterName:  os.Getenv("HARNESS_PARAMETER_NAME"),
		APIToken:       b.APIToken,
	}, nil
}
