package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/rcoundon/sqs-sdk-error/internal/config"
)

type LambdaFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

func main() {
	ctx := context.Background()

	configBuilder := config.NewBuilder(
		config.WithObjectStore(),
		config.WithQueue(),
		config.WithTable(),
		config.WithParams(),
	)

	config, err := configBuilder.BuildConfig(ctx, "harness.config")
	if err != nil {
		panic(err)
	}

	lambda.Start(Router(*config))
}
