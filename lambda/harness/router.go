package main

import (
	"context"
	"regexp"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/rcoundon/sqs-sdk-error/internal/config"
)

func RouteHandlers(config config.Config) map[string]LambdaFunc {
	return map[string]LambdaFunc{
		// Liveness, no AWS calls
		// `/health`
		"^/health$": healthHandler(),

		// List the registered checks
		// `/checks`
		"^/checks$": listChecksHandler(config),

		// Run the suite
		// `/run`
		"^/run$": runHandler(config),
	}
}

func getRouteHandler(config config.Config, path string) LambdaFunc {
	for route, handler := range RouteHandlers(config) {
		if match, _ := regexp.MatchString(route, path); match {
			return handler
		}
	}
	return nil
}

func Router(config config.Config) LambdaFunc {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		ctx, segment := xray.BeginSubsegment(ctx, "harness.handle")
		handler := getRouteHandler(config, req.Path)
		if handler == nil {
			segment.Close(nil)
			return NotFoundResponse, nil
		}

		response, err := handler(ctx, req)
		segment.Close(err)

		return response, err
	}
}
