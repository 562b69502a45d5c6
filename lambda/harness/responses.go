package main

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

//nolint:gochecknoglobals // This should be treated as a constant.
var NotFoundResponse = events.APIGatewayProxyResponse{StatusCode: http.StatusNotFound, Body: `{"errors":["not found"]}`}

//nolint:gochecknoglobals // This should be treated as a constant.
var UnauthorizedResponse = events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized, Body: `{"errors":["unauthorized"]}`}

//nolint:gochecknoglobals // This should be treated as a constant.
var MethodNotAllowedResponse = events.APIGatewayProxyResponse{StatusCode: http.StatusMethodNotAllowed, Body: `{"errors":["method not allowed"]}`}

func jsonResponse(statusCode int, body any) (events.APIGatewayProxyResponse, error) {
	resBody, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(resBody),
	}, nil
}
