package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/exp/slog"

	"github.com/rcoundon/sqs-sdk-error/internal/checks"
	"github.com/rcoundon/sqs-sdk-error/internal/config"
)

type RunRequest struct {
	// Checks restricts the run to the named checks. Empty means all.
	Checks []string `json:"checks,omitempty"`
}

type RunResponse struct {
	Status  string          `json:"status"`
	Results []checks.Result `json:"results"`
	Errors  []string        `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ListChecksResponse struct {
	Checks []string `json:"checks"`
}

// newRunner wires the configured wrappers into the check runner. A typed nil
// pointer must not reach an interface field, hence the guards.
func newRunner(cfg config.Config) *checks.Runner {
	deps := checks.Deps{ParameterName: cfg.ParameterName}
	if cfg.ObjectStore != nil {
		deps.ObjectStore = cfg.ObjectStore
	}
	if cfg.Queue != nil {
		deps.Queue = cfg.Queue
	}
	if cfg.Table != nil {
		deps.Table = cfg.Table
	}
	if cfg.Params != nil {
		deps.Params = cfg.Params
	}
	return checks.NewRunner(deps)
}

func healthHandler() LambdaFunc {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if req.HTTPMethod != http.MethodGet {
			return MethodNotAllowedResponse, nil
		}
		return jsonResponse(http.StatusOK, HealthResponse{Status: "ok"})
	}
}

func listChecksHandler(config config.Config) LambdaFunc {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if req.HTTPMethod != http.MethodGet {
			return MethodNotAllowedResponse, nil
		}
		return jsonResponse(http.StatusOK, ListChecksResponse{Checks: newRunner(config).Names()})
	}
}

func runHandler(config config.Config) LambdaFunc {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if req.HTTPMethod != http.MethodPost {
			return MethodNotAllowedResponse, nil
		}

		if !authorized(config, req) {
			slog.Info("Rejecting run request without a valid token")
			return UnauthorizedResponse, nil
		}

		var runReq RunRequest
		if req.Body != "" {
			if err := json.Unmarshal([]byte(req.Body), &runReq); err != nil {
				return jsonResponse(http.StatusBadRequest, RunResponse{
					Status: "error",
					Errors: []string{"invalid request body"},
				})
			}
		}

		results, err := newRunner(config).Run(ctx, runReq.Checks)
		if err != nil {
			return jsonResponse(http.StatusInternalServerError, RunResponse{
				Status:  "failed",
				Results: results,
				Errors:  errorMessages(err),
			})
		}

		return jsonResponse(http.StatusOK, RunResponse{Status: "ok", Results: results})
	}
}

// authorized enforces the bearer token when one is configured.
func authorized(config config.Config, req events.APIGatewayProxyRequest) bool {
	if config.APIToken == "" {
		return true
	}

	header := req.Headers["Authorization"]
	if header == "" {
		header = req.Headers["authorization"]
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	return found && token == config.APIToken
}

// errorMessages flattens an errors.Join aggregate into one entry per joined
// error. Splitting on newlines would fragment SDK errors whose messages span
// lines.
func errorMessages(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		messages := make([]string, len(errs))
		for i, e := range errs {
			messages[i] = e.Error()
		}
		return messages
	}
	return []string{err.Error()}
}
