// Package secrets fetches string secrets from Secrets Manager. The harness
// uses it once at cold start to load the bearer token that guards the run
// endpoint.
package secrets

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the subset of the Secrets Manager client used by the handler.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var _ SecretsAPI = (*secretsmanager.Client)(nil)

type Handler struct {
	Client SecretsAPI
}

func NewHandler(awsConfig aws.Config) *Handler {
	client := secretsmanager.NewFromConfig(awsConfig)
	return &Handler{Client: client}
}

func (h *Handler) GetValue(ctx context.Context, secretName string) (string, error) {
	value, err := h.Client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(value.SecretString), nil
}

// GetValueFromEnvReference resolves envVarName to a secret name and fetches
// that secret. An empty fetched value is an error: a blank auth token would
// silently disable the check.
func (h *Handler) GetValueFromEnvReference(ctx context.Context, envVarName string) (string, error) {
	envVarValue := os.Getenv(envVarName)
	if envVarValue == "" {
		return "", fmt.Errorf("%s environment variable not set", envVarName)
	}

	value, err := h.GetValue(ctx, envVarValue)
	if err != nil {
		return "", fmt.Errorf("could not get secret: %w", err)
	}

	if value == "" {
		return "", fmt.Errorf("empty value fetched from secrets manager")
	}
	return value, nil
}
