package config

import (
	"github.com/rcoundon/sqs-sdk-error/internal/dyndb"
	"github.com/rcoundon/sqs-sdk-error/internal/objectstore"
	"github.com/rcoundon/sqs-sdk-error/internal/params"
	"github.com/rcoundon/sqs-sdk-error/internal/queue"
	"github.com/rcoundon/sqs-sdk-error/internal/secrets"
)

// Config carries the service wrappers the harness Lambda exercises. Wrappers
// are nil when their builder option was not requested.
type Config struct {
	ObjectStore *objectstore.Handler
	Queue       *queue.Handler
	Table       *dyndb.Handler
	Params      *params.Handler

	SecretsHandler *secrets.Handler

	// ParameterName is the SSM parameter the params check reads.
	ParameterName string

	// APIToken guards the run endpoint. Empty when no token secret is
	// configured, in which case the endpoint is open.
	APIToken string
}
