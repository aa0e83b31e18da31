// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

// Package lambda adapts the obfuscation run to an AWS Lambda invocation.
package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/hashicorp/go-hclog"

	"github.com/pii-obfuscator/obfuscator/agent"
	"github.com/pii-obfuscator/obfuscator/storage"
)

const (
	successMessage = "Obfuscation process completed successfully."
	failurePrefix  = "Error during obfuscation process: "
)

// Event is the invocation payload. PIIFields may be omitted, in which case nothing is obfuscated.
type Event struct {
	InputS3Location  string   `json:"input_s3_location"`
	OutputS3Location string   `json:"output_s3_location"`
	PIIFields        []string `json:"pii_fields"`
}

// Handler runs one obfuscation per invocation against a gateway built at cold start.
type Handler struct {
	gateway storage.Gateway
	l       hclog.Logger
}

func NewHandler(gateway storage.Gateway, logger hclog.Logger) *Handler {
	return &Handler{
		gateway: gateway,
		l:       logger.Named("lambda"),
	}
}

// Handle never returns an error: every failure, including a panic, becomes a 500 response.
func (h *Handler) Handle(ctx context.Context, event Event) (resp events.APIGatewayProxyResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.l.Error("Obfuscation panicked", "panic", r)
			resp = response(http.StatusInternalServerError, fmt.Sprintf("%s%v", failurePrefix, r))
			err = nil
		}
	}()

	cfg := agent.Config{
		Input:     event.InputS3Location,
		Output:    event.OutputS3Location,
		PIIFields: event.PIIFields,
	}
	a := agent.NewAgent(cfg, h.gateway, h.l)
	if runErr := a.Run(ctx); runErr != nil {
		h.l.Error("Obfuscation failed", "run_id", a.ID, "error", runErr)
		return response(http.StatusInternalServerError, failurePrefix+runErr.Error()), nil
	}

	h.l.Info("Obfuscation succeeded", "run_id", a.ID, "output", cfg.Output, "redacted_values", a.Redacted)
	return response(http.StatusOK, successMessage), nil
}

// response encodes msg as a JSON string body.
func response(status int, msg string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(msg)
	if err != nil {
		body = []byte(`""`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(body),
	}
}

// ConfigureLogging returns a JSON logger whose level comes from LOG_LEVEL.
func ConfigureLogging(loggerName string) hclog.Logger {
	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:       loggerName,
		JSONFormat: true,
		Output:     os.Stderr,
	})
	hclog.SetDefault(appLogger)
	if logStr := os.Getenv("LOG_LEVEL"); logStr != "" {
		if level := hclog.LevelFromString(logStr); level != hclog.NoLevel {
			appLogger.SetLevel(level)
		}
	}
	return hclog.Default()
}

// StorageConfig reads the S3 settings of the function from its environment. AWS_REGION is picked up by the SDK.
func StorageConfig() storage.S3Config {
	return storage.S3Config{
		Endpoint: os.Getenv("OBFUSCATOR_S3_ENDPOINT"),
	}
}
