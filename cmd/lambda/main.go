// Command lambda runs the processing or the webhook entry point on AWS
// Lambda. LAMBDA_HANDLER selects which; when unset, a function whose name
// contains "webhook" serves the webhook.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/app"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	appErrors "github.com/Spizzerp/CampaignNotionAutomation/internal/errors"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/handler"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/logging"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/queue"
)

const (
	modeProcess = "process"
	modeWebhook = "webhook"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer logger.Sync()

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise", zap.Error(err))
	}

	mode := handlerMode(os.Getenv("LAMBDA_HANDLER"), cfg.Invoker.LambdaFunctionName)
	logger.Info("Starting lambda", zap.String("handler", mode))

	switch mode {
	case modeWebhook:
		// A webhook function hands work to the processing function, so the
		// in-process queue is never an option here.
		invCfg := cfg.Invoker
		if invCfg.Type == "" || invCfg.Type == "memory" {
			invCfg.Type = "lambda"
		}
		invoker, err := queue.NewInvoker(invCfg, nil)
		if err != nil {
			logger.Fatal("failed to create invoker", zap.Error(err))
		}
		lambda.Start(webhookHandler(a.Handler(invoker)))
	default:
		lambda.Start(processHandler(a.Handler(nil)))
	}
}

func handlerMode(explicit, functionName string) string {
	switch strings.ToLower(explicit) {
	case modeProcess, modeWebhook:
		return strings.ToLower(explicit)
	}
	if strings.Contains(strings.ToLower(functionName), modeWebhook) {
		return modeWebhook
	}
	return modeProcess
}

// processHandler accepts a scheduled event, an async invocation payload or
// an empty event.
func processHandler(h *handler.Handler) func(context.Context, json.RawMessage) (handler.Response, error) {
	return func(ctx context.Context, raw json.RawMessage) (handler.Response, error) {
		return h.ProcessPayload(ctx, raw), nil
	}
}

func webhookHandler(h *handler.Handler) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				h.Logger.Error("Error processing webhook", zap.Error(appErrors.NewMalformedPayload("invalid base64 body", err)))
				body = nil
			} else {
				body = decoded
			}
		}
		return toProxy(h.Webhook(ctx, body)), nil
	}
}

func toProxy(resp handler.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       resp.Body,
	}
}
