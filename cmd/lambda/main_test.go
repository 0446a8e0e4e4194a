package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/handler"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/queue"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/service"
)

type stubRunner struct {
	campaigns []string
	all       int
}

func (s *stubRunner) ProcessAll(context.Context) (*service.RunReport, error) {
	s.all++
	return &service.RunReport{}, nil
}

func (s *stubRunner) ProcessCampaign(_ context.Context, id string) (*service.CampaignResult, error) {
	s.campaigns = append(s.campaigns, id)
	return &service.CampaignResult{CampaignID: id, Processed: true}, nil
}

type captureInvoker struct{ jobs []queue.Job }

func (c *captureInvoker) Invoke(_ context.Context, job queue.Job) error {
	c.jobs = append(c.jobs, job)
	return nil
}

func TestHandlerMode(t *testing.T) {
	assert.Equal(t, modeWebhook, handlerMode("WEBHOOK", ""))
	assert.Equal(t, modeProcess, handlerMode("process", "calendar-webhookHandler"))
	assert.Equal(t, modeWebhook, handlerMode("", "calendar-sync-dev-webhookHandler"))
	assert.Equal(t, modeProcess, handlerMode("", "calendar-sync-dev-processCampaigns"))
	assert.Equal(t, modeProcess, handlerMode("bogus", ""))
}

func TestProcessHandler(t *testing.T) {
	runner := &stubRunner{}
	fn := processHandler(&handler.Handler{Runner: runner, Logger: zaptest.NewLogger(t)})

	scheduled := json.RawMessage(`{"version":"0","source":"aws.events","detail-type":"Scheduled Event","detail":{}}`)
	resp, err := fn(context.Background(), scheduled)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, runner.all)

	resp, err = fn(context.Background(), json.RawMessage(`{"campaign_id":"c-9","source":"webhook"}`))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []string{"c-9"}, runner.campaigns)

	_, err = fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.all)

	for _, raw := range []string{`"not an object"`, `{"campaign_id":42,"source":"webhook"}`} {
		resp, err = fn(context.Background(), json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Contains(t, resp.Body, "malformed payload: invalid event")
	}
	assert.Equal(t, 2, runner.all)
	assert.Equal(t, []string{"c-9"}, runner.campaigns)
}

func TestWebhookHandler(t *testing.T) {
	inv := &captureInvoker{}
	fn := webhookHandler(&handler.Handler{Runner: &stubRunner{}, Invoker: inv, Logger: zaptest.NewLogger(t)})
	body := `{"type":"page_created","page":{"id":"camp-1"}}`

	resp, err := fn(context.Background(), events.APIGatewayProxyRequest{Body: body})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.JSONEq(t, `{"message":"Processing triggered successfully","campaign_id":"camp-1"}`, resp.Body)

	resp, err = fn(context.Background(), events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(body)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	require.Len(t, inv.jobs, 2)
	assert.Equal(t, queue.Job{CampaignID: "camp-1", Source: "webhook"}, inv.jobs[1])

	resp, err = fn(context.Background(), events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Len(t, inv.jobs, 2)
}
