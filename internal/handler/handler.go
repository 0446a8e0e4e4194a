// Package handler holds the entry points shared by every transport: the
// processing entry point and the webhook receiver. Both answer with a
// Response envelope.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/Spizzerp/CampaignNotionAutomation/internal/errors"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/queue"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/service"
)

// Response is the envelope every entry point returns. Body is a JSON document.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Event is the input of the processing entry point.
type Event struct {
	CampaignID string `json:"campaign_id,omitempty"`
	Source     string `json:"source,omitempty"`
}

// WebhookPayload is the notification posted by the source workspace. Fields
// stay raw so that only page_created events are held to a shape.
type WebhookPayload struct {
	Type json.RawMessage `json:"type"`
	Page json.RawMessage `json:"page"`
}

// IsPageCreated reports whether type is the string "page_created".
func (p WebhookPayload) IsPageCreated() bool {
	var t string
	return json.Unmarshal(p.Type, &t) == nil && t == PageCreatedEvent
}

// PageID returns page.id, or "" when page is absent or not an object.
func (p WebhookPayload) PageID() string {
	var page struct {
		ID string `json:"id"`
	}
	if len(p.Page) == 0 || json.Unmarshal(p.Page, &page) != nil {
		return ""
	}
	return page.ID
}

const PageCreatedEvent = "page_created"

type Handler struct {
	Runner  service.Runner
	Invoker queue.Invoker
	Logger  *zap.Logger
	Now     func() time.Time
}

// Process is the main entry point. Without a campaign ID it processes every
// unprocessed campaign; with one it processes only that campaign.
func (h *Handler) Process(ctx context.Context, ev Event) (resp Response) {
	defer h.recoverInto(&resp, "Error in processing execution")

	if ev.CampaignID != "" {
		result, err := h.Runner.ProcessCampaign(ctx, ev.CampaignID)
		if err != nil {
			h.Logger.Error("Error in processing execution", zap.String("campaign_id", ev.CampaignID), zap.Error(err))
			return h.errorResponse(err, true)
		}
		body := map[string]any{
			"message":   fmt.Sprintf("Campaign %s processed successfully", ev.CampaignID),
			"timestamp": h.timestamp(),
			"processed": result.Processed,
			"children":  len(result.Children),
		}
		if msg := result.ErrorMessage(); msg != "" {
			body["failures"] = msg
		}
		return jsonResponse(http.StatusOK, body)
	}

	report, err := h.Runner.ProcessAll(ctx)
	if err != nil {
		h.Logger.Error("Error in processing execution", zap.Error(err))
		return h.errorResponse(err, true)
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"message":   "Scheduled campaign processing completed successfully",
		"timestamp": h.timestamp(),
		"campaigns": len(report.Campaigns),
		"processed": report.ProcessedCount(),
	})
}

// DecodeEvent parses a processing event. An empty or null payload is a
// scheduled run.
func DecodeEvent(raw []byte) (Event, error) {
	var ev Event
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ev, nil
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, appErrors.NewMalformedPayload("invalid event", err)
	}
	return ev, nil
}

// ProcessPayload decodes raw and runs Process. An undecodable event is a 500
// and nothing is processed.
func (h *Handler) ProcessPayload(ctx context.Context, raw []byte) Response {
	ev, err := DecodeEvent(raw)
	if err != nil {
		h.Logger.Error("Error in processing execution", zap.Error(err))
		return h.errorResponse(err, true)
	}
	return h.Process(ctx, ev)
}

// Webhook receives a workspace notification. A page_created event submits
// the campaign for asynchronous processing and returns at once.
func (h *Handler) Webhook(ctx context.Context, body []byte) (resp Response) {
	defer h.recoverInto(&resp, "Error processing webhook")

	payload, err := DecodeWebhook(body)
	if err != nil {
		h.Logger.Error("Error processing webhook", zap.Error(err))
		return h.errorResponse(err, false)
	}

	if !payload.IsPageCreated() {
		return jsonResponse(http.StatusOK, map[string]any{"message": "Webhook received but no action needed"})
	}

	campaignID := payload.PageID()
	job := queue.Job{CampaignID: campaignID, Source: "webhook"}
	if err := h.Invoker.Invoke(ctx, job); err != nil {
		h.Logger.Error("Error processing webhook", zap.String("campaign_id", campaignID), zap.Error(err))
		return h.errorResponse(err, false)
	}

	h.Logger.Info("Processing triggered", zap.String("campaign_id", campaignID))
	return jsonResponse(http.StatusOK, map[string]any{
		"message":     "Processing triggered successfully",
		"campaign_id": campaignID,
	})
}

// DecodeWebhook parses and checks a webhook body. The type key is required
// (any value), and page.id is required for page_created events.
func DecodeWebhook(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, appErrors.NewMalformedPayload("invalid JSON", err)
	}
	if len(payload.Type) == 0 {
		return nil, appErrors.NewMalformedPayload("missing type", nil)
	}
	if payload.IsPageCreated() && payload.PageID() == "" {
		return nil, appErrors.NewMalformedPayload("missing page id", nil)
	}
	return &payload, nil
}

func (h *Handler) recoverInto(resp *Response, msg string) {
	if r := recover(); r != nil {
		err := fmt.Errorf("panic: %v", r)
		h.Logger.Error(msg, zap.Error(err))
		*resp = h.errorResponse(err, true)
	}
}

func (h *Handler) errorResponse(err error, withTimestamp bool) Response {
	body := map[string]any{"error": err.Error()}
	if withTimestamp {
		body["timestamp"] = h.timestamp()
	}
	return jsonResponse(http.StatusInternalServerError, body)
}

func (h *Handler) timestamp() string {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return now().Format(time.RFC3339)
}

func jsonResponse(status int, body map[string]any) Response {
	data, err := json.Marshal(body)
	if err != nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: fmt.Sprintf(`{"error":%q}`, err.Error())}
	}
	return Response{StatusCode: status, Body: string(data)}
}
