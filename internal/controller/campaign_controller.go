package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/handler"
)

const maxBodyBytes = 1 << 20

// CampaignController exposes the entry points over HTTP.
type CampaignController struct {
	Handler *handler.Handler
	Logger  *zap.Logger
}

// Routes registers the controller's endpoints on a chi router.
func (c *CampaignController) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", c.Health)
	r.Post("/process", c.ProcessAll)
	r.Post("/campaigns/{id}/process", c.ProcessCampaign)
	r.Post("/webhook", c.Webhook)
	return r
}

func (c *CampaignController) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ProcessAll accepts an optional {"campaign_id": "..."} body; an empty body
// triggers a scheduled run.
func (c *CampaignController) ProcessAll(w http.ResponseWriter, r *http.Request) {
	var ev handler.Event
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&ev); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if ev.Source == "" {
		ev.Source = "http"
	}
	writeResponse(w, c.Handler.Process(r.Context(), ev))
}

func (c *CampaignController) ProcessCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeResponse(w, c.Handler.Process(r.Context(), handler.Event{CampaignID: id, Source: "http"}))
}

// Webhook hands the raw body to the webhook entry point.
func (c *CampaignController) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		c.Logger.Warn("⚠️ Failed to read webhook body", zap.Error(err))
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	writeResponse(w, c.Handler.Webhook(r.Context(), body))
}

func writeResponse(w http.ResponseWriter, resp handler.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}
