// Package app wires the Notion client, repositories, ledger and processor
// from configuration. Every binary builds its dependencies through New.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/handler"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/notion"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/queue"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/repository"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/service"
)

type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Notion    *notion.Client
	Campaigns *repository.CampaignRepository
	Calendar  *repository.CalendarRepository
	Ledger    repository.ChildLedger
	Processor *service.CampaignProcessor
}

// New builds the processing stack. The caller owns Close.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	client := notion.NewClient(cfg.Notion.Token,
		notion.WithBaseURL(cfg.Notion.BaseURL),
		notion.WithVersion(cfg.Notion.Version),
	)

	ledger, err := repository.NewLedger(ctx, cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	logger.Info("📒 Ledger ready", zap.String("type", cfg.Ledger.Type))

	campaigns := &repository.CampaignRepository{Client: client, DatabaseID: cfg.Notion.CampaignDatabaseID}
	calendar := &repository.CalendarRepository{Client: client, DatabaseID: cfg.Notion.ContentDatabaseID}

	transcriber := &service.Transcriber{
		Appender:  calendar,
		Validator: service.NewURLValidator(cfg.Media.CheckTimeout, cfg.Media.TrustedPatterns, logger),
		Logger:    logger,
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Notion:    client,
		Campaigns: campaigns,
		Calendar:  calendar,
		Ledger:    ledger,
		Processor: &service.CampaignProcessor{
			CampaignRepo: campaigns,
			CalendarRepo: calendar,
			Ledger:       ledger,
			Transcriber:  transcriber,
			Logger:       logger,
		},
	}, nil
}

// Handler returns the entry points backed by this app. invoker may be nil
// for binaries that never receive webhooks.
func (a *App) Handler(invoker queue.Invoker) *handler.Handler {
	return &handler.Handler{Runner: a.Processor, Invoker: invoker, Logger: a.Logger}
}

func (a *App) Close() error {
	return a.Ledger.Close()
}
