package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/queue"
)

// Runner is what the entry points and the worker need from the processor.
type Runner interface {
	ProcessAll(ctx context.Context) (*RunReport, error)
	ProcessCampaign(ctx context.Context, campaignID string) (*CampaignResult, error)
}

var _ Runner = (*CampaignProcessor)(nil)

// Worker runs campaign jobs delivered by a queue consumer.
type Worker struct {
	Runner Runner
	Logger *zap.Logger
}

// Constructor
func NewWorker(runner Runner, logger *zap.Logger) *Worker {
	return &Worker{
		Runner: runner,
		Logger: logger,
	}
}

// Handle runs one job: a single campaign when CampaignID is set, otherwise a
// full scheduled run.
func (w *Worker) Handle(ctx context.Context, job queue.Job) error {
	log := w.Logger.With(zap.String("source", job.Source))
	if job.CampaignID == "" {
		report, err := w.Runner.ProcessAll(ctx)
		if err != nil {
			return err
		}
		log.Info("Scheduled run finished",
			zap.Int("campaigns", len(report.Campaigns)), zap.Int("processed", report.ProcessedCount()))
		return nil
	}

	result, err := w.Runner.ProcessCampaign(ctx, job.CampaignID)
	if err != nil {
		return err
	}
	log.Info("Campaign job finished",
		zap.String("campaign_id", job.CampaignID), zap.Bool("processed", result.Processed))
	return nil
}
