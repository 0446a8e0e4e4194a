package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/repository"
)

// ChildResult is the outcome of materialising one child page.
type ChildResult struct {
	ChildID string          `json:"child_id"`
	Title   string          `json:"title"`
	EntryID string          `json:"entry_id,omitempty"`
	Date    string          `json:"date,omitempty"`
	Reused  bool            `json:"reused,omitempty"`
	Stats   TranscriptStats `json:"stats"`
	Err     error           `json:"-"`
}

// CampaignResult aggregates the children of one campaign.
type CampaignResult struct {
	CampaignID string        `json:"campaign_id"`
	Title      string        `json:"title"`
	Children   []ChildResult `json:"children"`
	Processed  bool          `json:"processed"`
	Err        error         `json:"-"`
}

// Succeeded reports whether the campaign may be marked processed: it was
// listed without error and no child failed. Zero children succeed.
func (r CampaignResult) Succeeded() bool {
	if r.Err != nil {
		return false
	}
	for _, c := range r.Children {
		if c.Err != nil {
			return false
		}
	}
	return true
}

func (r CampaignResult) Failed() int {
	n := 0
	for _, c := range r.Children {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// RunReport summarises a scheduled run.
type RunReport struct {
	Campaigns []CampaignResult `json:"campaigns"`
}

func (r RunReport) ProcessedCount() int {
	n := 0
	for _, c := range r.Campaigns {
		if c.Processed {
			n++
		}
	}
	return n
}

// CampaignProcessor turns unprocessed campaigns into calendar entries.
type CampaignProcessor struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CalendarRepo repository.CalendarRepositoryInterface
	Ledger       repository.ChildLedger
	Transcriber  *Transcriber
	Dates        DateExtractor
	Logger       *zap.Logger
}

// ProcessAll handles every campaign whose Processed flag is false, one after
// another. Only a failure to list campaigns is returned as an error.
func (p *CampaignProcessor) ProcessAll(ctx context.Context) (*RunReport, error) {
	p.Logger.Info("=== Starting Campaign Processing ===")

	campaigns, err := p.CampaignRepo.ListUnprocessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("get unprocessed campaigns: %w", err)
	}
	p.Logger.Info("Found unprocessed campaigns", zap.Int("count", len(campaigns)))

	report := &RunReport{Campaigns: make([]CampaignResult, 0, len(campaigns))}
	if len(campaigns) == 0 {
		p.Logger.Info("No new campaigns to process")
		return report, nil
	}

	for _, c := range campaigns {
		report.Campaigns = append(report.Campaigns, p.process(ctx, c))
	}
	return report, nil
}

// ProcessCampaign runs the same logic for a single campaign. Lookup failures
// are returned; processing failures are reported in the result.
func (p *CampaignProcessor) ProcessCampaign(ctx context.Context, campaignID string) (*CampaignResult, error) {
	c, err := p.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("retrieve campaign %s: %w", campaignID, err)
	}
	result := p.process(ctx, *c)
	return &result, nil
}

func (p *CampaignProcessor) process(ctx context.Context, c model.Campaign) CampaignResult {
	log := p.Logger.With(zap.String("campaign_id", c.ID), zap.String("campaign", c.DisplayName()))
	log.Info("Processing campaign")

	result := CampaignResult{CampaignID: c.ID, Title: c.Title}

	children, err := p.CampaignRepo.ListChildPages(ctx, c.ID)
	if err != nil {
		log.Error("Error getting child pages", zap.Error(err))
		result.Err = err
		return result
	}
	log.Info("Found child pages", zap.Int("count", len(children)))

	for _, child := range children {
		result.Children = append(result.Children, p.addToCalendar(ctx, c, child))
	}

	if !result.Succeeded() {
		log.Warn("⚠️ Some content failed to process", zap.Int("failed", result.Failed()))
		return result
	}

	if err := p.CampaignRepo.MarkProcessed(ctx, c.ID); err != nil {
		log.Error("Error marking campaign as processed", zap.Error(err))
		result.Err = err
		return result
	}
	result.Processed = true
	if len(children) == 0 {
		log.Info("No child pages found, campaign marked processed")
	} else {
		log.Info("✅ Campaign processed successfully")
	}
	return result
}

func (p *CampaignProcessor) addToCalendar(ctx context.Context, c model.Campaign, child model.ChildPage) (res ChildResult) {
	log := p.Logger.With(zap.String("campaign_id", c.ID), zap.String("child_id", child.ID), zap.String("child", child.Title))
	res = ChildResult{ChildID: child.ID, Title: child.Title}
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic while adding to content calendar: %v", r)
			log.Error("Error adding to content calendar", zap.Error(res.Err))
		}
	}()

	if p.Ledger != nil {
		rec, err := p.Ledger.Lookup(ctx, c.ID, child.ID)
		if err != nil {
			res.Err = fmt.Errorf("ledger lookup: %w", err)
			log.Error("Error adding to content calendar", zap.Error(res.Err))
			return res
		}
		if rec != nil {
			res.EntryID, res.Reused = rec.EntryID, true
			log.Info("Child already in content calendar, skipping", zap.String("entry_id", rec.EntryID))
			return res
		}
	}

	blocks, err := p.CampaignRepo.ListBlocks(ctx, child.ID)
	if err != nil {
		res.Err = fmt.Errorf("get page content: %w", err)
		log.Error("Error adding to content calendar", zap.Error(res.Err))
		return res
	}
	res.Date = p.Dates.Extract(blocks)

	entry := model.NewDraftEntry(child.Title, res.Date)
	if err := p.CalendarRepo.Create(ctx, &entry); err != nil {
		res.Err = fmt.Errorf("create calendar entry: %w", err)
		log.Error("Error adding to content calendar", zap.Error(res.Err))
		return res
	}
	res.EntryID = entry.ID

	log.Info("Copying content", zap.String("entry_id", entry.ID), zap.String("date", res.Date))
	res.Stats, err = p.Transcriber.Transcribe(ctx, blocks, entry.ID)
	if err != nil {
		res.Err = fmt.Errorf("copy content blocks: %w", err)
		log.Error("Error adding to content calendar", zap.Error(res.Err))
		return res
	}

	if p.Ledger != nil {
		rec := model.LedgerRecord{CampaignID: c.ID, ChildID: child.ID, EntryID: entry.ID, CreatedAt: time.Now().UTC()}
		if err := p.Ledger.Record(ctx, rec); err != nil {
			log.Warn("⚠️ Failed to record child in ledger", zap.Error(err))
		}
	}

	log.Info("✅ Added to content calendar with content")
	return res
}

// ErrorMessage joins child and campaign errors for reporting.
func (r CampaignResult) ErrorMessage() string {
	var errs []error
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	for _, c := range r.Children {
		if c.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.ChildID, c.Err))
		}
	}
	if len(errs) == 0 {
		return ""
	}
	return errors.Join(errs...).Error()
}
