package repository

import (
	"context"
	"fmt"

	appErrors "github.com/Spizzerp/CampaignNotionAutomation/internal/errors"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/notion"
)

const (
	CampaignTitleProperty = "Name"
	ProcessedProperty     = "Processed"
)

type CampaignRepositoryInterface interface {
	ListUnprocessed(ctx context.Context) ([]model.Campaign, error)
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListChildPages(ctx context.Context, campaignID string) ([]model.ChildPage, error)
	ListBlocks(ctx context.Context, pageID string) ([]notion.Block, error)
	MarkProcessed(ctx context.Context, campaignID string) error
}

// CampaignRepository reads campaigns from the campaign strategy database.
type CampaignRepository struct {
	Client     *notion.Client
	DatabaseID string
}

// ListUnprocessed returns every campaign whose Processed checkbox is unset.
func (r *CampaignRepository) ListUnprocessed(ctx context.Context) ([]model.Campaign, error) {
	pages, err := r.Client.QueryDatabase(ctx, r.DatabaseID, notion.CheckboxEquals(ProcessedProperty, false))
	if err != nil {
		return nil, err
	}
	campaigns := make([]model.Campaign, 0, len(pages))
	for _, p := range pages {
		campaigns = append(campaigns, toCampaign(p))
	}
	return campaigns, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	page, err := r.Client.RetrievePage(ctx, id)
	if err != nil {
		if notion.IsNotFound(err) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	c := toCampaign(*page)
	return &c, nil
}

// ListChildPages returns the child_page blocks directly under the campaign.
func (r *CampaignRepository) ListChildPages(ctx context.Context, campaignID string) ([]model.ChildPage, error) {
	blocks, err := r.Client.ListBlockChildren(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	var children []model.ChildPage
	for _, b := range blocks {
		if b.Type != notion.BlockChildPage {
			continue
		}
		children = append(children, model.ChildPage{ID: b.ID, Title: b.Title})
	}
	return children, nil
}

func (r *CampaignRepository) ListBlocks(ctx context.Context, pageID string) ([]notion.Block, error) {
	return r.Client.ListBlockChildren(ctx, pageID)
}

func (r *CampaignRepository) MarkProcessed(ctx context.Context, campaignID string) error {
	_, err := r.Client.UpdatePageProperties(ctx, campaignID, notion.Properties{
		ProcessedProperty: notion.CheckboxProperty(true),
	})
	if err != nil {
		return fmt.Errorf("mark campaign %s processed: %w", campaignID, err)
	}
	return nil
}

func toCampaign(p notion.Page) model.Campaign {
	return model.Campaign{
		ID:        p.ID,
		Title:     p.Title(CampaignTitleProperty),
		Processed: p.Checkbox(ProcessedProperty),
	}
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
