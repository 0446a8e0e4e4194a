package repository

import (
	"context"
	"sort"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/notion"
)

const (
	EntryTitleProperty  = "Name"
	EntryDateProperty   = "Date"
	EntryStatusProperty = "Status"
	EntryTagsProperty   = "Tags"
)

type CalendarRepositoryInterface interface {
	Create(ctx context.Context, e *model.CalendarEntry) error
	AppendBlock(ctx context.Context, entryID string, block notion.Block) error
	DescribeProperties(ctx context.Context) ([]notion.DatabaseProperty, error)
}

// CalendarRepository writes entries into the content calendar database.
type CalendarRepository struct {
	Client     *notion.Client
	DatabaseID string
}

// Create inserts the entry and sets e.ID to the new page's ID.
func (r *CalendarRepository) Create(ctx context.Context, e *model.CalendarEntry) error {
	page, err := r.Client.CreatePage(ctx, r.DatabaseID, notion.Properties{
		EntryTitleProperty:  notion.TitleProperty(e.Title),
		EntryDateProperty:   notion.DateProperty(e.Date),
		EntryStatusProperty: notion.SelectProperty(e.Status),
		EntryTagsProperty:   notion.MultiSelectProperty(e.Tags...),
	})
	if err != nil {
		return err
	}
	e.ID = page.ID
	return nil
}

// AppendBlock appends a single block to the entry body.
func (r *CalendarRepository) AppendBlock(ctx context.Context, entryID string, block notion.Block) error {
	return r.Client.AppendBlockChildren(ctx, entryID, block)
}

// DescribeProperties lists the calendar database's properties sorted by name.
func (r *CalendarRepository) DescribeProperties(ctx context.Context) ([]notion.DatabaseProperty, error) {
	db, err := r.Client.RetrieveDatabase(ctx, r.DatabaseID)
	if err != nil {
		return nil, err
	}
	props := make([]notion.DatabaseProperty, 0, len(db.Properties))
	for name, p := range db.Properties {
		if p.Name == "" {
			p.Name = name
		}
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
	return props, nil
}

var _ CalendarRepositoryInterface = (*CalendarRepository)(nil)
