package service_test

import (
	"context"
	"fmt"
	"sync"

	appErrors "github.com/Spizzerp/CampaignNotionAutomation/internal/errors"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/notion"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/repository"
)

// fakeWorkspace stands in for both Notion databases.
type fakeWorkspace struct {
	mu sync.Mutex

	campaigns  []model.Campaign
	children   map[string][]model.ChildPage
	blocks     map[string][]notion.Block
	listErr    error
	childErr   map[string]error
	blocksErr  map[string]error
	createErr  error
	appendErr  map[string]error
	panicOnDay map[string]bool

	entries  []model.CalendarEntry
	appended map[string][]notion.Block
	nextID   int
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{
		children:   map[string][]model.ChildPage{},
		blocks:     map[string][]notion.Block{},
		childErr:   map[string]error{},
		blocksErr:  map[string]error{},
		appendErr:  map[string]error{},
		panicOnDay: map[string]bool{},
		appended:   map[string][]notion.Block{},
	}
}

func (f *fakeWorkspace) ListUnprocessed(_ context.Context) ([]model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Campaign
	for _, c := range f.campaigns {
		if !c.Processed {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeWorkspace) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.campaigns {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (f *fakeWorkspace) ListChildPages(_ context.Context, campaignID string) ([]model.ChildPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.childErr[campaignID]; err != nil {
		return nil, err
	}
	return f.children[campaignID], nil
}

func (f *fakeWorkspace) ListBlocks(_ context.Context, pageID string) ([]notion.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.blocksErr[pageID]; err != nil {
		return nil, err
	}
	return f.blocks[pageID], nil
}

func (f *fakeWorkspace) MarkProcessed(_ context.Context, campaignID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.campaigns {
		if f.campaigns[i].ID == campaignID {
			f.campaigns[i].Processed = true
		}
	}
	return nil
}

func (f *fakeWorkspace) Create(_ context.Context, e *model.CalendarEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.panicOnDay[e.Date] {
		panic("calendar exploded")
	}
	f.nextID++
	e.ID = fmt.Sprintf("entry-%d", f.nextID)
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeWorkspace) AppendBlock(_ context.Context, entryID string, block notion.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.appendErr[entryID]; err != nil {
		return err
	}
	f.appended[entryID] = append(f.appended[entryID], block)
	return nil
}

func (f *fakeWorkspace) DescribeProperties(_ context.Context) ([]notion.DatabaseProperty, error) {
	return []notion.DatabaseProperty{{Name: "Name", Type: "title"}}, nil
}

func (f *fakeWorkspace) campaign(id string) model.Campaign {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.campaigns {
		if c.ID == id {
			return c
		}
	}
	return model.Campaign{}
}

var (
	_ repository.CampaignRepositoryInterface = (*fakeWorkspace)(nil)
	_ repository.CalendarRepositoryInterface = (*fakeWorkspace)(nil)
)

// stubValidator approves the URLs it was given.
type stubValidator struct {
	mu      sync.Mutex
	allowed map[string]bool
	calls   []string
}

func (s *stubValidator) Validate(_ context.Context, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	return s.allowed[url]
}

func text(t notion.BlockType, content string) notion.Block {
	return notion.NewTextBlock(t, []notion.RichText{notion.Text(content)})
}
