package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/db"
	appErrors "github.com/Spizzerp/CampaignNotionAutomation/internal/errors"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
)

// ChildLedger remembers which child pages already produced a complete
// calendar entry, so a campaign retried after a partial failure does not
// duplicate the children that succeeded.
type ChildLedger interface {
	// Lookup returns nil, nil when the child has no record.
	Lookup(ctx context.Context, campaignID, childID string) (*model.LedgerRecord, error)
	Record(ctx context.Context, rec model.LedgerRecord) error
	Close() error
}

// NewLedger creates the ledger selected by cfg.Type.
func NewLedger(ctx context.Context, cfg config.LedgerConfig) (ChildLedger, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryLedger(), nil
	case "none":
		return NopLedger{}, nil
	case "postgresql":
		conn, err := db.Open(cfg.PostgresURI)
		if err != nil {
			return nil, err
		}
		return &PostgresLedger{DB: conn}, nil
	case "dynamodb":
		return NewDynamoLedger(cfg)
	case "mongodb":
		return NewMongoLedger(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: ledger type %q", appErrors.ErrUnknownBackend, cfg.Type)
	}
}

func ledgerKey(campaignID, childID string) string {
	return campaignID + "#" + childID
}

// MemoryLedger keeps records for the life of the process.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]model.LedgerRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]model.LedgerRecord)}
}

func (l *MemoryLedger) Lookup(_ context.Context, campaignID, childID string) (*model.LedgerRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[ledgerKey(campaignID, childID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (l *MemoryLedger) Record(_ context.Context, rec model.LedgerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(rec.CampaignID, rec.ChildID)
	if _, exists := l.records[key]; exists {
		return nil
	}
	l.records[key] = rec
	return nil
}

func (l *MemoryLedger) Close() error { return nil }

// NopLedger records nothing; every retry reprocesses every child.
type NopLedger struct{}

func (NopLedger) Lookup(context.Context, string, string) (*model.LedgerRecord, error) { return nil, nil }
func (NopLedger) Record(context.Context, model.LedgerRecord) error                    { return nil }
func (NopLedger) Close() error                                                        { return nil }

var (
	_ ChildLedger = (*MemoryLedger)(nil)
	_ ChildLedger = NopLedger{}
)
