package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
)

// PostgresLedger stores records in the processed_children table.
type PostgresLedger struct {
	DB *sql.DB
}

func (r *PostgresLedger) Lookup(ctx context.Context, campaignID, childID string) (*model.LedgerRecord, error) {
	query := `
        SELECT campaign_id, child_id, entry_id, created_at
        FROM processed_children
        WHERE campaign_id=$1 AND child_id=$2
    `
	var rec model.LedgerRecord
	err := r.DB.QueryRowContext(ctx, query, campaignID, childID).Scan(
		&rec.CampaignID, &rec.ChildID, &rec.EntryID, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Record is idempotent: an existing row for the child is left untouched.
func (r *PostgresLedger) Record(ctx context.Context, rec model.LedgerRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO processed_children (campaign_id, child_id, entry_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (campaign_id, child_id) DO NOTHING
    `
	_, err := r.DB.ExecContext(ctx, query, rec.CampaignID, rec.ChildID, rec.EntryID, rec.CreatedAt)
	return err
}

func (r *PostgresLedger) Close() error {
	return r.DB.Close()
}

var _ ChildLedger = (*PostgresLedger)(nil)
