// internal/model/calendar_entry.go
package model

import "time"

const EntryStatusDraft = "Draft"

// CalendarEntry is a row created in the content calendar database.
type CalendarEntry struct {
	ID     string   `json:"id,omitempty"`
	Title  string   `json:"title"`
	Date   string   `json:"date"` // YYYY-MM-DD
	Status string   `json:"status"`
	Tags   []string `json:"tags"`
}

// NewDraftEntry builds the entry created for a child page.
func NewDraftEntry(title, date string) CalendarEntry {
	return CalendarEntry{
		Title:  title,
		Date:   date,
		Status: EntryStatusDraft,
		Tags:   []string{},
	}
}

// LedgerRecord marks a child page whose calendar entry was fully written.
type LedgerRecord struct {
	CampaignID string    `db:"campaign_id" json:"campaign_id" bson:"campaign_id" dynamodbav:"campaign_id"`
	ChildID    string    `db:"child_id" json:"child_id" bson:"child_id" dynamodbav:"child_id"`
	EntryID    string    `db:"entry_id" json:"entry_id" bson:"entry_id" dynamodbav:"entry_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at" bson:"created_at" dynamodbav:"created_at"`
}
