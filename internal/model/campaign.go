// internal/model/campaign.go
package model

// Campaign is a row of the campaign strategy database.
type Campaign struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Processed bool   `json:"processed"`
}

// DisplayName falls back to the ID for untitled campaigns.
func (c Campaign) DisplayName() string {
	if c.Title == "" {
		return c.ID
	}
	return c.Title
}

// ChildPage is one planned piece of content nested under a campaign.
type ChildPage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
