package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/notion"
)

// PostDateMarker introduces the publish date inside a page body.
const PostDateMarker = "Post Date:"

const (
	isoDateLayout  = "2006-01-02"
	longDateLayout = "January 2, 2006"
)

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// DateExtractor finds the post date of a page. Now supplies the fallback
// date; it defaults to time.Now.
type DateExtractor struct {
	Now func() time.Time
}

// Extract returns the first resolvable "Post Date:" found in a heading_1 or
// callout block, formatted YYYY-MM-DD, or today's date when there is none.
func (d DateExtractor) Extract(blocks []notion.Block) string {
	for _, b := range blocks {
		text, ok := postDateText(b)
		if !ok {
			continue
		}
		if date, ok := parsePostDate(text); ok {
			return date
		}
	}
	return d.today()
}

func (d DateExtractor) today() string {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().Format(isoDateLayout)
}

// postDateText returns the first span of a marker block, if b is one.
func postDateText(b notion.Block) (string, bool) {
	if b.Type != notion.BlockHeading1 && b.Type != notion.BlockCallout {
		return "", false
	}
	text, ok := b.FirstText()
	if !ok || !strings.Contains(text, PostDateMarker) {
		return "", false
	}
	return text, true
}

func parsePostDate(text string) (string, bool) {
	if m := isoDatePattern.FindString(text); m != "" {
		return m, true
	}
	rest := strings.TrimSpace(strings.Replace(text, PostDateMarker, "", -1))
	t, err := time.Parse(longDateLayout, rest)
	if err != nil {
		return "", false
	}
	return t.Format(isoDateLayout), true
}
