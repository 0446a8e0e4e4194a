package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/notion"
)

// BlockAppender appends one block to a destination page.
type BlockAppender interface {
	AppendBlock(ctx context.Context, pageID string, block notion.Block) error
}

// MediaValidator decides whether an external media URL may be copied.
type MediaValidator interface {
	Validate(ctx context.Context, url string) bool
}

// TranscriptStats counts what happened to each source block.
type TranscriptStats struct {
	Copied       int `json:"copied"`
	Skipped      int `json:"skipped"`
	MediaFailed  int `json:"media_failed"`
	MarkerBlocks int `json:"marker_blocks"`
}

// Transcriber copies a page body onto a calendar entry, one append per block.
type Transcriber struct {
	Appender  BlockAppender
	Validator MediaValidator
	Logger    *zap.Logger
}

// Transcribe copies blocks to destID. Media failures are logged and counted;
// an append failure for a text block stops transcription and is returned.
func (t *Transcriber) Transcribe(ctx context.Context, blocks []notion.Block, destID string) (TranscriptStats, error) {
	var stats TranscriptStats
	for _, b := range blocks {
		if _, isMarker := postDateText(b); isMarker {
			stats.MarkerBlocks++
			continue
		}

		switch b.Type {
		case notion.BlockImage, notion.BlockVideo:
			if t.CopyMedia(ctx, b, destID) {
				stats.Copied++
			} else {
				t.Logger.Warn("⚠️ Failed to copy media block",
					zap.String("block_id", b.ID), zap.String("type", string(b.Type)))
				stats.MediaFailed++
			}

		case notion.BlockParagraph, notion.BlockHeading1, notion.BlockHeading2,
			notion.BlockBulletedItem, notion.BlockNumberedItem:
			if b.Type == notion.BlockParagraph && len(b.RichText) == 0 {
				stats.Skipped++
				continue
			}
			if err := t.Appender.AppendBlock(ctx, destID, notion.NewTextBlock(b.Type, b.RichText)); err != nil {
				return stats, fmt.Errorf("copy %s block %s: %w", b.Type, b.ID, err)
			}
			stats.Copied++

		default:
			stats.Skipped++
		}
	}
	return stats, nil
}

// CopyMedia appends a copy of an image or video block. Notion-hosted files are
// re-wrapped with their URL only; external links must pass the validator.
func (t *Transcriber) CopyMedia(ctx context.Context, b notion.Block, destID string) bool {
	if b.Media == nil {
		t.Logger.Warn("❌ Media block has no media payload", zap.String("block_id", b.ID))
		return false
	}
	t.debugMedia(b)

	media := notion.Media{Source: b.Media.Source, URL: b.Media.URL, Caption: b.Media.Caption}
	switch b.Media.Source {
	case notion.MediaFile:
	case notion.MediaExternal:
		if !t.Validator.Validate(ctx, b.Media.URL) {
			t.Logger.Warn("❌ URL validation failed for external media",
				zap.String("type", string(b.Type)), zap.String("url", b.Media.URL))
			return false
		}
	default:
		t.Logger.Warn("❌ Unknown media source", zap.String("source", string(b.Media.Source)))
		return false
	}

	if err := t.Appender.AppendBlock(ctx, destID, notion.NewMediaBlock(b.Type, media)); err != nil {
		t.Logger.Error("Error copying media", zap.String("type", string(b.Type)), zap.Error(err))
		return false
	}
	t.Logger.Info("✅ Successfully copied media", zap.String("type", string(b.Type)))
	return true
}

func (t *Transcriber) debugMedia(b notion.Block) {
	if ce := t.Logger.Check(zap.DebugLevel, "media block"); ce != nil {
		captions := make([]string, 0, len(b.Media.Caption))
		for _, c := range b.Media.Caption {
			captions = append(captions, c.PlainText)
		}
		ce.Write(
			zap.String("block_id", b.ID),
			zap.String("type", string(b.Type)),
			zap.String("source", string(b.Media.Source)),
			zap.String("url", b.Media.URL),
			zap.String("expiry_time", b.Media.ExpiryTime),
			zap.Strings("caption", captions),
		)
	}
}
