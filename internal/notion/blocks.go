package notion

import (
	"encoding/json"
	"fmt"
)

// BlockType is the Notion "type" tag of a block.
type BlockType string

const (
	BlockParagraph    BlockType = "paragraph"
	BlockHeading1     BlockType = "heading_1"
	BlockHeading2     BlockType = "heading_2"
	BlockBulletedItem BlockType = "bulleted_list_item"
	BlockNumberedItem BlockType = "numbered_list_item"
	BlockCallout      BlockType = "callout"
	BlockImage        BlockType = "image"
	BlockVideo        BlockType = "video"
	BlockChildPage    BlockType = "child_page"
)

// MediaSource says where a media block's file lives.
type MediaSource string

const (
	// MediaFile is a Notion-hosted upload. Its URL is signed and expires.
	MediaFile     MediaSource = "file"
	MediaExternal MediaSource = "external"
)

// RichText is a single rich-text span. The span's JSON is kept as received so
// that copying it to another block writes back annotations, links and mentions
// untouched.
type RichText struct {
	PlainText string
	raw       json.RawMessage
}

// Text builds a plain text span.
func Text(content string) RichText {
	return RichText{PlainText: content}
}

func (r *RichText) UnmarshalJSON(data []byte) error {
	var span struct {
		PlainText string `json:"plain_text"`
		Text      *struct {
			Content string `json:"content"`
		} `json:"text"`
	}
	if err := json.Unmarshal(data, &span); err != nil {
		return err
	}
	r.PlainText = span.PlainText
	if r.PlainText == "" && span.Text != nil {
		r.PlainText = span.Text.Content
	}
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (r RichText) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(map[string]any{
		"type": "text",
		"text": map[string]string{"content": r.PlainText},
	})
}

// Media is the payload of an image or video block.
type Media struct {
	Source     MediaSource
	URL        string
	ExpiryTime string
	Caption    []RichText
}

// Block is a parsed Notion block. Type is the tag; only the payload field that
// belongs to the tag is populated:
//
//	paragraph, heading_1, heading_2, bulleted_list_item,
//	numbered_list_item, callout              -> RichText
//	image, video                             -> Media
//	child_page                               -> Title
//
// Blocks of any other type keep their tag and carry no payload.
type Block struct {
	ID       string
	Type     BlockType
	RichText []RichText
	Media    *Media
	Title    string
}

// NewTextBlock builds a text-bearing block for appending.
func NewTextBlock(t BlockType, spans []RichText) Block {
	return Block{Type: t, RichText: spans}
}

// NewMediaBlock builds an image or video block for appending.
func NewMediaBlock(t BlockType, m Media) Block {
	return Block{Type: t, Media: &m}
}

// IsText reports whether the block carries rich text.
func (b Block) IsText() bool {
	switch b.Type {
	case BlockParagraph, BlockHeading1, BlockHeading2, BlockBulletedItem, BlockNumberedItem, BlockCallout:
		return true
	}
	return false
}

// IsMedia reports whether the block is an image or a video.
func (b Block) IsMedia() bool {
	return b.Type == BlockImage || b.Type == BlockVideo
}

// FirstText returns the plain text of the first span, if any.
func (b Block) FirstText() (string, bool) {
	if len(b.RichText) == 0 {
		return "", false
	}
	return b.RichText[0].PlainText, true
}

type wireBlock struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type wireText struct {
	RichText []RichText `json:"rich_text"`
}

type wireFile struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

type wireExternal struct {
	URL string `json:"url"`
}

type wireMedia struct {
	Type     string        `json:"type"`
	File     *wireFile     `json:"file,omitempty"`
	External *wireExternal `json:"external,omitempty"`
	Caption  []RichText    `json:"caption,omitempty"`
}

type wireChildPage struct {
	Title string `json:"title"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var head wireBlock
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*b = Block{ID: head.ID, Type: BlockType(head.Type)}
	payload, ok := fields[head.Type]
	if !ok || string(payload) == "null" {
		return nil
	}

	switch {
	case b.IsText():
		var p wireText
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode %s block %s: %w", head.Type, head.ID, err)
		}
		b.RichText = p.RichText
	case b.IsMedia():
		var p wireMedia
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode %s block %s: %w", head.Type, head.ID, err)
		}
		m := &Media{Source: MediaSource(p.Type), Caption: p.Caption}
		switch {
		case p.File != nil:
			m.URL, m.ExpiryTime = p.File.URL, p.File.ExpiryTime
		case p.External != nil:
			m.URL = p.External.URL
		}
		b.Media = m
	case b.Type == BlockChildPage:
		var p wireChildPage
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode child_page block %s: %w", head.ID, err)
		}
		b.Title = p.Title
	}
	return nil
}

// MarshalJSON renders the block in the shape the append endpoint expects.
// Only text and media blocks can be written.
func (b Block) MarshalJSON() ([]byte, error) {
	var payload any
	switch {
	case b.IsText():
		spans := b.RichText
		if spans == nil {
			spans = []RichText{}
		}
		payload = wireText{RichText: spans}
	case b.IsMedia():
		if b.Media == nil {
			return nil, fmt.Errorf("notion: %s block without media", b.Type)
		}
		p := wireMedia{Type: string(b.Media.Source), Caption: b.Media.Caption}
		switch b.Media.Source {
		case MediaFile:
			p.File = &wireFile{URL: b.Media.URL, ExpiryTime: b.Media.ExpiryTime}
		case MediaExternal:
			p.External = &wireExternal{URL: b.Media.URL}
		default:
			return nil, fmt.Errorf("notion: unknown media source %q", b.Media.Source)
		}
		payload = p
	default:
		return nil, fmt.Errorf("notion: block type %q cannot be written", b.Type)
	}
	out := map[string]any{"object": "block", "type": string(b.Type)}
	out[string(b.Type)] = payload
	return json.Marshal(out)
}
