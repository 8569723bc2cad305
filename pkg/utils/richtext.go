package utils

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Rich-text documents arrive from clients as a block tree:
// {"blocks":[{"type":"paragraph","text":"hi","mentions":["id"]}, ...]}.
// The plain-text projection is what gets indexed and shown in previews.

type RichBlock struct {
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Mentions []string `json:"mentions,omitempty"`
}

type RichDocument struct {
	Blocks []RichBlock `json:"blocks"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// ParseRichDocument decodes a raw rich-text payload. A bare string is
// accepted and wrapped in a single paragraph block for older clients.
func ParseRichDocument(raw json.RawMessage) (*RichDocument, error) {
	var doc RichDocument
	if err := json.Unmarshal(raw, &doc); err == nil && len(doc.Blocks) > 0 {
		return &doc, nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	return &RichDocument{Blocks: []RichBlock{{Type: "paragraph", Text: plain}}}, nil
}

// PlainText derives the text projection of a document: tags stripped,
// blocks joined by newlines, surrounding whitespace trimmed.
func (d *RichDocument) PlainText() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		text := strings.TrimSpace(htmlTagRe.ReplaceAllString(b.Text, ""))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// MentionIDs collects the mentioned profile ids across all blocks, deduplicated.
func (d *RichDocument) MentionIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range d.Blocks {
		for _, id := range b.Mentions {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// IsEmpty reports whether the document carries no visible text.
func (d *RichDocument) IsEmpty() bool {
	return d.PlainText() == ""
}

// TruncateString safely truncates a string to max length
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
