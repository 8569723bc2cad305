package handlers

import (
	"encoding/json"
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/hivecrest/community-backend/pkg/utils"
)

// Message length limits, measured on the plain-text projection
const (
	MaxMessageLength = 8000
	MaxMessageBlocks = 200
)

// Dangerous patterns for XSS prevention
var (
	scriptTagRegex = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	onEventRegex   = regexp.MustCompile(`(?i)\s+on\w+\s*=\s*("[^"]*"|'[^']*'|\S+)`)
)

// SanitizeMessageContent cleans a rich-text payload before it is stored.
// Script tags and inline event handlers are stripped from every block;
// oversized or empty documents are rejected. Returns the re-encoded
// document so downstream storage never sees the raw client bytes.
func SanitizeMessageContent(raw json.RawMessage) (json.RawMessage, error) {
	doc, err := utils.ParseRichDocument(raw)
	if err != nil {
		return nil, errors.New("message content is not a valid document")
	}

	if len(doc.Blocks) > MaxMessageBlocks {
		return nil, errors.New("message has too many blocks")
	}

	for i := range doc.Blocks {
		text := scriptTagRegex.ReplaceAllString(doc.Blocks[i].Text, "")
		text = onEventRegex.ReplaceAllString(text, " ")
		doc.Blocks[i].Text = text
	}

	plain := doc.PlainText()
	if plain == "" {
		return nil, errors.New("message cannot be empty")
	}
	if utf8.RuneCountInString(plain) > MaxMessageLength {
		return nil, errors.New("message exceeds maximum length")
	}

	clean, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return clean, nil
}
