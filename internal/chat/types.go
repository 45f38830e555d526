package chat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Message is the Chat API message payload posted to and returned by a
// webhook.
type Message struct {
	Name    string       `json:"name,omitempty"`
	Text    string       `json:"text,omitempty"`
	CardsV2 []CardWithID `json:"cardsV2,omitempty"`
	Thread  *Thread      `json:"thread,omitempty"`
}

// Variables returns the created message as execution variables.
func (m *Message) Variables() map[string]any {
	if m == nil {
		return nil
	}
	vars := map[string]any{
		"message_name": m.Name,
		"text":         m.Text,
	}
	if m.Thread != nil {
		vars["thread_name"] = m.Thread.Name
	}
	return vars
}

// Thread identifies the Chat thread a message belongs to
type Thread struct {
	Name string `json:"name,omitempty"`
}

// CardWithID wraps a card with its identifier as the cardsV2 field expects
type CardWithID struct {
	CardID string `json:"cardId"`
	Card   *Card  `json:"card"`
}

// Card is a simple Chat card with a header and text sections
type Card struct {
	Header   *CardHeader `json:"header,omitempty"`
	Sections []Section   `json:"sections,omitempty"`

	cardID string
}

// CardHeader holds the card title line
type CardHeader struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Section groups widgets within a card
type Section struct {
	Header  string   `json:"header,omitempty"`
	Widgets []Widget `json:"widgets,omitempty"`
}

// Widget is a single card element. Only text paragraphs are supported.
type Widget struct {
	TextParagraph *TextParagraph `json:"textParagraph,omitempty"`
}

// TextParagraph renders a block of text, with basic HTML formatting allowed
type TextParagraph struct {
	Text string `json:"text"`
}

// NewCard creates a card with a title and one text section.
func NewCard(title, subtitle, text string) *Card {
	card := &Card{cardID: uuid.NewString()}
	if title != "" || subtitle != "" {
		card.Header = &CardHeader{Title: title, Subtitle: subtitle}
	}
	if text != "" {
		card.Sections = []Section{{
			Widgets: []Widget{{TextParagraph: &TextParagraph{Text: text}}},
		}}
	}
	return card
}

// CardID returns the stable identifier assigned to this card.
func (c *Card) CardID() string {
	if c.cardID == "" {
		c.cardID = uuid.NewString()
	}
	return c.cardID
}

// ChatError represents an error that occurred during Chat webhook operations
type ChatError struct {
	// Op is the operation that failed (e.g., "validate", "post")
	Op string

	// Status is the HTTP status code, when the webhook responded
	Status int

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *ChatError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("chat %s (status: %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("chat %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *ChatError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth retrying. Rate limits and
// server errors are, client errors are not.
func (e *ChatError) Retryable() bool {
	if e.Status == 0 {
		// Network level failure
		return e.Op == "post"
	}
	return e.Status == 429 || e.Status >= 500
}

// IsRetryable reports whether err carries a retryable ChatError.
func IsRetryable(err error) bool {
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr.Retryable()
	}
	return false
}
