package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool
}

// MessageSummary is the metadata view of a Gmail message
type MessageSummary struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"threadId"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Subject      string    `json:"subject"`
	Snippet      string    `json:"snippet,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
	InternalDate time.Time `json:"internalDate"`
	Body         string    `json:"body,omitempty"`
}

// Variables returns the message metadata as execution variables.
func (m *MessageSummary) Variables() map[string]any {
	if m == nil {
		return nil
	}
	vars := map[string]any{
		"message_id": m.ID,
		"thread_id":  m.ThreadID,
		"from":       m.From,
		"to":         m.To,
		"subject":    m.Subject,
		"snippet":    m.Snippet,
		"received":   m.InternalDate.Format(time.RFC3339),
	}
	if len(m.Labels) > 0 {
		vars["labels"] = m.Labels
	}
	if m.Body != "" {
		vars["body"] = m.Body
	}
	return vars
}

func toMessageSummary(msg *gmail.Message) *MessageSummary {
	if msg == nil {
		return nil
	}
	summary := &MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     HeaderValue(msg, "From"),
		To:       HeaderValue(msg, "To"),
		Subject:  HeaderValue(msg, "Subject"),
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIds,
	}
	if msg.InternalDate > 0 {
		summary.InternalDate = time.UnixMilli(msg.InternalDate).UTC()
	}
	return summary
}

// HeaderValue extracts a header value from a Gmail message
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == header {
			return h.Value
		}
	}
	return ""
}

// ExtractBody extracts the text or HTML body from a full format message.
// The format is "text" or "html".
func ExtractBody(msg *gmail.Message, format string) (string, error) {
	var targetMimeType string
	switch format {
	case "", "text":
		targetMimeType = "text/plain"
	case "html":
		targetMimeType = "text/html"
	default:
		return "", fmt.Errorf("invalid format %s, must be 'text' or 'html'", format)
	}

	var body string
	if msg.Payload != nil {
		if msg.Payload.MimeType == targetMimeType && msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
			body = msg.Payload.Body.Data
		} else {
			walkParts(msg.Payload, func(part *gmail.MessagePart) {
				if body == "" && part.MimeType == targetMimeType && part.Body != nil && part.Body.Data != "" {
					body = part.Body.Data
				}
			})
		}
	}

	if body == "" {
		return "", fmt.Errorf("no %s body found in message", format)
	}

	return decodeBase64(body)
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// decodeBase64 decodes Gmail body data, which is base64url per RFC 4648 but
// occasionally arrives in standard base64.
func decodeBase64(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode message body: %w", err)
		}
	}
	return string(decoded), nil
}

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047.
// This is necessary for non-ASCII characters (like German umlauts) in subjects.
func encodeRFC2047(s string) string {
	needsEncoding := false
	for _, r := range s {
		if r > 127 {
			needsEncoding = true
			break
		}
	}
	if !needsEncoding {
		return s
	}
	return mime.BEncoding.Encode("UTF-8", s)
}
