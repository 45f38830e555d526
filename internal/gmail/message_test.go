package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "alice@example.com"},
				{Name: "Subject", Value: "Hello"},
			},
		},
	}

	assert.Equal(t, "alice@example.com", HeaderValue(msg, "From"))
	assert.Equal(t, "Hello", HeaderValue(msg, "Subject"))
	assert.Equal(t, "", HeaderValue(msg, "To"))
	assert.Equal(t, "", HeaderValue(nil, "From"))
	assert.Equal(t, "", HeaderValue(&gmail.Message{}, "From"))
}

func TestToMessageSummary(t *testing.T) {
	msg := &gmail.Message{
		Id:           "msg1",
		ThreadId:     "thread1",
		Snippet:      "Hi there",
		LabelIds:     []string{"INBOX", "UNREAD"},
		InternalDate: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "bob@example.com"},
				{Name: "To", Value: "alice@example.com"},
				{Name: "Subject", Value: "Status"},
			},
		},
	}

	summary := toMessageSummary(msg)
	require.NotNil(t, summary)
	assert.Equal(t, "msg1", summary.ID)
	assert.Equal(t, "thread1", summary.ThreadID)
	assert.Equal(t, "bob@example.com", summary.From)
	assert.Equal(t, "Status", summary.Subject)
	assert.Equal(t, []string{"INBOX", "UNREAD"}, summary.Labels)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), summary.InternalDate)

	assert.Nil(t, toMessageSummary(nil))
}

func TestMessageSummaryVariables(t *testing.T) {
	summary := &MessageSummary{
		ID:           "msg1",
		ThreadID:     "thread1",
		From:         "bob@example.com",
		Subject:      "Status",
		Snippet:      "Hi",
		Labels:       []string{"INBOX"},
		InternalDate: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Body:         "full body",
	}

	vars := summary.Variables()
	assert.Equal(t, "msg1", vars["message_id"])
	assert.Equal(t, "bob@example.com", vars["from"])
	assert.Equal(t, "2026-03-01T12:00:00Z", vars["received"])
	assert.Equal(t, "full body", vars["body"])

	var nilSummary *MessageSummary
	assert.Nil(t, nilSummary.Variables())
}

func TestExtractBody(t *testing.T) {
	textData := base64.URLEncoding.EncodeToString([]byte("plain body"))
	htmlData := base64.URLEncoding.EncodeToString([]byte("<p>html body</p>"))

	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: textData}},
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: htmlData}},
			},
		},
	}

	body, err := ExtractBody(msg, "text")
	require.NoError(t, err)
	assert.Equal(t, "plain body", body)

	body, err = ExtractBody(msg, "html")
	require.NoError(t, err)
	assert.Equal(t, "<p>html body</p>", body)

	_, err = ExtractBody(msg, "pdf")
	assert.Error(t, err)
}

func TestExtractBodyTopLevel(t *testing.T) {
	data := base64.URLEncoding.EncodeToString([]byte("top level"))
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: data},
		},
	}

	body, err := ExtractBody(msg, "text")
	require.NoError(t, err)
	assert.Equal(t, "top level", body)
}

func TestExtractBodyMissing(t *testing.T) {
	msg := &gmail.Message{Payload: &gmail.MessagePart{MimeType: "multipart/mixed"}}
	_, err := ExtractBody(msg, "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no text body found")
}

func TestDecodeBase64StandardFallback(t *testing.T) {
	// Standard base64 with chars outside the URL alphabet
	data := base64.StdEncoding.EncodeToString([]byte{0xfb, 0xff, 0xfe})
	decoded, err := decodeBase64(data)
	require.NoError(t, err)
	assert.Equal(t, string([]byte{0xfb, 0xff, 0xfe}), decoded)

	_, err = decodeBase64("not base64!!!")
	assert.Error(t, err)
}

func TestEncodeRFC2047(t *testing.T) {
	assert.Equal(t, "plain ascii", encodeRFC2047("plain ascii"))

	encoded := encodeRFC2047("Grüße aus München")
	assert.True(t, strings.HasPrefix(encoded, "=?UTF-8?"))
	assert.True(t, strings.HasSuffix(encoded, "?="))
}

func TestBuildRawMessage(t *testing.T) {
	raw := buildRawMessage(&EmailMessage{
		To:      []string{"alice@example.com", "bob@example.com"},
		Cc:      []string{"carol@example.com"},
		Subject: "Weekly report",
		Body:    "All green.",
	}, map[string]string{"In-Reply-To": "<abc@mail.example.com>"})

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	text := string(decoded)

	assert.Contains(t, text, "To: alice@example.com, bob@example.com\r\n")
	assert.Contains(t, text, "Cc: carol@example.com\r\n")
	assert.Contains(t, text, "Subject: Weekly report\r\n")
	assert.Contains(t, text, "In-Reply-To: <abc@mail.example.com>\r\n")
	assert.Contains(t, text, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	assert.True(t, strings.HasSuffix(text, "\r\n\r\nAll green."))
}

func TestBuildRawMessageHTML(t *testing.T) {
	raw := buildRawMessage(&EmailMessage{
		To:      []string{"alice@example.com"},
		Subject: "Hi",
		Body:    "<b>bold</b>",
		IsHTML:  true,
	}, nil)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "Content-Type: text/html; charset=\"UTF-8\"\r\n")
}
