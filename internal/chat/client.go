package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// webhookHost is the only host Google Chat incoming webhooks live on.
const webhookHost = "chat.googleapis.com"

// httpClient is a configured HTTP client with proper timeouts
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// Client posts messages to a Google Chat space through an incoming webhook.
// Webhooks carry their own credentials in the URL, so no OAuth token is
// involved.
type Client struct {
	webhookURL string
	http       *http.Client
}

// NewClient creates a new Chat webhook client for the given webhook URL.
// The URL must be an HTTPS chat.googleapis.com space webhook.
func NewClient(webhookURL string) (*Client, error) {
	if err := ValidateWebhookURL(webhookURL); err != nil {
		return nil, err
	}
	return &Client{webhookURL: webhookURL, http: httpClient}, nil
}

// ValidateWebhookURL checks that a URL is a plausible Chat incoming webhook.
func ValidateWebhookURL(webhookURL string) error {
	if webhookURL == "" {
		return &ChatError{Op: "validate", Err: fmt.Errorf("webhook URL cannot be empty")}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		return &ChatError{Op: "validate", Err: fmt.Errorf("invalid webhook URL: %w", err)}
	}
	if u.Scheme != "https" {
		return &ChatError{Op: "validate", Err: fmt.Errorf("webhook URL must use https, got %q", u.Scheme)}
	}
	if u.Host != webhookHost {
		return &ChatError{Op: "validate", Err: fmt.Errorf("webhook URL host must be %s, got %q", webhookHost, u.Host)}
	}
	if !strings.HasPrefix(u.Path, "/v1/spaces/") {
		return &ChatError{Op: "validate", Err: fmt.Errorf("webhook URL path must start with /v1/spaces/")}
	}
	return nil
}

// PostMessage posts a plain text message to the space and returns the
// created message.
func (c *Client) PostMessage(ctx context.Context, text string) (*Message, error) {
	if text == "" {
		return nil, &ChatError{Op: "post", Err: fmt.Errorf("message text cannot be empty")}
	}
	return c.post(ctx, &Message{Text: text}, "")
}

// PostToThread posts a text message into a thread identified by a caller
// chosen thread key. Messages with the same key land in the same thread.
func (c *Client) PostToThread(ctx context.Context, text, threadKey string) (*Message, error) {
	if text == "" {
		return nil, &ChatError{Op: "post", Err: fmt.Errorf("message text cannot be empty")}
	}
	if threadKey == "" {
		return nil, &ChatError{Op: "post", Err: fmt.Errorf("thread key cannot be empty")}
	}
	return c.post(ctx, &Message{Text: text}, threadKey)
}

// PostCard posts a card message to the space.
func (c *Client) PostCard(ctx context.Context, card *Card) (*Message, error) {
	if card == nil {
		return nil, &ChatError{Op: "post", Err: fmt.Errorf("card cannot be nil")}
	}
	msg := &Message{
		CardsV2: []CardWithID{{CardID: card.CardID(), Card: card}},
	}
	return c.post(ctx, msg, "")
}

func (c *Client) post(ctx context.Context, msg *Message, threadKey string) (*Message, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, &ChatError{Op: "post", Err: fmt.Errorf("failed to encode message: %w", err)}
	}

	target := c.webhookURL
	if threadKey != "" {
		u, err := url.Parse(target)
		if err != nil {
			return nil, &ChatError{Op: "post", Err: err}
		}
		q := u.Query()
		q.Set("threadKey", threadKey)
		q.Set("messageReplyOption", "REPLY_MESSAGE_FALLBACK_TO_NEW_THREAD")
		u.RawQuery = q.Encode()
		target = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &ChatError{Op: "post", Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ChatError{Op: "post", Err: fmt.Errorf("failed to post to webhook: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ChatError{Op: "post", Err: fmt.Errorf("failed to read webhook response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ChatError{
			Op:     "post",
			Status: resp.StatusCode,
			Err:    fmt.Errorf("webhook returned %s: %s", resp.Status, truncate(string(respBody), 256)),
		}
	}

	var created Message
	if err := json.Unmarshal(respBody, &created); err != nil {
		// The message was accepted even if the response is not parseable
		return msg, nil
	}
	return &created, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
