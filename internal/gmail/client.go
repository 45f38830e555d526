package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/flowspace/internal/google"
)

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return google.HasToken()
}

// NewClientForAccountWithProvider creates a new Gmail client for a specific
// account, with the OAuth token retrieved from the given provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)
	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{ForceAttemptHTTP2: false}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users, account: account}, nil
}

// NewClientForAccount creates a new Gmail client using the file token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Gmail client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListMessages lists message summaries matching a Gmail search query.
// It will fetch up to maxResults messages, making multiple API calls if
// necessary.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]*MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	var ids []string
	pageToken := ""
	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}

		// Gmail API has a max page size, typically 100
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Context(ctx).MaxResults(pageSize)
		if query != "" {
			req = req.Q(query)
		}
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}

	summaries := make([]*MessageSummary, 0, len(ids))
	for _, id := range ids {
		msg, err := c.svc.Messages.Get("me", id).Context(ctx).Format("metadata").
			MetadataHeaders("From", "To", "Subject", "Date").Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", id, err)
		}
		summaries = append(summaries, toMessageSummary(msg))
	}

	return summaries, nil
}

// ListMessagesAfter returns messages received after the cutoff, oldest first.
// Gmail's after: operator has second granularity, so messages on the cutoff
// boundary are filtered again against their internal date.
func (c *Client) ListMessagesAfter(ctx context.Context, cutoff time.Time, extraQuery string) ([]*MessageSummary, error) {
	query := fmt.Sprintf("after:%d", cutoff.Unix())
	if extraQuery != "" {
		query = query + " " + extraQuery
	}

	messages, err := c.ListMessages(ctx, query, 500)
	if err != nil {
		return nil, err
	}

	return filterAfterCutoff(messages, cutoff), nil
}

// filterAfterCutoff drops messages whose internal date is at or before the
// cutoff and sorts the rest oldest first. The after: query already narrows
// the result to the cutoff second, this removes the messages of that second
// that were not strictly after it.
func filterAfterCutoff(messages []*MessageSummary, cutoff time.Time) []*MessageSummary {
	filtered := messages[:0]
	for _, m := range messages {
		if m.InternalDate.After(cutoff) {
			filtered = append(filtered, m)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].InternalDate.Before(filtered[j].InternalDate)
	})
	return filtered
}

// GetMessage retrieves a full Gmail message
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}

	msg, err := c.svc.Messages.Get("me", messageID).Context(ctx).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// GetMessageSummary retrieves a message and returns its summary together
// with the decoded body, preferring plain text over HTML.
func (c *Client) GetMessageSummary(ctx context.Context, messageID string) (*MessageSummary, error) {
	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	summary := toMessageSummary(msg)
	if body, err := ExtractBody(msg, "text"); err == nil {
		summary.Body = body
	} else if body, err := ExtractBody(msg, "html"); err == nil {
		summary.Body = body
	}
	return summary, nil
}

// SendEmail sends an email through the Gmail API and returns the message ID.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	raw := buildRawMessage(msg, nil)
	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return sent.Id, nil
}

// ReplyToEmail sends a reply to an existing message, keeping the thread
// intact via In-Reply-To and References headers.
func (c *Client) ReplyToEmail(ctx context.Context, messageID, body string, isHTML bool) (string, error) {
	if messageID == "" {
		return "", fmt.Errorf("messageID is required")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}

	orig, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to get original message: %w", err)
	}

	originalFrom := HeaderValue(orig, "From")
	if originalFrom == "" {
		return "", fmt.Errorf("original message has no From header")
	}

	subject := HeaderValue(orig, "Subject")
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	originalMessageID := HeaderValue(orig, "Message-ID")
	references := HeaderValue(orig, "References")
	if originalMessageID != "" {
		if references != "" {
			references = references + " " + originalMessageID
		} else {
			references = originalMessageID
		}
	}

	threading := map[string]string{}
	if originalMessageID != "" {
		threading["In-Reply-To"] = originalMessageID
	}
	if references != "" {
		threading["References"] = references
	}

	raw := buildRawMessage(&EmailMessage{
		To:      []string{originalFrom},
		Subject: subject,
		Body:    body,
		IsHTML:  isHTML,
	}, threading)

	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw, ThreadId: orig.ThreadId}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send reply: %w", err)
	}

	return sent.Id, nil
}

// buildRawMessage builds an RFC 2822 message and encodes it in the base64url
// form the Gmail API expects. Extra headers are appended after the standard
// ones.
func buildRawMessage(msg *EmailMessage, extraHeaders map[string]string) string {
	var b strings.Builder

	b.WriteString("To: ")
	b.WriteString(strings.Join(msg.To, ", "))
	b.WriteString("\r\n")

	if len(msg.Cc) > 0 {
		b.WriteString("Cc: ")
		b.WriteString(strings.Join(msg.Cc, ", "))
		b.WriteString("\r\n")
	}
	if len(msg.Bcc) > 0 {
		b.WriteString("Bcc: ")
		b.WriteString(strings.Join(msg.Bcc, ", "))
		b.WriteString("\r\n")
	}

	// Encode for non-ASCII characters like umlauts
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(msg.Subject))
	b.WriteString("\r\n")

	for _, name := range sortedKeys(extraHeaders) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(extraHeaders[name])
		b.WriteString("\r\n")
	}

	if msg.IsHTML {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
