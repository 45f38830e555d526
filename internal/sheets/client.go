package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/flowspace/internal/google"
)

// Client wraps the Google Sheets API service
type Client struct {
	svc     *sheets.Service
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

// NewClientForAccountWithProvider creates a new Sheets client for a specific
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

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// NewClientForAccount creates a new Sheets client using the file token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Sheets client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// GetSpreadsheet retrieves spreadsheet metadata including its sheet tabs.
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Context(ctx).
		Fields("spreadsheetId,properties.title,spreadsheetUrl,sheets.properties").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	return toSpreadsheetInfo(ss), nil
}

// ReadRange reads cell values from a range in A1 notation,
// e.g. "Sheet1!A1:C10". Values are returned as rows of strings.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, readRange string) (*RangeData, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if readRange == "" {
		return nil, fmt.Errorf("range is required")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		Context(ctx).
		ValueRenderOption("FORMATTED_VALUE").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}

	return &RangeData{
		Range:  resp.Range,
		Values: toStringRows(resp.Values),
	}, nil
}

// InputOption controls how the Sheets API interprets written cell values.
type InputOption string

const (
	// InputOptionUserEntered parses values the way manual entry would,
	// so "=SUM(A1:A3)" becomes a formula and "1.5" a number.
	InputOptionUserEntered InputOption = "USER_ENTERED"

	// InputOptionRaw stores values verbatim as strings.
	InputOptionRaw InputOption = "RAW"
)

// ParseInputOption validates an input option name. An empty name defaults
// to USER_ENTERED.
func ParseInputOption(name string) (InputOption, error) {
	switch InputOption(strings.ToUpper(strings.TrimSpace(name))) {
	case "", InputOptionUserEntered:
		return InputOptionUserEntered, nil
	case InputOptionRaw:
		return InputOptionRaw, nil
	default:
		return "", fmt.Errorf("unsupported input option %q, expected raw or user_entered", name)
	}
}

// WriteRange overwrites cell values in a range using the given input option.
func (c *Client) WriteRange(ctx context.Context, spreadsheetID, writeRange string, values [][]string, opt InputOption) (*WriteResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if writeRange == "" {
		return nil, fmt.Errorf("range is required")
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("values are required")
	}
	if opt == "" {
		opt = InputOptionUserEntered
	}

	vr := &sheets.ValueRange{Values: toAnyRows(values)}
	resp, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, vr).
		Context(ctx).
		ValueInputOption(string(opt)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to write range %s: %w", writeRange, err)
	}

	return &WriteResult{
		Range:        resp.UpdatedRange,
		UpdatedRows:  resp.UpdatedRows,
		UpdatedCells: resp.UpdatedCells,
	}, nil
}

// AppendRange appends rows after the last row of a table anchored at the
// given range, using the given input option.
func (c *Client) AppendRange(ctx context.Context, spreadsheetID, appendRange string, values [][]string, opt InputOption) (*WriteResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if appendRange == "" {
		return nil, fmt.Errorf("range is required")
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("values are required")
	}
	if opt == "" {
		opt = InputOptionUserEntered
	}

	vr := &sheets.ValueRange{Values: toAnyRows(values)}
	resp, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, appendRange, vr).
		Context(ctx).
		ValueInputOption(string(opt)).
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append to range %s: %w", appendRange, err)
	}

	result := &WriteResult{Range: appendRange}
	if resp.Updates != nil {
		result.Range = resp.Updates.UpdatedRange
		result.UpdatedRows = resp.Updates.UpdatedRows
		result.UpdatedCells = resp.Updates.UpdatedCells
	}
	return result, nil
}

// ClearRange clears all values in a range while keeping formatting.
func (c *Client) ClearRange(ctx context.Context, spreadsheetID, clearRange string) (string, error) {
	if spreadsheetID == "" {
		return "", fmt.Errorf("spreadsheetID is required")
	}
	if clearRange == "" {
		return "", fmt.Errorf("range is required")
	}

	resp, err := c.svc.Spreadsheets.Values.Clear(spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to clear range %s: %w", clearRange, err)
	}

	return resp.ClearedRange, nil
}
