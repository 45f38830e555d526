package triggers

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/flowspace/internal/calendar"
	"github.com/teemow/flowspace/internal/drive"
	"github.com/teemow/flowspace/internal/gmail"
)

// EventLister lists calendar events created after a cutoff.
type EventLister interface {
	ListEventsCreatedSince(ctx context.Context, calendarID string, cutoff time.Time) ([]calendar.EventSummary, error)
}

// FileLister lists Drive files created or modified after a cutoff.
type FileLister interface {
	ListFilesCreatedSince(ctx context.Context, cutoff time.Time, extraQuery string) ([]*drive.FileInfo, error)
	ListFilesModifiedSince(ctx context.Context, cutoff time.Time, extraQuery string) ([]*drive.FileInfo, error)
}

// MailLister lists Gmail messages received after a cutoff.
type MailLister interface {
	ListMessagesAfter(ctx context.Context, cutoff time.Time, extraQuery string) ([]*gmail.MessageSummary, error)
}

// EventCreatedSource fires for events newly created in a calendar.
type EventCreatedSource struct {
	lister     EventLister
	calendarID string
}

// NewEventCreatedSource creates a source watching one calendar.
func NewEventCreatedSource(lister EventLister, calendarID string) *EventCreatedSource {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &EventCreatedSource{lister: lister, calendarID: calendarID}
}

func (s *EventCreatedSource) Type() string {
	return TypeEventCreated
}

func (s *EventCreatedSource) Poll(ctx context.Context, since time.Time) ([]Item, error) {
	events, err := s.lister.ListEventsCreatedSince(ctx, s.calendarID, since)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(events))
	for _, event := range events {
		vars := event.Variables()
		vars["calendar_id"] = s.calendarID
		items = append(items, Item{
			ID:        event.ID,
			Timestamp: event.Created,
			Variables: vars,
		})
	}
	return items, nil
}

// FileCreatedSource fires for files newly created in Drive, optionally
// narrowed by a Drive query expression.
type FileCreatedSource struct {
	lister FileLister
	query  string
}

// NewFileCreatedSource creates a source watching Drive for new files.
func NewFileCreatedSource(lister FileLister, query string) *FileCreatedSource {
	return &FileCreatedSource{lister: lister, query: query}
}

func (s *FileCreatedSource) Type() string {
	return TypeFileCreated
}

func (s *FileCreatedSource) Poll(ctx context.Context, since time.Time) ([]Item, error) {
	files, err := s.lister.ListFilesCreatedSince(ctx, since, s.query)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(files))
	for _, file := range files {
		items = append(items, Item{
			ID:        file.ID,
			Timestamp: file.CreatedTime,
			Variables: file.Variables(),
		})
	}
	return items, nil
}

// MailReceivedSource fires for newly received Gmail messages, optionally
// narrowed by a Gmail search query.
type MailReceivedSource struct {
	lister MailLister
	query  string
}

// NewMailReceivedSource creates a source watching the inbox.
func NewMailReceivedSource(lister MailLister, query string) *MailReceivedSource {
	return &MailReceivedSource{lister: lister, query: query}
}

func (s *MailReceivedSource) Type() string {
	return TypeMailReceived
}

func (s *MailReceivedSource) Poll(ctx context.Context, since time.Time) ([]Item, error) {
	messages, err := s.lister.ListMessagesAfter(ctx, since, s.query)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(messages))
	for _, msg := range messages {
		items = append(items, Item{
			ID:        msg.ID,
			Timestamp: msg.InternalDate,
			Variables: msg.Variables(),
		})
	}
	return items, nil
}

// SheetModifiedSource fires when spreadsheets are modified. Detection goes
// through Drive file metadata, so the item identifies one modification of
// one spreadsheet and the same spreadsheet fires again on later changes.
type SheetModifiedSource struct {
	lister       FileLister
	spreadsheets map[string]bool
}

// NewSheetModifiedSource creates a source watching spreadsheets. An empty
// ID list watches all spreadsheets the account can see.
func NewSheetModifiedSource(lister FileLister, spreadsheetIDs []string) *SheetModifiedSource {
	var ids map[string]bool
	if len(spreadsheetIDs) > 0 {
		ids = make(map[string]bool, len(spreadsheetIDs))
		for _, id := range spreadsheetIDs {
			ids[id] = true
		}
	}
	return &SheetModifiedSource{lister: lister, spreadsheets: ids}
}

func (s *SheetModifiedSource) Type() string {
	return TypeSheetModified
}

func (s *SheetModifiedSource) Poll(ctx context.Context, since time.Time) ([]Item, error) {
	query := fmt.Sprintf("mimeType='%s'", drive.SpreadsheetMimeType)
	files, err := s.lister.ListFilesModifiedSince(ctx, since, query)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(files))
	for _, file := range files {
		if s.spreadsheets != nil && !s.spreadsheets[file.ID] {
			continue
		}
		vars := file.Variables()
		vars["spreadsheet_id"] = file.ID
		items = append(items, Item{
			// Include the modification time so a later change to the
			// same spreadsheet is a new item.
			ID:        fmt.Sprintf("%s@%d", file.ID, file.ModifiedTime.UnixMilli()),
			Timestamp: file.ModifiedTime,
			Variables: vars,
		})
	}
	return items, nil
}

// NewSource builds the source for a validated trigger config from the
// given service clients.
func NewSource(cfg *TriggerConfig, calendarClient *calendar.Client, driveClient *drive.Client, gmailClient *gmail.Client) (Source, error) {
	switch cfg.Type {
	case TypeEventCreated:
		if calendarClient == nil {
			return nil, fmt.Errorf("trigger %s: calendar client is not available", cfg.Name)
		}
		return NewEventCreatedSource(calendarClient, cfg.CalendarID), nil
	case TypeFileCreated:
		if driveClient == nil {
			return nil, fmt.Errorf("trigger %s: drive client is not available", cfg.Name)
		}
		return NewFileCreatedSource(driveClient, cfg.Query), nil
	case TypeMailReceived:
		if gmailClient == nil {
			return nil, fmt.Errorf("trigger %s: gmail client is not available", cfg.Name)
		}
		return NewMailReceivedSource(gmailClient, cfg.Query), nil
	case TypeSheetModified:
		if driveClient == nil {
			return nil, fmt.Errorf("trigger %s: drive client is not available", cfg.Name)
		}
		return NewSheetModifiedSource(driveClient, cfg.Spreadsheets), nil
	default:
		return nil, fmt.Errorf("trigger %s: unknown type %q", cfg.Name, cfg.Type)
	}
}
