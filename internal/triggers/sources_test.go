package triggers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/flowspace/internal/calendar"
	"github.com/teemow/flowspace/internal/drive"
	"github.com/teemow/flowspace/internal/gmail"
)

type fakeEventLister struct {
	events     []calendar.EventSummary
	calendarID string
	cutoff     time.Time
}

func (f *fakeEventLister) ListEventsCreatedSince(ctx context.Context, calendarID string, cutoff time.Time) ([]calendar.EventSummary, error) {
	f.calendarID = calendarID
	f.cutoff = cutoff
	return f.events, nil
}

type fakeFileLister struct {
	created  []*drive.FileInfo
	modified []*drive.FileInfo
	query    string
}

func (f *fakeFileLister) ListFilesCreatedSince(ctx context.Context, cutoff time.Time, extraQuery string) ([]*drive.FileInfo, error) {
	f.query = extraQuery
	return f.created, nil
}

func (f *fakeFileLister) ListFilesModifiedSince(ctx context.Context, cutoff time.Time, extraQuery string) ([]*drive.FileInfo, error) {
	f.query = extraQuery
	return f.modified, nil
}

type fakeMailLister struct {
	messages []*gmail.MessageSummary
	query    string
}

func (f *fakeMailLister) ListMessagesAfter(ctx context.Context, cutoff time.Time, extraQuery string) ([]*gmail.MessageSummary, error) {
	f.query = extraQuery
	return f.messages, nil
}

func TestEventCreatedSource(t *testing.T) {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	lister := &fakeEventLister{
		events: []calendar.EventSummary{
			{ID: "ev1", Summary: "Standup", Created: created},
		},
	}

	source := NewEventCreatedSource(lister, "")
	assert.Equal(t, TypeEventCreated, source.Type())

	items, err := source.Poll(context.Background(), created.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "primary", lister.calendarID, "empty calendar defaults to primary")
	assert.Equal(t, "ev1", items[0].ID)
	assert.Equal(t, created, items[0].Timestamp)
	assert.Equal(t, "Standup", items[0].Variables["summary"])
	assert.Equal(t, "primary", items[0].Variables["calendar_id"])
}

func TestFileCreatedSource(t *testing.T) {
	created := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	lister := &fakeFileLister{
		created: []*drive.FileInfo{
			{ID: "f1", Name: "invoice.pdf", CreatedTime: created},
		},
	}

	source := NewFileCreatedSource(lister, "'folder1' in parents")
	assert.Equal(t, TypeFileCreated, source.Type())

	items, err := source.Poll(context.Background(), created.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "'folder1' in parents", lister.query)
	assert.Equal(t, "f1", items[0].ID)
	assert.Equal(t, "invoice.pdf", items[0].Variables["name"])
}

func TestMailReceivedSource(t *testing.T) {
	received := time.Date(2026, 4, 3, 11, 0, 0, 0, time.UTC)
	lister := &fakeMailLister{
		messages: []*gmail.MessageSummary{
			{ID: "m1", Subject: "Order", InternalDate: received},
		},
	}

	source := NewMailReceivedSource(lister, "label:orders")
	assert.Equal(t, TypeMailReceived, source.Type())

	items, err := source.Poll(context.Background(), received.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "label:orders", lister.query)
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, "Order", items[0].Variables["subject"])
}

func TestSheetModifiedSource(t *testing.T) {
	modified := time.Date(2026, 4, 4, 12, 0, 0, 0, time.UTC)
	lister := &fakeFileLister{
		modified: []*drive.FileInfo{
			{ID: "ss1", Name: "Budget", ModifiedTime: modified},
			{ID: "other", Name: "Notes", ModifiedTime: modified},
		},
	}

	source := NewSheetModifiedSource(lister, []string{"ss1"})
	assert.Equal(t, TypeSheetModified, source.Type())

	items, err := source.Poll(context.Background(), modified.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1, "files outside the watch list are skipped")

	assert.Contains(t, lister.query, drive.SpreadsheetMimeType)
	assert.Equal(t, "ss1", items[0].Variables["spreadsheet_id"])
	assert.Equal(t, modified, items[0].Timestamp)

	// Same spreadsheet, later modification, new item ID
	later := modified.Add(time.Minute)
	lister.modified[0].ModifiedTime = later
	again, err := source.Poll(context.Background(), modified)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.NotEqual(t, items[0].ID, again[0].ID)
}

func TestSheetModifiedSourceUnrestricted(t *testing.T) {
	modified := time.Date(2026, 4, 4, 12, 0, 0, 0, time.UTC)
	lister := &fakeFileLister{
		modified: []*drive.FileInfo{
			{ID: "ss1", ModifiedTime: modified},
			{ID: "ss2", ModifiedTime: modified},
		},
	}

	source := NewSheetModifiedSource(lister, nil)
	items, err := source.Poll(context.Background(), modified.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNewSourceUnknownType(t *testing.T) {
	_, err := NewSource(&TriggerConfig{Name: "t", Type: "nope"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestNewSourceMissingClient(t *testing.T) {
	for _, typ := range []string{TypeEventCreated, TypeFileCreated, TypeMailReceived, TypeSheetModified} {
		_, err := NewSource(&TriggerConfig{Name: "t", Type: typ}, nil, nil, nil)
		assert.Error(t, err, typ)
	}
}
