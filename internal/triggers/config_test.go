package triggers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triggers.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[defaults]
account = "work"
interval = "90s"
max_consecutive_errors = 3
rate_limit = 0.5

[[triggers]]
name = "new-invoices"
type = "drive.file_created"
query = "'folder123' in parents"
interval = "2m"

  [[triggers.steps]]
  task = "chat.post_webhook"
    [triggers.steps.input]
    webhook_url = "https://chat.googleapis.com/v1/spaces/AAAA/messages?key=k"
    text = "New file: {{ .name }}"

[[triggers]]
name = "standup-created"
type = "calendar.event_created"
account = "personal"
cron = "*/5 * * * *"

[[triggers]]
name = "budget-changed"
type = "sheets.sheet_modified"
spreadsheets = ["ss1", "ss2"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Triggers, 3)

	invoices := cfg.Triggers[0]
	assert.Equal(t, "new-invoices", invoices.Name)
	assert.Equal(t, TypeFileCreated, invoices.Type)
	assert.Equal(t, "work", invoices.Account, "defaults.account applied")
	assert.Equal(t, 2*time.Minute, invoices.Interval.Std())
	assert.Equal(t, 3, invoices.MaxConsecutiveErrors)
	assert.Equal(t, 0.5, invoices.RateLimit)
	require.Len(t, invoices.Steps, 1)
	assert.Equal(t, "chat.post_webhook", invoices.Steps[0].Task)
	assert.Equal(t, "New file: {{ .name }}", invoices.Steps[0].Input["text"])

	standup := cfg.Triggers[1]
	assert.Equal(t, "personal", standup.Account)
	assert.Equal(t, "*/5 * * * *", standup.Cron)
	assert.Equal(t, "primary", standup.CalendarID, "calendar_id defaulted")

	budget := cfg.Triggers[2]
	assert.Equal(t, []string{"ss1", "ss2"}, budget.Spreadsheets)
	assert.Equal(t, 90*time.Second, budget.Interval.Std(), "defaults.interval applied")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[[triggers]\nname =")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
[[triggers]]
type = "drive.file_created"
`,
			wantErr: "name is required",
		},
		{
			name: "duplicate name",
			content: `
[[triggers]]
name = "a"
type = "drive.file_created"

[[triggers]]
name = "a"
type = "gmail.mail_received"
`,
			wantErr: "duplicate name",
		},
		{
			name: "unknown type",
			content: `
[[triggers]]
name = "a"
type = "slack.message"
`,
			wantErr: "unknown type",
		},
		{
			name: "invalid cron",
			content: `
[[triggers]]
name = "a"
type = "drive.file_created"
cron = "every day"
`,
			wantErr: "invalid cron expression",
		},
		{
			name: "step without task",
			content: `
[[triggers]]
name = "a"
type = "drive.file_created"

  [[triggers.steps]]
    [triggers.steps.input]
    text = "hi"
`,
			wantErr: "task is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPollerOptionsFor(t *testing.T) {
	path := writeConfig(t, `
[[triggers]]
name = "a"
type = "gmail.mail_received"
interval = "30s"
rate_limit = 2.0
max_consecutive_errors = 7
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	opts := cfg.PollerOptionsFor(&cfg.Triggers[0])
	assert.Equal(t, "a", opts.Name)
	assert.Equal(t, "default", opts.Account)
	assert.Equal(t, 30*time.Second, opts.Interval)
	assert.Equal(t, 7, opts.MaxConsecutiveErrors)
	assert.InDelta(t, 2.0, float64(opts.RateLimit), 0.001)
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1h30m")))
	assert.Equal(t, 90*time.Minute, d.Std())

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
