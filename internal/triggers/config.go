package triggers

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

// Trigger type names accepted in configuration.
const (
	TypeEventCreated  = "calendar.event_created"
	TypeFileCreated   = "drive.file_created"
	TypeMailReceived  = "gmail.mail_received"
	TypeSheetModified = "sheets.sheet_modified"
)

var knownTypes = map[string]bool{
	TypeEventCreated:  true,
	TypeFileCreated:   true,
	TypeMailReceived:  true,
	TypeSheetModified: true,
}

// Duration wraps time.Duration so TOML values like "90s" parse directly.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the TOML trigger configuration file.
type Config struct {
	Defaults DefaultsConfig  `toml:"defaults"`
	Triggers []TriggerConfig `toml:"triggers"`
}

// DefaultsConfig holds values applied to triggers that leave them unset.
type DefaultsConfig struct {
	Account              string   `toml:"account"`
	Interval             Duration `toml:"interval"`
	MaxConsecutiveErrors int      `toml:"max_consecutive_errors"`
	RateLimit            float64  `toml:"rate_limit"`
}

// TriggerConfig describes one polling trigger and the task steps it runs
// for every event.
type TriggerConfig struct {
	Name     string   `toml:"name"`
	Type     string   `toml:"type"`
	Account  string   `toml:"account"`
	Interval Duration `toml:"interval"`
	Cron     string   `toml:"cron"`

	// CalendarID scopes calendar.event_created, defaults to "primary"
	CalendarID string `toml:"calendar_id"`

	// Query narrows drive.file_created (Drive query expression) and
	// gmail.mail_received (Gmail search query)
	Query string `toml:"query"`

	// Spreadsheets restricts sheets.sheet_modified to specific
	// spreadsheet IDs. Empty means all spreadsheets.
	Spreadsheets []string `toml:"spreadsheets"`

	MaxConsecutiveErrors int     `toml:"max_consecutive_errors"`
	RateLimit            float64 `toml:"rate_limit"`

	Steps []StepConfig `toml:"steps"`
}

// StepConfig is one task invocation run for each event. Input values are
// templates rendered against the execution variables.
type StepConfig struct {
	Task  string         `toml:"task"`
	Input map[string]any `toml:"input"`
}

// LoadConfig reads and validates a TOML trigger configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trigger config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse trigger config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trigger config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Defaults.Account == "" {
		c.Defaults.Account = "default"
	}
	if c.Defaults.Interval <= 0 {
		c.Defaults.Interval = Duration(time.Minute)
	}
	if c.Defaults.MaxConsecutiveErrors <= 0 {
		c.Defaults.MaxConsecutiveErrors = 5
	}

	for i := range c.Triggers {
		t := &c.Triggers[i]
		if t.Account == "" {
			t.Account = c.Defaults.Account
		}
		if t.Interval <= 0 && t.Cron == "" {
			t.Interval = c.Defaults.Interval
		}
		if t.MaxConsecutiveErrors <= 0 {
			t.MaxConsecutiveErrors = c.Defaults.MaxConsecutiveErrors
		}
		if t.RateLimit <= 0 {
			t.RateLimit = c.Defaults.RateLimit
		}
		if t.Type == TypeEventCreated && t.CalendarID == "" {
			t.CalendarID = "primary"
		}
	}
}

// Validate checks the configuration for errors that would only surface at
// runtime otherwise.
func (c *Config) Validate() error {
	names := make(map[string]bool, len(c.Triggers))
	for i := range c.Triggers {
		t := &c.Triggers[i]
		if t.Name == "" {
			return fmt.Errorf("trigger %d: name is required", i)
		}
		if names[t.Name] {
			return fmt.Errorf("trigger %s: duplicate name", t.Name)
		}
		names[t.Name] = true

		if !knownTypes[t.Type] {
			return fmt.Errorf("trigger %s: unknown type %q", t.Name, t.Type)
		}
		if t.Cron != "" {
			if _, err := cron.ParseStandard(t.Cron); err != nil {
				return fmt.Errorf("trigger %s: invalid cron expression %q: %w", t.Name, t.Cron, err)
			}
		}
		if t.Cron == "" && t.Interval <= 0 {
			return fmt.Errorf("trigger %s: interval or cron is required", t.Name)
		}
		for j, step := range t.Steps {
			if step.Task == "" {
				return fmt.Errorf("trigger %s: step %d: task is required", t.Name, j)
			}
		}
	}
	return nil
}

// PollerOptionsFor builds poller options from a validated trigger config.
func (c *Config) PollerOptionsFor(t *TriggerConfig) PollerOptions {
	return PollerOptions{
		Name:                 t.Name,
		Account:              t.Account,
		Interval:             t.Interval.Std(),
		Cron:                 t.Cron,
		MaxConsecutiveErrors: t.MaxConsecutiveErrors,
		RateLimit:            rate.Limit(t.RateLimit),
	}
}
