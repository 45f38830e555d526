// Package triggers implements polling based change detection against
// Google Workspace APIs.
//
// A Source polls one API for changes after a time cutoff: calendar events
// created, Drive files created, mail received, or spreadsheets modified.
// A Poller drives a source on a fixed interval or cron schedule, tracks a
// watermark that never regresses, deduplicates recently delivered items and
// hands new items to a Handler. Delivery is at least once: the watermark
// only advances past an item once the handler has accepted it, so a failed
// delivery repeats on the next poll.
//
// The Manager groups pollers, starts and stops them together and exposes
// their health. Triggers are declared in a TOML configuration file, see
// LoadConfig.
package triggers
