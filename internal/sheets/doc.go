// Package sheets provides a Google Sheets API client for range operations.
//
// The client reads, writes, appends and clears ranges in A1 notation and
// retrieves spreadsheet metadata. Range data moves in and out of tasks in
// one of three formats, selected per task input: a plain two dimensional
// string array, CSV text, or JSON row objects keyed by the header row.
//
// Clients are created per account with NewClientForAccount and authenticate
// via the OAuth tokens managed by the internal/google package.
package sheets
