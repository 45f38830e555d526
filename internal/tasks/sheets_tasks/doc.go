// Package sheets_tasks provides workflow tasks for Google Sheets operations.
//
// Range data can be exchanged in three formats: a plain two dimensional
// values array, CSV text, or JSON row objects keyed by the header row. The
// format parameter of each task selects the encoding on both read and write.
package sheets_tasks
