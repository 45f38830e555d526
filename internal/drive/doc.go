// Package drive provides a Google Drive API client for file operations.
//
// The client supports uploading, downloading, exporting, listing and
// deleting files as well as folder creation. Listing can be filtered with
// Drive query expressions, and ListFilesCreatedSince returns files created
// after a cutoff ordered by creation time, which the file-created trigger
// uses for change detection.
//
// Clients are created per account with NewClientForAccount and authenticate
// via the OAuth tokens managed by the internal/google package.
package drive
