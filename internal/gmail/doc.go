// Package gmail provides a Gmail API client for listing, reading and
// sending mail.
//
// Listing uses Gmail search queries and pages through results up to a
// caller supplied limit. ListMessagesAfter returns messages received after
// a cutoff ordered oldest first, which the mail-received trigger uses for
// change detection. Outgoing mail is built as an RFC 2822 message with
// RFC 2047 encoded subjects and sent base64url encoded, the form the Gmail
// API expects.
//
// Clients are created per account with NewClientForAccount and authenticate
// via the OAuth tokens managed by the internal/google package.
package gmail
