// Package google provides OAuth2 authentication and token management for Google APIs.
//
// Tokens are stored per account in the user cache directory. The TokenProvider
// interface allows different token sources to be plugged in, so a workflow
// engine that manages credentials itself can hand tokens to the service
// clients without touching the filesystem.
package google
