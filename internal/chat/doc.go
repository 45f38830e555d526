// Package chat posts messages to Google Chat spaces through incoming
// webhooks.
//
// A webhook URL carries its own credentials, so the client needs no OAuth
// token. Messages can be plain text, threaded via a caller chosen thread
// key, or simple cards. Webhook URLs are validated against the
// chat.googleapis.com space webhook shape before use.
package chat
