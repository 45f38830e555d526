// Package gmail_tasks provides workflow tasks for Gmail operations:
// listing messages by search query, fetching a message with its body, and
// sending or replying to mail.
package gmail_tasks
