// Package chat_tasks provides workflow tasks for posting messages to Google
// Chat spaces via incoming webhooks. No OAuth credentials are involved; the
// webhook URL itself carries the authorization.
package chat_tasks
