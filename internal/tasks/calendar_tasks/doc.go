// Package calendar_tasks provides workflow tasks for Google Calendar
// operations.
//
// The tasks cover event listing, retrieval, creation, modification and
// deletion across multiple Google accounts. Each task reads snake_case
// parameters from its rendered input and returns event fields as execution
// variables for downstream flow steps.
package calendar_tasks
