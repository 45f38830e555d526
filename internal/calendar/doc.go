// Package calendar provides a client for the Google Calendar API.
//
// The client covers the event operations exposed as flowspace tasks
// (create, get, list, update, delete) and the created-since listing the
// event trigger polls with.
package calendar
