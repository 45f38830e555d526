package calendar_tasks

import (
	"fmt"

	"github.com/teemow/flowspace/internal/calendar"
	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/google"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/common"
)

// getCalendarClient retrieves or creates a calendar client for the specified account
func getCalendarClient(account string, sc *server.ServerContext) (*calendar.Client, error) {
	client := sc.CalendarClientForAccount(account)
	if client == nil {
		if !calendar.HasTokenForAccount(account) {
			authURL := google.GetAuthURLForAccount(account)
			return nil, fmt.Errorf("no Google OAuth token for account %q; authorize via %s and run 'flowspace auth' with the code", account, authURL)
		}
		return nil, fmt.Errorf("failed to create Calendar client for account %s", account)
	}
	return client, nil
}

// Register adds all Calendar tasks to the registry.
func Register(registry *engine.Registry, sc *server.ServerContext) error {
	tasks := []engine.Task{
		{
			Name:        "calendar.list_events",
			Description: "List or search calendar events within a time range",
			Func:        common.InstrumentedTask("calendar.list_events", instrumentation.ServiceCalendar, instrumentation.OperationList, sc, listEvents(sc)),
		},
		{
			Name:        "calendar.get_event",
			Description: "Get details of a specific calendar event",
			Func:        common.InstrumentedTask("calendar.get_event", instrumentation.ServiceCalendar, instrumentation.OperationGet, sc, getEvent(sc)),
		},
		{
			Name:        "calendar.create_event",
			Description: "Create a new calendar event",
			Func:        common.InstrumentedTask("calendar.create_event", instrumentation.ServiceCalendar, instrumentation.OperationCreate, sc, createEvent(sc)),
		},
		{
			Name:        "calendar.update_event",
			Description: "Update an existing calendar event",
			Func:        common.InstrumentedTask("calendar.update_event", instrumentation.ServiceCalendar, instrumentation.OperationUpdate, sc, updateEvent(sc)),
		},
		{
			Name:        "calendar.delete_event",
			Description: "Delete a calendar event",
			Func:        common.InstrumentedTask("calendar.delete_event", instrumentation.ServiceCalendar, instrumentation.OperationDelete, sc, deleteEvent(sc)),
		},
		{
			Name:        "calendar.list_calendars",
			Description: "List all calendars accessible to the account",
			Func:        common.InstrumentedTask("calendar.list_calendars", instrumentation.ServiceCalendar, instrumentation.OperationList, sc, listCalendars(sc)),
		},
	}

	for _, task := range tasks {
		if err := registry.Register(task); err != nil {
			return fmt.Errorf("failed to register calendar tasks: %w", err)
		}
	}
	return nil
}
