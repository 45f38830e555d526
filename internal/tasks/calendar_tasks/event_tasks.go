package calendar_tasks

import (
	"context"
	"fmt"

	"github.com/teemow/flowspace/internal/calendar"
	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/common"
)

func listEvents(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)
		calendarID := common.StringOr(in, "calendar_id", "primary")

		timeMin, err := common.RequiredTime(in, "time_min")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		timeMax, err := common.RequiredTime(in, "time_max")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getCalendarClient(account, sc)
		if err != nil {
			return nil, err
		}

		events, err := client.ListEvents(ctx, calendarID, calendar.ListOptions{
			TimeMin:    timeMin,
			TimeMax:    timeMax,
			Query:      common.String(in, "query"),
			MaxResults: common.Int64(in, "max_results", 0),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		items := make([]map[string]any, len(events))
		for i, event := range events {
			items[i] = event.Variables()
		}
		return engine.Output{"events": items, "count": len(items)}, nil
	}
}

func getEvent(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)
		calendarID := common.StringOr(in, "calendar_id", "primary")

		eventID, err := common.RequiredString(in, "event_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getCalendarClient(account, sc)
		if err != nil {
			return nil, err
		}

		event, err := client.GetEvent(ctx, calendarID, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to get event: %w", err)
		}
		return engine.Output(event.Variables()), nil
	}
}

func createEvent(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)
		calendarID := common.StringOr(in, "calendar_id", "primary")

		input, err := eventInputFromTask(in, true)
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getCalendarClient(account, sc)
		if err != nil {
			return nil, err
		}

		event, err := client.CreateEvent(ctx, calendarID, input)
		if err != nil {
			return nil, fmt.Errorf("failed to create event: %w", err)
		}
		return engine.Output(event.Variables()), nil
	}
}

func updateEvent(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)
		calendarID := common.StringOr(in, "calendar_id", "primary")

		eventID, err := common.RequiredString(in, "event_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		input, err := eventInputFromTask(in, false)
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getCalendarClient(account, sc)
		if err != nil {
			return nil, err
		}

		event, err := client.UpdateEvent(ctx, calendarID, eventID, input)
		if err != nil {
			return nil, fmt.Errorf("failed to update event: %w", err)
		}
		return engine.Output(event.Variables()), nil
	}
}

func deleteEvent(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)
		calendarID := common.StringOr(in, "calendar_id", "primary")

		eventID, err := common.RequiredString(in, "event_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getCalendarClient(account, sc)
		if err != nil {
			return nil, err
		}

		if err := client.DeleteEvent(ctx, calendarID, eventID); err != nil {
			return nil, fmt.Errorf("failed to delete event: %w", err)
		}
		return engine.Output{"event_id": eventID, "deleted": true}, nil
	}
}

func listCalendars(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		client, err := getCalendarClient(account, sc)
		if err != nil {
			return nil, err
		}

		calendars, err := client.ListCalendars(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list calendars: %w", err)
		}

		items := make([]map[string]any, len(calendars))
		for i, cal := range calendars {
			items[i] = map[string]any{
				"calendar_id": cal.ID,
				"summary":     cal.Summary,
				"time_zone":   cal.TimeZone,
				"primary":     cal.Primary,
				"access_role": cal.AccessRole,
			}
		}
		return engine.Output{"calendars": items, "count": len(items)}, nil
	}
}

// eventInputFromTask builds an EventInput from task parameters. For create,
// summary, start and end are required; for update every field is optional.
func eventInputFromTask(in engine.Input, require bool) (calendar.EventInput, error) {
	var input calendar.EventInput
	var err error

	input.Summary = common.String(in, "summary")
	if require && input.Summary == "" {
		return input, fmt.Errorf("summary is required")
	}

	if require {
		input.Start, err = common.RequiredTime(in, "start")
	} else {
		input.Start, err = common.Time(in, "start")
	}
	if err != nil {
		return input, err
	}

	if require {
		input.End, err = common.RequiredTime(in, "end")
	} else {
		input.End, err = common.Time(in, "end")
	}
	if err != nil {
		return input, err
	}

	if !input.Start.IsZero() && !input.End.IsZero() && !input.End.After(input.Start) {
		return input, fmt.Errorf("end must be after start")
	}

	input.Description = common.String(in, "description")
	input.Location = common.String(in, "location")
	input.TimeZone = common.String(in, "time_zone")
	input.AllDay = common.Bool(in, "all_day")
	input.Attendees = common.Strings(in, "attendees")
	input.Recurrence = common.Strings(in, "recurrence")
	input.SendUpdates = common.String(in, "send_updates")
	input.WithMeet = common.Bool(in, "with_meet")

	return input, nil
}
