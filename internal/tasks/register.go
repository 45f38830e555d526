// Package tasks wires every service task package into an engine registry.
package tasks

import (
	"fmt"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/calendar_tasks"
	"github.com/teemow/flowspace/internal/tasks/chat_tasks"
	"github.com/teemow/flowspace/internal/tasks/drive_tasks"
	"github.com/teemow/flowspace/internal/tasks/gmail_tasks"
	"github.com/teemow/flowspace/internal/tasks/sheets_tasks"
)

// RegisterAll registers the tasks of every Google service package.
func RegisterAll(registry *engine.Registry, sc *server.ServerContext) error {
	registrations := []struct {
		name     string
		register func(*engine.Registry, *server.ServerContext) error
	}{
		{"calendar", calendar_tasks.Register},
		{"drive", drive_tasks.Register},
		{"sheets", sheets_tasks.Register},
		{"gmail", gmail_tasks.Register},
		{"chat", chat_tasks.Register},
	}

	for _, r := range registrations {
		if err := r.register(registry, sc); err != nil {
			return fmt.Errorf("failed to register %s tasks: %w", r.name, err)
		}
	}
	return nil
}
