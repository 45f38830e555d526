package tasks

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/server"
)

func TestRegisterAll(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), slog.Default())
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}

	registry := engine.NewRegistry()
	if err := RegisterAll(registry, sc); err != nil {
		t.Fatalf("RegisterAll() error: %v", err)
	}

	names := registry.Names()
	if len(names) == 0 {
		t.Fatal("no tasks registered")
	}

	// Every service must contribute at least one task
	services := []string{"calendar.", "drive.", "sheets.", "gmail.", "chat."}
	for _, prefix := range services {
		found := false
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no tasks registered with prefix %q", prefix)
		}
	}

	// Sanity check a few well-known names
	for _, name := range []string{"calendar.create_event", "drive.upload", "sheets.read_range", "gmail.send", "chat.post_webhook"} {
		if _, ok := registry.Get(name); !ok {
			t.Errorf("task %q not registered", name)
		}
	}
}
