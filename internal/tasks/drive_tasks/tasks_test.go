package drive_tasks

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), slog.Default())
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	return sc
}

func TestRegister(t *testing.T) {
	registry := engine.NewRegistry()
	sc := newTestServerContext(t)

	if err := Register(registry, sc); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	expected := []string{
		"drive.create_folder",
		"drive.delete",
		"drive.download",
		"drive.export",
		"drive.get",
		"drive.list",
		"drive.upload",
	}
	names := registry.Names()
	if len(names) != len(expected) {
		t.Fatalf("registered %d tasks, expected %d: %v", len(names), len(expected), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("names[%d] = %q, expected %q", i, names[i], name)
		}
	}
}

func TestUploadFile_MissingName(t *testing.T) {
	sc := newTestServerContext(t)
	fn := uploadFile(sc)

	_, err := fn(context.Background(), nil, engine.Input{"content": "hello"})
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestDownloadFile_MissingFileID(t *testing.T) {
	sc := newTestServerContext(t)
	fn := downloadFile(sc)

	_, err := fn(context.Background(), nil, engine.Input{})
	if err == nil {
		t.Error("expected error for missing file_id")
	}
}

func TestExportFile_MissingMimeType(t *testing.T) {
	sc := newTestServerContext(t)
	fn := exportFile(sc)

	_, err := fn(context.Background(), nil, engine.Input{"file_id": "abc"})
	if err == nil {
		t.Error("expected error for missing mime_type")
	}
}

func TestReadInline(t *testing.T) {
	content, err := readInline(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "hello world" {
		t.Errorf("content = %q", content)
	}
}

func TestReadInline_TooLarge(t *testing.T) {
	huge := strings.NewReader(strings.Repeat("x", maxInlineContent+1))
	if _, err := readInline(huge); err == nil {
		t.Error("expected error for oversized content")
	}
}
