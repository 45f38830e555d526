package sheets_tasks

import (
	"context"
	"log/slog"
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
		"sheets.append_range",
		"sheets.clear_range",
		"sheets.get_spreadsheet",
		"sheets.read_range",
		"sheets.write_range",
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

func TestReadRange_MissingRange(t *testing.T) {
	sc := newTestServerContext(t)
	fn := readRange(sc)

	_, err := fn(context.Background(), nil, engine.Input{"spreadsheet_id": "abc"})
	if err == nil {
		t.Error("expected error for missing range")
	}
}

func TestReadRange_InvalidFormat(t *testing.T) {
	sc := newTestServerContext(t)
	fn := readRange(sc)

	_, err := fn(context.Background(), nil, engine.Input{
		"spreadsheet_id": "abc",
		"range":          "Sheet1!A1:B2",
		"format":         "xml",
	})
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteRange_MissingValues(t *testing.T) {
	sc := newTestServerContext(t)
	fn := writeRange(sc)

	_, err := fn(context.Background(), nil, engine.Input{
		"spreadsheet_id": "abc",
		"range":          "Sheet1!A1",
	})
	if err == nil {
		t.Error("expected error for missing values")
	}
}

func TestWriteRange_InvalidCSV(t *testing.T) {
	sc := newTestServerContext(t)
	fn := writeRange(sc)

	_, err := fn(context.Background(), nil, engine.Input{
		"spreadsheet_id": "abc",
		"range":          "Sheet1!A1",
		"format":         "csv",
		"values":         [][]string{{"not", "a", "string"}},
	})
	if err == nil {
		t.Error("expected error for non-string CSV input")
	}
}

func TestWriteRange_InvalidInputOption(t *testing.T) {
	sc := newTestServerContext(t)
	fn := writeRange(sc)

	_, err := fn(context.Background(), nil, engine.Input{
		"spreadsheet_id": "abc",
		"range":          "Sheet1!A1",
		"values":         [][]string{{"x"}},
		"input_option":   "formula",
	})
	if err == nil {
		t.Error("expected error for unsupported input option")
	}
}

func TestAppendRange_EmptyRows(t *testing.T) {
	sc := newTestServerContext(t)
	fn := appendRange(sc)

	_, err := fn(context.Background(), nil, engine.Input{
		"spreadsheet_id": "abc",
		"range":          "Sheet1!A1",
		"values":         []any{},
	})
	if err == nil {
		t.Error("expected error for empty rows")
	}
}
