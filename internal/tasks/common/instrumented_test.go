package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/instrumentation"
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

func TestInstrumentedTask_Passthrough(t *testing.T) {
	sc := newTestServerContext(t)

	called := false
	fn := func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		called = true
		return engine.Output{"result": "ok"}, nil
	}

	wrapped := InstrumentedTask("gmail.send", "gmail", "send", sc, fn)

	out, err := wrapped(context.Background(), nil, engine.Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("wrapped task was not called")
	}
	if out["result"] != "ok" {
		t.Errorf("output = %v, expected result=ok", out)
	}
}

func TestInstrumentedTask_WithAuditLogger(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetInstrumentation(nil, instrumentation.NewAuditLogger(slog.Default()))

	exec := engine.NewExecution("test-flow", "work", nil)
	fn := func(ctx context.Context, e *engine.Execution, in engine.Input) (engine.Output, error) {
		return engine.Output{"n": 1}, nil
	}

	wrapped := InstrumentedTask("drive.list", "drive", "list", sc, fn)

	out, err := wrapped(context.Background(), exec, engine.Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["n"] != 1 {
		t.Errorf("output = %v, expected n=1", out)
	}
}

func TestInstrumentedTask_ErrorPassesThrough(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetInstrumentation(nil, instrumentation.NewAuditLogger(slog.Default()))

	taskErr := errors.New("quota exceeded")
	fn := func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		return nil, taskErr
	}

	wrapped := InstrumentedTask("sheets.read_range", "sheets", "read", sc, fn)

	_, err := wrapped(context.Background(), nil, engine.Input{"account": "work"})
	if !errors.Is(err, taskErr) {
		t.Errorf("expected original error, got %v", err)
	}
}
