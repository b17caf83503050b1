package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func TestDispatcher_Handler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Command
	d.Register("area", func(_ context.Context, c Command) error {
		got = c
		return nil
	})

	err := d.Dispatch(context.Background(), Command{Name: "area", Args: []string{"trace.txt"}})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got.Name != "area" || len(got.Args) != 1 || got.Args[0] != "trace.txt" {
		t.Errorf("handler got %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestDispatcher_CaseInsensitive(t *testing.T) {
	d, _ := newTestDispatcher(t)

	called := false
	d.Register("List", func(context.Context, Command) error {
		called = true
		return nil
	})

	if err := d.Dispatch(context.Background(), Command{Name: "LIST"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
	if !d.HasHandler("list") {
		t.Error("expected HasHandler to match lower case")
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	err := d.Dispatch(context.Background(), Command{Name: "measure"})

	if !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
}

func TestDispatcher_Args(t *testing.T) {
	d, _ := newTestDispatcher(t)

	calls := 0
	d.Register("save", func(context.Context, Command) error {
		calls++
		return nil
	}, Args(2, "save <name> <trace>"))

	err := d.Dispatch(context.Background(), Command{Name: "save", Args: []string{"north"}})
	if !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "save <name> <trace>") {
		t.Errorf("expected synopsis in error, got %v", err)
	}

	if err := d.Dispatch(context.Background(), Command{Name: "save", Args: []string{"north", "t.txt"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDispatcher_HandlerError(t *testing.T) {
	d, _ := newTestDispatcher(t)

	want := errors.New("boom")
	d.Register("fail", func(context.Context, Command) error {
		return want
	})

	if err := d.Dispatch(context.Background(), Command{Name: "fail"}); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("ok", func(context.Context, Command) error { return nil }, Logged())
	d.Register("fail", func(context.Context, Command) error { return errors.New("boom") }, Logged())

	_ = d.Dispatch(context.Background(), Command{Name: "ok"})
	_ = d.Dispatch(context.Background(), Command{Name: "fail"})

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) != 4 {
		t.Fatalf("expected 4 log messages, got %d: %v", len(logger.messages), logger.messages)
	}
	if !strings.HasPrefix(logger.messages[1], "DEBUG: command complete") {
		t.Errorf("unexpected message %q", logger.messages[1])
	}
	if !strings.HasPrefix(logger.messages[3], "ERROR: command failed") {
		t.Errorf("unexpected message %q", logger.messages[3])
	}
}

func TestDispatcher_LoggedChecksArgsFirst(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("show", func(context.Context, Command) error { return nil }, Args(1, "show <id>"), Logged())

	err := d.Dispatch(context.Background(), Command{Name: "show"})
	if !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.messages) != 2 || !strings.HasPrefix(logger.messages[1], "ERROR: command failed") {
		t.Errorf("unexpected log messages: %v", logger.messages)
	}
}

func TestDispatcher_Commands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	noop := func(context.Context, Command) error { return nil }
	d.Register("show", noop)
	d.Register("area", noop)
	d.Register("list", noop)

	got := d.Commands()
	want := []string{"area", "list", "show"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
