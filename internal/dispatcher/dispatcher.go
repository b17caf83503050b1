// Package dispatcher routes CLI commands to their handlers.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrUsage is wrapped by errors for unknown commands and wrong argument counts.
var ErrUsage = errors.New("usage")

// Command is one invocation: the command name and its positional arguments.
type Command struct {
	Name      string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc runs a command.
type HandlerFunc func(context.Context, Command) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	nargs    int
	synopsis string
	logged   bool
}

// Args requires exactly n arguments; synopsis is shown when the count is wrong.
func Args(n int, synopsis string) Option {
	return func(c *config) {
		c.nargs = n
		c.synopsis = synopsis
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes commands to registered handlers. Names are case-insensitive.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	processed metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}

	m := meter()

	var err error

	d.processed, err = m.Int64Counter(
		"dispatcher.commands.processed",
		metric.WithDescription("Total commands run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.commands.failed",
		metric.WithDescription("Total commands that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.duration, err = m.Float64Histogram(
		"dispatcher.commands.duration",
		metric.WithDescription("Command run time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher) Register(name string, h HandlerFunc, opts ...Option) {
	cfg := &config{nargs: -1}
	for _, opt := range opts {
		opt(cfg)
	}

	name = strings.ToLower(name)
	handler := h

	if cfg.nargs >= 0 {
		handler = withArgs(cfg.nargs, cfg.synopsis, handler)
	}

	if cfg.logged {
		handler = d.withLogging(name, handler)
	}

	d.handlers[name] = d.withMetrics(name, handler)
}

// Dispatch routes a command to its registered handler.
func (d *Dispatcher) Dispatch(ctx context.Context, c Command) error {
	name := strings.ToLower(c.Name)
	h, ok := d.handlers[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, c.Name)
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	c.Name = name
	return h(ctx, c)
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(name string) bool {
	_, ok := d.handlers[strings.ToLower(name)]
	return ok
}

// Commands returns the registered command names in sorted order.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func withArgs(n int, synopsis string, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, c Command) error {
		if len(c.Args) != n {
			return fmt.Errorf("%w: %s", ErrUsage, synopsis)
		}
		return h(ctx, c)
	}
}

func (d *Dispatcher) withMetrics(name string, h HandlerFunc) HandlerFunc {
	attrs := metric.WithAttributes(attribute.String("command", name))
	return func(ctx context.Context, c Command) error {
		err := h(ctx, c)
		d.processed.Add(ctx, 1, attrs)
		d.duration.Record(ctx, time.Since(c.Timestamp).Seconds(), attrs)
		if err != nil {
			d.failed.Add(ctx, 1, attrs)
		}
		return err
	}
}

func (d *Dispatcher) withLogging(name string, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, c Command) error {
		start := time.Now()
		d.logger.Debug("handling command", "command", name, "args", len(c.Args))

		err := h(ctx, c)

		if err != nil {
			d.logger.Error("command failed", "command", name, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("command complete", "command", name, "duration", time.Since(start))
		}

		return err
	}
}
