package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldmeasure/fieldpatch/internal/area"
	"github.com/fieldmeasure/fieldpatch/internal/config"
	"github.com/fieldmeasure/fieldpatch/internal/influx"
	"github.com/fieldmeasure/fieldpatch/internal/logging"
	intOtel "github.com/fieldmeasure/fieldpatch/internal/otel"
	"github.com/fieldmeasure/fieldpatch/internal/session"
	"github.com/fieldmeasure/fieldpatch/internal/storage"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app holds what a single command needs. Storage and InfluxDB are opened on first use.
type app struct {
	out   io.Writer
	start time.Time
	runID string

	logs    *logging.SlogManager
	log     *slog.Logger
	logFile *os.File

	metrics     *intOtel.Provider
	metricsFile *os.File

	engine area.Options
	store  storage.Backend
	influx *influx.Manager
}

func newApp(configDir string, flags *pflag.FlagSet, out io.Writer) (*app, error) {
	a := &app{out: out, start: time.Now(), runID: uuid.NewString()}

	cfgErr := config.Load(configDir)
	if err := viper.BindPFlag("logLevel", flags.Lookup("log-level")); err != nil {
		return nil, fmt.Errorf("failed to bind log-level flag: %w", err)
	}

	a.setupLogging()
	if cfgErr != nil {
		a.log.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		a.log.Info("Loaded config", "dir", configDir)
	}

	if err := a.setupMetrics(); err != nil {
		a.close()
		return nil, err
	}

	ec := config.GetEngineConfig()
	a.engine = area.Options{
		CheckClosingEdge:    ec.CheckClosingEdge,
		FullContiguityCheck: ec.FullContiguityCheck,
	}
	return a, nil
}

// setupLogging writes to a per-run file in logsDir, falling back to the console when the file
// cannot be created.
func (a *app) setupLogging() {
	a.logs = logging.NewSlogManager()
	logsDir := config.GetString("logsDir")

	var file io.Writer
	if err := os.MkdirAll(logsDir, 0755); err == nil {
		f, err := os.OpenFile(logging.LogFilePath(logsDir, AppName, a.start), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err == nil {
			a.logFile = f
			file = f
		}
	}

	var sinks []io.Writer
	var graylogErr error
	if gc := config.GetGraylogConfig(); gc.Enabled {
		w, err := logging.NewGraylogWriter(gc.Address)
		graylogErr = err
		sinks = append(sinks, w)
	}

	a.logs.Setup(file, config.GetString("logLevel"), sinks...)
	// Graylog receives records from many runs; run correlates them.
	a.log = a.logs.Logger().With("run", a.runID)
	if graylogErr != nil {
		a.log.Warn("Graylog sink disabled", "error", graylogErr)
	}
}

func (a *app) setupMetrics() error {
	oc := config.GetOTelConfig()
	cfg := intOtel.Config{
		Enabled:        oc.Enabled,
		ServiceName:    oc.ServiceName,
		ExportInterval: oc.ExportInterval,
	}
	if oc.Enabled {
		path := filepath.Join(config.GetString("logsDir"),
			fmt.Sprintf("%s.%s.metrics.json", AppName, a.start.Format("20060102_150405")))
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open metrics file: %w", err)
		}
		a.metricsFile = f
		cfg.MetricWriter = f
	}

	p, err := intOtel.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}
	a.metrics = p
	return nil
}

// openStore creates and initializes the configured parcel archive.
func (a *app) openStore() (storage.Backend, error) {
	if a.store != nil {
		return a.store, nil
	}
	sc := config.GetStorageConfig()
	backend, err := storage.NewBackend(sc)
	if err != nil {
		return nil, err
	}
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", sc.Type, err)
	}
	a.log.Info("Storage backend initialized", "type", sc.Type)
	a.store = backend
	return backend, nil
}

// openSink connects to InfluxDB when enabled. A failed connection is logged and leaves the
// parcel archive as the only destination.
func (a *app) openSink(ctx context.Context) session.Sink {
	ic := config.GetInfluxConfig()
	if !ic.Enabled {
		return nil
	}
	m := influx.NewManager(ic, a.log)
	if err := m.Connect(ctx); err != nil {
		a.log.Error("Failed to connect to InfluxDB", "error", err)
		_ = m.Close()
		return nil
	}
	a.influx = m
	return m
}

func (a *app) close() {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.metrics.Shutdown(ctx))
		cancel()
	}
	if err := errors.Join(errs...); err != nil && a.log != nil {
		a.log.Error("Error during shutdown", "error", err)
	}
	if a.metricsFile != nil {
		_ = a.metricsFile.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
