// Package influx sends archived parcels to InfluxDB as time series points. When the server is
// unreachable the points are appended to a gzip line protocol backup file instead.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fieldmeasure/fieldpatch/internal/config"
	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement name for parcels.
const Measurement = "parcel"

var ErrDisabled = errors.New("influx is disabled")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	cfg    config.InfluxConfig
	log    *slog.Logger
	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	backupFile   *os.File
	backupWriter *gzip.Writer
	valid        bool
	mu           sync.Mutex
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{cfg: cfg, log: log.With("component", "influx")}
}

// Connect pings the server and prepares the bucket. If the server cannot be reached the backup
// file is opened and Connect succeeds; Valid reports which path is in use.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.client = influxdb2.NewClientWithOptions(
		m.cfg.ServerURL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(100).
			SetFlushInterval(1000),
	)

	running, err := m.client.Ping(ctx)
	if err != nil || !running {
		m.log.Warn("InfluxDB unreachable, writing to backup file",
			"url", m.cfg.ServerURL(), "backupPath", m.cfg.BackupPath, "error", err)
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}

	m.writer = m.client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.log.Error("Error sending data to InfluxDB", "bucket", m.cfg.Bucket, "error", writeErr)
		}
	}(m.writer.Errors())

	m.valid = true
	m.log.Info("InfluxDB client initialized", "url", m.cfg.ServerURL(), "bucket", m.cfg.Bucket)
	return nil
}

func (m *Manager) openBackup() error {
	if m.backupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backupWriter = gzip.NewWriter(file)
	return nil
}

// setupOrganizationAndBucket creates the org and bucket when missing. The bucket keeps data forever.
func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := m.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.log.Info("Organization not found, creating", "org", m.cfg.Org)
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %s: %w", m.cfg.Org, err)
		}
	}

	buckets := m.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.log.Info("Bucket not found, creating", "bucket", m.cfg.Bucket)
		if _, err := buckets.CreateBucketWithName(ctx, org, m.cfg.Bucket); err != nil {
			return fmt.Errorf("error creating bucket %s: %w", m.cfg.Bucket, err)
		}
	}
	return nil
}

// Valid reports whether points go to the server rather than the backup file.
func (m *Manager) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valid
}

// ParcelPoint builds the point for a parcel: tagged by name, timestamped at CreatedAt, with the
// measured values and the vertex centroid as fields.
func ParcelPoint(p core.Parcel) *influxdb2_write.Point {
	ts := p.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	point := influxdb2_write.NewPointWithMeasurement(Measurement).
		AddTag("name", p.Name).
		AddField("id", int64(p.ID)).
		AddField("sqm", p.Sqm).
		AddField("ha", p.Ha).
		AddField("num_vertices", p.NumVertices).
		AddField("perimeter", p.Perimeter).
		SetTime(ts)

	if len(p.Points) > 0 {
		var lat, lon float64
		for _, v := range p.Points {
			lat += v.Latitude
			lon += v.Longitude
		}
		n := float64(len(p.Points))
		point.AddField("centroid_lat", lat/n).AddField("centroid_lon", lon/n)
		point.AddField("reference_sqm", geo.ReferenceArea(p.Points))
	}
	return point
}

// WriteParcel queues the parcel point for the server or appends it to the backup file.
func (m *Manager) WriteParcel(_ context.Context, p core.Parcel) error {
	return m.WritePoint(ParcelPoint(p))
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid {
		m.writer.WritePoint(point)
		return nil
	}
	if m.backupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	line := strings.TrimRight(influxdb2_write.PointToLineProtocol(point, time.Nanosecond), "\n")
	if _, err := m.backupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.writer != nil {
		m.writer.Flush()
	}
	if m.client != nil {
		m.client.Close()
	}
	if m.backupWriter != nil {
		errs = append(errs, m.backupWriter.Close())
		errs = append(errs, m.backupFile.Close())
		m.backupWriter, m.backupFile = nil, nil
	}
	m.valid = false
	return errors.Join(errs...)
}
