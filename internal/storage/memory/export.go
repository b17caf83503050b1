package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	exportExt     = ".geojson"
	exportExtGzip = ".geojson.gz"
)

// Feature builds the GeoJSON representation of a parcel. The ring is the geometry; the measured
// values are properties.
func Feature(p core.Parcel) *geojson.Feature {
	props := map[string]any{
		"id":          int(p.ID),
		"name":        p.Name,
		"sqm":         p.Sqm,
		"ha":          p.Ha,
		"numVertices": p.NumVertices,
		"perimeter":   p.Perimeter,
	}
	if !p.CreatedAt.IsZero() {
		props["createdAt"] = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return geo.ToFeature(p.Points, props)
}

// ParcelFromFeature is the inverse of Feature.
func ParcelFromFeature(f *geojson.Feature) (core.Parcel, error) {
	points, err := geo.PointsFromFeature(f)
	if err != nil {
		return core.Parcel{}, err
	}

	p := core.Parcel{
		ID:          uint(f.Properties.MustInt("id", 0)),
		Name:        f.Properties.MustString("name", ""),
		Points:      points,
		Sqm:         f.Properties.MustFloat64("sqm", 0),
		Ha:          f.Properties.MustFloat64("ha", 0),
		NumVertices: f.Properties.MustInt("numVertices", len(points)),
		Perimeter:   f.Properties.MustFloat64("perimeter", 0),
	}
	if s := f.Properties.MustString("createdAt", ""); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			p.CreatedAt = t
		}
	}
	return p, nil
}

var unsafeChars = strings.NewReplacer(" ", "_", ":", "_", "/", "_", `\`, "_")

// fileSafeName strips diacritics (Pellonpää becomes Pellonpaa) and replaces spaces and path
// separators.
func fileSafeName(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}
	return unsafeChars.Replace(name)
}

// fileName is "<id>_<name>_<timestamp>.geojson[.gz]".
func (b *Backend) fileName(p core.Parcel) string {
	name := fileSafeName(p.Name)
	ext := exportExt
	if b.cfg.CompressOutput {
		ext = exportExtGzip
	}
	return fmt.Sprintf("%04d_%s_%s%s", p.ID, name, p.CreatedAt.Format("20060102_150405"), ext)
}

func (b *Backend) export(p core.Parcel) (string, error) {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, b.fileName(p))

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := b.writeFeature(f, p); err != nil {
		f.Close()
		os.Remove(outputPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return outputPath, nil
}

// writeFeature encodes the parcel as a GeoJSON feature, gzipped when configured. The gzip trailer
// is only written on Close, so its error is returned too.
func (b *Backend) writeFeature(w io.Writer, p core.Parcel) error {
	if !b.cfg.CompressOutput {
		if err := json.NewEncoder(w).Encode(Feature(p)); err != nil {
			return fmt.Errorf("failed to write feature: %w", err)
		}
		return nil
	}

	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(Feature(p)); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to write feature: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

// loadExports reads every exported feature in dir. A missing directory is an empty archive.
func loadExports(dir string) ([]core.Parcel, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var parcels []core.Parcel
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, exportExt) || strings.HasSuffix(name, exportExtGzip)) {
			continue
		}
		p, err := readExport(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}
	return parcels, nil
}

func readExport(path string) (core.Parcel, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Parcel{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return core.Parcel{}, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return core.Parcel{}, fmt.Errorf("%s: %w", path, err)
	}
	feature, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return core.Parcel{}, fmt.Errorf("%s: %w", path, err)
	}
	p, err := ParcelFromFeature(feature)
	if err != nil {
		return core.Parcel{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
