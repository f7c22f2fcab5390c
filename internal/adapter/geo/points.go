package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection projects map points onto GeoJSON Point features. Popup
// fields become feature properties.
func FeatureCollection(points []domain.MapPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(orb.Point{p.Lon, p.Lat})
		for _, field := range p.Popup {
			f.Properties[field.Name] = field.Value
		}
		fc.Append(f)
	}
	return fc
}

// FileRenderer writes the map set to a GeoJSON file on every dispatch.
// It implements pipeline.PointRenderer.
type FileRenderer struct {
	path string
}

// NewFileRenderer creates a renderer that overwrites path.
func NewFileRenderer(path string) *FileRenderer {
	return &FileRenderer{path: path}
}

// RenderPoints replaces the file contents with the given points.
func (r *FileRenderer) RenderPoints(_ context.Context, _ domain.Selection, points []domain.MapPoint) error {
	data, err := json.Marshal(FeatureCollection(points))
	if err != nil {
		return fmt.Errorf("encode map points: %w", err)
	}
	return writeFileAtomic(r.path, data)
}

// writeFileAtomic writes to a sibling temp file and renames it into place so
// readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
