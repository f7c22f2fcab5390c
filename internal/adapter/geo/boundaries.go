// Package geo handles the geographic side of the dashboard: the ward
// boundary overlay and GeoJSON projection of map points.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/source"
	"github.com/DavidKimmel/DC-Traffic2/internal/observability"
	"github.com/DavidKimmel/DC-Traffic2/internal/pipeline"
	"github.com/paulmach/orb/geojson"
)

// ErrBoundariesUnavailable is returned while the overlay has not loaded.
var ErrBoundariesUnavailable = errors.New("ward boundaries unavailable")

// BoundaryStore holds the ward boundary overlay. It is loaded once; a failed
// load leaves it empty for the life of the process.
type BoundaryStore struct {
	fetcher  *source.Fetcher
	location string
	logger   *slog.Logger
	metrics  *observability.Metrics

	attempted atomic.Bool
	encoded   atomic.Pointer[[]byte]
}

// NewBoundaryStore creates a store for the GeoJSON file at location.
func NewBoundaryStore(fetcher *source.Fetcher, location string, logger *slog.Logger, metrics *observability.Metrics) *BoundaryStore {
	return &BoundaryStore{
		fetcher:  fetcher,
		location: location,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load fetches and validates the overlay. Only the first call does any work.
func (s *BoundaryStore) Load(ctx context.Context) error {
	if !s.attempted.CompareAndSwap(false, true) {
		return nil
	}

	fc, err := s.fetch(ctx)
	if err != nil {
		s.metrics.DatasetLoadErrors.WithLabelValues(pipeline.DatasetWards).Inc()
		s.logger.Error("ward boundary load failed", "error", err, "location", s.location)
		return err
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode ward boundaries: %w", err)
	}
	s.encoded.Store(&data)
	s.metrics.BoundaryFeatures.Set(float64(len(fc.Features)))
	s.logger.Info("ward boundaries loaded", "features", len(fc.Features))
	return nil
}

// GeoJSON returns the encoded overlay, or ErrBoundariesUnavailable.
func (s *BoundaryStore) GeoJSON() ([]byte, error) {
	data := s.encoded.Load()
	if data == nil {
		return nil, ErrBoundariesUnavailable
	}
	return *data, nil
}

func (s *BoundaryStore) fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	body, err := s.fetcher.Open(ctx, s.location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read ward boundaries: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse ward boundaries: %w", err)
	}
	return fc, nil
}
