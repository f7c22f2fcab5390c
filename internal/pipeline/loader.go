package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/DavidKimmel/DC-Traffic2/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Dataset labels used in load metrics and logs.
const (
	DatasetCrashes = "crashes"
	DatasetWards   = "wards"
)

// TableReader fetches the raw crash table from its source.
type TableReader interface {
	ReadTable(ctx context.Context) (domain.Table, error)
}

// Loader reads the crash table once and normalizes it into a dataset.
type Loader struct {
	reader   TableReader
	excluded []string
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewLoader creates a Loader that drops rows whose year is in excluded.
func NewLoader(reader TableReader, excluded []string, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		reader:   reader,
		excluded: excluded,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load fetches and normalizes the crash table.
func (l *Loader) Load(ctx context.Context) (*domain.Dataset, error) {
	start := l.clock.Now()

	table, err := l.reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read crash table: %w", err)
	}

	ds := domain.Normalize(table, l.excluded)
	ds.LoadedAt = l.clock.Now()

	l.metrics.DatasetLoadSeconds.WithLabelValues(DatasetCrashes).Observe(ds.LoadedAt.Sub(start).Seconds())
	l.metrics.RecordsLoaded.Set(float64(len(ds.Records)))
	l.metrics.RecordsExcluded.Add(float64(ds.Excluded))

	l.logger.Info("crash dataset loaded",
		"records", len(ds.Records),
		"excluded", ds.Excluded,
		"years", len(ds.Years),
		"wards", len(ds.Wards),
	)
	return ds, nil
}
