package pipeline

import (
	"context"
	"io"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
)

// View names used in render metrics and published snapshots.
const (
	ViewPoints   = "points"
	ViewSeverity = "severity"
	ViewTrend    = "trend"
	ViewKPIs     = "kpis"
)

// PointRenderer places the map set.
type PointRenderer interface {
	RenderPoints(ctx context.Context, sel domain.Selection, points []domain.MapPoint) error
}

// SeverityRenderer draws the severity donut.
type SeverityRenderer interface {
	RenderSeverityHistogram(ctx context.Context, sel domain.Selection, h domain.SeverityHistogram) error
}

// TrendRenderer draws the yearly bar chart.
type TrendRenderer interface {
	RenderYearlyTrend(ctx context.Context, sel domain.Selection, trend []domain.YearCount) error
}

// KPIRenderer shows the summary cards.
type KPIRenderer interface {
	RenderKPIs(ctx context.Context, sel domain.Selection, kpis domain.KPISet) error
}

// Exporter serializes a record list to a downloadable file.
type Exporter interface {
	ExportRecords(ctx context.Context, w io.Writer, header []string, records []domain.CrashRecord) error
}

// Renderers groups the collaborators each recompute is dispatched to.
// Any slice may be empty.
type Renderers struct {
	Points   []PointRenderer
	Severity []SeverityRenderer
	Trend    []TrendRenderer
	KPIs     []KPIRenderer
}
