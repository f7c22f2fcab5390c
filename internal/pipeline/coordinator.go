package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/DavidKimmel/DC-Traffic2/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrAlreadyLoaded is returned when Load is called a second time.
var ErrAlreadyLoaded = errors.New("crash dataset load already attempted")

// DatasetLoader produces the normalized crash dataset.
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// Views are the four outputs of one recompute. Records is the year-inclusive
// filtered set, kept for export.
type Views struct {
	Selection   domain.Selection         `json:"selection"`
	Points      []domain.MapPoint        `json:"points"`
	Severity    domain.SeverityHistogram `json:"severity"`
	Trend       []domain.YearCount       `json:"trend"`
	KPIs        domain.KPISet            `json:"kpis"`
	GeneratedAt time.Time                `json:"generated_at"`

	Header  []string             `json:"-"`
	Records []domain.CrashRecord `json:"-"`
}

// Options are the selectable values plus the live selection.
type Options struct {
	Years     []string         `json:"years"`
	Wards     []string         `json:"wards"`
	Selection domain.Selection `json:"selection"`
}

// ComputeViews runs the four queries for sel against ds. It never mutates ds.
func ComputeViews(ds *domain.Dataset, sel domain.Selection) Views {
	sel = sel.Normalized()
	matched := domain.Filter(ds.Records, sel, true)
	acrossYears := domain.Filter(ds.Records, sel, false)

	return Views{
		Selection: sel,
		Points:    domain.Points(ds.Header, matched),
		Severity:  domain.Histogram(matched),
		Trend:     domain.Trend(acrossYears, ds.Years),
		KPIs:      domain.ComputeKPIs(ds.Records, matched, sel),
		Header:    ds.Header,
		Records:   matched,
	}
}

// Coordinator owns the loaded dataset and the live selection, recomputes the
// views on every change, and hands them to the renderers.
type Coordinator struct {
	loader    DatasetLoader
	renderers Renderers
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	dataset   atomic.Pointer[domain.Dataset]
	attempted atomic.Bool
	ready     atomic.Bool
	loadErr   atomic.Pointer[error]

	mu        sync.Mutex
	selection domain.Selection
}

// New creates a Coordinator with an empty dataset. Call Load to populate it.
func New(loader DatasetLoader, renderers Renderers, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Coordinator {
	c := &Coordinator{
		loader:    loader,
		renderers: renderers,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		selection: domain.Selection{}.Normalized(),
	}
	c.dataset.Store(domain.EmptyDataset())
	return c
}

// Load performs the one-shot dataset load. On success the dataset is
// published, defaultYear becomes the selected year if the data contains it,
// and the initial views are dispatched. On failure the dataset stays empty
// and nothing is dispatched. There is no retry.
func (c *Coordinator) Load(ctx context.Context, defaultYear string) error {
	if !c.attempted.CompareAndSwap(false, true) {
		return ErrAlreadyLoaded
	}

	ds, err := c.loader.Load(ctx)
	if err != nil {
		c.loadErr.Store(&err)
		c.metrics.DatasetLoadErrors.WithLabelValues(DatasetCrashes).Inc()
		c.logger.Error("crash dataset load failed", "error", err)
		return err
	}

	c.dataset.Store(ds)
	c.ready.Store(true)
	c.metrics.DatasetReady.Set(1)

	sel := c.Selection()
	if defaultYear != "" && slices.Contains(ds.Years, defaultYear) {
		sel.Year = defaultYear
		c.logger.Info("default year selected", "year", defaultYear)
	}
	c.OnSelectionChanged(ctx, sel)
	return nil
}

// CheckReadiness returns nil once the crash dataset has loaded, or an error
// describing why the service is not ready.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if c.ready.Load() {
		return nil
	}
	if errp := c.loadErr.Load(); errp != nil {
		return fmt.Errorf("crash dataset unavailable: %w", *errp)
	}
	return errors.New("crash dataset has not loaded yet")
}

// OnSelectionChanged replaces the live selection, recomputes every view from
// the full record set, dispatches them, and returns them. Renderer failures
// are logged and counted but do not fail the call.
func (c *Coordinator) OnSelectionChanged(ctx context.Context, sel domain.Selection) Views {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = sel.Normalized()
	v := c.compute(c.selection)
	c.dispatch(ctx, v)
	return v
}

// Compute recomputes the views for sel without touching the live selection
// or dispatching.
func (c *Coordinator) Compute(sel domain.Selection) Views {
	return c.compute(sel)
}

// Current recomputes the views for the live selection.
func (c *Coordinator) Current() Views {
	return c.compute(c.Selection())
}

// Selection returns the live selection.
func (c *Coordinator) Selection() domain.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Options returns the selectable years and wards and the live selection.
func (c *Coordinator) Options() Options {
	ds := c.dataset.Load()
	return Options{
		Years:     slices.Clone(ds.Years),
		Wards:     slices.Clone(ds.Wards),
		Selection: c.Selection(),
	}
}

// Dataset returns the current dataset snapshot. Callers must not modify it.
func (c *Coordinator) Dataset() *domain.Dataset {
	return c.dataset.Load()
}

func (c *Coordinator) compute(sel domain.Selection) Views {
	start := c.clock.Now()

	v := ComputeViews(c.dataset.Load(), sel)
	v.GeneratedAt = c.clock.Now()

	c.metrics.Recomputes.Inc()
	c.metrics.RecomputeDuration.Observe(c.clock.Since(start).Seconds())
	return v
}

func (c *Coordinator) dispatch(ctx context.Context, v Views) {
	for _, r := range c.renderers.Points {
		c.check(ViewPoints, r.RenderPoints(ctx, v.Selection, v.Points))
	}
	for _, r := range c.renderers.Severity {
		c.check(ViewSeverity, r.RenderSeverityHistogram(ctx, v.Selection, v.Severity))
	}
	for _, r := range c.renderers.Trend {
		c.check(ViewTrend, r.RenderYearlyTrend(ctx, v.Selection, v.Trend))
	}
	for _, r := range c.renderers.KPIs {
		c.check(ViewKPIs, r.RenderKPIs(ctx, v.Selection, v.KPIs))
	}
}

func (c *Coordinator) check(view string, err error) {
	if err == nil {
		return
	}
	c.logger.Warn("render failed", "view", view, "error", err)
	c.metrics.RenderErrors.WithLabelValues(view).Inc()
}
