// Package chart draws the severity and yearly-trend series as PNG bar charts.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	width    = 6 * vg.Inch
	height   = 4 * vg.Inch
	barWidth = 0.5 * vg.Inch
)

// File names written by FileRenderer.
const (
	SeverityFile = "severity.png"
	TrendFile    = "trend.png"
)

var severityColors = map[domain.Severity]color.Color{
	domain.SeverityFatal: color.RGBA{R: 0xd7, G: 0x30, B: 0x27, A: 0xff},
	domain.SeverityMajor: color.RGBA{R: 0xfc, G: 0x8d, B: 0x59, A: 0xff},
	domain.SeverityMinor: color.RGBA{R: 0xfe, G: 0xe0, B: 0x8b, A: 0xff},
	domain.SeverityNone:  color.RGBA{R: 0x91, G: 0xbf, B: 0xdb, A: 0xff},
}

var trendColor = color.RGBA{R: 0x6c, G: 0x75, B: 0x7d, A: 0xff}

// WriteSeverityPNG draws one colored bar per severity tier.
func WriteSeverityPNG(w io.Writer, h domain.SeverityHistogram) error {
	p := plot.New()
	p.Title.Text = "Crash Severity Distribution"
	p.Y.Label.Text = "Crashes"

	cats := h.Categories()
	names := make([]string, len(cats))
	peak := 0
	for i, c := range cats {
		names[i] = string(c.Category)
		vals := make(plotter.Values, len(cats))
		vals[i] = float64(c.Count)

		bars, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return fmt.Errorf("severity bars: %w", err)
		}
		bars.Color = severityColors[c.Category]
		p.Add(bars)
		peak = max(peak, c.Count)
	}
	p.NominalX(names...)
	fixYRange(p, peak)

	return writePNG(w, p)
}

// WriteTrendPNG draws one bar per year in the given order.
func WriteTrendPNG(w io.Writer, trend []domain.YearCount) error {
	p := plot.New()
	p.Title.Text = "Crashes by Year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Crashes"

	peak := 0
	if len(trend) > 0 {
		vals := make(plotter.Values, len(trend))
		names := make([]string, len(trend))
		for i, yc := range trend {
			vals[i] = float64(yc.Count)
			names[i] = yc.Year
			peak = max(peak, yc.Count)
		}

		bars, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return fmt.Errorf("trend bars: %w", err)
		}
		bars.Color = trendColor
		p.Add(bars)
		p.NominalX(names...)
	}
	fixYRange(p, peak)

	return writePNG(w, p)
}

// fixYRange anchors the Y axis at zero and keeps it non-degenerate when
// every count is zero.
func fixYRange(p *plot.Plot, peak int) {
	p.Y.Min = 0
	p.Y.Max = float64(max(peak, 1))
}

func writePNG(w io.Writer, p *plot.Plot) error {
	c := vgimg.PngCanvas{Canvas: vgimg.New(width, height)}
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// FileRenderer redraws both charts into a directory on every dispatch.
// It implements pipeline.SeverityRenderer and pipeline.TrendRenderer.
type FileRenderer struct {
	dir string
}

// NewFileRenderer creates a renderer writing into dir, which must exist.
func NewFileRenderer(dir string) *FileRenderer {
	return &FileRenderer{dir: dir}
}

// RenderSeverityHistogram writes severity.png.
func (r *FileRenderer) RenderSeverityHistogram(_ context.Context, _ domain.Selection, h domain.SeverityHistogram) error {
	return r.write(SeverityFile, func(w io.Writer) error { return WriteSeverityPNG(w, h) })
}

// RenderYearlyTrend writes trend.png.
func (r *FileRenderer) RenderYearlyTrend(_ context.Context, _ domain.Selection, trend []domain.YearCount) error {
	return r.write(TrendFile, func(w io.Writer) error { return WriteTrendPNG(w, trend) })
}

func (r *FileRenderer) write(name string, render func(io.Writer) error) error {
	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
