// Command crashstats loads a crash CSV, applies a selection from flags, and
// prints the KPI cards, the severity histogram and the yearly trend. It can
// also write the chart PNGs, the map GeoJSON and the XLSX export.
//
// Usage:
//
//	go run ./cmd/crashstats \
//	  -data data/crashes.csv \
//	  -year 2024 -ward "Ward 6" -injury high \
//	  -charts-dir out/ -geojson-out out/map.geojson -xlsx-out out/filtered_crash_data.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/chart"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/geo"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/source"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/xlsx"
	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/DavidKimmel/DC-Traffic2/internal/observability"
	"github.com/DavidKimmel/DC-Traffic2/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

const loadTimeout = 2 * time.Minute

type options struct {
	data       string
	excluded   string
	sel        domain.Selection
	chartsDir  string
	geojsonOut string
	xlsxOut    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "crashstats: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	fetcher := source.NewFetcher(loadTimeout, logger)
	loader := pipeline.NewLoader(
		source.NewCSVReader(fetcher, opts.data),
		splitYears(opts.excluded),
		clockwork.NewRealClock(),
		logger,
		observability.NewMetricsForTesting(),
	)
	ds, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	v := pipeline.ComputeViews(ds, opts.sel)
	printReport(stdout, ds, v)

	if err := writeOutputs(ctx, opts, v); err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("crashstats", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var injury string
	fs.StringVar(&opts.data, "data", "", "crash CSV path or http(s) URL (required)")
	fs.StringVar(&opts.sel.Year, "year", "", "selected year; empty means all years")
	fs.StringVar(&opts.sel.Ward, "ward", "", "selected ward; empty means all wards")
	fs.StringVar(&injury, "injury", "all", "injury filter: all, high, low or none")
	fs.BoolVar(&opts.sel.FatalitiesOnly, "fatal", false, "only crashes with fatalities")
	fs.BoolVar(&opts.sel.PedestrianOnly, "pedestrian", false, "only crashes involving pedestrians")
	fs.BoolVar(&opts.sel.BicyclistOnly, "bicyclist", false, "only crashes involving bicycles")
	fs.StringVar(&opts.excluded, "exclude-years", domain.PartialYear, "comma-separated years dropped at load")
	fs.StringVar(&opts.chartsDir, "charts-dir", "", "directory to write severity.png and trend.png")
	fs.StringVar(&opts.geojsonOut, "geojson-out", "", "path to write the map points as GeoJSON")
	fs.StringVar(&opts.xlsxOut, "xlsx-out", "", "path to write the filtered records as XLSX")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.data == "" {
		fs.Usage()
		return options{}, errors.New("-data is required")
	}
	sev, err := domain.ParseInjurySeverity(injury)
	if err != nil {
		return options{}, err
	}
	opts.sel.Injury = sev
	return opts, nil
}

func splitYears(s string) []string {
	var out []string
	for _, y := range strings.Split(s, ",") {
		if y = strings.TrimSpace(y); y != "" {
			out = append(out, y)
		}
	}
	return out
}

func printReport(w io.Writer, ds *domain.Dataset, v pipeline.Views) {
	fmt.Fprintln(w, "=== Crash Summary ===")
	fmt.Fprintf(w, "Selection: %s\n", v.Selection.Key())
	fmt.Fprintf(w, "Records: %d loaded, %d excluded, %d matched, %d mapped\n",
		len(ds.Records), ds.Excluded, len(v.Records), len(v.Points))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-24s %d\n", "Total crashes", v.KPIs.Total)
	fmt.Fprintf(w, "  %-24s %d\n", "Fatal crashes", v.KPIs.FatalCrashes)
	fmt.Fprintf(w, "  %-24s %d\n", "Major injury crashes", v.KPIs.MajorInjuryCrashes)
	fmt.Fprintf(w, "  %-24s %s\n", "Change vs prior year", v.KPIs.PercentChange)

	fmt.Fprintln(w, "\n--- Severity ---")
	for _, c := range v.Severity.Categories() {
		fmt.Fprintf(w, "  %-8s %d\n", c.Category, c.Count)
	}

	fmt.Fprintln(w, "\n--- Crashes by Year ---")
	for _, yc := range v.Trend {
		fmt.Fprintf(w, "  %-8s %d\n", yc.Year, yc.Count)
	}
}

func writeOutputs(ctx context.Context, opts options, v pipeline.Views) error {
	if opts.chartsDir != "" {
		if err := os.MkdirAll(opts.chartsDir, 0o755); err != nil {
			return fmt.Errorf("create charts dir: %w", err)
		}
		charts := chart.NewFileRenderer(opts.chartsDir)
		if err := charts.RenderSeverityHistogram(ctx, v.Selection, v.Severity); err != nil {
			return err
		}
		if err := charts.RenderYearlyTrend(ctx, v.Selection, v.Trend); err != nil {
			return err
		}
	}
	if opts.geojsonOut != "" {
		if err := geo.NewFileRenderer(opts.geojsonOut).RenderPoints(ctx, v.Selection, v.Points); err != nil {
			return err
		}
	}
	if opts.xlsxOut != "" {
		if err := writeXLSX(ctx, opts.xlsxOut, v); err != nil {
			return err
		}
	}
	return nil
}

func writeXLSX(ctx context.Context, path string, v pipeline.Views) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := xlsx.NewExporter().ExportRecords(ctx, f, v.Header, v.Records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
