package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// NotAvailable is the percent-change text when no prior period can be compared.
const NotAvailable = "N/A"

// SeverityHistogram counts records per severity tier.
type SeverityHistogram struct {
	Fatal int `json:"fatal"`
	Major int `json:"major"`
	Minor int `json:"minor"`
	None  int `json:"none"`
}

// CategoryCount is one slice of the severity donut.
type CategoryCount struct {
	Category Severity `json:"category"`
	Count    int      `json:"count"`
}

// Total returns the number of records counted.
func (h SeverityHistogram) Total() int {
	return h.Fatal + h.Major + h.Minor + h.None
}

// Categories returns the four tiers in priority order.
func (h SeverityHistogram) Categories() []CategoryCount {
	return []CategoryCount{
		{Category: SeverityFatal, Count: h.Fatal},
		{Category: SeverityMajor, Count: h.Major},
		{Category: SeverityMinor, Count: h.Minor},
		{Category: SeverityNone, Count: h.None},
	}
}

// YearCount is one bar of the yearly trend.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// KPISet holds the headline numbers shown on the summary cards.
type KPISet struct {
	Total              int    `json:"total"`
	FatalCrashes       int    `json:"fatal_crashes"`
	MajorInjuryCrashes int    `json:"major_injury_crashes"`
	PercentChange      string `json:"percent_change"`
}

// Histogram classifies every record into exactly one tier.
func Histogram(records []CrashRecord) SeverityHistogram {
	var h SeverityHistogram
	for i := range records {
		switch Classify(records[i]) {
		case SeverityFatal:
			h.Fatal++
		case SeverityMajor:
			h.Major++
		case SeverityMinor:
			h.Minor++
		default:
			h.None++
		}
	}
	return h
}

// Trend counts records per known year. Every year in years appears in the
// result, ascending, even when its count is zero.
func Trend(records []CrashRecord, years []string) []YearCount {
	counts := make(map[string]int, len(years))
	for i := range records {
		counts[records[i].Year]++
	}

	ordered := slices.Clone(years)
	slices.SortFunc(ordered, CompareYears)

	out := make([]YearCount, len(ordered))
	for i, y := range ordered {
		out[i] = YearCount{Year: y, Count: counts[y]}
	}
	return out
}

// ComputeKPIs derives the KPI set for filtered, the year-inclusive matches
// of sel. all is the full record set, needed for the prior-year comparison.
func ComputeKPIs(all, filtered []CrashRecord, sel Selection) KPISet {
	k := KPISet{Total: len(filtered)}
	for i := range filtered {
		if filtered[i].Fatal.Total() > 0 {
			k.FatalCrashes++
		}
		if filtered[i].Major.Total() > 0 {
			k.MajorInjuryCrashes++
		}
	}
	k.PercentChange = percentChangeVsPrior(all, filtered, sel)
	return k
}

// percentChangeVsPrior compares against the year before the selected one,
// or, with no year selected, the latest two years present in filtered.
func percentChangeVsPrior(all, filtered []CrashRecord, sel Selection) string {
	if sel.Year != "" {
		year, err := strconv.Atoi(sel.Year)
		if err != nil {
			return NotAvailable
		}
		prior := countMatches(all, sel.WithYear(strconv.Itoa(year-1)))
		return PercentChange(len(filtered), prior)
	}

	perYear := make(map[string]int)
	for i := range filtered {
		if y := filtered[i].Year; y != "" {
			perYear[y]++
		}
	}
	if len(perYear) < 2 {
		return NotAvailable
	}

	years := make([]string, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	slices.SortFunc(years, CompareYears)

	n := len(years)
	return PercentChange(perYear[years[n-1]], perYear[years[n-2]])
}

// PercentChange formats (current-prior)/prior as a percentage with one
// decimal, rounding halves away from zero. A non-positive prior yields "N/A".
func PercentChange(current, prior int) string {
	if prior <= 0 {
		return NotAvailable
	}
	change := float64(current-prior) / float64(prior) * 100
	return fmt.Sprintf("%.1f%%", math.Round(change*10)/10)
}

// CompareYears orders years numerically when both parse as integers and
// lexically otherwise.
func CompareYears(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}

func countMatches(records []CrashRecord, sel Selection) int {
	n := 0
	for i := range records {
		if Matches(records[i], sel, true) {
			n++
		}
	}
	return n
}
