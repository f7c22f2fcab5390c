package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// PartialYear is the year the export only partially covers.
const PartialYear = "2018"

// DefaultExcludedYears lists the years dropped at load unless configured otherwise.
var DefaultExcludedYears = []string{PartialYear}

// Normalize converts raw table rows into crash records, drops rows whose
// derived year is in excluded, and builds the year and ward catalogs.
func Normalize(t Table, excluded []string) *Dataset {
	ds := &Dataset{
		Header:  t.Header,
		Records: make([]CrashRecord, 0, len(t.Rows)),
	}

	years := make(map[string]struct{})
	wards := make(map[string]struct{})

	for _, row := range t.Rows {
		rec := NormalizeRow(row)
		if slices.Contains(excluded, rec.Year) {
			ds.Excluded++
			continue
		}
		ds.Records = append(ds.Records, rec)

		if rec.Year != "" {
			years[rec.Year] = struct{}{}
		}
		if selectableWard(rec.Ward) {
			wards[rec.Ward] = struct{}{}
		}
	}

	ds.Years = sortedKeys(years)
	ds.Wards = sortedKeys(wards)
	return ds
}

// NormalizeRow builds a single record from a source row.
func NormalizeRow(row map[string]string) CrashRecord {
	date := row[ColDate]
	lat, latOK := parseCoordinate(row[ColLatitude])
	lon, lonOK := parseCoordinate(row[ColLongitude])

	return CrashRecord{
		Date:      date,
		Year:      deriveYear(date, row[ColYear]),
		Ward:      row[ColWard],
		Address:   row[ColAddress],
		Latitude:  row[ColLatitude],
		Longitude: row[ColLongitude],
		Geo:       Geo{Lat: lat, Lon: lon},
		Located:   latOK && lonOK,
		Fatal: Outcome{
			Driver:     parseCountOrZero(row[ColFatalDriver]),
			Pedestrian: parseCountOrZero(row[ColFatalPedestrian]),
			Bicyclist:  parseCountOrZero(row[ColFatalBicyclist]),
		},
		Major: Outcome{
			Driver:     parseCountOrZero(row[ColMajorDriver]),
			Pedestrian: parseCountOrZero(row[ColMajorPedestrian]),
			Bicyclist:  parseCountOrZero(row[ColMajorBicyclist]),
		},
		Minor: Outcome{
			Driver:     parseCountOrZero(row[ColMinorDriver]),
			Pedestrian: parseCountOrZero(row[ColMinorPedestrian]),
			Bicyclist:  parseCountOrZero(row[ColMinorBicyclist]),
		},
		TotalPedestrians: parseCountOrZero(row[ColTotalPedestrians]),
		TotalBicycles:    parseCountOrZero(row[ColTotalBicycles]),
		Fields:           row,
	}
}

func deriveYear(date, fallback string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return fallback
}

// selectableWard reports whether a ward belongs in the selection list.
func selectableWard(w string) bool {
	return w != "" && !strings.EqualFold(w, "unknown") && !strings.EqualFold(w, "null")
}

// parseCountOrZero parses a counter cell, returning 0 for anything that is
// not a finite non-negative number.
func parseCountOrZero(s string) int {
	v, ok := parseFinite(s)
	if !ok || v < 0 {
		return 0
	}
	return int(v)
}

// parseCoordinate parses a coordinate cell. Blank cells are not coordinates.
func parseCoordinate(s string) (float64, bool) {
	return parseFinite(s)
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
