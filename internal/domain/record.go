package domain

import "time"

// Source column names.
const (
	ColDate      = "DATE"
	ColWard      = "WARD"
	ColLatitude  = "LATITUDE"
	ColLongitude = "LONGITUDE"
	ColAddress   = "ADDRESS"

	ColFatalDriver     = "FATAL_DRIVER"
	ColFatalPedestrian = "FATAL_PEDESTRIAN"
	ColFatalBicyclist  = "FATAL_BICYCLIST"

	ColMajorDriver     = "MAJORINJURIES_DRIVER"
	ColMajorPedestrian = "MAJORINJURIES_PEDESTRIAN"
	ColMajorBicyclist  = "MAJORINJURIES_BICYCLIST"

	ColMinorDriver     = "MINORINJURIES_DRIVER"
	ColMinorPedestrian = "MINORINJURIES_PEDESTRIAN"
	ColMinorBicyclist  = "MINORINJURIES_BICYCLIST"

	ColTotalPedestrians = "TOTAL_PEDESTRIANS"
	ColTotalBicycles    = "TOTAL_BICYCLES"

	// ColYear is the fallback year column used when DATE is too short.
	ColYear = "year"
)

// Table is a parsed delimited file: the header in source order plus one
// field map per data row.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// Geo is a WGS84 coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Outcome counts people by victim class for a single outcome.
type Outcome struct {
	Driver     int `json:"driver"`
	Pedestrian int `json:"pedestrian"`
	Bicyclist  int `json:"bicyclist"`
}

// Total sums the three victim classes.
func (o Outcome) Total() int {
	return o.Driver + o.Pedestrian + o.Bicyclist
}

// CrashRecord is one reported crash. Records are built once by [Normalize]
// and never mutated afterwards.
type CrashRecord struct {
	Date      string `json:"date"`
	Year      string `json:"year"`
	Ward      string `json:"ward"`
	Address   string `json:"address"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`

	Geo     Geo  `json:"geo"`
	Located bool `json:"located"`

	Fatal Outcome `json:"fatal"`
	Major Outcome `json:"major"`
	Minor Outcome `json:"minor"`

	TotalPedestrians int `json:"total_pedestrians"`
	TotalBicycles    int `json:"total_bicycles"`

	// Fields is the source row keyed by column name.
	Fields map[string]string `json:"-"`
}

// Dataset is the normalized, immutable record set plus the catalogs used to
// populate selection choices.
type Dataset struct {
	Header   []string
	Records  []CrashRecord
	Years    []string
	Wards    []string
	Excluded int
	LoadedAt time.Time
}

// EmptyDataset is the state before a load succeeds, and after one fails.
func EmptyDataset() *Dataset {
	return &Dataset{}
}
