// Command genmock writes a synthetic crash CSV in the column layout of the
// DC crash export. Output is fully determined by the seed, so fixtures can be
// regenerated byte for byte.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/crashes.csv \
//	  -rows 5000 -seed 42 -from 2018 -to 2024
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
)

// columns is the generated header, in source order.
var columns = []string{
	"OBJECTID",
	domain.ColDate,
	domain.ColAddress,
	domain.ColWard,
	domain.ColLatitude,
	domain.ColLongitude,
	"XCOORD",
	"YCOORD",
	domain.ColFatalDriver,
	domain.ColFatalPedestrian,
	domain.ColFatalBicyclist,
	domain.ColMajorDriver,
	domain.ColMajorPedestrian,
	domain.ColMajorBicyclist,
	domain.ColMinorDriver,
	domain.ColMinorPedestrian,
	domain.ColMinorBicyclist,
	domain.ColTotalPedestrians,
	domain.ColTotalBicycles,
	"TOTAL_VEHICLES",
}

var streets = []string{
	"PENNSYLVANIA AVE NW", "NEW YORK AVE NE", "GEORGIA AVE NW", "BENNING RD NE",
	"MARTIN LUTHER KING JR AVE SE", "CONNECTICUT AVE NW", "16TH ST NW", "H ST NE",
	"MASSACHUSETTS AVE SE", "SOUTH CAPITOL ST SW", "RHODE ISLAND AVE NE", "K ST NW",
}

// wardCenters are rough ward centroids used to scatter crash coordinates.
var wardCenters = []domain.Geo{
	{Lat: 38.9230, Lon: -77.0370},
	{Lat: 38.9030, Lon: -77.0320},
	{Lat: 38.9390, Lon: -77.0760},
	{Lat: 38.9580, Lon: -77.0250},
	{Lat: 38.9210, Lon: -76.9850},
	{Lat: 38.8860, Lon: -77.0010},
	{Lat: 38.8920, Lon: -76.9420},
	{Lat: 38.8410, Lon: -76.9950},
}

type params struct {
	rows     int
	seed     uint64
	fromYear int
	toYear   int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the crash CSV")
	rows := flag.Int("rows", 5000, "number of crash rows to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	from := flag.Int("from", 2018, "first year to generate")
	to := flag.Int("to", time.Now().Year(), "last year to generate")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	p := params{rows: *rows, seed: *seed, fromYear: *from, toYear: *to}
	if err := p.validate(); err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := generate(f, p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %d rows to %s", p.rows, *out)
	return nil
}

func (p params) validate() error {
	if p.rows < 0 {
		return fmt.Errorf("invalid -rows: %d", p.rows)
	}
	if p.fromYear > p.toYear {
		return fmt.Errorf("invalid year range: %d > %d", p.fromYear, p.toYear)
	}
	return nil
}

// generate writes the header and p.rows crash rows to w.
func generate(w io.Writer, p params) error {
	rng := rand.New(rand.NewPCG(p.seed, p.seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range p.rows {
		if err := cw.Write(crashRow(rng, i+1, p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func crashRow(rng *rand.Rand, id int, p params) []string {
	year := p.fromYear + rng.IntN(p.toYear-p.fromYear+1)
	day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, rng.IntN(365)).
		Add(time.Duration(rng.IntN(24*60)) * time.Minute)

	ward := rng.IntN(len(wardCenters))
	wardName := "Ward " + strconv.Itoa(ward+1)
	if rng.IntN(100) == 0 {
		wardName = "Null"
	}

	lat, lon := "", ""
	x, y := "", ""
	if rng.IntN(40) != 0 {
		c := wardCenters[ward]
		glat := c.Lat + (rng.Float64()-0.5)*0.03
		glon := c.Lon + (rng.Float64()-0.5)*0.03
		lat, lon = strconv.FormatFloat(glat, 'f', 6, 64), strconv.FormatFloat(glon, 'f', 6, 64)
		x = strconv.FormatFloat(399000+(glon+77.0)*86000, 'f', 2, 64)
		y = strconv.FormatFloat(137000+(glat-38.9)*111000, 'f', 2, 64)
	}

	pedestrians := weighted(rng, 12)
	bicycles := weighted(rng, 25)
	fatal := outcome(rng, 400, pedestrians, bicycles)
	major := outcome(rng, 25, pedestrians, bicycles)
	minor := outcome(rng, 4, pedestrians, bicycles)

	return []string{
		strconv.Itoa(id),
		day.Format("2006/01/02 15:04:05+00"),
		fmt.Sprintf("%d %s", 100+rng.IntN(4900), streets[rng.IntN(len(streets))]),
		wardName,
		lat, lon, x, y,
		strconv.Itoa(fatal.Driver), strconv.Itoa(fatal.Pedestrian), strconv.Itoa(fatal.Bicyclist),
		strconv.Itoa(major.Driver), strconv.Itoa(major.Pedestrian), strconv.Itoa(major.Bicyclist),
		strconv.Itoa(minor.Driver), strconv.Itoa(minor.Pedestrian), strconv.Itoa(minor.Bicyclist),
		strconv.Itoa(pedestrians),
		strconv.Itoa(bicycles),
		strconv.Itoa(1 + rng.IntN(3)),
	}
}

// weighted returns 1 with probability 1/oneIn, else 0.
func weighted(rng *rand.Rand, oneIn int) int {
	if rng.IntN(oneIn) == 0 {
		return 1
	}
	return 0
}

// outcome draws victim counts for one outcome tier. Pedestrians and
// bicyclists can only be hurt when the crash involves them.
func outcome(rng *rand.Rand, oneIn, pedestrians, bicycles int) domain.Outcome {
	o := domain.Outcome{Driver: weighted(rng, oneIn)}
	if pedestrians > 0 {
		o.Pedestrian = weighted(rng, max(oneIn/4, 1))
	}
	if bicycles > 0 {
		o.Bicyclist = weighted(rng, max(oneIn/4, 1))
	}
	return o
}
