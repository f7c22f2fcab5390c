package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
)

// ErrNoHeader is returned for an input with no header row.
var ErrNoHeader = errors.New("csv has no header row")

// CSVReader reads the crash table from a location.
// It implements pipeline.TableReader.
type CSVReader struct {
	fetcher  *Fetcher
	location string
}

// NewCSVReader creates a reader for the delimited file at location.
func NewCSVReader(fetcher *Fetcher, location string) *CSVReader {
	return &CSVReader{fetcher: fetcher, location: location}
}

// ReadTable fetches and parses the whole file.
func (r *CSVReader) ReadTable(ctx context.Context) (domain.Table, error) {
	body, err := r.fetcher.Open(ctx, r.location)
	if err != nil {
		return domain.Table{}, err
	}
	defer body.Close()

	return ParseCSV(body)
}

// ParseCSV parses comma-delimited text with a header row. Rows may be
// ragged: missing trailing cells read as absent, extra cells are ignored.
func ParseCSV(rd io.Reader) (domain.Table, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	all, err := r.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return domain.Table{}, ErrNoHeader
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := make([]map[string]string, 0, len(all)-1)
	for _, rec := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				fields[h] = rec[j]
			}
		}
		rows = append(rows, fields)
	}

	return domain.Table{Header: header, Rows: rows}, nil
}
