package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "DATE,WARD,LATITUDE,LONGITUDE,FATAL_DRIVER\n" +
	"2023-01-02T10:00:00Z,Ward 1,38.9,-77.0,1\n" +
	"2022-05-06,\"Ward 2\",,,\n" +
	"2021-07-08,Ward 3\n"

func testFetcher() *Fetcher {
	return NewFetcher(5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseCSV(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"DATE", "WARD", "LATITUDE", "LONGITUDE", "FATAL_DRIVER"}, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Ward 1", table.Rows[0][domain.ColWard])
	assert.Equal(t, "1", table.Rows[0][domain.ColFatalDriver])
	assert.Equal(t, "Ward 2", table.Rows[1][domain.ColWard])
	assert.Empty(t, table.Rows[1][domain.ColLatitude])

	_, present := table.Rows[2][domain.ColLatitude]
	assert.False(t, present, "short rows leave trailing columns absent")
}

func TestParseCSV_StripsByteOrderMark(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("\ufeffDATE,WARD\n2023-01-01,Ward 1\n"))
	require.NoError(t, err)

	assert.Equal(t, "DATE", table.Header[0])
	assert.Equal(t, "2023-01-01", table.Rows[0][domain.ColDate])
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("DATE,WARD\n"))
	require.NoError(t, err)

	assert.Len(t, table.Header, 2)
	assert.Empty(t, table.Rows)
}

func TestCSVReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crashes.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	table, err := NewCSVReader(testFetcher(), path).ReadTable(context.Background())
	require.NoError(t, err)

	assert.Len(t, table.Rows, 3)
}

func TestCSVReader_MissingFile(t *testing.T) {
	_, err := NewCSVReader(testFetcher(), filepath.Join(t.TempDir(), "nope.csv")).ReadTable(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVReader_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crashes.csv", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, sampleCSV)
	}))
	defer srv.Close()

	table, err := NewCSVReader(testFetcher(), srv.URL+"/crashes.csv").ReadTable(context.Background())
	require.NoError(t, err)

	assert.Len(t, table.Rows, 3)
}

func TestCSVReader_URLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewCSVReader(testFetcher(), srv.URL).ReadTable(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "gone fishing")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://example.com/a.csv"))
	assert.True(t, isRemote("http://localhost/a.csv"))
	assert.False(t, isRemote("data/a.csv"))
	assert.False(t, isRemote("/abs/http/a.csv"))
}
