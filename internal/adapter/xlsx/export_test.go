package xlsx

import (
	"bytes"
	"context"
	"testing"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestExportRecords(t *testing.T) {
	header := []string{"DATE", "WARD", "ADDRESS"}
	records := []domain.CrashRecord{
		{Year: "2023", Fields: map[string]string{"DATE": "2023-05-01", "WARD": "Ward 1", "ADDRESS": "1 Main St"}},
		{Year: "2024", Fields: map[string]string{"DATE": "2024-02-11", "WARD": "Ward 6", "ADDRESS": "9 K St"}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExporter().ExportRecords(context.Background(), &buf, header, records))

	want := [][]string{
		{"DATE", "WARD", "ADDRESS", "year"},
		{"2023-05-01", "Ward 1", "1 Main St", "2023"},
		{"2024-02-11", "Ward 6", "9 K St", "2024"},
	}
	if diff := cmp.Diff(want, readRows(t, buf.Bytes())); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExportRecords_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().ExportRecords(context.Background(), &buf, []string{"DATE"}, nil))

	assert.Equal(t, [][]string{{"DATE", "year"}}, readRows(t, buf.Bytes()))
}

func TestColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{"appends year", []string{"DATE", "WARD"}, []string{"DATE", "WARD", "year"}},
		{"source already has year", []string{"year", "DATE"}, []string{"year", "DATE"}},
		{"empty header", nil, []string{"year"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Columns(tt.header))
		})
	}
}
