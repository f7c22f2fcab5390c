package chart

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestWriteSeverityPNG(t *testing.T) {
	tests := []struct {
		name string
		h    domain.SeverityHistogram
	}{
		{"mixed", domain.SeverityHistogram{Fatal: 3, Major: 10, Minor: 25, None: 100}},
		{"all zero", domain.SeverityHistogram{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSeverityPNG(&buf, tt.h))

			w, h := decodeSize(t, buf.Bytes())
			assert.Equal(t, 576, w)
			assert.Equal(t, 384, h)
		})
	}
}

func TestWriteTrendPNG(t *testing.T) {
	tests := []struct {
		name  string
		trend []domain.YearCount
	}{
		{"several years", []domain.YearCount{{Year: "2021", Count: 40}, {Year: "2022", Count: 0}, {Year: "2023", Count: 55}}},
		{"no years", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTrendPNG(&buf, tt.trend))

			_, _ = decodeSize(t, buf.Bytes())
		})
	}
}

func TestFileRenderer(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRenderer(dir)
	ctx := context.Background()

	require.NoError(t, r.RenderSeverityHistogram(ctx, domain.Selection{}, domain.SeverityHistogram{Fatal: 1}))
	require.NoError(t, r.RenderYearlyTrend(ctx, domain.Selection{}, []domain.YearCount{{Year: "2024", Count: 2}}))

	for _, name := range []string{SeverityFile, TrendFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		_, _ = decodeSize(t, data)
	}
}

func TestFileRenderer_MissingDir(t *testing.T) {
	r := NewFileRenderer(filepath.Join(t.TempDir(), "missing"))

	err := r.RenderSeverityHistogram(context.Background(), domain.Selection{}, domain.SeverityHistogram{})
	assert.Error(t, err)
}
