package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/chart"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/geo"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/xlsx"
	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/DavidKimmel/DC-Traffic2/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxSelectionBody = 1 << 16

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}

// viewsFor parses the query selection, writing a 400 on failure.
func (s *Server) viewsFor(w http.ResponseWriter, r *http.Request) (pipeline.Views, bool) {
	sel, err := selectionFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return pipeline.Views{}, false
	}
	return s.dashboard.Compute(sel), true
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.dashboard.Options())
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewsFor(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewsFor(w, r)
	if !ok {
		return
	}
	data, err := json.Marshal(geo.FeatureCollection(v.Points))
	if err != nil {
		s.renderFailed(w, pipeline.ViewPoints, err)
		return
	}
	s.writeBody(w, "application/geo+json", data)
}

func (s *Server) handleSeverityChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewsFor(w, r)
	if !ok {
		return
	}
	s.writePNG(w, pipeline.ViewSeverity, func(out io.Writer) error {
		return chart.WriteSeverityPNG(out, v.Severity)
	})
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewsFor(w, r)
	if !ok {
		return
	}
	s.writePNG(w, pipeline.ViewTrend, func(out io.Writer) error {
		return chart.WriteTrendPNG(out, v.Trend)
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewsFor(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.exporter.ExportRecords(r.Context(), &buf, v.Header, v.Records); err != nil {
		s.logger.Error("export failed", "error", err, "records", len(v.Records))
		writeError(w, http.StatusInternalServerError, errors.New("export failed"))
		return
	}
	s.metrics.Exports.Inc()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xlsx.FileName))
	s.writeBody(w, xlsx.ContentType, buf.Bytes())
}

func (s *Server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.dashboard.Current())
}

func (s *Server) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	var sel domain.Selection
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode selection: %w", err))
		return
	}
	injury, err := domain.ParseInjurySeverity(string(sel.Injury))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sel.Injury = injury

	v := s.dashboard.OnSelectionChanged(r.Context(), sel)
	s.logger.Info("selection changed", "selection", v.Selection.Key())
	sharedobs.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleWards(w http.ResponseWriter, _ *http.Request) {
	data, err := s.boundaries.GeoJSON()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeBody(w, "application/geo+json", data)
}

func (s *Server) writePNG(w http.ResponseWriter, view string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.renderFailed(w, view, err)
		return
	}
	s.writeBody(w, "image/png", buf.Bytes())
}

func (s *Server) renderFailed(w http.ResponseWriter, view string, err error) {
	s.logger.Warn("render failed", "view", view, "error", err)
	s.metrics.RenderErrors.WithLabelValues(view).Inc()
	writeError(w, http.StatusInternalServerError, fmt.Errorf("render %s failed", view))
}

func (s *Server) writeBody(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("response write failed", "error", err)
	}
}
