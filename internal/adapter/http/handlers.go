package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
	"github.com/couchcryptid/incident-analytics-service/internal/export"
	"github.com/couchcryptid/incident-analytics-service/internal/pipeline"
)

const maxFilterBody = 1 << 16

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func (s *Server) handleViewKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]analytics.ViewKind{"kinds": analytics.ViewKinds})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	kind, err := analytics.ParseViewKind(mux.Vars(r)["kind"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.svc.View(kind, f, r.URL.Query().Get("entity"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.svc.Filtered(f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(recs), "records": recs})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("format")
	if name == "" {
		name = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	f, err := parseFilter(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.svc.Filtered(f)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, recs); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(s.clock())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleGetFilter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Filter())
}

// handlePutFilter replaces the dashboard filter. Fields missing from the body
// keep their no-constraint defaults.
func (s *Server) handlePutFilter(w http.ResponseWriter, r *http.Request) {
	f := analytics.AllIncidents()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFilterBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if f.Category == "" {
		f.Category = analytics.AllCategories
	}
	if err := s.svc.SetFilter(f); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, f)
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.svc.Dashboard()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseFilter(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	query := analytics.RiskQuery{
		Operator: q.Get("operator"),
		Season:   q.Get("season"),
		Day:      q.Get("day"),
	}
	assessment, err := s.svc.Risk(query, f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, analytics.ErrInvalidFilter),
		errors.Is(err, analytics.ErrUnknownEntity),
		errors.Is(err, export.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, analytics.ErrUnknownView):
		status = http.StatusNotFound
	case errors.Is(err, pipeline.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
