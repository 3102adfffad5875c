package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tcm/internal/tabular"
	"github.com/JonMunkholm/tcm/internal/web/templates"
)

// handleExport downloads every test case as CSV in the import layout.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.service.ExportCSV(r.Context(), &buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeCSV(w, tabular.ExportFileName(time.Now()), buf.Bytes())
}

// handleTemplate downloads the import template.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.service.Template(&buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeCSV(w, tabular.TemplateFileName, buf.Bytes())
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}

// handleDashboard returns the dashboard statistics as JSON.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Dashboard(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDashboardPage renders the HTML dashboard.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Dashboard(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	templ.Handler(templates.DashboardPage(d)).ServeHTTP(w, r)
}
