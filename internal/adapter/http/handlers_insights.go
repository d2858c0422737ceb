package adapthttp

import (
	"bytes"
	"fmt"
	"net/http"

	"nutrilog/internal/app"
)

// rangeResponse and weeklyResponse put a summary's fields next to the
// success flag every /api response carries.
type rangeResponse struct {
	Success bool `json:"success"`
	*app.RangeSummary
}

type weeklyResponse struct {
	Success bool `json:"success"`
	*app.WeeklySummary
}

func (s *Server) handleInsightsDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	summary, err := s.insights.Daily(r.Context(), userFromContext(r.Context()), intQuery(r, "days", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rangeResponse{Success: true, RangeSummary: summary})
}

func (s *Server) handleInsightsWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	summary, err := s.insights.Weekly(r.Context(), userFromContext(r.Context()), intQuery(r, "weeks", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weeklyResponse{Success: true, WeeklySummary: summary})
}

func (s *Server) handleInsightsMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	summary, err := s.insights.Monthly(r.Context(), userFromContext(r.Context()),
		intQuery(r, "year", 0), intQuery(r, "month", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rangeResponse{Success: true, RangeSummary: summary})
}

func (s *Server) handleInsightsRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	summary, err := s.insights.Range(r.Context(), userFromContext(r.Context()), q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rangeResponse{Success: true, RangeSummary: summary})
}

func (s *Server) handleInsightsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	var buf bytes.Buffer
	if err := s.insights.ExportCSV(r.Context(), userFromContext(r.Context()), from, to, &buf); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="nutrition_%s_%s.csv"`, from, to))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
