package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"schedcal/internal/config"
	"schedcal/internal/datetime"
	"schedcal/internal/holiday"
	"schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/notify"
	"schedcal/internal/store"
)

const (
	maxJSONBody   = 1 << 20
	maxImportBody = 10 << 20
)

// Server provides the HTTP API over the event store.
type Server struct {
	cfg      *config.Config
	loc      *time.Location
	store    *store.Store
	holidays *holiday.Table
	tracker  *notify.Tracker
	fetcher  *ics.Fetcher
	now      func() time.Time
	mux      *http.ServeMux
}

// NewServer constructs a new Server. holidays and tracker may be nil, in
// which case the built-in holiday table and a fresh tracker are used.
func NewServer(cfg *config.Config, st *store.Store, holidays *holiday.Table, tracker *notify.Tracker) *Server {
	if holidays == nil {
		holidays = holiday.Builtin()
	}
	if tracker == nil {
		tracker = notify.NewTracker()
	}
	s := &Server{
		cfg:      cfg,
		loc:      cfg.Location(),
		store:    st,
		holidays: holidays,
		tracker:  tracker,
		fetcher:  ics.NewFetcher(nil),
		now:      time.Now,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// PollNotifications runs one notification tick against the stored events
// and returns the alerts that are new since the last tick.
func (s *Server) PollNotifications() []notify.Notification {
	return s.tracker.Poll(s.now().In(s.loc), s.store.List())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("POST /api/events/overlap", s.handleOverlap)

	s.mux.HandleFunc("POST /api/events-list", s.handleCreateEvents)
	s.mux.HandleFunc("PUT /api/events-list", s.handleUpdateEvents)
	s.mux.HandleFunc("DELETE /api/events-list", s.handleDeleteEvents)

	s.mux.HandleFunc("GET /api/calendar/month", s.handleMonth)
	s.mux.HandleFunc("GET /api/calendar/week", s.handleWeek)
	s.mux.HandleFunc("GET /api/holidays", s.handleHolidays)

	s.mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	s.mux.HandleFunc("DELETE /api/notifications/{index}", s.handleDismissNotification)

	s.mux.HandleFunc("GET /api/events.ics", s.handleExport)
	s.mux.HandleFunc("POST /api/import", s.handleImport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// dateParam reads ?date=YYYY-MM-DD as midnight in the server zone. A missing
// value means today.
func (s *Server) dateParam(r *http.Request) (time.Time, bool) {
	v := r.URL.Query().Get("date")
	if v == "" {
		now := s.now().In(s.loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc), true
	}
	return datetime.ParseDate(v, s.loc)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if r.URL.Path == "/health" {
			return
		}
		appLog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error       string            `json:"error"`
	Fields      map[string]string `json:"fields,omitempty"`
	Overlapping any               `json:"overlapping,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
