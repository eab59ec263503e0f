package web

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"schedcal/internal/calendar"
	"schedcal/internal/datetime"
	"schedcal/internal/form"
	"schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/notify"
)

type monthResponse struct {
	Title    string              `json:"title"`
	Date     string              `json:"date"`
	Prev     string              `json:"prev"`
	Next     string              `json:"next"`
	Weeks    [][]model.DayCell   `json:"weeks"`
	Holidays map[string]string   `json:"holidays"`
	Events   map[string][]string `json:"events"`
}

type weekResponse struct {
	Title    string        `json:"title"`
	Prev     string        `json:"prev"`
	Next     string        `json:"next"`
	Dates    [7]string     `json:"dates"`
	Holidays [7]string     `json:"holidays"`
	Events   []model.Event `json:"events"`
}

type notificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Options       []notify.Option       `json:"options"`
}

type importResponse struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Events   []model.Event `json:"events"`
}

// handleMonth serves GET /api/calendar/month?date=: the month grid with
// holidays, the dates of the neighbouring pages and, per day, the IDs of
// events falling on it.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	holidays := s.holidays.ForMonth(date)
	weeks := calendar.MonthCells(date, holidays)
	occ := s.expandAround(date)
	byDay := make(map[string][]string)
	for _, week := range weeks {
		for _, cell := range week {
			if cell.Blank() {
				continue
			}
			day := time.Date(date.Year(), date.Month(), cell.Day, 0, 0, 0, 0, s.loc)
			for _, ev := range calendar.EventsForDay(occ, day) {
				byDay[cell.DateString] = append(byDay[cell.DateString], ev.ID)
			}
		}
	}

	prev, next := pages(date, calendar.ViewMonth)
	writeJSON(w, http.StatusOK, monthResponse{
		Title:    calendar.FormatMonth(date),
		Date:     calendar.FormatDate(date, 0),
		Prev:     prev,
		Next:     next,
		Weeks:    weeks,
		Holidays: holidays,
		Events:   byDay,
	})
}

// handleWeek serves GET /api/calendar/week?date=.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	var resp weekResponse
	resp.Title = calendar.FormatWeek(date)
	resp.Prev, resp.Next = pages(date, calendar.ViewWeek)
	for i, d := range calendar.WeekDates(date) {
		resp.Dates[i] = d.Format(datetime.DateLayout)
		resp.Holidays[i] = s.holidays.Name(resp.Dates[i])
	}
	resp.Events = calendar.FilterByView(s.expandAround(date), "", date, calendar.ViewWeek)
	writeJSON(w, http.StatusOK, resp)
}

// pages returns the dates one page back and one page forward from date.
func pages(date time.Time, view calendar.View) (prev, next string) {
	prev = calendar.Navigate(date, view, -1).Format(datetime.DateLayout)
	next = calendar.Navigate(date, view, 1).Format(datetime.DateLayout)
	return prev, next
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	writeJSON(w, http.StatusOK, s.holidays.ForMonth(date))
}

// handleNotifications runs a poll first so a client that polls this endpoint
// sees alerts even between scheduler ticks.
func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	s.PollNotifications()
	writeJSON(w, http.StatusOK, notificationsResponse{
		Notifications: s.tracker.Active(),
		Options:       notify.Options(),
	})
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	i := parseIntDefault(r.PathValue("index"), -1)
	if !s.tracker.Dismiss(i) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	body := ics.Export(s.store.List(), s.loc, s.now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedcal.ics"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// handleImport serves POST /api/import. The ICS payload is the request body,
// or is downloaded from ?url= when given. Events that fail validation are
// skipped; the rest are stored in one batch.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var (
		body []byte
		err  error
	)
	if u := r.URL.Query().Get("url"); u != "" {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()
		body, err = s.fetcher.Fetch(ctx, u)
		if err != nil {
			writeError(w, http.StatusBadGateway, "failed to fetch calendar")
			return
		}
	} else {
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "calendar too large")
			return
		}
	}

	parsed, err := ics.Import(body, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid calendar: "+err.Error())
		return
	}

	valid := make([]model.Event, 0, len(parsed))
	for _, ev := range parsed {
		if verr := form.Validate(ev); verr != nil {
			appLog.Warn("import: event rejected", "title", ev.Title, "date", ev.Date, "err", verr)
			continue
		}
		valid = append(valid, ev)
	}

	created, err := s.store.CreateMany(valid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save events")
		return
	}
	appLog.Info("calendar imported", "imported", len(created), "skipped", len(parsed)-len(valid))
	writeJSON(w, http.StatusCreated, importResponse{
		Imported: len(created),
		Skipped:  len(parsed) - len(valid),
		Events:   created,
	})
}
