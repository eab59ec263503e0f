package web

import (
	"errors"
	"net/http"
	"time"

	"schedcal/internal/calendar"
	"schedcal/internal/datetime"
	"schedcal/internal/form"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/overlap"
	"schedcal/internal/recurrence"
	"schedcal/internal/store"
)

const msgOverlap = "일정이 겹칩니다."

type eventsPayload struct {
	Events []model.Event `json:"events"`
}

type overlapResponse struct {
	Overlapping []model.Event `json:"overlapping"`
}

type eventIDsRequest struct {
	EventIDs []string `json:"eventIds"`
}

// handleListEvents serves GET /api/events?q=&date=&view=week|month.
//
// Without date the stored events are searched as-is. With date, recurring
// series are expanded around it and the result is narrowed to the week or
// month containing date.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := q.Get("q")

	if q.Get("date") == "" {
		writeJSON(w, http.StatusOK, eventsPayload{Events: calendar.Search(s.store.List(), term)})
		return
	}

	date, ok := s.dateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	view := calendar.ParseView(q.Get("view"))
	occ := s.expandAround(date)
	writeJSON(w, http.StatusOK, eventsPayload{Events: calendar.FilterByView(occ, term, date, view)})
}

// expandAround materializes every stored event in the month containing date,
// padded by a week on each side so any week view fits.
func (s *Server) expandAround(date time.Time) []model.Event {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, s.loc)
	cfg := recurrence.ExpandConfig{
		Location:   s.loc,
		RangeStart: first.AddDate(0, 0, -7),
		RangeEnd:   first.AddDate(0, 1, 7),
	}
	res := recurrence.ExpandAll(s.store.List(), cfg)
	if res.Occurrences == nil {
		return []model.Event{}
	}
	return res.Occurrences
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	ev.ID = ""
	normalizeRepeat(&ev)

	if !s.checkEvent(w, r, ev) {
		return
	}

	created, err := s.store.Create(ev)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save event")
		return
	}
	appLog.Info("event created", "id", created.ID, "date", created.Date, "repeat", created.Repeat.Type)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var ev model.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	ev.ID = id
	normalizeRepeat(&ev)

	if _, err := s.store.Get(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	if !s.checkEvent(w, r, ev) {
		return
	}

	updated, err := s.store.Update(id, ev)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.tracker.Forget(id)
	appLog.Info("event updated", "id", id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.tracker.Forget(id)
	appLog.Info("event deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleOverlap serves POST /api/events/overlap: the events a draft would
// clash with, for the confirmation dialog. It never stores anything.
func (s *Server) handleOverlap(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	normalizeRepeat(&ev)
	writeJSON(w, http.StatusOK, overlapResponse{Overlapping: s.overlapping(ev)})
}

func (s *Server) handleCreateEvents(w http.ResponseWriter, r *http.Request) {
	var req eventsPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	for i := range req.Events {
		req.Events[i].ID = ""
		normalizeRepeat(&req.Events[i])
		if !s.validate(w, req.Events[i]) {
			return
		}
	}

	created, err := s.store.CreateMany(req.Events)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save events")
		return
	}
	appLog.Info("events created", "count", len(created))
	writeJSON(w, http.StatusCreated, eventsPayload{Events: created})
}

func (s *Server) handleUpdateEvents(w http.ResponseWriter, r *http.Request) {
	var req eventsPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	for i := range req.Events {
		normalizeRepeat(&req.Events[i])
		if !s.validate(w, req.Events[i]) {
			return
		}
	}

	updated, err := s.store.UpdateMany(req.Events)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	for _, ev := range updated {
		s.tracker.Forget(ev.ID)
	}
	appLog.Info("events updated", "count", len(updated))
	writeJSON(w, http.StatusOK, eventsPayload{Events: updated})
}

func (s *Server) handleDeleteEvents(w http.ResponseWriter, r *http.Request) {
	var req eventIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.store.DeleteMany(req.EventIDs); err != nil {
		s.writeStoreError(w, err)
		return
	}
	for _, id := range req.EventIDs {
		s.tracker.Forget(id)
	}
	appLog.Info("events deleted", "count", len(req.EventIDs))
	w.WriteHeader(http.StatusNoContent)
}

// checkEvent validates ev and, unless ?force=true, rejects it with 409 when
// it overlaps a stored event. It writes the error response itself.
func (s *Server) checkEvent(w http.ResponseWriter, r *http.Request, ev model.Event) bool {
	if !s.validate(w, ev) {
		return false
	}
	if r.URL.Query().Get("force") == "true" {
		return true
	}
	if clash := s.overlapping(ev); len(clash) > 0 {
		writeJSON(w, http.StatusConflict, errorResponse{Error: msgOverlap, Overlapping: clash})
		return false
	}
	return true
}

func (s *Server) validate(w http.ResponseWriter, ev model.Event) bool {
	err := form.Validate(ev)
	if err == nil {
		return true
	}
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return false
}

// overlapping expands ev and the stored events from ev's date through the
// configured horizon (or just ev's day when ev does not repeat).
func (s *Server) overlapping(ev model.Event) []model.Event {
	start, ok := datetime.ParseDate(ev.Date, s.loc)
	if !ok {
		return []model.Event{}
	}
	end := start.AddDate(0, 0, 1)
	if ev.Repeat.Recurring() {
		end = start.AddDate(0, 0, s.cfg.OverlapHorizonDays)
	}
	return overlap.FindOverlappingOccurrences(ev, s.store.List(), overlap.Window{
		Location: s.loc,
		Start:    start,
		End:      end,
	})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to save events")
}

// normalizeRepeat fills in the defaults a form omits: no repeat type means
// none, and the interval is at least 1.
func normalizeRepeat(ev *model.Event) {
	if ev.Repeat.Type == "" {
		ev.Repeat.Type = model.RepeatNone
	}
	if ev.Repeat.Interval < 1 {
		ev.Repeat.Interval = 1
	}
}
