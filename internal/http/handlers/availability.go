package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sadonamonday/crtvsite/internal/availability"
)

// AvailabilityHandler serves the calendar and time grid.
type AvailabilityHandler struct {
	now func() time.Time
}

func NewAvailabilityHandler(now func() time.Time) *AvailabilityHandler {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityHandler{now: now}
}

// Routes mounts the calendar and time grid under /api/availability.
func (h *AvailabilityHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/calendar", h.Calendar)
	r.Get("/times", h.Times)
	return r
}

// Calendar returns the month grid with past days disabled. Months before
// the current one are shown as the current month.
// GET /api/availability/calendar?month=YYYY-MM
func (h *AvailabilityHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	current := availability.MonthOf(now)
	month := current
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		m, err := availability.ParseMonth(raw)
		if err != nil {
			jsonError(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		if !m.Before(current) {
			month = m
		}
	}
	writeJSON(w, http.StatusOK, month.View(now))
}

type timesResponse struct {
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
	Options  []string `json:"options"`
	Duration string   `json:"duration,omitempty"`
}

// Times returns the start grid, or the end options after start. With both
// start and end it also returns the duration label.
// GET /api/availability/times?start=HH:MM&end=HH:MM
func (h *AvailabilityHandler) Times(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))

	var picker availability.TimePicker
	if err := picker.SetStart(start); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := picker.SetEnd(end); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, timesResponse{
		Start:    picker.Start,
		End:      picker.End,
		Options:  picker.EndOptions(),
		Duration: picker.DurationLabel(),
	})
}
