package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sadonamonday/crtvsite/internal/availability"
	"github.com/sadonamonday/crtvsite/internal/booking"
	"github.com/sadonamonday/crtvsite/internal/sessions"
	"github.com/sadonamonday/crtvsite/pkg/logging"
)

// BookingHandler exposes the booking workflow of each visitor session.
type BookingHandler struct {
	sessions *sessions.Store
	validate *validator.Validate
	logger   *logging.Logger
}

func NewBookingHandler(store *sessions.Store, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{
		sessions: store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

type categoryRequest struct {
	Category string `json:"category" validate:"required,oneof=all photography videography combo custom"`
}

type serviceRequest struct {
	ServiceID string `json:"service_id" validate:"required,max=200"`
}

type customRequestRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=4000"`
	Budget      string `json:"budget" validate:"max=32"`
	Confirm     bool   `json:"confirm"`
	Source      string `json:"source" validate:"omitempty,oneof=inline modal"`
}

type dateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type timeRequest struct {
	Start *string `json:"start" validate:"omitempty,max=5"`
	End   *string `json:"end" validate:"omitempty,max=5"`
}

type customerRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Email   string `json:"email" validate:"max=254"`
	Phone   string `json:"phone" validate:"max=40"`
	Address string `json:"address" validate:"max=500"`
	Notes   string `json:"notes" validate:"max=4000"`
}

type paymentRequest struct {
	Option string `json:"option" validate:"omitempty,oneof=full deposit"`
}

type sessionResponse struct {
	SessionID   string           `json:"session_id"`
	State       booking.Snapshot `json:"state"`
	Outcome     *booking.Outcome `json:"outcome,omitempty"`
	DateApplied *bool            `json:"date_applied,omitempty"`
}

// Routes mounts the session endpoints; the router serves them under
// /api/bookings.
func (h *BookingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{sessionID}", func(s chi.Router) {
		s.Get("/", h.GetSession)
		s.Delete("/", h.DeleteSession)
		s.Get("/review", h.Review)
		s.Put("/category", h.SetCategory)
		s.Put("/service", h.SelectService)
		s.Put("/custom-request", h.SetCustomRequest)
		s.Put("/date", h.SelectDate)
		s.Put("/time", h.SetTime)
		s.Put("/customer", h.SetCustomer)
		s.Put("/payment", h.SetPayment)
		s.Post("/next", h.Next)
		s.Post("/previous", h.Previous)
		s.Post("/reset", h.Reset)
		s.Post("/submit", h.Submit)
	})
	return r
}

func (h *BookingHandler) controller(w http.ResponseWriter, r *http.Request) (string, *booking.Controller, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if id == "" {
		jsonError(w, "missing session id", http.StatusBadRequest)
		return "", nil, false
	}
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		jsonError(w, "booking session not found", http.StatusNotFound)
		return "", nil, false
	}
	return id, ctrl, true
}

func (h *BookingHandler) fail(w http.ResponseWriter, sessionID string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("booking request failed", "session_id", sessionID, "error", err)
		jsonError(w, "internal error", status)
		return
	}
	jsonError(w, publicMessage(err), status)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, booking.ErrSubmitting),
		errors.Is(err, booking.ErrCategoryLocked),
		errors.Is(err, booking.ErrWrongBranch),
		errors.Is(err, booking.ErrNotSubmittable):
		return http.StatusConflict
	case errors.Is(err, booking.ErrUnknownService),
		errors.Is(err, booking.ErrUnknownCategory),
		errors.Is(err, booking.ErrIncompleteCustomRequest),
		errors.Is(err, booking.ErrInvalidPaymentOption),
		errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, availability.ErrInvalidTime),
		errors.Is(err, availability.ErrEndBeforeStart),
		errors.Is(err, availability.ErrInvalidRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage strips the package prefix from sentinel messages.
func publicMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"booking: ", "availability: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}

func (h *BookingHandler) respond(w http.ResponseWriter, status int, id string, ctrl *booking.Controller, outcome *booking.Outcome) {
	writeJSON(w, status, sessionResponse{SessionID: id, State: ctrl.Snapshot(), Outcome: outcome})
}

// CreateSession starts a booking and loads its catalog.
// POST /api/bookings/sessions
func (h *BookingHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl := h.sessions.Create(r.Context())
	h.respond(w, http.StatusCreated, id, ctrl, nil)
}

// GetSession returns the session state.
// GET /api/bookings/sessions/{sessionID}
func (h *BookingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// DeleteSession abandons the booking.
// DELETE /api/bookings/sessions/{sessionID}
func (h *BookingHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if !h.sessions.Delete(id) {
		jsonError(w, "booking session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCategory switches the step 1 filter or the custom branch.
// PUT /api/bookings/sessions/{sessionID}/category
func (h *BookingHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if err := ctrl.SetCategory(req.Category); err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// SelectService picks a catalog service.
// PUT /api/bookings/sessions/{sessionID}/service
func (h *BookingHandler) SelectService(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req serviceRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if err := ctrl.SelectService(req.ServiceID); err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// SetCustomRequest stores or confirms the custom request form.
// PUT /api/bookings/sessions/{sessionID}/custom-request
func (h *BookingHandler) SetCustomRequest(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req customRequestRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	form := booking.CustomRequestForm{Title: req.Title, Description: req.Description, Budget: req.Budget}
	var err error
	if req.Confirm {
		source := booking.FormInline
		if req.Source == string(booking.FormModal) {
			source = booking.FormModal
		}
		err = ctrl.ConfirmCustomRequest(form, source)
	} else {
		err = ctrl.UpdateCustomRequest(form)
	}
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// SelectDate sets the booking date. Past dates are ignored and reported
// with date_applied=false.
// PUT /api/bookings/sessions/{sessionID}/date
func (h *BookingHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req dateRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	applied, err := ctrl.SelectDate(req.Date)
	if err != nil {
		h.fail(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, State: ctrl.Snapshot(), DateApplied: &applied})
}

// SetTime sets the start, the end, or both.
// PUT /api/bookings/sessions/{sessionID}/time
func (h *BookingHandler) SetTime(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req timeRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	var err error
	switch {
	case req.Start != nil && req.End != nil:
		err = ctrl.SetTime(*req.Start, *req.End)
	case req.Start != nil:
		err = ctrl.SetStartTime(*req.Start)
	case req.End != nil:
		err = ctrl.SetEndTime(*req.End)
	default:
		jsonError(w, "start or end required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// SetCustomer stores the contact details.
// PUT /api/bookings/sessions/{sessionID}/customer
func (h *BookingHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	err := ctrl.SetCustomer(booking.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// SetPayment records the payment choice.
// PUT /api/bookings/sessions/{sessionID}/payment
func (h *BookingHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if err := ctrl.SetPaymentOption(booking.PaymentOption(req.Option)); err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// Next advances, or submits a custom request from review.
// POST /api/bookings/sessions/{sessionID}/next
func (h *BookingHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	out, err := ctrl.Next(r.Context())
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, &out)
}

// Previous goes back one step.
// POST /api/bookings/sessions/{sessionID}/previous
func (h *BookingHandler) Previous(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	out, err := ctrl.Previous()
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, &out)
}

// Reset clears the draft and returns to step 1.
// POST /api/bookings/sessions/{sessionID}/reset
func (h *BookingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := ctrl.Reset(); err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, nil)
}

// Submit posts the booking from its final step. A rejected booking is
// reported in outcome.result with the state left as it was.
// POST /api/bookings/sessions/{sessionID}/submit
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	out, err := ctrl.Submit(r.Context())
	if err != nil {
		h.fail(w, id, err)
		return
	}
	h.respond(w, http.StatusOK, id, ctrl, &out)
}

// Review returns the summary shown on the review step.
// GET /api/bookings/sessions/{sessionID}/review
func (h *BookingHandler) Review(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Review())
}
