package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadonamonday/crtvsite/internal/booking"
	"github.com/sadonamonday/crtvsite/internal/catalog"
	"github.com/sadonamonday/crtvsite/internal/sessions"
	"github.com/sadonamonday/crtvsite/internal/studioapi"
)

type studioStub struct {
	mu       sync.Mutex
	status   int
	body     string
	payloads []map[string]any
}

func (s *studioStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)
	s.mu.Lock()
	s.payloads = append(s.payloads, payload)
	status, body := s.status, s.body
	s.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type bookingEnv struct {
	server *httptest.Server
	studio *studioStub
	store  *sessions.Store
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()
	studio := &studioStub{body: `{"success":true,"order_id":5150}`}
	studioSrv := httptest.NewServer(studio)
	t.Cleanup(studioSrv.Close)

	submitter := booking.NewHTTPSubmitter(studioapi.NewClient(studioSrv.URL, nil), booking.HTTPSubmitterConfig{CurrencySymbol: "R"}, nil)
	store := sessions.NewStore(func(context.Context) *booking.Controller {
		return booking.NewController(booking.ControllerConfig{
			Catalog:        catalog.Catalog{Services: catalog.DefaultFallback(), Source: catalog.SourceFallback},
			Submitter:      submitter,
			Now:            fixedNow,
			CurrencySymbol: "R",
		}, nil)
	}, time.Hour, nil)

	srv := httptest.NewServer(NewBookingHandler(store, nil).Routes())
	t.Cleanup(srv.Close)
	return &bookingEnv{server: srv, studio: studio, store: store}
}

func (e *bookingEnv) do(t *testing.T, method, path string, body any) (int, sessionResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out sessionResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode < 300 && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *bookingEnv) create(t *testing.T) string {
	t.Helper()
	code, out := e.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, out.SessionID)
	return "/sessions/" + out.SessionID
}

func TestBookingHandler_CatalogFlow(t *testing.T) {
	env := newBookingEnv(t)
	base := env.create(t)

	code, out := env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, booking.StepServiceSelect, out.State.Step)
	assert.Len(t, out.State.Services, 6)

	code, out = env.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Outcome)
	require.NotNil(t, out.Outcome.Blocked)
	assert.Equal(t, "service", out.Outcome.Blocked.Field)

	code, _ = env.do(t, http.MethodPut, base+"/service", map[string]string{"service_id": "event-video"})
	require.Equal(t, http.StatusOK, code)
	code, out = env.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, booking.StepDateTime, out.State.Step)

	code, out = env.do(t, http.MethodPut, base+"/date", map[string]string{"date": "2026-10-01"})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.DateApplied)
	assert.False(t, *out.DateApplied)
	assert.Empty(t, out.State.Draft.Date)

	code, out = env.do(t, http.MethodPut, base+"/date", map[string]string{"date": "2026-10-21"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, *out.DateApplied)

	code, _ = env.do(t, http.MethodPut, base+"/time", map[string]string{"start": "14:00"})
	require.Equal(t, http.StatusOK, code)
	code, out = env.do(t, http.MethodPut, base+"/time", map[string]string{"end": "16:00"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "14:00-16:00", out.State.Draft.TimeRange)
	env.do(t, http.MethodPost, base+"/next", nil)

	code, out = env.do(t, http.MethodPut, base+"/customer", map[string]string{"name": "Naledi", "email": "naledi@example.com", "phone": "0820000000"})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out.State.EmailError)
	env.do(t, http.MethodPost, base+"/next", nil)
	_, out = env.do(t, http.MethodPost, base+"/next", nil)
	assert.Equal(t, booking.StepPayment, out.State.Step)

	resp, err := http.Get(env.server.URL + base + "/review")
	require.NoError(t, err)
	var review booking.Review
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&review))
	resp.Body.Close()
	assert.Equal(t, "Event Videography", review.ServiceName)
	assert.Equal(t, "2 hours", review.Duration)

	code, _ = env.do(t, http.MethodPut, base+"/payment", map[string]string{"option": "deposit"})
	require.Equal(t, http.StatusOK, code)
	code, out = env.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Outcome.Result)
	assert.True(t, out.Outcome.Result.Success)
	assert.Equal(t, "5150", out.Outcome.Result.OrderID)
	assert.Equal(t, booking.PaymentDeposit, out.Outcome.Result.PaymentOption)
	assert.Equal(t, booking.StepServiceSelect, out.State.Step)
	assert.True(t, out.State.Draft.IsEmpty())

	require.Len(t, env.studio.payloads, 1)
	p := env.studio.payloads[0]
	assert.Equal(t, "event-video", p["service"])
	assert.Equal(t, "14:00", p["time_start"])
	assert.Equal(t, "16:00", p["time_end"])
	assert.NotContains(t, p, "price")
}

func TestBookingHandler_CustomFlowFailureKeepsDraft(t *testing.T) {
	env := newBookingEnv(t)
	env.studio.status = http.StatusInternalServerError
	env.studio.body = "<html>oops</html>"
	base := env.create(t)

	code, out := env.do(t, http.MethodPut, base+"/category", map[string]string{"category": "custom"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, out.State.Custom)
	assert.Len(t, out.State.VisibleSteps, 4)

	code, out = env.do(t, http.MethodPut, base+"/custom-request", map[string]any{"title": "Product Launch", "description": "Stills", "budget": "R 7,500"})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, out.State.CanAdvance)

	code, out = env.do(t, http.MethodPut, base+"/custom-request", map[string]any{"title": "Product Launch", "description": "Stills", "budget": "R 7,500", "confirm": true})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, out.State.CanAdvance)
	assert.Equal(t, booking.CustomServiceRef, out.State.Draft.ServiceRef)

	env.do(t, http.MethodPost, base+"/next", nil)
	env.do(t, http.MethodPut, base+"/date", map[string]string{"date": "2026-11-02"})
	env.do(t, http.MethodPut, base+"/time", map[string]string{"start": "10:00", "end": "12:30"})
	env.do(t, http.MethodPost, base+"/next", nil)
	env.do(t, http.MethodPut, base+"/customer", map[string]string{"name": "Kabelo", "email": "kabelo@example.com"})
	_, out = env.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, booking.StepReview, out.State.Step)
	before := out.State.Draft

	code, out = env.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Outcome.Result)
	assert.False(t, out.Outcome.Result.Success)
	assert.Equal(t, "Internal Server Error", out.Outcome.Result.Message)
	assert.Equal(t, booking.StepReview, out.State.Step)
	assert.Equal(t, before, out.State.Draft)

	require.Len(t, env.studio.payloads, 1)
	p := env.studio.payloads[0]
	assert.Equal(t, float64(0), p["service"])
	assert.Equal(t, "10:00-12:30", p["time"])
	assert.Equal(t, "Budget: R7500", p["notes"])
}

func TestBookingHandler_Errors(t *testing.T) {
	env := newBookingEnv(t)
	base := env.create(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{"unknown session", http.MethodGet, "/sessions/does-not-exist", nil, http.StatusNotFound},
		{"unknown service", http.MethodPut, base + "/service", map[string]string{"service_id": "nope"}, http.StatusUnprocessableEntity},
		{"missing service id", http.MethodPut, base + "/service", map[string]string{}, http.StatusBadRequest},
		{"bad category", http.MethodPut, base + "/category", map[string]string{"category": "drones"}, http.StatusBadRequest},
		{"bad date format", http.MethodPut, base + "/date", map[string]string{"date": "tomorrow"}, http.StatusBadRequest},
		{"off-grid time", http.MethodPut, base + "/time", map[string]string{"start": "07:00"}, http.StatusUnprocessableEntity},
		{"empty time body", http.MethodPut, base + "/time", map[string]string{}, http.StatusBadRequest},
		{"bad payment", http.MethodPut, base + "/payment", map[string]string{"option": "card"}, http.StatusBadRequest},
		{"incomplete confirm", http.MethodPut, base + "/custom-request", map[string]any{"title": "x", "confirm": true}, http.StatusUnprocessableEntity},
		{"custom update in catalog mode", http.MethodPut, base + "/custom-request", map[string]any{"title": "x"}, http.StatusConflict},
		{"submit from step 1", http.MethodPost, base + "/submit", nil, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestBookingHandler_CategoryLockedAfterStepOne(t *testing.T) {
	env := newBookingEnv(t)
	base := env.create(t)
	env.do(t, http.MethodPut, base+"/service", map[string]string{"service_id": "wedding-photo"})
	env.do(t, http.MethodPost, base+"/next", nil)

	code, _ := env.do(t, http.MethodPut, base+"/category", map[string]string{"category": "custom"})
	assert.Equal(t, http.StatusConflict, code)

	code, out := env.do(t, http.MethodPost, base+"/previous", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, out.Outcome.Moved)
	assert.Equal(t, booking.StepServiceSelect, out.State.Step)
}

func TestBookingHandler_ResetAndDelete(t *testing.T) {
	env := newBookingEnv(t)
	base := env.create(t)
	env.do(t, http.MethodPut, base+"/service", map[string]string{"service_id": "wedding-photo"})

	code, out := env.do(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, out.State.Draft.IsEmpty())

	code, _ = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 0, env.store.Len())
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusForError(booking.ErrSubmitting))
	assert.Equal(t, http.StatusUnprocessableEntity, statusForError(booking.ErrUnknownService))
	assert.Equal(t, http.StatusInternalServerError, statusForError(assert.AnError))
	assert.Equal(t, "unknown service", publicMessage(booking.ErrUnknownService))
}
