package studioapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadonamonday/crtvsite/pkg/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", logging.New("error"))
}

func TestClient_ListServices_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != ServicesListPath {
			t.Fatalf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"wedding-photo"}]}`))
	})

	raw, err := client.ListServices(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[{"id":"wedding-photo"}]}`, string(raw))
}

func TestClient_ListServices_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream failed", http.StatusBadGateway)
	})

	_, err := client.ListServices(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestClient_ListServices_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.ListServices(context.Background())
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestClient_ListServices_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListServices(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_CreateBooking_CatalogPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != BookingFormPath {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Booked","order_id":42}`))
	})

	resp, err := client.CreateBooking(context.Background(), CatalogBookingPayload{
		Service:       "wedding-photo",
		ItemName:      "Wedding Photography",
		Date:          "2026-11-02",
		TimeStart:     "10:00",
		TimeEnd:       "12:30",
		CustomerName:  "Thandi",
		CustomerEmail: "thandi@example.com",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, OrderID("42"), resp.OrderID)
	assert.Equal(t, "Booked", resp.Message)

	assert.Equal(t, "wedding-photo", got["service"])
	assert.Equal(t, "10:00", got["time_start"])
	assert.NotContains(t, got, "price")
	assert.NotContains(t, got, "customer_phone")
	assert.NotContains(t, got, "time")
}

func TestClient_CreateBooking_CustomPayloadSendsZeroService(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true,"order_id":"ORD-7"}`))
	})

	resp, err := client.CreateBooking(context.Background(), CustomBookingPayload{
		ItemName: "Product Launch",
		Time:     "09:00-11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, OrderID("ORD-7"), resp.OrderID)
	assert.Equal(t, float64(0), got["service"])
	assert.Equal(t, "09:00-11:00", got["time"])
	assert.NotContains(t, got, "time_start")
}

func TestClient_CreateBooking_NonJSONResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		success bool
		message string
	}{
		{"html error page", http.StatusInternalServerError, false, "Internal Server Error"},
		{"plain ok", http.StatusOK, true, "OK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("<html>PHP Warning</html>"))
			})

			resp, err := client.CreateBooking(context.Background(), CatalogBookingPayload{})
			require.NoError(t, err)
			assert.Equal(t, tt.success, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestClient_CreateBooking_ServerReportedFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Date unavailable"}`))
	})

	resp, err := client.CreateBooking(context.Background(), CatalogBookingPayload{})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Date unavailable", resp.Message)
	assert.Empty(t, resp.OrderID)
}

func TestClient_CreateBooking_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	client := NewClient(url, logging.New("error"), WithTimeout(time.Second))
	_, err := client.CreateBooking(context.Background(), CatalogBookingPayload{})
	assert.Error(t, err)
}

func TestOrderIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want OrderID
	}{
		{`17`, "17"},
		{`"A-1"`, "A-1"},
		{`null`, ""},
		{`1.5`, "1.5"},
	}
	for _, tt := range tests {
		var id OrderID
		require.NoError(t, json.Unmarshal([]byte(tt.in), &id), tt.in)
		assert.Equal(t, tt.want, id, tt.in)
	}
}
