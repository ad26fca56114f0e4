// Package studioapi is the HTTP client for the studio's remote PHP API: the
// services list read by the catalog and the booking form endpoint written by
// the booking submitter.
package studioapi

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	ServicesListPath = "/services_list.php"
	BookingFormPath  = "/form_booking.php"
)

// CatalogBookingPayload is posted for a booking of a catalog service. Price is
// never sent; the server prices the booking.
type CatalogBookingPayload struct {
	Service         string `json:"service"`
	ItemName        string `json:"item_name"`
	ItemDescription string `json:"item_description"`
	Date            string `json:"date"`
	TimeStart       string `json:"time_start,omitempty"`
	TimeEnd         string `json:"time_end,omitempty"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// CustomBookingPayload is posted for a free-text custom request. Service is
// always 0 and the time range travels as a single "time" field.
type CustomBookingPayload struct {
	Service         int    `json:"service"`
	ItemName        string `json:"item_name"`
	ItemDescription string `json:"item_description"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// BookingResponse is the decoded reply of the booking form endpoint.
type BookingResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	OrderID OrderID `json:"order_id,omitempty"`
}

// OrderID accepts either a JSON string or number.
type OrderID string

func (o *OrderID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*o = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = OrderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*o = OrderID(strconv.FormatInt(i, 10))
		return nil
	}
	*o = OrderID(n.String())
	return nil
}
