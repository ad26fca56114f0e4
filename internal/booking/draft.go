package booking

import "strings"

// CustomServiceRef is the ServiceRef of a custom (non-catalog) request. It
// can only be written together with the request fields; see
// Controller.ConfirmCustomRequest.
const CustomServiceRef = "__custom__"

// Category filters on step 1. CategoryCustom switches to the custom branch.
const (
	CategoryAll    = "all"
	CategoryCustom = "custom"
)

var knownCategories = map[string]bool{
	CategoryAll:    true,
	"photography":  true,
	"videography":  true,
	"combo":        true,
	CategoryCustom: true,
}

// PaymentOption is the visitor's payment choice on step 5.
type PaymentOption string

const (
	PaymentNone    PaymentOption = ""
	PaymentFull    PaymentOption = "full"
	PaymentDeposit PaymentOption = "deposit"
)

// Customer holds the contact details entered on step 3.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

func (c Customer) trimmed() Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
		Notes:   strings.TrimSpace(c.Notes),
	}
}

// CustomRequest is the free-text request of the custom branch. Budget holds
// digits only.
type CustomRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      string `json:"budget,omitempty"`
}

// Complete reports whether title and description are both present.
func (r CustomRequest) Complete() bool {
	return strings.TrimSpace(r.Title) != "" && strings.TrimSpace(r.Description) != ""
}

// Draft is the in-progress booking accumulated across steps.
type Draft struct {
	ServiceRef    string        `json:"service_ref"`
	Date          string        `json:"date"`
	TimeRange     string        `json:"time_range"`
	Customer      Customer      `json:"customer"`
	PaymentOption PaymentOption `json:"payment_option"`
	CustomRequest CustomRequest `json:"custom_request"`
}

// IsCustom reports whether the draft carries the custom sentinel.
func (d Draft) IsCustom() bool {
	return d.ServiceRef == CustomServiceRef
}

// IsEmpty reports whether nothing has been entered.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}
