package booking

import (
	"fmt"
	"strings"
)

const invalidEmailMessage = "Please enter a valid email address"

// ValidationError is the first unmet requirement that blocks leaving a step.
// It is reported as a value, not returned as an error.
type ValidationError struct {
	Step    Step   `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d (%s): %s: %s", e.Step, e.Step, e.Field, e.Message)
}

// ValidationInput is the snapshot a step validator sees.
type ValidationInput struct {
	Draft Draft
	// Custom is true when the custom-request branch is active.
	Custom bool
	// EmailError is the outstanding email format error, if any.
	EmailError string
}

// Validator checks one step. A nil result means the step is complete.
type Validator func(in ValidationInput) *ValidationError

var validators = map[Step]Validator{
	StepServiceSelect: ValidateServiceSelect,
	StepDateTime:      ValidateDateTime,
	StepDetails:       ValidateDetails,
	StepReview:        ValidateReview,
	StepPayment:       ValidatePayment,
}

// Validate runs the validator of step.
func Validate(step Step, in ValidationInput) *ValidationError {
	v, ok := validators[step]
	if !ok {
		return &ValidationError{Step: step, Field: "step", Message: "unknown step"}
	}
	return v(in)
}

// CanAdvance reports whether step is complete.
func CanAdvance(step Step, in ValidationInput) bool {
	return Validate(step, in) == nil
}

// ValidateThrough validates every step from the first up to and including
// last, returning the first failure.
func ValidateThrough(last Step, in ValidationInput) *ValidationError {
	for s := firstStep; s <= last; s++ {
		if verr := Validate(s, in); verr != nil {
			return verr
		}
	}
	return nil
}

// ValidateServiceSelect requires a catalog selection, or in the custom
// branch both request fields and the custom sentinel. Filled fields alone do
// not count: the sentinel is written only when the request is confirmed.
func ValidateServiceSelect(in ValidationInput) *ValidationError {
	d := in.Draft
	if !in.Custom {
		if d.ServiceRef == "" || d.IsCustom() {
			return &ValidationError{Step: StepServiceSelect, Field: "service", Message: "Please select a service"}
		}
		return nil
	}
	if strings.TrimSpace(d.CustomRequest.Title) == "" {
		return &ValidationError{Step: StepServiceSelect, Field: "custom_request.title", Message: "Please give your request a title"}
	}
	if strings.TrimSpace(d.CustomRequest.Description) == "" {
		return &ValidationError{Step: StepServiceSelect, Field: "custom_request.description", Message: "Please describe what you need"}
	}
	if !d.IsCustom() {
		return &ValidationError{Step: StepServiceSelect, Field: "custom_request", Message: "Please confirm your custom request"}
	}
	return nil
}

// ValidateDateTime requires a date and a complete time range.
func ValidateDateTime(in ValidationInput) *ValidationError {
	if in.Draft.Date == "" {
		return &ValidationError{Step: StepDateTime, Field: "date", Message: "Please choose a date"}
	}
	if in.Draft.TimeRange == "" {
		return &ValidationError{Step: StepDateTime, Field: "time_range", Message: "Please choose a start and end time"}
	}
	return nil
}

// ValidateDetails requires a name and an email containing "@", with no
// outstanding email error.
func ValidateDetails(in ValidationInput) *ValidationError {
	c := in.Draft.Customer
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Step: StepDetails, Field: "customer.name", Message: "Please enter your name"}
	}
	if strings.TrimSpace(c.Email) == "" {
		return &ValidationError{Step: StepDetails, Field: "customer.email", Message: "Please enter your email address"}
	}
	if in.EmailError != "" || CheckEmail(c.Email) != "" {
		return &ValidationError{Step: StepDetails, Field: "customer.email", Message: invalidEmailMessage}
	}
	return nil
}

// ValidateReview always passes.
func ValidateReview(ValidationInput) *ValidationError {
	return nil
}

// ValidatePayment requires a payment option. Custom requests never reach
// this step.
func ValidatePayment(in ValidationInput) *ValidationError {
	if in.Custom {
		return &ValidationError{Step: StepPayment, Field: "payment_option", Message: "Custom requests are quoted before payment"}
	}
	if in.Draft.PaymentOption == PaymentNone {
		return &ValidationError{Step: StepPayment, Field: "payment_option", Message: "Please choose a payment option"}
	}
	return nil
}

// CheckEmail returns the format error for a non-empty email, or "". The only
// rule is the presence of "@".
func CheckEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" || strings.Contains(email, "@") {
		return ""
	}
	return invalidEmailMessage
}
