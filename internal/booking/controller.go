// Package booking is the multi-step booking workflow: the step state
// machine, per-step validation, the custom-request branch and submission of
// the completed draft to the studio API.
package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sadonamonday/crtvsite/internal/availability"
	"github.com/sadonamonday/crtvsite/internal/catalog"
	"github.com/sadonamonday/crtvsite/pkg/logging"
)

var (
	ErrSubmitting              = errors.New("booking: a submission is in progress")
	ErrUnknownService          = errors.New("booking: unknown service")
	ErrUnknownCategory         = errors.New("booking: unknown category")
	ErrCategoryLocked          = errors.New("booking: category can only change on the service step")
	ErrWrongBranch             = errors.New("booking: not available for the active booking type")
	ErrIncompleteCustomRequest = errors.New("booking: custom request needs a title and description")
	ErrInvalidPaymentOption    = errors.New("booking: invalid payment option")
	ErrNotSubmittable          = errors.New("booking: draft can only be submitted from its final step")
)

const submitFailedMessage = "We could not reach the booking service. Please try again."

// Transition directions and results reported to a TransitionObserver.
const (
	DirectionNext     = "next"
	DirectionPrevious = "previous"
	DirectionSubmit   = "submit"

	ResultMoved   = "moved"
	ResultBlocked = "blocked"
	ResultClamped = "clamped"
	ResultSuccess = "submitted"
	ResultFailed  = "failed"
)

// TransitionObserver receives every navigation attempt.
type TransitionObserver interface {
	ObserveTransition(direction, result string)
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	Catalog   catalog.Catalog
	Submitter Submitter
	// Now supplies the current time; its location decides what "today" is.
	Now            func() time.Time
	CurrencySymbol string
	Observer       TransitionObserver
}

// Outcome reports the effect of a navigation call.
type Outcome struct {
	Step    Step             `json:"step"`
	Moved   bool             `json:"moved"`
	Blocked *ValidationError `json:"blocked,omitempty"`
	Result  *SubmitResult    `json:"result,omitempty"`
}

// Controller owns one visitor's step and draft. All mutation goes through
// its methods. It is safe for concurrent use; the submit call runs outside
// the lock with navigation and edits refused until it returns.
type Controller struct {
	mu sync.Mutex

	catalog   catalog.Catalog
	submitter Submitter
	now       func() time.Time
	currency  string
	observer  TransitionObserver
	logger    *logging.Logger

	step       Step
	category   string
	draft      Draft
	picker     availability.TimePicker
	emailError string
	submitting bool
	lastResult *SubmitResult
}

// NewController returns a controller at step 1 with an empty draft.
func NewController(cfg ControllerConfig, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		catalog:   cfg.Catalog,
		submitter: cfg.Submitter,
		now:       now,
		currency:  cfg.CurrencySymbol,
		observer:  cfg.Observer,
		logger:    logger,
	}
	c.resetLocked()
	return c
}

func (c *Controller) resetLocked() {
	c.step = firstStep
	c.category = CategoryAll
	c.draft = Draft{}
	c.picker = availability.TimePicker{}
	c.emailError = ""
}

func (c *Controller) customLocked() bool {
	return c.category == CategoryCustom
}

func (c *Controller) inputLocked() ValidationInput {
	return ValidationInput{Draft: c.draft, Custom: c.customLocked(), EmailError: c.emailError}
}

func (c *Controller) observe(direction, result string) {
	if c.observer != nil {
		c.observer.ObserveTransition(direction, result)
	}
}

// Next advances one step when the current step validates. On the review step
// of a custom request it submits instead; there is no payment step.
func (c *Controller) Next(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return Outcome{}, ErrSubmitting
	}
	if c.customLocked() && c.step == StepReview {
		c.mu.Unlock()
		return c.Submit(ctx)
	}
	defer c.mu.Unlock()

	if verr := Validate(c.step, c.inputLocked()); verr != nil {
		c.observe(DirectionNext, ResultBlocked)
		return Outcome{Step: c.step, Blocked: verr}, nil
	}
	if c.step >= lastStep {
		c.observe(DirectionNext, ResultClamped)
		return Outcome{Step: c.step}, nil
	}
	c.step++
	c.observe(DirectionNext, ResultMoved)
	c.logger.Debug("booking step advanced", "step", c.step.String())
	return Outcome{Step: c.step, Moved: true}, nil
}

// Previous goes back one step without validating. It is refused only while
// a submission is outstanding.
func (c *Controller) Previous() (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return Outcome{}, ErrSubmitting
	}
	if c.step <= firstStep {
		c.observe(DirectionPrevious, ResultClamped)
		return Outcome{Step: c.step}, nil
	}
	c.step--
	c.observe(DirectionPrevious, ResultMoved)
	return Outcome{Step: c.step, Moved: true}, nil
}

// Submit posts the draft from its final step: payment for catalog bookings,
// review for custom requests. Every step up to the final one must validate.
// The post is not tied to ctx's cancellation so a dropped caller does not
// abort a booking in flight. Success resets the workflow; failure leaves the
// step and draft untouched and reports the message in the outcome.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return Outcome{}, ErrSubmitting
	}
	custom := c.customLocked()
	final := finalStep(custom)
	if c.step != final {
		step := c.step
		c.mu.Unlock()
		return Outcome{Step: step}, ErrNotSubmittable
	}
	if verr := ValidateThrough(final, c.inputLocked()); verr != nil {
		step := c.step
		c.observe(DirectionSubmit, ResultBlocked)
		c.mu.Unlock()
		return Outcome{Step: step, Blocked: verr}, nil
	}
	sub := Submission{Draft: c.draft, Custom: custom}
	if !custom {
		svc, ok := c.catalog.Find(c.draft.ServiceRef)
		if !ok {
			c.mu.Unlock()
			return Outcome{Step: final}, ErrUnknownService
		}
		sub.Service = svc
	}
	if c.submitter == nil {
		c.mu.Unlock()
		return Outcome{Step: final}, errors.New("booking: no submitter configured")
	}
	c.submitting = true
	c.mu.Unlock()

	result, err := c.submitter.Submit(context.WithoutCancel(ctx), sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		c.logger.Warn("booking submission failed", "branch", sub.Branch(), "error", err)
		result = &SubmitResult{Success: false, Message: submitFailedMessage}
	}
	if result == nil {
		result = &SubmitResult{Success: false, Message: submitFailedMessage}
	}
	if !result.Success {
		if result.Message == "" {
			result.Message = submitFailedMessage
		}
		c.lastResult = result
		c.observe(DirectionSubmit, ResultFailed)
		c.logger.Warn("booking rejected", "branch", sub.Branch(), "message", result.Message)
		return Outcome{Step: c.step, Result: result}, nil
	}

	c.resetLocked()
	c.lastResult = result
	c.observe(DirectionSubmit, ResultSuccess)
	c.logger.Info("booking completed", "branch", sub.Branch(), "order_id", result.OrderID)
	return Outcome{Step: c.step, Moved: true, Result: result}, nil
}

// Reset abandons the draft and returns to step 1 with the "all" filter.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	c.resetLocked()
	c.lastResult = nil
	return nil
}

// SetCategory changes the step 1 filter. Crossing between the catalog and
// custom branches clears the other branch's selection; narrowing the
// catalog filter drops a selected service that no longer matches.
func (c *Controller) SetCategory(category string) error {
	if !knownCategories[category] {
		return ErrUnknownCategory
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if c.step != StepServiceSelect {
		return ErrCategoryLocked
	}
	wasCustom := c.customLocked()
	c.category = category
	if wasCustom != c.customLocked() {
		c.draft.ServiceRef = ""
		c.draft.CustomRequest = CustomRequest{}
		c.draft.PaymentOption = PaymentNone
		return nil
	}
	if !c.customLocked() && c.draft.ServiceRef != "" && category != CategoryAll {
		if svc, ok := c.catalog.Find(c.draft.ServiceRef); !ok || string(svc.Category) != category {
			c.draft.ServiceRef = ""
		}
	}
	return nil
}

// SelectService picks a catalog service by id.
func (c *Controller) SelectService(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if c.customLocked() {
		return ErrWrongBranch
	}
	if id == CustomServiceRef {
		return ErrUnknownService
	}
	if _, ok := c.catalog.Find(id); !ok {
		return ErrUnknownService
	}
	c.draft.ServiceRef = id
	return nil
}

// SelectDate sets the draft date from "YYYY-MM-DD". A day before today is
// ignored and reported as applied=false with no error.
func (c *Controller) SelectDate(date string) (applied bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return false, ErrSubmitting
	}
	now := c.now()
	candidate, err := availability.ParseDate(date, now.Location())
	if err != nil {
		return false, err
	}
	value, ok := availability.SelectDate(candidate, now)
	if !ok {
		return false, nil
	}
	c.draft.Date = value
	return true, nil
}

// SetStartTime sets the range start; an end no longer after it is cleared.
func (c *Controller) SetStartTime(start string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if err := c.picker.SetStart(start); err != nil {
		return err
	}
	c.draft.TimeRange = c.picker.Range()
	return nil
}

// SetEndTime sets the range end, which must follow the start.
func (c *Controller) SetEndTime(end string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if err := c.picker.SetEnd(end); err != nil {
		return err
	}
	c.draft.TimeRange = c.picker.Range()
	return nil
}

// SetTime applies start then end as one change; on error nothing changes.
func (c *Controller) SetTime(start, end string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	picker := c.picker
	if err := picker.SetStart(start); err != nil {
		return err
	}
	if err := picker.SetEnd(end); err != nil {
		return err
	}
	c.picker = picker
	c.draft.TimeRange = picker.Range()
	return nil
}

// SetCustomer replaces the contact details and re-checks the email format.
func (c *Controller) SetCustomer(customer Customer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	c.draft.Customer = customer
	c.emailError = CheckEmail(customer.Email)
	return nil
}

// UpdateCustomRequest stores form input without confirming it. The sentinel
// is only kept while the stored request stays complete.
func (c *Controller) UpdateCustomRequest(form CustomRequestForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if !c.customLocked() {
		return ErrWrongBranch
	}
	c.draft.CustomRequest = form.Request()
	if !c.draft.CustomRequest.Complete() && c.draft.IsCustom() {
		c.draft.ServiceRef = ""
	}
	return nil
}

// ConfirmCustomRequest stores the request and marks the draft as custom in
// one write. Confirming from the modal on step 1 switches a catalog draft
// to the custom branch first.
func (c *Controller) ConfirmCustomRequest(form CustomRequestForm, source FormSource) error {
	req := form.Request()
	if !req.Complete() {
		return ErrIncompleteCustomRequest
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if !c.customLocked() {
		if source != FormModal || c.step != StepServiceSelect {
			return ErrWrongBranch
		}
		c.category = CategoryCustom
	}
	c.draft.CustomRequest = req
	c.draft.ServiceRef = CustomServiceRef
	c.draft.PaymentOption = PaymentNone
	return nil
}

// SetPaymentOption records the payment choice of a catalog booking.
func (c *Controller) SetPaymentOption(option PaymentOption) error {
	switch option {
	case PaymentFull, PaymentDeposit, PaymentNone:
	default:
		return ErrInvalidPaymentOption
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitting
	}
	if c.customLocked() {
		return ErrWrongBranch
	}
	c.draft.PaymentOption = option
	return nil
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Step           Step              `json:"step"`
	StepName       string            `json:"step_name"`
	VisibleSteps   []Step            `json:"visible_steps"`
	Category       string            `json:"category"`
	Custom         bool              `json:"custom"`
	Draft          Draft             `json:"draft"`
	EmailError     string            `json:"email_error,omitempty"`
	CanAdvance     bool              `json:"can_advance"`
	Blocked        *ValidationError  `json:"blocked,omitempty"`
	Submitting     bool              `json:"submitting"`
	Services       []catalog.Service `json:"services"`
	CatalogSource  catalog.Source    `json:"catalog_source"`
	CatalogWarning string            `json:"catalog_warning,omitempty"`
	LastResult     *SubmitResult     `json:"last_result,omitempty"`
}

// Snapshot copies the current state. Services are filtered by the active
// category and empty on the custom branch.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	custom := c.customLocked()
	in := c.inputLocked()
	verr := Validate(c.step, in)
	snap := Snapshot{
		Step:           c.step,
		StepName:       c.step.String(),
		VisibleSteps:   VisibleSteps(custom),
		Category:       c.category,
		Custom:         custom,
		Draft:          c.draft,
		EmailError:     c.emailError,
		CanAdvance:     verr == nil,
		Blocked:        verr,
		Submitting:     c.submitting,
		CatalogSource:  c.catalog.Source,
		CatalogWarning: c.catalog.Warning,
		Services:       []catalog.Service{},
	}
	if !custom {
		snap.Services = c.catalog.Filter(c.category)
	}
	if c.lastResult != nil {
		r := *c.lastResult
		snap.LastResult = &r
	}
	return snap
}

// Review is the summary shown on the review step.
type Review struct {
	Custom        bool          `json:"custom"`
	ServiceID     string        `json:"service_id,omitempty"`
	ServiceName   string        `json:"service_name,omitempty"`
	Price         string        `json:"price,omitempty"`
	PriceType     string        `json:"price_type,omitempty"`
	Includes      []string      `json:"includes,omitempty"`
	Title         string        `json:"title,omitempty"`
	Description   string        `json:"description,omitempty"`
	Budget        string        `json:"budget,omitempty"`
	Date          string        `json:"date"`
	TimeRange     string        `json:"time_range"`
	Duration      string        `json:"duration,omitempty"`
	Customer      Customer      `json:"customer"`
	PaymentOption PaymentOption `json:"payment_option,omitempty"`
}

// Review summarizes the draft for the review step.
func (c *Controller) Review() Review {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := Review{
		Custom:        c.customLocked(),
		Date:          c.draft.Date,
		TimeRange:     c.draft.TimeRange,
		Duration:      c.picker.DurationLabel(),
		Customer:      c.draft.Customer.trimmed(),
		PaymentOption: c.draft.PaymentOption,
	}
	if r.Custom {
		r.Title = c.draft.CustomRequest.Title
		r.Description = c.draft.CustomRequest.Description
		r.Budget = FormatBudget(c.draft.CustomRequest.Budget, c.currency)
		r.PaymentOption = PaymentNone
		return r
	}
	if svc, ok := c.catalog.Find(c.draft.ServiceRef); ok {
		r.ServiceID = svc.ID
		r.ServiceName = svc.Name
		r.Price = svc.Price
		r.PriceType = svc.PriceType
		r.Includes = svc.Includes
	}
	return r
}
