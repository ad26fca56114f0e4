package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadonamonday/crtvsite/internal/availability"
	"github.com/sadonamonday/crtvsite/internal/catalog"
	"github.com/sadonamonday/crtvsite/internal/studioapi"
	"github.com/sadonamonday/crtvsite/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var submitTracer = otel.Tracer("crtvsite.internal.booking")

// Branch labels for logs and metrics.
const (
	BranchCatalog = "catalog"
	BranchCustom  = "custom"
)

// Submission is a completed draft ready to be posted.
type Submission struct {
	Draft Draft
	// Service is the resolved catalog entry; zero for custom requests.
	Service catalog.Service
	Custom  bool
}

// Branch returns BranchCustom or BranchCatalog.
func (s Submission) Branch() string {
	if s.Custom {
		return BranchCustom
	}
	return BranchCatalog
}

// SubmitResult is the outcome of one submission attempt.
type SubmitResult struct {
	Success       bool          `json:"success"`
	OrderID       string        `json:"order_id,omitempty"`
	Message       string        `json:"message,omitempty"`
	PaymentOption PaymentOption `json:"payment_option,omitempty"`
}

// Submitter posts a completed draft. It performs one attempt and never
// retries; a transport failure is reported as an error.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*SubmitResult, error)
}

// BookingClient is the remote booking endpoint.
type BookingClient interface {
	CreateBooking(ctx context.Context, payload any) (*studioapi.BookingResponse, error)
}

// SubmitObserver receives the outcome of each submission.
type SubmitObserver interface {
	ObserveSubmission(branch string, success bool, elapsed time.Duration)
}

// HTTPSubmitter posts drafts to the booking form endpoint.
type HTTPSubmitter struct {
	client         BookingClient
	currencySymbol string
	observer       SubmitObserver
	logger         *logging.Logger
}

// HTTPSubmitterConfig configures an HTTPSubmitter.
type HTTPSubmitterConfig struct {
	CurrencySymbol string
	Observer       SubmitObserver
}

// NewHTTPSubmitter wires a submitter to the remote API client.
func NewHTTPSubmitter(client BookingClient, cfg HTTPSubmitterConfig, logger *logging.Logger) *HTTPSubmitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPSubmitter{
		client:         client,
		currencySymbol: cfg.CurrencySymbol,
		observer:       cfg.Observer,
		logger:         logger,
	}
}

// Submit builds the branch payload and posts it once.
func (s *HTTPSubmitter) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("booking: submitter not configured")
	}
	branch := sub.Branch()
	ctx, span := submitTracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(attribute.String("crtv.booking.branch", branch))

	payload, err := BuildPayload(sub, s.currencySymbol)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payload")
		return nil, err
	}

	start := time.Now()
	resp, err := s.client.CreateBooking(ctx, payload)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		s.observe(branch, false, elapsed)
		return nil, fmt.Errorf("booking: create booking: %w", err)
	}

	result := &SubmitResult{
		Success: resp.Success,
		OrderID: string(resp.OrderID),
		Message: resp.Message,
	}
	if !sub.Custom {
		result.PaymentOption = sub.Draft.PaymentOption
	}
	span.SetAttributes(
		attribute.Bool("crtv.booking.success", result.Success),
		attribute.String("crtv.booking.order_id", result.OrderID),
	)
	if !result.Success {
		span.SetStatus(codes.Error, "rejected")
	}
	s.observe(branch, result.Success, elapsed)
	s.logger.Info("booking submitted",
		"branch", branch,
		"success", result.Success,
		"order_id", result.OrderID,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

func (s *HTTPSubmitter) observe(branch string, success bool, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.ObserveSubmission(branch, success, elapsed)
	}
}

// BuildPayload maps a submission onto the wire shape of its branch. Catalog
// bookings never carry a price. Custom bookings send service 0, the range as
// a single time field, and the budget as a notes line.
func BuildPayload(sub Submission, currencySymbol string) (any, error) {
	d := sub.Draft
	c := d.Customer.trimmed()

	if sub.Custom {
		if !d.IsCustom() || !d.CustomRequest.Complete() {
			return nil, ErrIncompleteCustomRequest
		}
		notes := c.Notes
		if budget := FormatBudget(d.CustomRequest.Budget, currencySymbol); budget != "" {
			line := "Budget: " + budget
			if notes == "" {
				notes = line
			} else {
				notes = notes + "\n" + line
			}
		}
		return studioapi.CustomBookingPayload{
			Service:         0,
			ItemName:        strings.TrimSpace(d.CustomRequest.Title),
			ItemDescription: strings.TrimSpace(d.CustomRequest.Description),
			Date:            d.Date,
			Time:            d.TimeRange,
			CustomerName:    c.Name,
			CustomerEmail:   c.Email,
			CustomerPhone:   c.Phone,
			CustomerAddress: c.Address,
			Notes:           notes,
		}, nil
	}

	if sub.Service.ID == "" || sub.Service.ID != d.ServiceRef {
		return nil, ErrUnknownService
	}
	picker, err := availability.ParseRange(d.TimeRange)
	if err != nil {
		return nil, err
	}
	return studioapi.CatalogBookingPayload{
		Service:         sub.Service.ID,
		ItemName:        sub.Service.Name,
		ItemDescription: sub.Service.Description,
		Date:            d.Date,
		TimeStart:       picker.Start,
		TimeEnd:         picker.End,
		CustomerName:    c.Name,
		CustomerEmail:   c.Email,
		CustomerPhone:   c.Phone,
		CustomerAddress: c.Address,
		Notes:           c.Notes,
	}, nil
}
