package booking

// Step is one stage of the booking workflow.
type Step int

const (
	StepServiceSelect Step = iota + 1
	StepDateTime
	StepDetails
	StepReview
	StepPayment
)

const (
	firstStep = StepServiceSelect
	lastStep  = StepPayment
)

var stepNames = map[Step]string{
	StepServiceSelect: "service_select",
	StepDateTime:      "date_time",
	StepDetails:       "details",
	StepReview:        "review",
	StepPayment:       "payment",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// VisibleSteps is the sequence shown to the visitor. Custom requests end at
// review; the payment step still exists internally but is never reached.
func VisibleSteps(custom bool) []Step {
	if custom {
		return []Step{StepServiceSelect, StepDateTime, StepDetails, StepReview}
	}
	return []Step{StepServiceSelect, StepDateTime, StepDetails, StepReview, StepPayment}
}

// finalStep is the step from which the draft is submitted.
func finalStep(custom bool) Step {
	if custom {
		return StepReview
	}
	return StepPayment
}
