package order

// Status is the persisted order status, mutated by store staff through the
// operator panel. The storefront only observes it.
type Status string

const (
	StatusPending        Status = "pending"
	StatusInProduction   Status = "in_production"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	// StatusIncomplete marks an order whose items failed to persist after the
	// order row was created. Operators reconcile these by hand.
	StatusIncomplete Status = "incomplete"
)

// ProgressionSteps is the number of stages in the fulfillment progression.
const ProgressionSteps = 5

// Stage returns the 1-based position of the status in the fixed fulfillment
// progression. Unknown statuses (and incomplete) map to the first stage
// rather than failing; cancelled sits outside the progression and returns 0.
func (s Status) Stage() int {
	switch s {
	case StatusPending, StatusIncomplete:
		return 1
	case StatusInProduction:
		return 2
	case StatusReady:
		return 3
	case StatusOutForDelivery:
		return 4
	case StatusDelivered:
		return 5
	case StatusCancelled:
		return 0
	default:
		return 1
	}
}

// IsTerminal reports whether the status admits no further progression.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// StepState is the rendered state of one progression step.
type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepUpcoming  StepState = "upcoming"
	StepCancelled StepState = "cancelled"
)

// Steps renders the five progression steps for the given status: completed up
// to and including the current stage, current for the next step, upcoming for
// the rest. A cancelled order overrides every step.
func (s Status) Steps() [ProgressionSteps]StepState {
	var out [ProgressionSteps]StepState
	if s == StatusCancelled {
		for i := range out {
			out[i] = StepCancelled
		}
		return out
	}

	stage := s.Stage()
	for i := range out {
		n := i + 1
		switch {
		case stage >= n:
			out[i] = StepCompleted
		case stage == n-1:
			out[i] = StepCurrent
		default:
			out[i] = StepUpcoming
		}
	}
	return out
}
