package domain

// Status represents the lifecycle state of a change request.
type Status string

const (
	StatusPending      Status = "pending"       // Created, awaiting processing
	StatusProcessing   Status = "processing"    // Claimed by the processor
	StatusSuccess      Status = "success"       // Committed and pushed
	StatusFailed       Status = "failed"        // Aborted by an error
	StatusManualReview Status = "manual_review" // Accepted, must be committed by a human
	StatusRejected     Status = "rejected"      // Human rejected the proposed edit
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusProcessing,
		StatusSuccess,
		StatusFailed,
		StatusManualReview,
		StatusRejected,
	}
}

// transitions defines the allowed status transitions.
// Flow: pending → processing → {success | failed | manual_review | rejected}
//
//	↑                                          │
//	└──────────── (external re-queue) ─────────┘
var transitions = map[Status][]Status{
	StatusPending:      {StatusProcessing},
	StatusProcessing:   {StatusSuccess, StatusFailed, StatusManualReview, StatusRejected},
	StatusSuccess:      {StatusPending},
	StatusFailed:       {StatusPending},
	StatusManualReview: {StatusPending},
	StatusRejected:     {StatusPending},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the processor never advances past this status.
// manual_review is terminal for the engine even though a human still has work to do.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusManualReview, StatusRejected:
		return true
	default:
		return false
	}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSuccess, StatusFailed, StatusManualReview, StatusRejected:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "Processing"
	case StatusSuccess:
		return "Success"
	case StatusFailed:
		return "Failed"
	case StatusManualReview:
		return "Manual Review"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}
