package domain

import (
	"fmt"
	"strings"
)

// Decision is the human verdict on a proposed edit.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// IsValid returns true if the decision is a known value.
func (d Decision) IsValid() bool {
	return d == DecisionAccepted || d == DecisionRejected
}

// ParseDecision accepts the long and short forms used on the command line.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "accepted", "y", "yes":
		return DecisionAccepted, nil
	case "reject", "rejected", "n", "no":
		return DecisionRejected, nil
	default:
		return "", fmt.Errorf("%w: %q (want accept or reject)", ErrInvalidDecision, s)
	}
}
