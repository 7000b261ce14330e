package order

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrTerminalStatus          = errors.New("order is in a terminal status")
	ErrStatusConflict          = errors.New("order status was changed by another request")
)

var forwardSequence = []Status{StatusPending, StatusAccepted, StatusPreparing, StatusReady, StatusCompleted}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusAccepted: true,
		StatusCanceled: true,
		StatusRefunded: true,
	},
	StatusAccepted: {
		StatusPreparing: true,
		StatusCanceled:  true,
		StatusRefunded:  true,
	},
	StatusPreparing: {
		StatusReady:    true,
		StatusCanceled: true,
		StatusRefunded: true,
	},
	StatusReady: {
		StatusCompleted: true,
		StatusCanceled:  true,
		StatusRefunded:  true,
	},
	StatusCompleted: {},
	StatusCanceled:  {},
	StatusRefunded:  {},
}

func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s.Valid() && len(allowedTransitions[s]) == 0
}

// NextStatus returns the following stage of the forward sequence.
func NextStatus(current Status) (Status, error) {
	for i, s := range forwardSequence {
		if s == current && i+1 < len(forwardSequence) {
			return forwardSequence[i+1], nil
		}
	}
	if current.IsTerminal() {
		return "", ErrTerminalStatus
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, current)
}

// ResolveTransition turns a requested target into the status to write. An empty
// target means the next stage. A result equal to current means nothing to do.
func ResolveTransition(current, target Status) (Status, error) {
	if target == "" {
		return NextStatus(current)
	}
	if !target.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, target)
	}
	if target == current {
		return current, nil
	}
	if !allowedTransitions[current][target] {
		return "", fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current, target)
	}
	return target, nil
}

// applyTransition sets the status and stamps the milestone it reaches.
func applyTransition(o *Order, to Status, now time.Time) {
	o.Status = to
	o.UpdatedAt = now

	switch to {
	case StatusAccepted:
		o.AcceptedAt = &now
	case StatusReady:
		o.ReadyAt = &now
		if o.AcceptedAt != nil {
			actual := int(now.Sub(*o.AcceptedAt).Seconds())
			o.PrepTimeActualSeconds = &actual
		}
	case StatusCompleted:
		o.CompletedAt = &now
	case StatusCanceled:
		o.CanceledAt = &now
	case StatusRefunded:
		o.RefundedAt = &now
		o.PaymentStatus = PaymentRefunded
	}
}
