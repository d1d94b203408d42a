package flow

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a menu flow could not finish.
type FailureKind int

const (
	FailureTimeout FailureKind = iota
	FailurePriceFailsafe
	FailureItemUnavailable
	FailureInsufficientFunds
	FailureOrderLimitReached
	FailureUnexpectedMenuState
)

func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailurePriceFailsafe:
		return "price_failsafe"
	case FailureItemUnavailable:
		return "item_unavailable"
	case FailureInsufficientFunds:
		return "insufficient_funds"
	case FailureOrderLimitReached:
		return "order_limit_reached"
	case FailureUnexpectedMenuState:
		return "unexpected_menu_state"
	}
	return "unknown"
}

// Retryable reports whether a fresh attempt could plausibly succeed. A sold
// out item or an exhausted purse will not change on retry; a timeout or a
// transient price spike might.
func (k FailureKind) Retryable() bool {
	return k == FailureTimeout || k == FailurePriceFailsafe
}

// FlowError is the failure surface of every menu flow.
type FlowError struct {
	Kind FailureKind
	Msg  string
	Err  error
}

func (e *FlowError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func failf(kind FailureKind, format string, args ...any) *FlowError {
	return &FlowError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapFailure(kind FailureKind, err error) *FlowError {
	return &FlowError{Kind: kind, Err: err}
}

// FailureOf extracts the flow classification from an error chain. Errors
// from outside the flows count as unexpected menu state.
func FailureOf(err error) FailureKind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FailureUnexpectedMenuState
}
