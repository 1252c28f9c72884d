package caseapi

import (
	"fmt"
)

// Closing step names, in the only order an action may move through them.
const (
	StepCancellation = "Cancellation"
	StepArchived     = "Archived"
	StepClosed       = "Closed"
)

// FundingSource is how a matter is paid for.
type FundingSource string

// Funding sources. FundingUnknown is the zero value.
const (
	FundingUnknown        FundingSource = ""
	FundingPrivate        FundingSource = "private"
	FundingLegalAid       FundingSource = "legal_aid"
	FundingProBono        FundingSource = "pro_bono"
	FundingInsurance      FundingSource = "insurance"
	FundingConditionalFee FundingSource = "conditional_fee"
)

// String returns "unknown" for the zero value.
func (f FundingSource) String() string {
	if f == FundingUnknown {
		return "unknown"
	}

	return string(f)
}

// TransitionError reports a step transition rejected because the action is
// not in the expected step.
type TransitionError struct {
	ActionID ID
	From     string
	To       string
	Current  string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: action %s cannot move to %q: current step is %q, want %q",
		ErrPreconditionFailed, e.ActionID, e.To, e.Current, e.From)
}

// Unwrap exposes ErrPreconditionFailed to errors.Is.
func (e *TransitionError) Unwrap() error {
	return ErrPreconditionFailed
}
