package provisioner

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"
)

var (
	// ErrNoValidationChallenge is returned when ACM reports a certificate without DNS validation options
	ErrNoValidationChallenge = errors.New("certificate has no DNS validation challenge")

	// ErrValidationMetadataTimeout is returned when ACM does not produce validation metadata in time
	ErrValidationMetadataTimeout = errors.New("timed out waiting for certificate validation metadata")
)

// Step names the workflow step a StepError came from
type Step string

const (
	ListFailed      Step = "ListFailed"
	RequestFailed   Step = "RequestFailed"
	DescribeFailed  Step = "DescribeFailed"
	DnsLookupFailed Step = "DnsLookupFailed"
	DnsChangeFailed Step = "DnsChangeFailed"
)

// StepError wraps the error of a failed remote call with the step it failed in
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step of the first StepError in err's chain, or "" if there is none
func FailedStep(err error) Step {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}

// logStepError logs a failed remote call with its step and, for AWS API errors, the error code
func logStepError(logger logr.Logger, step Step, err error) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		logger.Error(err, "AWS call failed", "step", step, "code", apiErr.ErrorCode())
		return
	}
	logger.Error(err, "AWS call failed", "step", step)
}
