package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the directory package.
// Use errors.Is() to check for these errors.
var (
	// ErrCallerRequired is returned when no Caller is configured.
	ErrCallerRequired = errors.New("directory: caller is required")

	// ErrMissingArgument is returned when a required availability option is absent.
	ErrMissingArgument = errors.New("directory: missing argument")

	// ErrInvalidArgument is returned when an option has the wrong type or value.
	ErrInvalidArgument = errors.New("directory: invalid argument")

	// ErrRemoteService is returned when the remote service reports a failure.
	ErrRemoteService = errors.New("directory: remote service error")

	// ErrNilResponse is returned when the Caller returns neither a response nor an error.
	ErrNilResponse = errors.New("directory: caller returned nil response")
)

// requiredAvailabilityKeys lists the options every availability query needs.
var requiredAvailabilityKeys = []string{OptStartTime, OptEndTime, OptRequestedView}

// MissingArgumentError reports which required availability options were absent.
// The message always names all required keys.
type MissingArgumentError struct {
	Missing []string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("directory: must specify a %s, %s and %s (missing: %s)",
		requiredAvailabilityKeys[0], requiredAvailabilityKeys[1], requiredAvailabilityKeys[2],
		strings.Join(e.Missing, ", "))
}

func (e *MissingArgumentError) Unwrap() error {
	return ErrMissingArgument
}

// InvalidArgumentError reports an option value that could not be used.
type InvalidArgumentError struct {
	Key    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("directory: invalid %s: %s", e.Key, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// Remote codes that indicate a transient condition on the service side.
var transientCodes = map[string]bool{
	"ErrorServerBusy":                   true,
	"ErrorTimeoutExpired":               true,
	"ErrorInternalServerTransientError": true,
	"ErrorMailboxStoreUnavailable":      true,
	"ErrorConnectionFailed":             true,
	"ErrorProxyRequestProcessingFailed": true,
}

// RemoteServiceError carries a non-success response code and message verbatim.
type RemoteServiceError struct {
	// Operation is the remote call that failed ("ResolveNames", "GetUserAvailability").
	Operation string
	Code      string
	Message   string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("directory: %s produced an error: %s: %s", e.Operation, e.Code, e.Message)
}

func (e *RemoteServiceError) Unwrap() error {
	return ErrRemoteService
}

// Retryable reports whether the remote code describes a transient failure.
func (e *RemoteServiceError) Retryable() bool {
	return transientCodes[e.Code]
}

// IsRemoteServiceError checks if the error is a remote service error and returns details.
func IsRemoteServiceError(err error) (*RemoteServiceError, bool) {
	var rse *RemoteServiceError
	if errors.As(err, &rse) {
		return rse, true
	}
	return nil, false
}

// IsMissingArgument checks if the error is a missing argument error and returns details.
func IsMissingArgument(err error) (*MissingArgumentError, bool) {
	var mae *MissingArgumentError
	if errors.As(err, &mae) {
		return mae, true
	}
	return nil, false
}

// IsRetryableError determines if an error is worth retrying.
// Argument errors and non-transient remote codes are permanent. Unknown errors
// come from the Caller's transport and are treated as retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if rse, ok := IsRemoteServiceError(err); ok {
		return rse.Retryable()
	}

	permanentErrors := []error{
		ErrCallerRequired,
		ErrMissingArgument,
		ErrInvalidArgument,
		ErrNilResponse,
		context.Canceled,
		context.DeadlineExceeded,
	}
	for _, permErr := range permanentErrors {
		if errors.Is(err, permErr) {
			return false
		}
	}
	return true
}
