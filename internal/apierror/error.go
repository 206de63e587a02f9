package apierror

import (
	"errors"
	"fmt"
)

// Error is the single error type surfaced by the SDK. HTTP failures carry the
// status, server error code and message. Failures raised by the client itself
// (tenant resolution, federation, workflow timeouts) leave StatusCode zero.
type Error struct {
	Kind       Kind
	StatusCode int
	ErrorCode  string
	Message    string
	Details    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("%d - %s - %s", e.StatusCode, e.ErrorCode, e.Message)
		if len(e.Details) > 0 {
			msg += " - " + e.Details
		}
		return msg
	}

	msg := string(e.Kind)
	if len(e.Message) > 0 {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches a Kind target so callers can write errors.Is(err, KindNotFound).
func (e *Error) Is(target error) bool {
	if kind, ok := target.(Kind); ok {
		return e.Kind == kind
	}
	return false
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a kind to an underlying cause. The cause stays reachable
// through errors.Unwrap.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Reclassify copies the HTTP details of err under a new kind. Used when a
// workflow turns a server response into a workflow outcome.
func Reclassify(kind Kind, err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return &Error{
			Kind:       kind,
			StatusCode: apiErr.StatusCode,
			ErrorCode:  apiErr.ErrorCode,
			Message:    apiErr.Message,
			Details:    apiErr.Details,
			Err:        apiErr,
		}
	}
	return Wrap(kind, err, "")
}

// KindOf returns the kind of the first *Error in the chain, or an empty kind.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// Is reports whether err carries any of the given kinds.
func Is(err error, kinds ...Kind) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
