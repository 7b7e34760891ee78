package model

import (
	"context"
	"errors"
)

// Error kinds shared by every stage. Callers wrap them with fmt.Errorf("%w: ...")
// and handlers map them to status codes with errors.Is.
var (
	// ErrMissingInput is a client-side validation failure; no network call was made.
	ErrMissingInput = errors.New("missing input")
	// ErrConfig means a required credential is absent.
	ErrConfig = errors.New("configuration error")
	// ErrNotFound means the request was valid but nothing matched.
	ErrNotFound = errors.New("not found")
	// ErrUpstream means a third-party call failed at the transport or HTTP level.
	ErrUpstream = errors.New("upstream error")
	// ErrUpstreamRejected means a third-party answered with an error payload.
	ErrUpstreamRejected = errors.New("upstream rejected request")
	// ErrJobFailed means the remote music job reached a failed terminal state.
	ErrJobFailed = errors.New("music generation failed")
	// ErrTimeout means the poll budget ran out without a terminal state.
	// The remote job may still complete out-of-band.
	ErrTimeout = errors.New("music generation timed out")
	// ErrBusy means another stage of the same session is still running.
	ErrBusy = errors.New("stage already in progress")
	// ErrSessionNotFound means the session ID is unknown.
	ErrSessionNotFound = errors.New("session not found")
)

// JobFailedError carries the remote's failure message verbatim.
type JobFailedError struct {
	TaskID  string
	Status  string
	Message string
}

func (e *JobFailedError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrJobFailed) match.
func (e *JobFailedError) Is(target error) bool {
	return target == ErrJobFailed
}

// Error codes exposed to clients
const (
	CodeMissingInput     = "MISSING_INPUT"
	CodeConfigError      = "CONFIG_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeUpstreamError    = "UPSTREAM_ERROR"
	CodeUpstreamRejected = "UPSTREAM_REJECTED"
	CodeJobFailed        = "JOB_FAILED"
	CodeTimeout          = "TIMEOUT"
	CodeBusy             = "BUSY"
	CodeCanceled         = "CANCELED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorCode classifies err into one of the client-facing codes.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingInput):
		return CodeMissingInput
	case errors.Is(err, ErrConfig):
		return CodeConfigError
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSessionNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUpstreamRejected):
		return CodeUpstreamRejected
	case errors.Is(err, ErrUpstream):
		return CodeUpstreamError
	case errors.Is(err, ErrJobFailed):
		return CodeJobFailed
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrBusy):
		return CodeBusy
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	}
	return CodeInternal
}

// StageError is the error text a stage reports next to its trigger.
type StageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewStageError returns nil for a nil err.
func NewStageError(err error) *StageError {
	if err == nil {
		return nil
	}
	return &StageError{
		Code:    ErrorCode(err),
		Message: err.Error(),
	}
}
