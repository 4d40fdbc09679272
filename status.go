package store

import (
	"context"
	"errors"
	"net/http"
)

// StatusCode is the closed outcome enumeration for a completed transfer
// attempt. The zero value StatusUndefined means "never attempted" and is only
// observable through an idle TransferState; no operation produces it.
type StatusCode int

const (
	StatusUndefined StatusCode = iota

	StatusOK
	StatusNotFound
	StatusValidationFailed
	StatusServerError
	StatusCancelled

	// Local outcomes produced on the client side of the transport boundary.
	StatusFetchFailed
	StatusFetchTimeout
	StatusDecodeFailed
)

// Success reports whether the attempt completed successfully.
func (s StatusCode) Success() bool {
	return s == StatusOK
}

// Failure reports whether the attempt completed with any terminal failure.
func (s StatusCode) Failure() bool {
	return s != StatusOK && s != StatusUndefined
}

// Local reports whether the outcome was produced without a server response.
func (s StatusCode) Local() bool {
	switch s {
	case StatusFetchFailed, StatusFetchTimeout, StatusDecodeFailed, StatusCancelled:
		return true
	}
	return false
}

func (s StatusCode) String() string {
	switch s {
	case StatusUndefined:
		return "undefined"
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not-found"
	case StatusValidationFailed:
		return "validation-failed"
	case StatusServerError:
		return "server-error"
	case StatusCancelled:
		return "cancelled"
	case StatusFetchFailed:
		return "fetch-failed"
	case StatusFetchTimeout:
		return "fetch-timeout"
	case StatusDecodeFailed:
		return "decode-failed"
	}
	return "undefined"
}

// StatusFromHTTP collapses an HTTP response status onto the outcome
// enumeration.
func StatusFromHTTP(code int) StatusCode {
	switch {
	case code >= 200 && code < 300:
		return StatusOK
	case code == http.StatusNotFound || code == http.StatusGone:
		return StatusNotFound
	case code == http.StatusBadRequest,
		code == http.StatusConflict,
		code == http.StatusUnprocessableEntity:
		return StatusValidationFailed
	case code >= 500:
		return StatusServerError
	case code >= 400:
		return StatusFetchFailed
	}
	return StatusFetchFailed
}

// StatusOf extracts the status carried by err. A nil error is StatusOK,
// cancellation maps to StatusCancelled, and errors without a TransferError in
// their chain are treated as server faults.
func StatusOf(err error) StatusCode {
	if err == nil {
		return StatusOK
	}
	var terr *TransferError
	if errors.As(err, &terr) && terr.Status != StatusUndefined {
		return terr.Status
	}
	if errors.Is(err, context.Canceled) {
		return StatusCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusFetchTimeout
	}
	return StatusServerError
}
