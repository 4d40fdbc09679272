package store

import (
	"errors"
	"fmt"
)

// TransferError is the structured failure detail fed back into a store when a
// transfer attempt fails. It is the contract at the transport boundary:
// Status describes the terminal outcome and Detail optionally carries keyed,
// per-field diagnostics produced by the server or the transport layer.
//
// A TransferError is data, not a fault; stores never panic on one.
type TransferError struct {
	Status StatusCode
	Detail *Messages
	Err    error
}

// Fail constructs a TransferError for code.
func Fail(code StatusCode) *TransferError {
	return &TransferError{Status: code}
}

// WithDetail attaches keyed diagnostics to the error.
func (e *TransferError) WithDetail(detail *Messages) *TransferError {
	e.Detail = detail
	return e
}

// WithCause attaches the underlying error.
func (e *TransferError) WithCause(err error) *TransferError {
	e.Err = err
	return e
}

func (e *TransferError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("store: transfer %s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("store: transfer %s", e.Status)
}

func (e *TransferError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// failureMessages resolves the diagnostics a failed transfer contributes: the
// attached detail when present, otherwise a single localizable service error
// keyed by the status template.
func failureMessages(err error, code StatusCode) *Messages {
	var terr *TransferError
	if errors.As(err, &terr) && terr.Detail != nil && !terr.Detail.IsEmpty() {
		return terr.Detail
	}
	return FromServiceError("transfer.status." + code.String())
}
