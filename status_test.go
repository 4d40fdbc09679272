package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestStatusPredicates(t *testing.T) {
	cases := []struct {
		code    StatusCode
		success bool
		failure bool
		local   bool
	}{
		{StatusUndefined, false, false, false},
		{StatusOK, true, false, false},
		{StatusNotFound, false, true, false},
		{StatusValidationFailed, false, true, false},
		{StatusServerError, false, true, false},
		{StatusCancelled, false, true, true},
		{StatusFetchFailed, false, true, true},
		{StatusFetchTimeout, false, true, true},
		{StatusDecodeFailed, false, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.code.String(), func(t *testing.T) {
			if got := tc.code.Success(); got != tc.success {
				t.Errorf("Success() = %v, want %v", got, tc.success)
			}
			if got := tc.code.Failure(); got != tc.failure {
				t.Errorf("Failure() = %v, want %v", got, tc.failure)
			}
			if got := tc.code.Local(); got != tc.local {
				t.Errorf("Local() = %v, want %v", got, tc.local)
			}
		})
	}
}

func TestStatusFromHTTP(t *testing.T) {
	cases := []struct {
		http int
		want StatusCode
	}{
		{200, StatusOK},
		{201, StatusOK},
		{204, StatusOK},
		{404, StatusNotFound},
		{410, StatusNotFound},
		{400, StatusValidationFailed},
		{409, StatusValidationFailed},
		{422, StatusValidationFailed},
		{500, StatusServerError},
		{503, StatusServerError},
		{401, StatusFetchFailed},
		{403, StatusFetchFailed},
		{418, StatusFetchFailed},
		{302, StatusFetchFailed},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("http_%d", tc.http), func(t *testing.T) {
			if got := StatusFromHTTP(tc.http); got != tc.want {
				t.Errorf("StatusFromHTTP(%d) = %s, want %s", tc.http, got, tc.want)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	t.Run("nil error is ok", func(t *testing.T) {
		if got := StatusOf(nil); got != StatusOK {
			t.Fatalf("StatusOf(nil) = %s", got)
		}
	})

	t.Run("transfer error carries its status", func(t *testing.T) {
		err := Fail(StatusNotFound).WithCause(errors.New("gone"))
		if got := StatusOf(err); got != StatusNotFound {
			t.Fatalf("StatusOf = %s, want not-found", got)
		}
	})

	t.Run("wrapped transfer error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("load profile: %w", Fail(StatusValidationFailed))
		if got := StatusOf(err); got != StatusValidationFailed {
			t.Fatalf("StatusOf = %s, want validation-failed", got)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		if got := StatusOf(context.Canceled); got != StatusCancelled {
			t.Fatalf("StatusOf = %s, want cancelled", got)
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		if got := StatusOf(context.DeadlineExceeded); got != StatusFetchTimeout {
			t.Fatalf("StatusOf = %s, want fetch-timeout", got)
		}
	})

	t.Run("unknown error is a server fault", func(t *testing.T) {
		if got := StatusOf(errors.New("boom")); got != StatusServerError {
			t.Fatalf("StatusOf = %s, want server-error", got)
		}
	})
}

func TestTransferErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Fail(StatusFetchFailed).WithCause(cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}

	var terr *TransferError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &terr) {
		t.Fatal("expected errors.As to find the TransferError")
	}
	if terr.Status != StatusFetchFailed {
		t.Fatalf("unexpected status %s", terr.Status)
	}
}
