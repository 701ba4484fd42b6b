// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragclient

import (
	"context"
	"errors"
	"net"
)

// ClientError wraps client failures with a category for handling.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int // non-zero for HTTP-level failures
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeCancelled
	ErrTypeServer
)

// IsConnection reports whether the service could not be reached.
func IsConnection(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeConnection
}

// IsTimeout reports whether a request timed out.
func IsTimeout(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeTimeout
}

// IsCancelled reports whether the request was cancelled through its context.
func IsCancelled(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeCancelled
}

// IsServerError reports whether the service answered with a failure status.
func IsServerError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeServer
}

// classify wraps a transport error with its category.
func classify(msg string, err error) *ClientError {
	switch {
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeCancelled, Message: msg, Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Type: ErrTypeTimeout, Message: msg, Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: msg, Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: msg, Cause: err}
}
