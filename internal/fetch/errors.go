package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrUnsupportedScheme   = errors.New("url scheme is not http or https")
	ErrStreamConsumed      = errors.New("stream already consumed")
	ErrTransferInterrupted = errors.New("transfer interrupted before completion")
	ErrRangesNotSupported  = errors.New("server does not support range requests")
	ErrInvalidContentRange = errors.New("invalid Content-Range header")
	ErrUnknownCharset      = errors.New("unknown charset")
)

type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindHTTP
	KindTransfer
	KindDecode
	KindValidation
	KindTimeout
)

// Error is the error type surfaced by this package. Kind distinguishes a
// failed transfer from a failed decode of an otherwise complete body.
type Error struct {
	Kind      ErrorKind
	Operation string
	URL       string
	Status    int
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("HTTP error during %s for %s: status %d: %v",
			e.Operation, e.URL, e.Status, e.Err)
	case KindNetwork:
		return fmt.Sprintf("network error during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	case KindTransfer:
		return fmt.Sprintf("transfer error during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	case KindDecode:
		return fmt.Sprintf("decode error for %s: %v", e.URL, e.Err)
	case KindTimeout:
		return fmt.Sprintf("timeout during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	default:
		return fmt.Sprintf("error during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport level failure.
func NewNetworkError(op, url string, err error) *Error {
	return &Error{Kind: KindNetwork, Operation: op, URL: url, Err: err}
}

// NewStatusError wraps a non-2xx response status.
func NewStatusError(op, url string, code int, err error) *Error {
	return &Error{Kind: KindHTTP, Operation: op, URL: url, Status: code, Err: err}
}

// NewTransferError marks a body that ended before its completion signal.
func NewTransferError(url string, err error) *Error {
	if err == nil {
		err = ErrTransferInterrupted
	} else if !errors.Is(err, ErrTransferInterrupted) {
		err = fmt.Errorf("%w: %w", ErrTransferInterrupted, err)
	}

	return &Error{Kind: KindTransfer, Operation: "read", URL: url, Err: err}
}

// NewDecodeError marks a body whose bytes could not be interpreted.
func NewDecodeError(url string, err error) *Error {
	return &Error{Kind: KindDecode, Operation: "decode", URL: url, Err: err}
}

// classifyError maps a request error to the appropriate kind.
func classifyError(op, url string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Operation: op, URL: url, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Operation: op, URL: url, Err: err}
	}

	return NewNetworkError(op, url, err)
}

// IsTransferInterrupted reports whether err is an aborted transfer.
func IsTransferInterrupted(err error) bool {
	var fe *Error
	if errors.As(err, &fe) && fe.Kind == KindTransfer {
		return true
	}

	return errors.Is(err, ErrTransferInterrupted)
}

// IsDecodeError reports whether err came from interpreting an assembled body.
func IsDecodeError(err error) bool {
	var fe *Error

	return errors.As(err, &fe) && fe.Kind == KindDecode
}

// isFallbackStatus reports whether a probe method is worth retrying with a
// different request shape. Mirrors servers that reject HEAD outright.
func isFallbackStatus(err error) bool {
	var fe *Error
	if !errors.As(err, &fe) {
		return false
	}

	if fe.Kind != KindHTTP {
		return false
	}

	switch fe.Status {
	case 403, 405, 501:
		return true
	default:
		return false
	}
}
