// Package toolerr defines the closed error taxonomy shared by every tool.
//
// Every failure a tool call can produce is one of five kinds. The MCP
// dispatcher converts these into error envelopes; nothing else is allowed
// to cross the dispatcher boundary.
package toolerr

import (
	"errors"
	"fmt"
)

// Kind is the error category reported to the calling agent.
type Kind string

const (
	Validation Kind = "ValidationError"
	NotFound   Kind = "NotFoundError"
	Permission Kind = "PermissionError"
	Upstream   Kind = "UpstreamError"
	Session    Kind = "SessionError"
)

// Details used with the Upstream and Session kinds.
const (
	DetailTimeout           = "Timeout"
	DetailRateLimited       = "RateLimited"
	DetailNotAuthorized     = "NotAuthorized"
	DetailConnectionLost    = "ConnectionLost"
	DetailCredentialMissing = "CredentialMissing"
)

// Error is a classified tool failure.
type Error struct {
	Kind    Kind
	Detail  string // optional subtype, e.g. Timeout or RateLimited
	Message string
	// RetryAfter is the platform-mandated wait in seconds. Set only for
	// RateLimited errors; this layer never sleeps on it.
	RetryAfter int
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s(%s): %s", e.Kind, e.Detail, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// As unwraps err into a *Error if it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a tool error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func Permissionf(format string, args ...any) *Error {
	return &Error{Kind: Permission, Message: fmt.Sprintf(format, args...)}
}

func Upstreamf(format string, args ...any) *Error {
	return &Error{Kind: Upstream, Message: fmt.Sprintf(format, args...)}
}

// Sessionf builds a SessionError with one of the session details.
func Sessionf(detail, format string, args ...any) *Error {
	return &Error{Kind: Session, Detail: detail, Message: fmt.Sprintf(format, args...)}
}

// Timeout marks an operation that exceeded its per-call deadline.
func Timeout(op string) *Error {
	return &Error{Kind: Upstream, Detail: DetailTimeout, Message: op + " timed out"}
}

// RateLimited reports a platform flood wait. seconds comes straight from
// the platform; the caller decides whether to retry.
func RateLimited(seconds int) *Error {
	return &Error{
		Kind:       Upstream,
		Detail:     DetailRateLimited,
		Message:    fmt.Sprintf("rate limited by Telegram, retry after %ds", seconds),
		RetryAfter: seconds,
	}
}
