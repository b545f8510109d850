package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	// KindConfiguration is a startup failure, e.g. a missing credential.
	// It is fatal and carries a process exit code.
	KindConfiguration ErrorKind = "configuration"
	// KindAuthentication means the remote service rejected the credential.
	KindAuthentication ErrorKind = "authentication"
	// KindProvider covers every other call failure: rate limits, server
	// errors, transport errors, malformed or empty responses.
	KindProvider ErrorKind = "provider"
	// KindInputTermination is end of input or an interrupt.
	KindInputTermination ErrorKind = "input_termination"
)

// ExitCodeGeneric is used for fatal errors without a more specific code.
const ExitCodeGeneric = 1

// Error is the error type returned by providers and the factory.
type Error struct {
	Provider string
	Kind     ErrorKind

	// Status is the HTTP status reported by the remote service, if any.
	Status  int
	Message string

	// ExitCode is set for KindConfiguration errors.
	ExitCode int

	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

// IsAuthentication reports whether err is an authentication failure.
func IsAuthentication(err error) bool {
	return KindOf(err) == KindAuthentication
}

// IsConfiguration reports whether err is a startup configuration failure.
func IsConfiguration(err error) bool {
	return KindOf(err) == KindConfiguration
}

// ExitCodeOf returns the process exit code for a fatal error.
func ExitCodeOf(err error) int {
	if e, ok := AsError(err); ok && e.ExitCode != 0 {
		return e.ExitCode
	}
	return ExitCodeGeneric
}

// missingCredential builds the fail-fast error for an absent API key.
func missingCredential(p ProviderType) *Error {
	return &Error{
		Provider: p.String(),
		Kind:     KindConfiguration,
		Message:  fmt.Sprintf("%s environment variable not set; export %s=<your key> and try again", p.EnvVar(), p.EnvVar()),
		ExitCode: p.ExitCode(),
	}
}

// statusError maps an HTTP status reported by an SDK onto the taxonomy.
func statusError(provider string, status int, message string, cause error) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	kind := KindProvider
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuthentication
		message = "authentication failed: " + message
	case http.StatusTooManyRequests:
		message = "rate limited: " + message
	}
	if status != 0 {
		message = fmt.Sprintf("%s (HTTP %d)", message, status)
	}
	return &Error{
		Provider: provider,
		Kind:     kind,
		Status:   status,
		Message:  message,
		Cause:    cause,
	}
}

// transportError wraps failures that never produced an HTTP status.
func transportError(provider string, err error) *Error {
	msg := "request failed: " + err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request deadline exceeded"
	}
	return &Error{
		Provider: provider,
		Kind:     KindProvider,
		Message:  msg,
		Cause:    err,
	}
}

// emptyResponse is returned when the service answered without any text.
func emptyResponse(provider string) *Error {
	return &Error{
		Provider: provider,
		Kind:     KindProvider,
		Message:  "empty response from API",
	}
}
