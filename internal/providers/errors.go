package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyQuery      = errors.New("query is required")
)

// TransportError covers connection failures, timeouts and non-2xx statuses.
// StatusCode is zero when no response was received.
type TransportError struct {
	Provider   Provider
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s returned status %d", e.Provider, e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: request %s failed: %v", e.Provider, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: request %s failed", e.Provider, e.Endpoint)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConnectionFailed reports whether no HTTP response was received at all.
func (e *TransportError) ConnectionFailed() bool {
	return e.StatusCode == 0
}

type MalformedResponseError struct {
	Provider  Provider
	Operation string
	Reason    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed %s response: %s", e.Provider, e.Operation, e.Reason)
}

type EmptyResultError struct {
	Provider Provider
	Query    string
}

func (e *EmptyResultError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%s: no results", e.Provider)
	}
	return fmt.Sprintf("%s: no results for %q", e.Provider, e.Query)
}

// AllProvidersExhaustedError is returned by a resolve that found nothing.
// Message is the user-facing text; Last is the final concrete error, if any.
type AllProvidersExhaustedError struct {
	Attempted []Provider
	Last      error
	Message   string
}

func (e *AllProvidersExhaustedError) Error() string {
	attempted := make([]string, 0, len(e.Attempted))
	for _, provider := range e.Attempted {
		attempted = append(attempted, provider.String())
	}
	if e.Last == nil {
		return fmt.Sprintf("all providers failed (tried %s)", strings.Join(attempted, ", "))
	}
	return fmt.Sprintf("all providers failed (tried %s): %v", strings.Join(attempted, ", "), e.Last)
}

func (e *AllProvidersExhaustedError) Unwrap() error {
	return e.Last
}

func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

func IsMalformed(err error) bool {
	var malformedErr *MalformedResponseError
	return errors.As(err, &malformedErr)
}

func IsEmptyResult(err error) bool {
	var emptyErr *EmptyResultError
	return errors.As(err, &emptyErr)
}

func IsExhausted(err error) bool {
	var exhaustedErr *AllProvidersExhaustedError
	return errors.As(err, &exhaustedErr)
}
