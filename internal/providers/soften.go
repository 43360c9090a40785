package providers

import (
	"errors"
	"log/slog"
)

// SoftenSearchError turns search failures that only mean "nothing usable here"
// into an empty result. Connection failures, timeouts and cancellation are
// returned so the caller can tell an unreachable provider from an empty one.
func SoftenSearchError(logger *slog.Logger, query string, err error) ([]SearchResult, error) {
	var malformedErr *MalformedResponseError
	if errors.As(err, &malformedErr) {
		logger.Warn("search response could not be normalized", "query", query, "error", err)
		return []SearchResult{}, nil
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && !transportErr.ConnectionFailed() {
		logger.Warn("search endpoint rejected request", "query", query, "status", transportErr.StatusCode)
		return []SearchResult{}, nil
	}

	return nil, err
}

// WarnMalformed logs a normalization warning for shapes no path matched.
func WarnMalformed(logger *slog.Logger, provider Provider, operation string, reason string) {
	err := &MalformedResponseError{Provider: provider, Operation: operation, Reason: reason}
	logger.Warn("response shape not recognized", "operation", operation, "error", err)
}
