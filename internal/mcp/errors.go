package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/feedline/internal/domain/feed"
	"github.com/ganot/feedline/internal/enrich"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, feed.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid input", RecoveryHint: "Check required arguments"}
	case errors.Is(err, feed.ErrItemNotFound):
		return &APIError{Code: "ITEM_NOT_FOUND", Message: "item not in current view", RecoveryHint: "Refresh the timeline and retry with a visible item id"}
	case errors.Is(err, enrich.ErrSuperseded):
		return &APIError{Code: "SUPERSEDED", Message: "request replaced by a newer selection", RecoveryHint: "Retry with the latest selection"}
	default:
		return nil
	}
}

// toolError wraps a domain error for transport: mapped errors keep their
// code, everything else passes through unchanged.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
