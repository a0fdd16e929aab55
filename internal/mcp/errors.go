package mcp

import (
	"errors"
	"fmt"

	"github.com/fabworks/rackforge/internal/domain/manifest"
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/optimizer"
	"github.com/fabworks/rackforge/internal/repository"
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
	case errors.Is(err, manifest.ErrConfigurationNotFound):
		return &APIError{Code: "CONFIGURATION_NOT_FOUND", Message: "saved configuration not found", RecoveryHint: "Call list_configurations for valid IDs"}
	case errors.Is(err, manifest.ErrEmptyName):
		return &APIError{Code: "EMPTY_NAME", Message: "configuration name must not be empty", RecoveryHint: "Provide a non-empty name"}
	case errors.Is(err, manifest.ErrNoActiveRack):
		return &APIError{Code: "NO_ACTIVE_RACK", Message: "no active rack to save", RecoveryHint: "Call update_rack first"}
	case errors.Is(err, manifest.ErrItemNotFound):
		return &APIError{Code: "MEP_ITEM_NOT_FOUND", Message: "MEP item not found", RecoveryHint: "Call list_mep_items for valid IDs"}
	case errors.Is(err, manifest.ErrUnknownScope):
		return &APIError{Code: "UNKNOWN_SCOPE", Message: "unknown MEP update scope", RecoveryHint: "Use 'all', 'color_change', or an item type name"}
	case errors.Is(err, mep.ErrTierOutOfRange):
		return &APIError{Code: "TIER_OUT_OF_RANGE", Message: "tier outside the active rack's tier range", RecoveryHint: "Check the active rack's tierCount"}
	case errors.Is(err, mep.ErrUnknownType):
		return &APIError{Code: "UNKNOWN_MEP_TYPE", Message: "unknown MEP item type", RecoveryHint: "Use duct, pipe, conduit, or cableTray"}
	case errors.Is(err, mep.ErrMissingSpec):
		return &APIError{Code: "MISSING_SPEC", Message: "MEP item is missing the spec for its type", RecoveryHint: "Populate the matching spec block"}
	case errors.Is(err, mep.ErrDuplicateID):
		return &APIError{Code: "DUPLICATE_MEP_ID", Message: "an MEP item with this ID already exists", RecoveryHint: "Omit the ID to have one assigned"}
	case errors.Is(err, mep.ErrNonPositiveDimension),
		errors.Is(err, rack.ErrNonPositiveDimension),
		errors.Is(err, shell.ErrNonPositiveDimension):
		return &APIError{Code: "NON_POSITIVE_DIMENSION", Message: "dimensions must be positive", RecoveryHint: "Check widths, heights, and depths"}
	case errors.Is(err, rack.ErrBayWiderThanRack):
		return &APIError{Code: "BAY_TOO_WIDE", Message: "bay width exceeds rack length", RecoveryHint: "Reduce bayWidth or increase length"}
	case errors.Is(err, rack.ErrTierCountOutOfRange):
		return &APIError{Code: "TIER_COUNT_OUT_OF_RANGE", Message: "tier count out of range", RecoveryHint: "Use 1 to 5 tiers"}
	case errors.Is(err, rack.ErrTierHeightsMismatch):
		return &APIError{Code: "TIER_HEIGHTS_MISMATCH", Message: "tier heights do not match tier count", RecoveryHint: "Provide one height per tier"}
	case errors.Is(err, rack.ErrUnknownMountType):
		return &APIError{Code: "UNKNOWN_MOUNT_TYPE", Message: "unknown mount type", RecoveryHint: "Use deck or floor"}
	case errors.Is(err, shell.ErrCeilingAboveCorridor):
		return &APIError{Code: "CEILING_ABOVE_CORRIDOR", Message: "ceiling height exceeds corridor height", RecoveryHint: "Lower ceilingHeight or raise corridorHeight"}
	case errors.Is(err, optimizer.ErrNoRectangles):
		return &APIError{Code: "NO_MEP_ITEMS", Message: "no MEP items to optimize", RecoveryHint: "Add MEP items first"}
	case errors.Is(err, optimizer.ErrInvalidConstraints):
		return &APIError{Code: "INVALID_CONSTRAINTS", Message: "packing constraints must be positive", RecoveryHint: "Check rack width and height budget"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "stored value not found", RecoveryHint: "Check the storage key"}
	default:
		return nil
	}
}

// toolError converts a domain error to the error returned to the client,
// preferring a mapped APIError when one applies.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
