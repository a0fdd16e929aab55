package manifest

import "errors"

var (
	// ErrConfigurationNotFound indicates the id is not in the saved list.
	ErrConfigurationNotFound = errors.New("configuration not found")
	// ErrEmptyName indicates a blank configuration name.
	ErrEmptyName = errors.New("configuration name must not be empty")
	// ErrNoActiveRack indicates an operation needing an active rack.
	ErrNoActiveRack = errors.New("no active rack configuration")
	// ErrItemNotFound indicates an unknown MEP item id.
	ErrItemNotFound = errors.New("mep item not found")
	// ErrUnknownScope indicates an unrecognized bulk-update scope.
	ErrUnknownScope = errors.New("unknown update scope")
)
