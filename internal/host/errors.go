package host

import "errors"

// Host runtime errors.
var (
	// ErrRuntimeClosed is returned when operating on a closed runtime.
	ErrRuntimeClosed = errors.New("lua runtime is closed")

	// ErrNoPackagesPath is returned when no packages root is configured.
	ErrNoPackagesPath = errors.New("no packages path configured")

	// ErrNotAModule is returned when a lifecycle hook is handed something
	// that is not a loaded-module handle.
	ErrNotAModule = errors.New("handle is not a loaded module")
)
