package reload

// State represents where a package is in its reload cycle. There is no
// blocking failure state: the next reload always starts fresh from
// whatever the module cache currently contains.
type State int

// Package reload states.
const (
	// StateLoaded - every module of the package imported and registered.
	StateLoaded State = iota

	// StateUnloading - teardown hooks are running.
	StateUnloading

	// StateUnloaded - the package's modules are out of the cache.
	StateUnloaded

	// StateImporting - modules are being reimported.
	StateImporting

	// StatePartiallyLoaded - the reload finished with some modules
	// missing or unregistered. Accepted terminal state; nothing is
	// rolled back.
	StatePartiallyLoaded
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateUnloading:
		return "unloading"
	case StateUnloaded:
		return "unloaded"
	case StateImporting:
		return "importing"
	case StatePartiallyLoaded:
		return "partially-loaded"
	default:
		return "unknown"
	}
}
