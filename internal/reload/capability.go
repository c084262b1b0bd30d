package reload

// Registry is the host's process-wide module cache: a mapping from module
// identifier to loaded-module handle. Implementations are expected to
// tolerate deletion of absent keys.
type Registry interface {
	// Contains reports whether id is currently loaded.
	Contains(id ModuleID) bool

	// Names enumerates every identifier currently in the cache.
	Names() []ModuleID

	// Handle returns the loaded-module handle for id, if present.
	Handle(id ModuleID) (any, bool)

	// Delete removes id from the cache. Deleting an absent id is a no-op.
	Delete(id ModuleID)
}

// Lifecycle is the host's set of plugin lifecycle hooks. Any of the three
// may be absent or may fail for a given host; the caller treats failure as
// the common case and never lets it abort a surrounding operation.
type Lifecycle interface {
	// NotifyUnload runs the host's teardown hook for a loaded module.
	NotifyUnload(handle any) error

	// NotifyLoad runs the host's registration hook for a loaded module.
	NotifyLoad(handle any) error

	// ReloadByName is the host's alternate unload+import+register path,
	// keyed by identifier rather than handle.
	ReloadByName(id ModuleID) error
}

// Importer performs imports against the host runtime.
type Importer interface {
	// Import loads the named module into the module cache.
	Import(id ModuleID) error

	// InvalidateCaches forces fresh filesystem lookups on the next
	// import, discarding any stale import path caches.
	InvalidateCaches() error
}

// Source resolves the filesystem tree that plugin packages are installed
// under. A host without filesystem context returns an error from
// PackagesPath; the scanner then degrades to cache-only operation.
type Source interface {
	// PackagesPath returns the root directory containing one
	// subdirectory per installed package.
	PackagesPath() (string, error)

	// Ext returns the source file extension, including the dot.
	Ext() string
}

// Sink receives progress and error messages. Calls are fire-and-forget;
// the sink never influences control flow.
type Sink interface {
	Log(message string)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(string)

// Log calls f(message).
func (f SinkFunc) Log(message string) { f(message) }

// discard is the sink used when none is configured.
var discard Sink = SinkFunc(func(string) {})
