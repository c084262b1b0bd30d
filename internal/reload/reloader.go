package reload

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Reloader sequences unload and load for whole packages and iterates over
// a configured list of packages. It owns no state of its own beyond
// bookkeeping: every reload recomputes its module sets from the live cache
// and the filesystem.
type Reloader struct {
	mu sync.RWMutex

	scanner  *Scanner
	unloader *Unloader
	loader   *Loader

	registry  Registry
	lifecycle Lifecycle
	importer  Importer
	source    Source
	sink      Sink

	// Last observed reload-cycle state per package
	states map[ModuleID]State

	// Event handlers (protected by mu)
	handlers []EventHandler
}

// EventHandler handles reload events. Handlers must be non-blocking and
// should not call back into the Reloader. Panics in handlers are recovered.
type EventHandler func(event Event)

// Event represents a reload lifecycle event.
type Event struct {
	Type    EventType
	Package ModuleID
	Err     error
}

// EventType is the type of reload event.
type EventType int

const (
	// EventPackageUnloaded is emitted when a package's modules have been
	// removed from the cache.
	EventPackageUnloaded EventType = iota
	// EventPackageReloaded is emitted when a package reload succeeded.
	EventPackageReloaded
	// EventPackagePartial is emitted when a package reload finished with
	// nothing successfully loaded.
	EventPackagePartial
	// EventEntrySkipped is emitted when a configured entry is not a
	// usable package name.
	EventEntrySkipped
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventPackageUnloaded:
		return "unloaded"
	case EventPackageReloaded:
		return "reloaded"
	case EventPackagePartial:
		return "partial"
	case EventEntrySkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithSink sets the log sink for progress and error reporting.
func WithSink(sink Sink) Option {
	return func(r *Reloader) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// NewReloader creates a reload orchestrator over the given host
// capabilities.
func NewReloader(registry Registry, lifecycle Lifecycle, importer Importer, source Source, opts ...Option) *Reloader {
	r := &Reloader{
		registry:  registry,
		lifecycle: lifecycle,
		importer:  importer,
		source:    source,
		sink:      discard,
		states:    make(map[ModuleID]State),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.scanner = NewScanner(registry, source)
	r.unloader = NewUnloader(registry, lifecycle, importer, r.sink)
	r.loader = NewLoader(registry, lifecycle, importer, r.sink)

	return r
}

// ReloadOne reloads a single package, trying to mimic the host's initial
// plugin loading sequence: gather the module sets, run unload hooks on the
// top-level plugin modules, clear the package out of the module cache
// children-first, then reimport and re-register everything.
//
// Returns true when anything at all was imported or registered. Nothing is
// rolled back on failure; a partially reloaded package is an accepted
// terminal state the next reload starts fresh from.
func (r *Reloader) ReloadOne(pkg ModuleID) bool {
	all, plugins := r.scanner.Scan(pkg)
	r.sink.Log(fmt.Sprintf("found %d module(s) for package %s, %d top-level plugin(s)", len(all), pkg, len(plugins)))

	r.setState(pkg, StateUnloading)
	for _, id := range plugins.Sorted() {
		handle, ok := r.registry.Handle(id)
		if !ok {
			continue
		}
		if err := callNotifyUnload(r.lifecycle, handle); err != nil {
			r.sink.Log(fmt.Sprintf("unload hook failed for %s: %v", id, err))
		} else {
			r.sink.Log(fmt.Sprintf("ran unload hook on %s", id))
		}
	}

	var cached []ModuleID
	for _, name := range r.registry.Names() {
		if all.Contains(name) {
			cached = append(cached, name)
		}
	}
	sortDeepestFirst(cached)
	for _, name := range cached {
		if r.registry.Contains(name) {
			r.registry.Delete(name)
			r.sink.Log(fmt.Sprintf("unloaded module %s", name))
		}
	}
	if err := callInvalidateCaches(r.importer); err != nil {
		r.sink.Log(fmt.Sprintf("failed to invalidate import caches: %v", err))
	}
	r.setState(pkg, StateUnloaded)
	r.emit(Event{Type: EventPackageUnloaded, Package: pkg})

	r.setState(pkg, StateImporting)
	ok := r.loader.Load(all, plugins)
	if ok {
		r.setState(pkg, StateLoaded)
		r.emit(Event{Type: EventPackageReloaded, Package: pkg})
	} else {
		r.setState(pkg, StatePartiallyLoaded)
		r.emit(Event{Type: EventPackagePartial, Package: pkg})
	}
	return ok
}

// ReloadMany reloads every entry of a configured package list in order.
// Entries come straight from the settings surface, so non-string and empty
// values are possible; they are skipped with a log line and never abort
// the batch. A package whose primary reload reports failure gets one
// brute-force file-by-file retry.
func (r *Reloader) ReloadMany(entries []any) {
	if len(entries) == 0 {
		return
	}

	for _, entry := range entries {
		name, ok := entry.(string)
		if !ok || name == "" {
			r.sink.Log(fmt.Sprintf("skipping invalid plugin entry: %#v", entry))
			r.emit(Event{Type: EventEntrySkipped})
			continue
		}

		pkg := ModuleID(name)
		r.unloader.Unload(pkg)
		if !r.ReloadOne(pkg) {
			r.fallbackReload(pkg)
		}
	}
}

// PluginList provides the configured list of packages to reload. The
// settings surface satisfies it.
type PluginList interface {
	PluginsToReload() ([]any, error)
}

// ReloadFromSettings reads the configured package list and reloads it.
// A list that cannot be read (missing, or not a list) is logged and the
// call becomes a no-op.
func (r *Reloader) ReloadFromSettings(list PluginList) {
	entries, err := list.PluginsToReload()
	if err != nil {
		r.sink.Log(fmt.Sprintf("plugins_to_reload is not usable: %v", err))
		return
	}
	r.ReloadMany(entries)
}

// fallbackReload walks every source file under the package's directory and
// tries a plain import followed by the host's named-reload hook, one file
// at a time. Some plugins are not representable as a single importable
// package tree (the host may have loaded them through a different path);
// this is the last resort for those.
func (r *Reloader) fallbackReload(pkg ModuleID) {
	root, err := r.source.PackagesPath()
	if err != nil || root == "" {
		r.sink.Log("could not determine packages path to search for package files")
		return
	}

	dir := filepath.Join(root, string(pkg))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		r.sink.Log(fmt.Sprintf("no package folder found for %s", pkg))
		return
	}
	r.sink.Log(fmt.Sprintf("found package folder: %s", dir))

	ext := r.source.Ext()
	tried := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		id, _ := moduleIDForFile(rel, ext)
		tried++
		r.sink.Log(fmt.Sprintf("trying file %s as module %s", path, id))

		if err := callImport(r.importer, id); err != nil {
			r.sink.Log(fmt.Sprintf("import failed for %s: %v", id, err))
		}
		if err := callReloadByName(r.lifecycle, id); err != nil {
			r.sink.Log(fmt.Sprintf("error reloading %s: %v", id, err))
		}
		return nil
	})

	if tried > 0 {
		r.sink.Log(fmt.Sprintf("tried %d file(s) in package folder", tried))
	}
}

// PackageState returns the last observed reload-cycle state for pkg.
// Packages that were never reloaded report StateLoaded.
func (r *Reloader) PackageState(pkg ModuleID) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[pkg]
}

// Unloader returns the underlying unloader for direct teardown operations.
func (r *Reloader) Unloader() *Unloader {
	return r.unloader
}

// Subscribe adds an event handler. Returns an unsubscribe function to
// remove the handler.
func (r *Reloader) Subscribe(handler EventHandler) func() {
	if handler == nil {
		return func() {}
	}

	r.mu.Lock()
	r.handlers = append(r.handlers, handler)
	index := len(r.handlers) - 1
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// Nil out the slot; compacting the slice would invalidate the
		// indices other unsubscribe closures captured.
		if index < len(r.handlers) {
			r.handlers[index] = nil
		}
	}
}

// setState records the reload-cycle state for pkg.
func (r *Reloader) setState(pkg ModuleID, s State) {
	r.mu.Lock()
	r.states[pkg] = s
	r.mu.Unlock()
}

// emit delivers an event to every subscribed handler. Handlers run on a
// snapshot of the list, outside the lock, so one may unsubscribe itself
// mid-delivery.
func (r *Reloader) emit(event Event) {
	r.mu.RLock()
	handlers := make([]EventHandler, len(r.handlers))
	copy(handlers, r.handlers)
	r.mu.RUnlock()

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		func() {
			// a panicking handler must not break the reload in progress
			defer func() { recover() }()
			handler(event)
		}()
	}
}
