package reload

import "fmt"

// Loader reimports a package's module set and re-registers its top-level
// plugin modules with the host. Each module's success or failure is
// independent: host hooks commonly assume internal call sequences this
// package cannot reproduce, and a hook failure for one module must not
// abort the reload of its siblings.
type Loader struct {
	registry  Registry
	lifecycle Lifecycle
	importer  Importer
	sink      Sink
}

// NewLoader creates a loader. A nil sink discards messages.
func NewLoader(registry Registry, lifecycle Lifecycle, importer Importer, sink Sink) *Loader {
	if sink == nil {
		sink = discard
	}
	return &Loader{registry: registry, lifecycle: lifecycle, importer: importer, sink: sink}
}

// Load imports every module in all (segment-wise sorted, so parents import
// before children) and then runs the host's registration hook on each
// top-level plugin module. When the registration hook fails, or the module
// never made it into the cache, the host's named-reload path is tried
// instead.
//
// Returns true when at least one import or one registration succeeded;
// false only when nothing at all succeeded.
func (l *Loader) Load(all, plugins ModuleSet) bool {
	loadedAny := false

	for _, id := range all.Sorted() {
		l.sink.Log(fmt.Sprintf("importing module %s", id))
		if err := callImport(l.importer, id); err != nil {
			l.sink.Log(fmt.Sprintf("import failed for %s: %v", id, err))
			continue
		}
		loadedAny = true
	}

	for _, id := range plugins.Sorted() {
		if l.loadPlugin(id) {
			loadedAny = true
		}
	}

	return loadedAny
}

// loadPlugin registers one top-level plugin module with the host.
func (l *Loader) loadPlugin(id ModuleID) bool {
	handle, ok := l.registry.Handle(id)
	if !ok {
		// Never imported; the named-reload path is the only option.
		if err := callReloadByName(l.lifecycle, id); err != nil {
			l.sink.Log(fmt.Sprintf("named reload failed for %s: %v", id, err))
			return false
		}
		return true
	}

	l.sink.Log(fmt.Sprintf("running load hook on %s", id))
	err := callNotifyLoad(l.lifecycle, handle)
	if err == nil {
		return true
	}
	l.sink.Log(fmt.Sprintf("load hook failed for %s, falling back to named reload: %v", id, err))

	if err := callReloadByName(l.lifecycle, id); err != nil {
		l.sink.Log(fmt.Sprintf("named reload fallback failed for %s: %v", id, err))
		return false
	}
	return true
}
