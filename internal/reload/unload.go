package reload

import "fmt"

// Unloader tears down a module and its descendants. It never returns an
// error: hook failures, missing entries, and cache invalidation failures
// are logged and the teardown continues.
type Unloader struct {
	registry  Registry
	lifecycle Lifecycle
	importer  Importer
	sink      Sink
}

// NewUnloader creates an unloader. A nil sink discards messages.
func NewUnloader(registry Registry, lifecycle Lifecycle, importer Importer, sink Sink) *Unloader {
	if sink == nil {
		sink = discard
	}
	return &Unloader{registry: registry, lifecycle: lifecycle, importer: importer, sink: sink}
}

// Unload removes target and every module beneath it from the module cache.
//
// Three steps: the host's teardown hook runs on target if it is currently
// loaded, matching cache entries are deleted children-first so a parent is
// never torn down while its children remain registered, and the import
// path caches are invalidated so subsequent imports re-read the
// filesystem. Calling Unload on a target with no matching entries is a
// no-op beyond the cache invalidation.
func (u *Unloader) Unload(target ModuleID) {
	if handle, ok := u.registry.Handle(target); ok {
		if err := callNotifyUnload(u.lifecycle, handle); err != nil {
			u.sink.Log(fmt.Sprintf("unload hook failed for %s: %v", target, err))
		} else {
			u.sink.Log(fmt.Sprintf("ran unload hook on %s", target))
		}
	}

	var candidates []ModuleID
	for _, name := range u.registry.Names() {
		if name.WithinPackage(target) {
			candidates = append(candidates, name)
		}
	}
	sortDeepestFirst(candidates)

	for _, name := range candidates {
		// A concurrent removal is tolerated; the entry simply isn't there.
		if u.registry.Contains(name) {
			u.registry.Delete(name)
			u.sink.Log(fmt.Sprintf("unloaded module %s", name))
		}
	}

	if err := callInvalidateCaches(u.importer); err != nil {
		u.sink.Log(fmt.Sprintf("failed to invalidate import caches: %v", err))
	}
}
