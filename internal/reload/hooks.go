package reload

import "fmt"

// Host hooks are dynamically dispatched into plugin code and may panic as
// well as fail. The wrappers below convert both into an ordinary error so
// nothing escapes a public entry point.

func callNotifyUnload(lc Lifecycle, handle any) (err error) {
	defer recoverHook(&err)
	return lc.NotifyUnload(handle)
}

func callNotifyLoad(lc Lifecycle, handle any) (err error) {
	defer recoverHook(&err)
	return lc.NotifyLoad(handle)
}

func callReloadByName(lc Lifecycle, id ModuleID) (err error) {
	defer recoverHook(&err)
	return lc.ReloadByName(id)
}

func callImport(imp Importer, id ModuleID) (err error) {
	defer recoverHook(&err)
	return imp.Import(id)
}

func callInvalidateCaches(imp Importer) (err error) {
	defer recoverHook(&err)
	return imp.InvalidateCaches()
}

func recoverHook(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("hook panicked: %v", r)
	}
}
