// Package host implements the plugin host runtime over a shared Lua
// state. It supplies the module cache, import mechanism, and lifecycle
// hooks the reload subsystem abstracts over: Lua's package.loaded table
// is the process-wide module cache, require is the import path, and a
// loaded module table may carry plugin_loaded / plugin_unloaded
// functions as its lifecycle hooks.
package host

import (
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/emberedit/firstlog/internal/reload"
)

// SourceExt is the source file extension for hosted plugins.
const SourceExt = ".lua"

// Runtime wraps a single shared Lua state hosting every plugin package.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes all
// access from Go code. Reloads themselves are serialized by the caller,
// the lock only guards against incidental concurrent inspection (the
// console panel reading module names mid-reload, for example).
type Runtime struct {
	mu     sync.Mutex
	L      *lua.LState
	root   string
	closed bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithPackagesPath sets the root directory plugin packages live under.
// Without it the runtime has no filesystem context and imports fail;
// the reload subsystem then operates cache-only.
func WithPackagesPath(root string) Option {
	return func(r *Runtime) {
		r.root = root
	}
}

// NewRuntime creates a Lua runtime with the base libraries plus the
// package library open. io, os, and debug stay closed to plugins.
func NewRuntime(opts ...Option) *Runtime {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	r := &Runtime{L: L}
	for _, opt := range opts {
		opt(r)
	}

	r.refreshSearchPath()
	return r
}

// Close releases the Lua state. After Close every operation fails with
// ErrRuntimeClosed.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}

// Contains reports whether the named module is in package.loaded.
func (r *Runtime) Contains(id reload.ModuleID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	return r.loadedValue(string(id)) != lua.LNil
}

// Names enumerates every module identifier in package.loaded.
func (r *Runtime) Names() []reload.ModuleID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	var names []reload.ModuleID
	r.loadedTable().ForEach(func(k, v lua.LValue) {
		if key, ok := k.(lua.LString); ok && v != lua.LNil {
			names = append(names, reload.ModuleID(key))
		}
	})
	return names
}

// Handle returns the loaded-module value for id.
func (r *Runtime) Handle(id reload.ModuleID) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false
	}
	v := r.loadedValue(string(id))
	if v == lua.LNil {
		return nil, false
	}
	return v, true
}

// Delete removes id from package.loaded. Deleting an absent id is a
// no-op.
func (r *Runtime) Delete(id reload.ModuleID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.loadedTable().RawSetString(string(id), lua.LNil)
}

// NotifyUnload runs the module's plugin_unloaded hook if it has one.
// A handle without the hook is fine; only an unusable handle is an error.
func (r *Runtime) NotifyUnload(handle any) error {
	return r.callModuleHook(handle, "plugin_unloaded")
}

// NotifyLoad runs the module's plugin_loaded hook if it has one.
func (r *Runtime) NotifyLoad(handle any) error {
	return r.callModuleHook(handle, "plugin_loaded")
}

// ReloadByName is the host's alternate load path: drop the module from
// package.loaded, require it fresh, and run its plugin_loaded hook.
func (r *Runtime) ReloadByName(id reload.ModuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}

	r.loadedTable().RawSetString(string(id), lua.LNil)
	mod, err := r.require(string(id))
	if err != nil {
		return err
	}
	return r.invokeHook(mod, "plugin_loaded")
}

// Import requires the named module into package.loaded.
func (r *Runtime) Import(id reload.ModuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	_, err := r.require(string(id))
	return err
}

// InvalidateCaches rebuilds package.path from the packages root so the
// next require re-resolves against the filesystem.
func (r *Runtime) InvalidateCaches() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	r.refreshSearchPath()
	return nil
}

// PackagesPath returns the configured packages root.
func (r *Runtime) PackagesPath() (string, error) {
	if r.root == "" {
		return "", ErrNoPackagesPath
	}
	return r.root, nil
}

// Ext returns the plugin source file extension.
func (r *Runtime) Ext() string {
	return SourceExt
}

// DoString executes a chunk of Lua in the shared state.
func (r *Runtime) DoString(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	return r.protect(func() error {
		return r.L.DoString(code)
	})
}

// GetGlobal returns a global from the shared state.
func (r *Runtime) GetGlobal(name string) lua.LValue {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return lua.LNil
	}
	return r.L.GetGlobal(name)
}

// RegisterFunc exposes a Go function as a Lua global.
func (r *Runtime) RegisterFunc(name string, fn lua.LGFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.L.SetGlobal(name, r.L.NewFunction(fn))
}

// ModuleCount returns the number of entries in package.loaded.
func (r *Runtime) ModuleCount() int {
	return len(r.Names())
}

// Version returns the hosted language version.
func (r *Runtime) Version() string {
	return lua.LuaVersion
}

// callModuleHook locks and runs the named hook on a module handle.
func (r *Runtime) callModuleHook(handle any, hook string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}

	lv, ok := handle.(lua.LValue)
	if !ok {
		return ErrNotAModule
	}
	return r.invokeHook(lv, hook)
}

// invokeHook calls mod[hook]() when mod is a table carrying a function
// under that name. Modules that return true from require, or tables
// without the hook, are silently fine. Caller holds the lock.
func (r *Runtime) invokeHook(mod lua.LValue, hook string) error {
	tbl, ok := mod.(*lua.LTable)
	if !ok {
		return nil
	}

	fn := r.L.GetField(tbl, hook)
	if fn == lua.LNil || fn.Type() != lua.LTFunction {
		return nil
	}

	return r.protect(func() error {
		return r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
}

// require calls the Lua require function. Caller holds the lock.
func (r *Runtime) require(name string) (lua.LValue, error) {
	fn := r.L.GetGlobal("require")
	if fn.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("require is not available")
	}

	var ret lua.LValue = lua.LNil
	err := r.protect(func() error {
		if err := r.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(name)); err != nil {
			return err
		}
		ret = r.L.Get(-1)
		r.L.Pop(1)
		return nil
	})
	if err != nil {
		return lua.LNil, fmt.Errorf("require %q: %w", name, err)
	}
	return ret, nil
}

// protect runs fn with panic recovery; gopher-lua panics on some
// internal errors even under PCall.
func (r *Runtime) protect(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// refreshSearchPath points package.path at the packages root. Caller
// holds the lock during reloads; NewRuntime calls it before the runtime
// escapes.
func (r *Runtime) refreshSearchPath() {
	if r.root == "" {
		return
	}

	pkg := r.L.GetGlobal("package")
	tbl, ok := pkg.(*lua.LTable)
	if !ok {
		return
	}

	paths := []string{
		r.root + "/?" + SourceExt,
		r.root + "/?/init" + SourceExt,
	}
	tbl.RawSetString("path", lua.LString(strings.Join(paths, ";")))
}

// loadedTable returns package.loaded. Caller holds the lock.
func (r *Runtime) loadedTable() *lua.LTable {
	pkg := r.L.GetGlobal("package")
	if tbl, ok := pkg.(*lua.LTable); ok {
		if loaded, ok := r.L.GetField(tbl, "loaded").(*lua.LTable); ok {
			return loaded
		}
	}
	// Unreachable with the package library open, but never return nil.
	return r.L.NewTable()
}

// loadedValue returns package.loaded[name]. Caller holds the lock.
func (r *Runtime) loadedValue(name string) lua.LValue {
	return r.loadedTable().RawGetString(name)
}
