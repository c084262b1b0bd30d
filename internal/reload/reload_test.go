package reload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeModule is the loaded-module handle used by fakeHost.
type fakeModule struct {
	id ModuleID
}

// fakeHost implements Registry, Lifecycle, Importer, and Source over an
// in-memory module cache so tests never mutate real process state.
type fakeHost struct {
	mu sync.Mutex

	modules map[ModuleID]*fakeModule

	root    string
	rootErr error
	ext     string

	// Recorded calls, in order
	deletes       []ModuleID
	unloadHooks   []ModuleID
	loadHooks     []ModuleID
	namedReloads  []ModuleID
	imports       []ModuleID
	invalidations int

	// Failure injection
	failUnloadHook bool
	failLoadHook   bool
	failNamedLoad  bool
	failImport     bool
	failInvalidate bool
	panicHooks     bool
}

func newFakeHost(root string) *fakeHost {
	return &fakeHost{
		modules: make(map[ModuleID]*fakeModule),
		root:    root,
		ext:     ".lua",
	}
}

func (h *fakeHost) preload(ids ...ModuleID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range ids {
		h.modules[id] = &fakeModule{id: id}
	}
}

func (h *fakeHost) Contains(id ModuleID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.modules[id]
	return ok
}

func (h *fakeHost) Names() []ModuleID {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]ModuleID, 0, len(h.modules))
	for id := range h.modules {
		names = append(names, id)
	}
	return names
}

func (h *fakeHost) Handle(id ModuleID) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modules[id]
	if !ok {
		return nil, false
	}
	return m, true
}

func (h *fakeHost) Delete(id ModuleID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.modules, id)
	h.deletes = append(h.deletes, id)
}

func (h *fakeHost) NotifyUnload(handle any) error {
	if h.panicHooks {
		panic("unload hook panic")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := handle.(*fakeModule); ok {
		h.unloadHooks = append(h.unloadHooks, m.id)
	}
	if h.failUnloadHook {
		return errors.New("teardown rejected")
	}
	return nil
}

func (h *fakeHost) NotifyLoad(handle any) error {
	if h.panicHooks {
		panic("load hook panic")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := handle.(*fakeModule); ok {
		h.loadHooks = append(h.loadHooks, m.id)
	}
	if h.failLoadHook {
		return errors.New("registration rejected")
	}
	return nil
}

func (h *fakeHost) ReloadByName(id ModuleID) error {
	if h.panicHooks {
		panic("named reload panic")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.namedReloads = append(h.namedReloads, id)
	if h.failNamedLoad {
		return errors.New("named reload rejected")
	}
	return nil
}

func (h *fakeHost) Import(id ModuleID) error {
	if h.panicHooks {
		panic("import panic")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.imports = append(h.imports, id)
	if h.failImport {
		return errors.New("import rejected")
	}
	h.modules[id] = &fakeModule{id: id}
	return nil
}

func (h *fakeHost) InvalidateCaches() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invalidations++
	if h.failInvalidate {
		return errors.New("invalidate rejected")
	}
	return nil
}

func (h *fakeHost) PackagesPath() (string, error) {
	if h.rootErr != nil {
		return "", h.rootErr
	}
	return h.root, nil
}

func (h *fakeHost) Ext() string {
	return h.ext
}

// deleteIndex returns the position of id in the recorded delete order, or
// -1 when id was never deleted.
func (h *fakeHost) deleteIndex(id ModuleID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, d := range h.deletes {
		if d == id {
			return i
		}
	}
	return -1
}

// recordSink collects log lines for assertions.
type recordSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordSink) Log(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, message)
}

func (s *recordSink) contains(sub string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// writePackageFiles creates source files under root, given paths relative
// to root.
func writePackageFiles(t *testing.T, root string, relPaths ...string) {
	t.Helper()
	for _, rel := range relPaths {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("return {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
