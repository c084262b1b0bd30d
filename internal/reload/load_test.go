package reload

import "testing"

func TestLoadImportsInParentFirstOrder(t *testing.T) {
	host := newFakeHost("")
	all := NewModuleSet("pkg.sub.b", "pkg", "pkg.a")

	ok := NewLoader(host, host, host, nil).Load(all, NewModuleSet())
	if !ok {
		t.Fatal("Load() = false, want true")
	}

	if len(host.imports) != 3 {
		t.Fatalf("imports = %v, want 3 entries", host.imports)
	}
	if host.imports[0] != "pkg" {
		t.Errorf("imports[0] = %q, want parent package first", host.imports[0])
	}
}

func TestLoadRunsRegistrationHook(t *testing.T) {
	host := newFakeHost("")
	all := NewModuleSet("pkg", "pkg.foo")
	plugins := NewModuleSet("pkg", "pkg.foo")

	ok := NewLoader(host, host, host, nil).Load(all, plugins)
	if !ok {
		t.Fatal("Load() = false, want true")
	}

	if len(host.loadHooks) != 2 {
		t.Errorf("load hooks = %v, want one per top-level plugin module", host.loadHooks)
	}
	if len(host.namedReloads) != 0 {
		t.Errorf("named reloads = %v, want none when hooks succeed", host.namedReloads)
	}
}

func TestLoadFallsBackToNamedReload(t *testing.T) {
	host := newFakeHost("")
	host.failLoadHook = true
	all := NewModuleSet("pkg")
	plugins := NewModuleSet("pkg")

	sink := &recordSink{}
	ok := NewLoader(host, host, host, sink).Load(all, plugins)

	if !ok {
		t.Fatal("Load() = false, want true via fallback")
	}
	if len(host.namedReloads) != 1 || host.namedReloads[0] != "pkg" {
		t.Errorf("named reloads = %v, want [pkg]", host.namedReloads)
	}
	if !sink.contains("falling back to named reload") {
		t.Error("fallback should be logged")
	}
}

func TestLoadUsesNamedReloadWhenNotCached(t *testing.T) {
	host := newFakeHost("")
	host.failImport = true // module never reaches the cache

	all := NewModuleSet("pkg")
	plugins := NewModuleSet("pkg")

	ok := NewLoader(host, host, host, nil).Load(all, plugins)

	if !ok {
		t.Fatal("Load() = false, want true via named reload")
	}
	if len(host.loadHooks) != 0 {
		t.Errorf("load hooks = %v, want none for an uncached module", host.loadHooks)
	}
	if len(host.namedReloads) != 1 {
		t.Errorf("named reloads = %v, want direct named reload", host.namedReloads)
	}
}

func TestLoadImportFailureIsNotFatalToBatch(t *testing.T) {
	host := newFakeHost("")
	host.failImport = true
	host.failNamedLoad = true

	all := NewModuleSet("pkg", "pkg.a", "pkg.b")
	sink := &recordSink{}
	NewLoader(host, host, host, sink).Load(all, NewModuleSet())

	// Every identifier gets its attempt despite earlier failures.
	if len(host.imports) != 3 {
		t.Errorf("imports = %v, want all 3 attempted", host.imports)
	}
	if !sink.contains("import failed") {
		t.Error("import failures should be logged")
	}
}

func TestLoadFalseOnlyWhenNothingSucceeded(t *testing.T) {
	host := newFakeHost("")
	host.failImport = true
	host.failLoadHook = true
	host.failNamedLoad = true

	all := NewModuleSet("pkg")
	plugins := NewModuleSet("pkg")

	if ok := NewLoader(host, host, host, nil).Load(all, plugins); ok {
		t.Error("Load() = true, want false when every step failed")
	}
}
