package reload

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Scanner enumerates the modules belonging to a package from two sources:
// the live module cache and a recursive scan of the package's directory
// under the packages root. The two views are unioned; a file on disk that
// was never imported is not an error, the union reconciles it.
type Scanner struct {
	registry Registry
	source   Source
}

// NewScanner creates a scanner over the given module cache and source tree.
func NewScanner(registry Registry, source Source) *Scanner {
	return &Scanner{registry: registry, source: source}
}

// Scan returns the full module set for pkg and the subset of top-level
// plugin modules. The package itself is always a member of both. A module
// is top level when its source file sits directly inside the package
// directory; only top-level modules take part in host lifecycle hooks.
//
// Given the same cache contents and filesystem snapshot the returned sets
// are identical; callers sort when order matters. An unresolvable packages
// root degrades the scan to cache-only operation.
func (s *Scanner) Scan(pkg ModuleID) (all, plugins ModuleSet) {
	all = NewModuleSet(pkg)
	plugins = NewModuleSet(pkg)

	for _, name := range s.registry.Names() {
		if name.WithinPackage(pkg) {
			all.Add(name)
		}
	}

	root, err := s.source.PackagesPath()
	if err != nil || root == "" {
		return all, plugins
	}

	dir := filepath.Join(root, string(pkg))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return all, plugins
	}

	ext := s.source.Ext()
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		// Segment names are used verbatim; the host's import mechanism
		// does not normalize hyphens or underscores.
		id, segments := moduleIDForFile(rel, ext)
		all.Add(id)
		if segments == 2 {
			plugins.Add(id)
		}
		return nil
	})

	return all, plugins
}
