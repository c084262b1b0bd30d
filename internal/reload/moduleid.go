package reload

import (
	"path/filepath"
	"sort"
	"strings"
)

// ModuleID is the dotted hierarchical name of a loaded code unit, as keyed
// in the host's module cache. "a.b" is a child of "a". Segment names are
// taken verbatim from the filesystem; the host's import mechanism does not
// normalize hyphens or underscores and neither does this package.
type ModuleID string

// Segments returns the dot-separated segments of the identifier.
func (id ModuleID) Segments() []string {
	return strings.Split(string(id), ".")
}

// Depth returns the number of segments.
func (id ModuleID) Depth() int {
	return strings.Count(string(id), ".") + 1
}

// WithinPackage reports whether id is pkg itself or a descendant of pkg.
func (id ModuleID) WithinPackage(pkg ModuleID) bool {
	return id == pkg || strings.HasPrefix(string(id), string(pkg)+".")
}

// less orders identifiers segment-wise, ascending. Parents sort before
// their children.
func (id ModuleID) less(other ModuleID) bool {
	a, b := id.Segments(), other.Segments()
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// moduleIDForFile derives the identifier for a source file path relative
// to the packages root, along with the number of path segments. ext is
// the known source extension and is trimmed literally, so a filename like
// "a.b.lua" keeps its interior dot in the final segment.
func moduleIDForFile(rel, ext string) (ModuleID, int) {
	rel = strings.TrimSuffix(rel, ext)
	parts := strings.Split(filepath.ToSlash(rel), "/")
	return ModuleID(strings.Join(parts, ".")), len(parts)
}

// ModuleSet is an unordered set of module identifiers. It is rebuilt on
// every reload; nothing is persisted across invocations.
type ModuleSet map[ModuleID]struct{}

// NewModuleSet returns a set containing the given identifiers.
func NewModuleSet(ids ...ModuleID) ModuleSet {
	s := make(ModuleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s ModuleSet) Add(id ModuleID) {
	s[id] = struct{}{}
}

// Contains reports whether id is in the set.
func (s ModuleSet) Contains(id ModuleID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in segment-wise ascending order, so parents
// come before their children.
func (s ModuleSet) Sorted() []ModuleID {
	ids := make([]ModuleID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].less(ids[j]) })
	return ids
}

// sortDeepestFirst orders ids by depth descending so the most nested
// identifiers come first. The sort is stable; the relative order of
// equal-depth siblings is unspecified and callers must not rely on it.
func sortDeepestFirst(ids []ModuleID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return ids[i].Depth() > ids[j].Depth()
	})
}
