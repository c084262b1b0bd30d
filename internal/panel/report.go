package panel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emberedit/firstlog/internal/reload"
)

// Snapshot is the host state an info report is built from.
type Snapshot struct {
	EditorVersion string
	Platform      string
	Arch          string
	Modules       []reload.ModuleID
}

// InfoReport renders a plain-text report of the host and its loaded
// modules, suitable for dumping into a scratch view or stdout.
func InfoReport(snap Snapshot, now time.Time) string {
	var b strings.Builder
	b.WriteString("FIRSTLOG - PLUGIN INFORMATION\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Editor Version: %s\n", snap.EditorVersion)
	fmt.Fprintf(&b, "Platform: %s\n", snap.Platform)
	fmt.Fprintf(&b, "Architecture: %s\n", snap.Arch)
	b.WriteString("\nLOADED MODULES:\n")
	b.WriteString(strings.Repeat("-", 20) + "\n")

	names := sortedNames(snap.Modules)
	for _, name := range names {
		fmt.Fprintf(&b, "  * %s\n", name)
	}
	return b.String()
}

// LoadingOrder renders the loaded modules as numbered log lines, framed by
// header and footer markers.
func LoadingOrder(modules []reload.ModuleID) []string {
	lines := []string{"=== PLUGIN LOADING ORDER ==="}
	for i, name := range sortedNames(modules) {
		lines = append(lines, fmt.Sprintf("%3d. %s", i+1, name))
	}
	lines = append(lines, "=== END PLUGIN ORDER ===")
	return lines
}

func sortedNames(modules []reload.ModuleID) []string {
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}
