// Package settings reads the plugin's settings file. The file is JSON;
// values are read on demand with gjson so a partially invalid file still
// yields every readable key. Reads never fail: a missing file or key
// falls back to its default.
package settings

import (
	"errors"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultFileName is the settings file name the plugin looks for.
const DefaultFileName = "firstlog.json"

// Settings keys.
const (
	// KeyPluginsToReload lists the package/module names the reloader
	// processes, in order.
	KeyPluginsToReload = "plugins_to_reload"

	// KeyPrintTimestamps toggles timestamps on log lines.
	KeyPrintTimestamps = "print_timestamps"

	// KeyShowConsoleOnStartup opens the console panel on startup.
	KeyShowConsoleOnStartup = "show_console_on_startup"

	// KeyLogFile is the path console output is mirrored to.
	KeyLogFile = "log_file"

	// KeyPackagesPath is the root directory plugin packages live under.
	KeyPackagesPath = "packages_path"
)

// ErrNotList is returned when plugins_to_reload holds something other
// than a list.
var ErrNotList = errors.New("plugins_to_reload must be a list")

// Settings is one read of the settings file. Callers re-Load when they
// want fresh values; a Settings value itself never changes.
type Settings struct {
	path string
	raw  []byte
}

// Load reads the settings file at path. A missing or unreadable file is
// not an error; every getter then returns its default.
func Load(path string) *Settings {
	s := &Settings{path: path}
	if data, err := os.ReadFile(path); err == nil {
		s.raw = data
	}
	return s
}

// Path returns the settings file path.
func (s *Settings) Path() string {
	return s.path
}

// PluginsToReload returns the configured reload list. The entries keep
// their JSON types: the reloader itself skips and logs non-string values.
// An absent key yields an empty list.
func (s *Settings) PluginsToReload() ([]any, error) {
	res := gjson.GetBytes(s.raw, KeyPluginsToReload)
	if !res.Exists() {
		return nil, nil
	}
	if !res.IsArray() {
		return nil, ErrNotList
	}
	values, _ := res.Value().([]any)
	return values, nil
}

// PrintTimestamps reports whether log lines carry timestamps. Defaults to
// true.
func (s *Settings) PrintTimestamps() bool {
	res := gjson.GetBytes(s.raw, KeyPrintTimestamps)
	if !res.Exists() {
		return true
	}
	return res.Bool()
}

// ShowConsoleOnStartup reports whether the console panel opens on
// startup. Defaults to false.
func (s *Settings) ShowConsoleOnStartup() bool {
	return gjson.GetBytes(s.raw, KeyShowConsoleOnStartup).Bool()
}

// LogFile returns the configured mirror file path, or empty when unset.
func (s *Settings) LogFile() string {
	return gjson.GetBytes(s.raw, KeyLogFile).String()
}

// PackagesPath returns the configured packages root, or empty when unset.
func (s *Settings) PackagesPath() string {
	return gjson.GetBytes(s.raw, KeyPackagesPath).String()
}

// WriteDefault creates a settings file at path with the default values.
// An existing file is left untouched.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var (
		out = "{}"
		err error
	)
	if out, err = sjson.Set(out, KeyPluginsToReload, []string{}); err != nil {
		return err
	}
	if out, err = sjson.Set(out, KeyPrintTimestamps, true); err != nil {
		return err
	}
	if out, err = sjson.Set(out, KeyShowConsoleOnStartup, false); err != nil {
		return err
	}
	if out, err = sjson.Set(out, KeyLogFile, ""); err != nil {
		return err
	}
	if out, err = sjson.Set(out, KeyPackagesPath, ""); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(out+"\n"), 0o644)
}
