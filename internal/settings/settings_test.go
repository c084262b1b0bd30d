package settings

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.json"))

	entries, err := s.PluginsToReload()
	if err != nil {
		t.Errorf("PluginsToReload() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("PluginsToReload() = %v, want empty", entries)
	}
	if !s.PrintTimestamps() {
		t.Error("PrintTimestamps() should default to true")
	}
	if s.ShowConsoleOnStartup() {
		t.Error("ShowConsoleOnStartup() should default to false")
	}
	if s.LogFile() != "" {
		t.Error("LogFile() should default to empty")
	}
}

func TestPluginsToReload(t *testing.T) {
	path := writeSettings(t, `{"plugins_to_reload": ["Good", "", 123, "AlsoGood"]}`)
	s := Load(path)

	entries, err := s.PluginsToReload()
	if err != nil {
		t.Fatalf("PluginsToReload() error = %v", err)
	}

	// JSON types are preserved; the reloader does the filtering.
	want := []any{"Good", "", float64(123), "AlsoGood"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("PluginsToReload() = %#v, want %#v", entries, want)
	}
}

func TestPluginsToReloadNotAList(t *testing.T) {
	path := writeSettings(t, `{"plugins_to_reload": "oops"}`)
	s := Load(path)

	if _, err := s.PluginsToReload(); !errors.Is(err, ErrNotList) {
		t.Errorf("PluginsToReload() error = %v, want ErrNotList", err)
	}
}

func TestBoolKeys(t *testing.T) {
	path := writeSettings(t, `{"print_timestamps": false, "show_console_on_startup": true}`)
	s := Load(path)

	if s.PrintTimestamps() {
		t.Error("PrintTimestamps() = true, want false")
	}
	if !s.ShowConsoleOnStartup() {
		t.Error("ShowConsoleOnStartup() = false, want true")
	}
}

func TestStringKeys(t *testing.T) {
	path := writeSettings(t, `{"log_file": "/tmp/firstlog.log", "packages_path": "/opt/packages"}`)
	s := Load(path)

	if got := s.LogFile(); got != "/tmp/firstlog.log" {
		t.Errorf("LogFile() = %q", got)
	}
	if got := s.PackagesPath(); got != "/opt/packages" {
		t.Errorf("PackagesPath() = %q", got)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	s := Load(path)
	entries, err := s.PluginsToReload()
	if err != nil {
		t.Errorf("PluginsToReload() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("PluginsToReload() = %v, want empty default", entries)
	}
	if !s.PrintTimestamps() {
		t.Error("default print_timestamps should be true")
	}
}

func TestWriteDefaultKeepsExisting(t *testing.T) {
	path := writeSettings(t, `{"print_timestamps": false}`)

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	if Load(path).PrintTimestamps() {
		t.Error("WriteDefault must not clobber an existing file")
	}
}

func TestMalformedFileFallsBack(t *testing.T) {
	path := writeSettings(t, `{not json`)
	s := Load(path)

	entries, err := s.PluginsToReload()
	if err != nil {
		t.Errorf("PluginsToReload() error = %v, want nil for unreadable key", err)
	}
	if len(entries) != 0 {
		t.Errorf("PluginsToReload() = %v, want empty", entries)
	}
	if !s.PrintTimestamps() {
		t.Error("PrintTimestamps() should fall back to default")
	}
}
