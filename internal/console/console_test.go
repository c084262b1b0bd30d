package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogCarriesPrefix(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Output: &buf, Timestamps: false})
	defer Setup(Config{})

	Log("plugin initialized")

	out := buf.String()
	if !strings.Contains(out, "firstlog") {
		t.Errorf("output = %q, want prefix firstlog", out)
	}
	if !strings.Contains(out, "plugin initialized") {
		t.Errorf("output = %q, want message present", out)
	}
}

func TestSetupTimestamps(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Output: &buf, Timestamps: true})
	defer Setup(Config{})

	Log("stamped")

	// timeFormat has a space between date and time, so a timestamped line
	// has a leading date field.
	out := buf.String()
	if !strings.Contains(out, "stamped") {
		t.Fatalf("output = %q, want message present", out)
	}
	fields := strings.Fields(out)
	if len(fields) < 3 {
		t.Errorf("output = %q, want timestamp fields before message", out)
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Output: &buf})
	defer Setup(Config{})

	Debug("hidden detail")
	if strings.Contains(buf.String(), "hidden detail") {
		t.Error("debug output should be suppressed without Verbose")
	}

	Setup(Config{Output: &buf, Verbose: true})
	Debug("visible detail")
	if !strings.Contains(buf.String(), "visible detail") {
		t.Error("debug output should appear with Verbose")
	}
}

func TestErrorAlwaysVisible(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Output: &buf})
	defer Setup(Config{})

	Error("reload failed", "package", "pkg")
	out := buf.String()
	if !strings.Contains(out, "reload failed") {
		t.Errorf("output = %q, want error message", out)
	}
	if !strings.Contains(out, "pkg") {
		t.Errorf("output = %q, want key/value pair rendered", out)
	}
}
