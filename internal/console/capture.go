package console

import (
	"io"
	"os"
	"strings"
	"sync"
)

// Capture mirrors console output to a log file while passing it through
// to the original stream. Blank output is passed through but not
// mirrored, and mirror failures are swallowed: the capture often wraps
// the very stream the logger writes to, and a failing mirror must not
// recurse into more logging.
type Capture struct {
	mu       sync.Mutex
	original io.Writer
	path     string
}

// NewCapture creates a capture that mirrors writes on original into the
// file at path. The file is appended to and created on first write.
func NewCapture(original io.Writer, path string) *Capture {
	return &Capture{original: original, path: path}
}

// Write writes p to the original stream and best-effort appends it to the
// log file. The returned count and error reflect only the original
// stream.
func (c *Capture) Write(p []byte) (int, error) {
	n, err := c.original.Write(p)
	c.mirror(p)
	return n, err
}

// Path returns the log file path.
func (c *Capture) Path() string {
	return c.path
}

// mirror appends p to the log file, adding a trailing newline when the
// chunk lacks one. All failures are ignored.
func (c *Capture) mirror(p []byte) {
	if strings.TrimSpace(string(p)) == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	if _, err := f.Write(p); err != nil {
		return
	}
	if len(p) > 0 && p[len(p)-1] != '\n' {
		_, _ = f.Write([]byte{'\n'})
	}
}
