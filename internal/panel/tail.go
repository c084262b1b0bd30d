package panel

import (
	"os"
	"strings"
)

// tailMaxBytes bounds how much of the log file a single refresh reads.
const tailMaxBytes = 64 * 1024

// tailLines returns up to n trailing lines of the file at path. A missing
// or unreadable file yields no lines; the panel just renders empty.
func tailLines(path string, n int) []string {
	if path == "" || n <= 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}

	offset := int64(0)
	if info.Size() > tailMaxBytes {
		offset = info.Size() - tailMaxBytes
	}
	buf := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil
	}

	text := strings.TrimRight(string(buf), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if offset > 0 && len(lines) > 0 {
		// the first line may be a partial record after seeking
		lines = lines[1:]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
