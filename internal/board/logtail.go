package board

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// maxTailBytes bounds how much of a log TailLines reads from its end.
const maxTailBytes = 256 << 10

// TailLines returns the last n lines of the file at path. Only the final
// maxTailBytes are read; a line cut by that limit is dropped.
func TailLines(path string, n int) (string, error) {
	return tailLines(path, n, maxTailBytes)
}

func tailLines(path string, n int, limit int64) (string, error) {
	if n <= 0 {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}
	var r io.Reader = f
	cut := limit > 0 && st.Size() > limit
	if cut {
		r = io.NewSectionReader(f, st.Size()-limit, limit)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if cut {
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			b = b[i+1:]
		}
	}
	return lastLines(b, n), nil
}

// lastLines keeps the final n lines of b, newline-terminated.
func lastLines(b []byte, n int) string {
	b = bytes.TrimRight(b, "\n")
	if len(b) == 0 {
		return ""
	}
	lines := bytes.Split(b, []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("\n"))) + "\n"
}
