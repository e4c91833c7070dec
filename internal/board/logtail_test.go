package board

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLastLines(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"", 3, ""},
		{"\n\n", 3, ""},
		{"a\nb\nc\n", 2, "b\nc\n"},
		{"a\nb", 5, "a\nb\n"},
		{"a\n\nb\n", 2, "\nb\n"},
	}
	for _, c := range cases {
		if got := lastLines([]byte(c.in), c.n); got != c.want {
			t.Errorf("lastLines(%q, %d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestTailLinesDropsCutLine(t *testing.T) {
	p := filepath.Join(t.TempDir(), "server.log")
	writeTestFile(t, p, strings.Repeat("x", 50)+"\nkeep-1\nkeep-2\n")

	got, err := tailLines(p, 10, 20)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if got != "keep-1\nkeep-2\n" {
		t.Fatalf("got %q", got)
	}
	if got, _ := TailLines(p, 0); got != "" {
		t.Fatalf("n=0 got %q", got)
	}
	if got, _ := TailLines(p, 1); got != "keep-2\n" {
		t.Fatalf("n=1 got %q", got)
	}
}
