package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const (
	DefaultFeed  = "./data/projects.json"
	maxFeedBytes = 16 << 20
)

// FetchError reports a feed that could not be retrieved: a non-2xx
// response, a transport failure or an unreadable file.
type FetchError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to load %s (HTTP %d)", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("Failed to load %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError reports a body that is markup, usually an HTML error or
// index page served in place of the feed.
type FormatError struct {
	Path string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Expected JSON but received HTML. Check that %s exists at the correct path.", e.Path)
}

type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProjectSource produces a fresh project collection on every call.
type ProjectSource interface {
	Load(ctx context.Context) ([]Project, error)
}

// Loader reads the project feed from an http(s) URL or a local file.
type Loader struct {
	feed   string
	root   string
	client *http.Client
}

func NewLoader(root, feed string, client *http.Client) *Loader {
	if strings.TrimSpace(feed) == "" {
		feed = DefaultFeed
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{feed: feed, root: root, client: client}
}

// Path is the feed as configured; error messages name it verbatim.
func (l *Loader) Path() string { return l.feed }

// LocalPath reports the file the feed is read from, if it is not remote.
func (l *Loader) LocalPath() (string, bool) {
	if isRemote(l.feed) {
		return "", false
	}
	p := l.feed
	if u, err := url.Parse(p); err == nil && u.Scheme == "file" {
		p = u.Path
	}
	return resolvePath(l.root, p), true
}

func (l *Loader) Load(ctx context.Context) ([]Project, error) {
	body, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	return decodeProjects(l.feed, body)
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if !isRemote(l.feed) {
		return l.readFile(ctx)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.feed, nil)
	if err != nil {
		return nil, &FetchError{Path: l.feed, Err: err}
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{Path: l.feed, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{Path: l.feed, StatusCode: resp.StatusCode}
	}
	return readCapped(l.feed, resp.Body)
}

func (l *Loader) readFile(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Path: l.feed, Err: err}
	}
	p, _ := l.LocalPath()
	f, err := os.Open(p)
	if err != nil {
		return nil, &FetchError{Path: l.feed, Err: err}
	}
	defer f.Close()
	return readCapped(l.feed, f)
}

func readCapped(path string, r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxFeedBytes+1))
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	if len(b) > maxFeedBytes {
		return nil, &FetchError{Path: path, Err: errors.New("feed exceeds 16 MiB")}
	}
	return b, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

func decodeProjects(path string, body []byte) ([]Project, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(body), utf8BOM))
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return nil, &FormatError{Path: path}
	}
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		return nil, &ParseError{Path: path, Err: errors.New("expected a JSON array of projects")}
	}
	var projects []Project
	if err := json.Unmarshal(trimmed, &projects); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return projects, nil
}

func isRemote(feed string) bool {
	lower := strings.ToLower(feed)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
