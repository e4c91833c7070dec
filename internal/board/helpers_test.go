package board

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleProjects() []Project {
	return []Project{
		{ID: "1", Title: "Garden", Description: "Plant beds", Status: "Open", Owner: "ana", Tags: []string{"outdoors"}, Team: []string{"ana"}, Signups: []string{"ben"}},
		{ID: "2", Title: "Docs", Description: "Rewrite guide", Status: "In Progress", Tags: []string{"docs"}, Team: []string{"cho", "dev"}, Signups: []string{}},
		{ID: "3", Title: "Release", Status: "done", Tags: []string{}, Team: []string{}, Signups: []string{}},
		{ID: "4", Title: "Someday", Status: "Parked", Tags: []string{"ideas"}, Team: []string{}, Signups: []string{}},
	}
}

const sampleFeed = `[
  {"id": 1, "title": "Garden", "description": "Plant beds", "status": "Open", "owner": "ana", "tags": ["outdoors"], "team": ["ana"], "signups": ["ben"]},
  {"id": "P-2", "title": "Docs", "status": "In Progress", "team": ["cho", "dev"]},
  {"id": 3, "title": "Release", "status": "Done", "tags": null}
]`

// newTestApp writes feed and config under a temp root and wires an App.
func newTestApp(t *testing.T, feed string, config string) *App {
	t.Helper()
	root := t.TempDir()
	if feed != "" {
		writeTestFile(t, filepath.Join(root, "data", "projects.json"), feed)
	}
	if config != "" {
		writeTestFile(t, configPath(root), config)
	}
	app, err := NewApp(Options{Root: root})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func writeTestFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const testConfig = `version: 1
repo_owner: acme
repo_name: board
`
