package board

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestInitRepoScaffoldsAndLoads(t *testing.T) {
	root := t.TempDir()
	created, err := InitRepo(root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("created = %v", created)
	}
	for _, p := range []string{
		configPath(root),
		filepath.Join(root, "data", "projects.json"),
		filepath.Join(root, ".github", "ISSUE_TEMPLATE", "signup.md"),
		filepath.Join(root, ".github", "ISSUE_TEMPLATE", "status-change.md"),
	} {
		if !exists(p) {
			t.Fatalf("missing %s", p)
		}
	}

	app, err := NewApp(Options{Root: root})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := app.Controller.Start(context.Background()); err != nil {
		t.Fatalf("sample feed does not load: %v", err)
	}
	if n := len(app.Controller.Snapshot().Projects); n != 3 {
		t.Fatalf("sample projects = %d", n)
	}
}

func TestInitRepoKeepsExistingFiles(t *testing.T) {
	root := t.TempDir()
	feed := filepath.Join(root, "data", "projects.json")
	writeTestFile(t, feed, "[]")

	created, err := InitRepo(root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, p := range created {
		if p == feed {
			t.Fatalf("existing feed reported as created")
		}
	}
	b, err := os.ReadFile(feed)
	if err != nil || string(b) != "[]" {
		t.Fatalf("existing feed overwritten: %q %v", b, err)
	}

	again, err := InitRepo(root)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second init created %v", again)
	}
}

func TestInitRepoUsesOriginForSlug(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ".git", "config"), "[remote \"origin\"]\n\turl = https://github.com/acme/board.git\n")
	if _, err := InitRepo(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	var cfg Config
	if err := readYAMLFile(configPath(root), &cfg); err != nil {
		t.Fatalf("read config: %v", err)
	}
	if cfg.RepoOwner != "acme" || cfg.RepoName != "board" {
		t.Fatalf("slug = %s/%s", cfg.RepoOwner, cfg.RepoName)
	}
}
