package board

import (
	"path/filepath"
)

// InitRepo scaffolds a dashboard under root: the config file, a sample feed
// and the two issue templates the generated links point at. Existing files
// are left alone. It returns the paths it created.
func InitRepo(root string) ([]string, error) {
	if err := ensureDir(boardDir(root)); err != nil {
		return nil, err
	}
	var created []string

	if !exists(configPath(root)) {
		cfg := defaultConfig()
		if owner, name, ok := repoSlugFromGitConfig(root, cfg.IssueHost); ok {
			cfg.RepoOwner, cfg.RepoName = owner, name
		}
		if err := writeYAMLFile(configPath(root), &cfg); err != nil {
			return created, err
		}
		created = append(created, configPath(root))
	}

	files := []struct {
		path string
		body string
	}{
		{resolvePath(root, DefaultFeed), sampleFeedJSON},
		{filepath.Join(root, ".github", "ISSUE_TEMPLATE", "signup.md"), signUpTemplateMD},
		{filepath.Join(root, ".github", "ISSUE_TEMPLATE", "status-change.md"), statusChangeTemplateMD},
	}
	for _, f := range files {
		if exists(f.path) {
			continue
		}
		if err := writeFileAtomic(f.path, []byte(f.body), 0o644); err != nil {
			return created, err
		}
		created = append(created, f.path)
	}
	return created, nil
}

const sampleFeedJSON = `[
  {
    "id": "P-1",
    "title": "Community garden",
    "description": "Plan beds and a **watering rota** for the spring season.",
    "status": "Open",
    "owner": "ana",
    "tags": ["outdoors", "community"],
    "team": ["ana"],
    "signups": ["ben"]
  },
  {
    "id": "P-2",
    "title": "Docs refresh",
    "description": "Rewrite the getting-started guide.",
    "status": "In Progress",
    "owner": "cho",
    "tags": ["docs"],
    "team": ["cho", "dev"],
    "signups": []
  },
  {
    "id": "P-3",
    "title": "Release 1.0",
    "status": "Done",
    "tags": [],
    "team": ["eve"],
    "signups": []
  }
]
`

const signUpTemplateMD = `---
name: Sign Up
about: Join a project listed on the dashboard
title: "Sign Up: "
labels: signup
---

Project ID:

(Do not edit the ID. This issue will be processed automatically.)
`

const statusChangeTemplateMD = `---
name: Status Change
about: Request a status change for a project on the dashboard
title: "Status Change: "
labels: status-change
---

Project ID:

New Status:

Notes (optional):
`
