package board

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

type DoctorReport struct {
	Problems []string
	Warnings []string
	Projects int
}

// Doctor checks the config and loads the feed once. Problems make links or
// loading fail; warnings are data that renders but probably is not meant.
func Doctor(ctx context.Context, app *App) *DoctorReport {
	r := &DoctorReport{}
	cfg := app.Config

	if !exists(configPath(app.Root)) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("missing %s; using defaults", rel(app.Root, configPath(app.Root))))
	}
	if cfg.RepoOwner == "" {
		r.Problems = append(r.Problems, "repo_owner is not set and no origin remote was found")
	}
	if cfg.RepoName == "" {
		r.Problems = append(r.Problems, "repo_name is not set and no origin remote was found")
	}
	if cfg.DefaultStatus != AllStatuses && !containsFold(cfg.Statuses, cfg.DefaultStatus) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("default_status %q is not one of statuses %v", cfg.DefaultStatus, cfg.Statuses))
	}

	if st, err := ReadServerState(app.Root); err == nil && !st.Live() {
		r.Warnings = append(r.Warnings, fmt.Sprintf("stale %s (pid %d is not running)", rel(app.Root, serverStatePath(app.Root)), st.PID))
	}

	projects, err := app.Loader.Load(ctx)
	if err != nil {
		r.Problems = append(r.Problems, err.Error())
		return r
	}
	r.Projects = len(projects)

	seen := map[string]bool{}
	for i, p := range projects {
		label := p.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			r.Warnings = append(r.Warnings, fmt.Sprintf("project %s has no id", label))
		} else if seen[p.ID] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("duplicate project id %s", p.ID))
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Title) == "" {
			r.Warnings = append(r.Warnings, fmt.Sprintf("project %s has no title", label))
		}
		if p.Kind() == StatusKindOther {
			r.Warnings = append(r.Warnings, fmt.Sprintf("project %s status %q has no badge style", label, p.Status))
		}
	}
	return r
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func rel(root, p string) string {
	if rp, err := filepath.Rel(root, p); err == nil {
		return rp
	}
	return p
}
