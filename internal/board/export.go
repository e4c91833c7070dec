package board

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode"
)

type ExportResult struct {
	Dir   string
	Files []string
}

// ExportHTML loads the feed once and writes index.html (no status
// restriction) plus one status-<slug>.html per configured status. The
// filter links point between those files, so the export works from disk.
func ExportHTML(ctx context.Context, app *App, outDir string) (*ExportResult, error) {
	if err := app.Controller.Start(ctx); err != nil {
		return nil, err
	}
	if err := ensureDir(outDir); err != nil {
		return nil, err
	}

	res := &ExportResult{Dir: outDir}
	snap := app.Controller.Snapshot()
	pages := append([]string{AllStatuses}, app.Renderer.Statuses()...)
	seen := map[string]bool{}
	for _, status := range pages {
		name := exportFileName(status)
		if seen[name] {
			continue
		}
		seen[name] = true

		snap.StatusFilter = status
		snap.SearchTerm = ""
		v := app.Renderer.BuildView(snap)
		page := Page{
			Title:    app.Title(),
			RepoSlug: app.RepoSlug(),
			View:     v,
			Filters:  pageFilters(v, exportFileName),
			Static:   true,
		}
		var buf bytes.Buffer
		if err := RenderHTML(&buf, page); err != nil {
			return nil, err
		}
		path := filepath.Join(outDir, name)
		if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}
	return res, nil
}

func exportFileName(status string) string {
	if status == "" || status == AllStatuses {
		return "index.html"
	}
	return "status-" + slug(status) + ".html"
}

func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(sb.String(), "-")
	if out == "" {
		return "other"
	}
	return out
}
