package board

import "strings"

// Filter returns the projects that pass both the status filter and the
// search term, in input order. It never modifies projects.
func Filter(projects []Project, status, term string) []Project {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if !matchesStatus(p, status) {
			continue
		}
		if term != "" && !strings.Contains(searchText(p), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesStatus(p Project, status string) bool {
	if status == "" || status == AllStatuses {
		return true
	}
	return strings.EqualFold(p.Status, status)
}

func searchText(p Project) string {
	fields := make([]string, 0, 3+len(p.Tags)+len(p.Team)+len(p.Signups))
	fields = append(fields, p.Title, p.Description, p.Status)
	fields = append(fields, p.Tags...)
	fields = append(fields, p.Team...)
	fields = append(fields, p.Signups...)
	return strings.ToLower(strings.Join(fields, " "))
}
