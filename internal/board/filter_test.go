package board

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(ps []Project) []string {
	out := []string{}
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	projects := sampleProjects()
	cases := []struct {
		name   string
		status string
		term   string
		want   []string
	}{
		{"all no term", AllStatuses, "", []string{"1", "2", "3", "4"}},
		{"empty status is all", "", "", []string{"1", "2", "3", "4"}},
		{"status case-insensitive", "open", "", []string{"1"}},
		{"status exact text", "Done", "", []string{"3"}},
		{"unknown status", "Archived", "", []string{}},
		{"term in title", AllStatuses, "garden", []string{"1"}},
		{"term trimmed and lowered", AllStatuses, "  DOCS ", []string{"2"}},
		{"term in team", AllStatuses, "dev", []string{"2"}},
		{"term in signups", AllStatuses, "ben", []string{"1"}},
		{"term in status", AllStatuses, "parked", []string{"4"}},
		{"term spans fields", AllStatuses, "beds open", []string{"1"}},
		{"status and term conjunctive", "In Progress", "garden", []string{}},
		{"whitespace term ignored", "Open", "   ", []string{"1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(projects, tc.status, tc.term))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Filter(%q, %q) mismatch (-want +got):\n%s", tc.status, tc.term, diff)
			}
		})
	}
}

func TestFilterAllSentinelIsCaseSensitive(t *testing.T) {
	// "all" is an ordinary status value, not the sentinel.
	got := Filter(sampleProjects(), "all", "")
	if len(got) != 0 {
		t.Fatalf("expected no matches for status %q, got %v", "all", ids(got))
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	projects := sampleProjects()
	before := sampleProjects()
	_ = Filter(projects, "Open", "garden")
	if diff := cmp.Diff(before, projects); diff != "" {
		t.Fatalf("input modified (-before +after):\n%s", diff)
	}
}

func TestFilterIdempotent(t *testing.T) {
	once := Filter(sampleProjects(), "Open", "a")
	twice := Filter(once, "Open", "a")
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("filter not idempotent:\n%s", diff)
	}
}
