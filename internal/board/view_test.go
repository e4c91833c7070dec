package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer() *Renderer {
	return NewRenderer(Config{IssueHost: "github.com", RepoOwner: "acme", RepoName: "board"})
}

func loadedState(filter, term string) State {
	return State{
		Projects:     sampleProjects(),
		StatusFilter: filter,
		SearchTerm:   term,
		Phase:        PhaseLoaded,
		LoadedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Loads:        1,
	}
}

func TestBuildViewCards(t *testing.T) {
	v := testRenderer().BuildView(loadedState(AllStatuses, ""))
	require.Empty(t, v.Message)
	require.Len(t, v.Cards, 4)

	garden := v.Cards[0]
	assert.Equal(t, "Garden", garden.Title)
	assert.Equal(t, "open", garden.StatusClass())
	assert.Equal(t, 1, garden.TeamCount)
	assert.Equal(t, 1, garden.SignupCount)
	assert.True(t, garden.SignUp.Enabled)
	assert.Equal(t, "➕ Sign Up", garden.SignUp.Label)
	assert.Equal(t, testLinks.SignUpURL(sampleProjects()[0]), garden.SignUp.URL)
	assert.Equal(t, "🔁 Change Status", garden.Change.Label)
	assert.True(t, garden.Change.Enabled)

	docs := v.Cards[1]
	assert.Equal(t, "inprogress", docs.StatusClass())
	assert.False(t, docs.SignUp.Enabled)
	assert.Equal(t, "🔒 Sign Up (Open only)", docs.SignUp.Label)
	assert.NotEmpty(t, docs.SignUp.URL)

	assert.Equal(t, "done", v.Cards[2].StatusClass())
	assert.Equal(t, "", v.Cards[3].StatusClass())
}

func TestBuildViewFilters(t *testing.T) {
	v := testRenderer().BuildView(loadedState("Done", ""))
	var active []string
	for _, f := range v.Filters {
		if f.Active {
			active = append(active, f.Value)
		}
	}
	assert.Equal(t, []string{"Done"}, active)
	assert.Len(t, v.Filters, 4)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "3", v.Cards[0].ID)
}

func TestBuildViewNoMatches(t *testing.T) {
	v := testRenderer().BuildView(loadedState(AllStatuses, "zzz-no-such-thing"))
	assert.Equal(t, MessageNoMatches, v.Message)
	assert.Empty(t, v.Cards)
	assert.False(t, v.Failed)
}

func TestBuildViewLoadError(t *testing.T) {
	s := loadedState(AllStatuses, "")
	s.Phase = PhaseLoadFailed
	s.Err = &FetchError{Path: "./data/projects.json", StatusCode: 404}

	v := testRenderer().BuildView(s)
	assert.True(t, v.Failed)
	assert.Equal(t, "Error loading data: Failed to load ./data/projects.json (HTTP 404)", v.Message)
	assert.Empty(t, v.Cards)
}

func TestBuildViewLoading(t *testing.T) {
	v := testRenderer().BuildView(State{StatusFilter: AllStatuses, Phase: PhaseLoading})
	assert.Equal(t, MessageLoading, v.Message)

	// A reload after a successful load keeps showing the old cards.
	s := loadedState(AllStatuses, "")
	s.Phase = PhaseLoading
	assert.Len(t, testRenderer().BuildView(s).Cards, 4)
}

func TestBuildViewIdempotent(t *testing.T) {
	r := testRenderer()
	s := loadedState("Open", "a")
	assert.Equal(t, r.BuildView(s), r.BuildView(s))
}
