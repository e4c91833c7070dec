package board

import "time"

const (
	MessageNoMatches = "No projects match your filters."
	MessageLoading   = "Loading projects..."
	errorPrefix      = "Error loading data: "
)

// View is everything an output backend needs to draw the dashboard. It has
// either a non-empty Message or at least one Card, never both.
type View struct {
	Filters      []FilterOption
	StatusFilter string
	SearchTerm   string
	Phase        Phase
	Message      string
	Failed       bool
	Cards        []Card
	Total        int
	LoadedAt     time.Time
}

type FilterOption struct {
	Value  string
	Active bool
}

type Card struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Kind        StatusKind `json:"kind"`
	Owner       string     `json:"owner,omitempty"`
	Tags        []string   `json:"tags"`
	Team        []string   `json:"team"`
	TeamCount   int        `json:"team_count"`
	SignupCount int        `json:"signup_count"`
	SignUp      Action     `json:"signup"`
	Change      Action     `json:"status_change"`
}

func (c Card) StatusClass() string { return c.Kind.Class() }

type Action struct {
	Label   string `json:"label"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// Renderer turns state snapshots into views.
type Renderer struct {
	links    LinkBuilder
	statuses []string
}

func NewRenderer(cfg Config) *Renderer {
	statuses := cfg.Statuses
	if len(statuses) == 0 {
		statuses = defaultConfig().Statuses
	}
	return &Renderer{links: NewLinkBuilder(cfg), statuses: statuses}
}

func (r *Renderer) Links() LinkBuilder { return r.links }

func (r *Renderer) Statuses() []string { return append([]string(nil), r.statuses...) }

func (r *Renderer) BuildView(s State) View {
	v := View{
		StatusFilter: s.StatusFilter,
		SearchTerm:   s.SearchTerm,
		Phase:        s.Phase,
		Total:        len(s.Projects),
		LoadedAt:     s.LoadedAt,
	}
	for _, st := range r.statuses {
		v.Filters = append(v.Filters, FilterOption{Value: st, Active: st == s.StatusFilter})
	}

	switch {
	case s.Phase == PhaseLoadFailed && s.Err != nil:
		v.Message = errorPrefix + s.Err.Error()
		v.Failed = true
		return v
	case s.Loads == 0 && s.Phase != PhaseLoaded:
		v.Message = MessageLoading
		return v
	}

	for _, p := range s.Visible() {
		v.Cards = append(v.Cards, r.card(p))
	}
	if len(v.Cards) == 0 {
		v.Message = MessageNoMatches
	}
	return v
}

func (r *Renderer) card(p Project) Card {
	signUp := Action{Label: "➕ Sign Up", URL: r.links.SignUpURL(p), Enabled: true}
	if !p.CanSignUp() {
		signUp.Label = "🔒 Sign Up (Open only)"
		signUp.Enabled = false
	}
	return Card{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Kind:        p.Kind(),
		Owner:       p.Owner,
		Tags:        p.Tags,
		Team:        p.Team,
		TeamCount:   len(p.Team),
		SignupCount: len(p.Signups),
		SignUp:      signUp,
		Change:      Action{Label: "🔁 Change Status", URL: r.links.StatusChangeURL(p), Enabled: true},
	}
}
