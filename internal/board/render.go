package board

import (
	"html/template"
	"io"
)

// Page wraps a View with the chrome that differs between the live server
// and the static export.
type Page struct {
	Title    string
	RepoSlug string
	FeedPath string
	View     View
	Filters  []PageFilter
	// Static pages have no search box or reload button.
	Static bool
}

type PageFilter struct {
	Label  string
	Href   string
	Active bool
}

var descriptions = newDescriptionRenderer()

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"markdown": descriptions.Render,
}).Parse(pageHTML))

func RenderHTML(w io.Writer, p Page) error {
	return pageTemplate.Execute(w, p)
}

const pageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    :root { --bg:#0b1020; --panel:#101a33; --card:#0f1830; --text:#e9eefc; --muted:#aab4d6; --accent:#86f7c5; --warn:#ffcc66; --done:#7aa2ff; }
    * { box-sizing:border-box; }
    body { margin:0; font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; background: radial-gradient(1200px 600px at 20% -10%, rgba(134,247,197,.18) 0%, rgba(20,33,74,.55) 35%, var(--bg) 70%); color:var(--text); }
    header { padding:14px 20px; border-bottom:1px solid rgba(255,255,255,.08); background: rgba(16,26,51,.55); backdrop-filter: blur(10px); position: sticky; top:0; z-index: 10; }
    header .row { display:flex; justify-content:space-between; align-items:center; gap:12px; flex-wrap:wrap; }
    h1 { margin:0; font-size:15px; letter-spacing:.06em; text-transform:uppercase; color: rgba(233,238,252,.82); }
    .controls { display:flex; gap:10px; align-items:center; flex-wrap:wrap; font-size:12px; }
    .controls form { display:flex; gap:8px; align-items:center; margin:0; }
    .filter-btn { color: rgba(233,238,252,.9); text-decoration:none; border:1px solid rgba(255,255,255,.14); padding:6px 10px; border-radius:999px; background: rgba(255,255,255,.04); }
    .filter-btn.active { color: var(--accent); border-color: rgba(134,247,197,.55); box-shadow: 0 0 0 3px rgba(134,247,197,.08); }
    input[type="search"] { width: 280px; max-width: 45vw; background: rgba(255,255,255,.06); border:1px solid rgba(255,255,255,.12); color: var(--text); padding:7px 9px; border-radius:10px; font-size:12px; }
    button { background: rgba(134,247,197,.12); border:1px solid rgba(134,247,197,.35); color: var(--text); padding:6px 8px; border-radius:8px; font-size:12px; cursor:pointer; }
    main { padding:16px 16px 20px; }
    #cards { display:grid; gap:12px; grid-template-columns: repeat(auto-fill, minmax(280px, 1fr)); }
    .card { padding:12px 14px; border-radius:12px; border:1px solid rgba(255,255,255,.10); background: rgba(15,24,48,.92); }
    .card h3 { margin:10px 0 6px; font-size:15px; }
    .meta, .chips { display:flex; gap:6px; align-items:center; flex-wrap:wrap; }
    .badge { font-size:11px; padding:2px 8px; border-radius:999px; border:1px solid rgba(255,255,255,.18); }
    .badge.open { color: var(--accent); border-color: rgba(134,247,197,.55); }
    .badge.inprogress { color: var(--warn); border-color: rgba(255,204,102,.55); }
    .badge.done { color: var(--done); border-color: rgba(122,162,255,.55); }
    .chip { font-size:11px; padding:2px 7px; border-radius:999px; background: rgba(255,255,255,.06); color: rgba(233,238,252,.8); }
    .desc { color: rgba(233,238,252,.75); font-size:13px; line-height:1.4; }
    .desc p { margin: 4px 0; }
    .desc a { color: var(--accent); }
    .counts { margin-top:10px; font-size:12px; color: rgba(233,238,252,.55); }
    .actions { margin-top:12px; display:flex; gap:8px; flex-wrap:wrap; }
    .btn { font-size:12px; text-decoration:none; padding:6px 10px; border-radius:8px; border:1px solid rgba(255,255,255,.14); color: var(--text); }
    .btn.primary { background: rgba(134,247,197,.14); border-color: rgba(134,247,197,.35); }
    .btn.secondary { background: rgba(255,255,255,.04); }
    .btn.disabled { opacity:.5; }
    .hint { margin-top:8px; color: rgba(233,238,252,.50); font-size:12px; }
    .card.error .desc { color: #ff6b6b; }
  </style>
</head>
<body>
  <header>
    <div class="row">
      <h1>{{.Title}}</h1>
      <div class="controls">
        {{range .Filters}}
          <a class="filter-btn{{if .Active}} active{{end}}" href="{{.Href}}" data-status="{{.Label}}">{{.Label}}</a>
        {{end}}
        {{if not .Static}}
          <form id="search-form" action="/" method="get">
            <input type="hidden" name="status" value="{{.View.StatusFilter}}" />
            <input id="search" type="search" name="q" value="{{.View.SearchTerm}}" placeholder="Search title, tags, team..." />
          </form>
          <form action="/reload" method="post">
            <input type="hidden" name="status" value="{{.View.StatusFilter}}" />
            <input type="hidden" name="q" value="{{.View.SearchTerm}}" />
            <button id="reload" type="submit">Reload</button>
          </form>
        {{end}}
      </div>
    </div>
    <div class="hint">
      {{if .RepoSlug}}Actions open pre-filled issues in {{.RepoSlug}}.{{end}}
      {{if .FeedPath}}Feed: {{.FeedPath}}{{end}}
      {{if not .View.LoadedAt.IsZero}}Loaded {{.View.LoadedAt.Format "2006-01-02 15:04:05"}}.{{end}}
    </div>
  </header>
  <main>
    <div id="cards">
      {{if .View.Message}}
        <div class="card{{if .View.Failed}} error{{end}}"><div class="desc">{{.View.Message}}</div></div>
      {{else}}
        {{range .View.Cards}}
          <div class="card" data-id="{{.ID}}">
            <div class="meta">
              <span class="badge {{.StatusClass}}">{{.Status}}</span>
              {{if .Owner}}<span class="chip">Owner: {{.Owner}}</span>{{end}}
              {{range .Tags}}<span class="chip">#{{.}}</span>{{end}}
            </div>
            <h3>{{.Title}}</h3>
            {{if .Description}}<div class="desc">{{markdown .Description}}</div>{{end}}
            <div class="chips">
              {{range .Team}}<span class="chip">👤 {{.}}</span>{{end}}
            </div>
            <div class="counts">Team: {{.TeamCount}} &nbsp;•&nbsp; Sign-ups: {{.SignupCount}}</div>
            <div class="actions">
              <a class="btn primary{{if not .SignUp.Enabled}} disabled{{end}}" href="{{.SignUp.URL}}" target="_blank" rel="noopener">{{.SignUp.Label}}</a>
              <a class="btn secondary" href="{{.Change.URL}}" target="_blank" rel="noopener">{{.Change.Label}}</a>
            </div>
          </div>
        {{end}}
      {{end}}
    </div>
  </main>
</body>
</html>`
