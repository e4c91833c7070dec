package board

import (
	"net/http"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
)

type Options struct {
	Root       string
	ConfigPath string
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// App is one dashboard wired from its config: loader, controller and
// renderer share the same settings.
type App struct {
	Root       string
	Config     Config
	Loader     *Loader
	Controller *Controller
	Renderer   *Renderer
	Log        *zap.Logger
}

func NewApp(opt Options) (*App, error) {
	root, err := filepath.Abs(opt.Root)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(root, opt.ConfigPath)
	if err != nil {
		return nil, err
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loader := NewLoader(root, cfg.Feed, opt.HTTPClient)
	ctrl := NewController(loader, cfg.DefaultStatus, log.Named("controller"))
	ctrl.OnChange(logPhases(log.Named("state")))
	return &App{
		Root:       root,
		Config:     cfg,
		Loader:     loader,
		Controller: ctrl,
		Renderer:   NewRenderer(cfg),
		Log:        log,
	}, nil
}

// logPhases logs each phase transition at debug level. Filter and search
// changes keep the phase and are not logged.
func logPhases(log *zap.Logger) func(State) {
	var last atomic.Int32
	return func(s State) {
		prev := Phase(last.Swap(int32(s.Phase)))
		if prev == s.Phase {
			return
		}
		log.Debug("phase",
			zap.Stringer("from", prev),
			zap.Stringer("to", s.Phase),
			zap.Int("projects", len(s.Projects)),
		)
	}
}

// Title is the page heading: the repo slug when known.
func (a *App) Title() string {
	if s := a.RepoSlug(); s != "" {
		return s + " projects"
	}
	return "Projects"
}

func (a *App) RepoSlug() string {
	if a.Config.RepoOwner == "" || a.Config.RepoName == "" {
		return ""
	}
	return a.Config.RepoOwner + "/" + a.Config.RepoName
}

// Find returns the loaded project with the given id.
func (a *App) Find(id string) (Project, bool) {
	for _, p := range a.Controller.Snapshot().Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}
