package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AjaxHeader marks a reload request that wants 204 instead of a redirect.
const AjaxHeader = "X-Projectboard-Ajax"

// Response is the JSON envelope of every /api route.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type projectsPayload struct {
	Phase   string `json:"phase"`
	Status  string `json:"status"`
	Query   string `json:"query"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
	Cards   []Card `json:"cards"`
}

type linksPayload struct {
	ID           string `json:"id"`
	SignUp       string `json:"signup"`
	StatusChange string `json:"status_change"`
}

// Server is the HTTP face of one App. Filter and search come from each
// request's query and never change the controller's own filter.
type Server struct {
	app    *App
	log    *zap.Logger
	router chi.Router
}

func NewServer(app *App) *Server {
	s := &Server{app: app, log: app.Log.Named("http")}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(withSecurityHeaders)

	r.Get("/", s.handleIndex)
	r.Post("/reload", s.handleReload)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})
	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", s.handleProjects)
		r.Get("/{id}/links", s.handleLinks)
	})
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// view renders the controller snapshot under the request's filter. A
// missing status parameter falls back to the configured default.
func (s *Server) view(r *http.Request) View {
	snap := s.app.Controller.Snapshot()
	q := r.URL.Query()
	if q.Has("status") {
		snap.StatusFilter = q.Get("status")
	}
	snap.SearchTerm = q.Get("q")
	return s.app.Renderer.BuildView(snap)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	page := Page{
		Title:    s.app.Title(),
		RepoSlug: s.app.RepoSlug(),
		FeedPath: s.app.Loader.Path(),
		View:     v,
		Filters:  pageFilters(v, func(status string) string { return dashboardURL(status, v.SearchTerm) }),
	}
	var buf bytes.Buffer
	if err := RenderHTML(&buf, page); err != nil {
		s.log.Error("render page", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	// The load outlives a client that hangs up; a newer reload still cancels it.
	err := s.app.Controller.Reload(context.WithoutCancel(r.Context()))
	if err != nil && !errors.Is(err, ErrSuperseded) {
		s.log.Debug("reload failed", zap.Error(err))
	}
	if r.Header.Get(AjaxHeader) == "1" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	status := r.PostForm.Get("status")
	if status == "" {
		status = r.URL.Query().Get("status")
	}
	term := r.PostForm.Get("q")
	if term == "" {
		term = r.URL.Query().Get("q")
	}
	http.Redirect(w, r, dashboardURL(status, term), http.StatusSeeOther)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	if v.Failed {
		sendError(w, v.Message, http.StatusBadGateway)
		return
	}
	cards := v.Cards
	if cards == nil {
		cards = []Card{}
	}
	sendSuccess(w, projectsPayload{
		Phase:   v.Phase.String(),
		Status:  v.StatusFilter,
		Query:   v.SearchTerm,
		Total:   v.Total,
		Message: v.Message,
		Cards:   cards,
	})
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.app.Find(id)
	if !ok {
		sendError(w, fmt.Sprintf("unknown project %q", id), http.StatusNotFound)
		return
	}
	lb := s.app.Renderer.Links()
	sendSuccess(w, linksPayload{ID: p.ID, SignUp: lb.SignUpURL(p), StatusChange: lb.StatusChangeURL(p)})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; base-uri 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

func sendJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func sendSuccess(w http.ResponseWriter, data any) {
	sendJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, message string, code int) {
	sendJSON(w, code, Response{Success: false, Message: message})
}

// dashboardURL is the live page for a filter and search term.
func dashboardURL(status, term string) string {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if term != "" {
		q.Set("q", term)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func pageFilters(v View, href func(status string) string) []PageFilter {
	out := make([]PageFilter, 0, len(v.Filters))
	for _, f := range v.Filters {
		out = append(out, PageFilter{Label: f.Value, Href: href(f.Value), Active: f.Active})
	}
	return out
}

type UpOptions struct {
	PortOverride int
	// Watch forces the feed watcher on even when the config leaves it off.
	Watch bool
}

// Running is a started dashboard server.
type Running struct {
	Addr string
	g    *errgroup.Group
}

// Wait blocks until the server and its watcher have stopped.
func (r *Running) Wait() error { return r.g.Wait() }

// Up binds 127.0.0.1 on the configured port, records the server state for
// `down` and serves until ctx is done. The initial load runs in the
// background so the page is reachable while the feed is still loading.
func Up(ctx context.Context, app *App, opt UpOptions) (*Running, error) {
	port := app.Config.Port
	if opt.PortOverride != 0 {
		port = opt.PortOverride
	}
	if port == 0 {
		port = defaultConfig().Port
	}

	if st, ok := liveServer(app.Root); ok && st.PID != os.Getpid() {
		return nil, fmt.Errorf("server already running (pid %d) on %s", st.PID, st.URL())
	}
	log := app.Log.Named("up")
	watchPath, watching := "", false
	if opt.Watch || app.Config.Watch {
		if watchPath, watching = app.Loader.LocalPath(); !watching {
			log.Warn("feed is remote; not watching", zap.String("feed", app.Loader.Path()))
		}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, err
	}
	addr := ln.Addr().String()

	st := &ServerState{
		PID:       os.Getpid(),
		Addr:      addr,
		Feed:      app.Loader.Path(),
		Watching:  watching,
		StartedAt: time.Now().UTC(),
	}
	if err := writeServerState(app.Root, st); err != nil {
		_ = ln.Close()
		return nil, err
	}

	srv := &http.Server{
		Handler:           NewServer(app).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		_ = clearServerState(app.Root)
		return err
	})
	g.Go(func() error {
		// Load failures are kept in the controller state and shown on the page.
		_ = app.Controller.Start(gctx)
		return nil
	})

	if watching {
		w := NewFeedWatcher(watchPath, func() { _ = app.Controller.Reload(gctx) }, log.Named("watch"))
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				log.Warn("feed watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	log.Info("listening", zap.String("addr", addr), zap.String("feed", app.Loader.Path()))
	return &Running{Addr: addr, g: g}, nil
}
