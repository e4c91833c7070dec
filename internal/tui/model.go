// Package tui is the terminal front end of the dashboard. It drives the same
// controller and renderer as the HTTP server.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/flip-z/projectboard/internal/board"
	"go.uber.org/zap"
)

// loadedMsg reports the end of one Reload; err is nil, a load error or
// board.ErrSuperseded.
type loadedMsg struct{ err error }

// stateChangedMsg reports a controller change made outside this model,
// such as a reload started by the feed watcher.
type stateChangedMsg struct{}

type Model struct {
	ctx     context.Context
	app     *board.App
	filters []string

	search    textinput.Model
	searching bool
	cursor    int
	pending   int
	width     int
	height    int
	view      board.View
}

func New(ctx context.Context, app *board.App) Model {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "title, tags, team"
	in.CharLimit = 120

	m := Model{
		ctx:     ctx,
		app:     app,
		filters: app.Renderer.Statuses(),
		search:  in,
		pending: 1,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ctx, ctrl := m.ctx, m.app.Controller
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Reload(ctx)}
	}
}

func (m *Model) refresh() {
	m.view = m.app.Renderer.BuildView(m.app.Controller.Snapshot())
	if m.cursor >= len(m.view.Cards) {
		m.cursor = len(m.view.Cards) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.Width = max(10, msg.Width-4)
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, nil

	case loadedMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.err != nil && !errors.Is(msg.err, board.ErrSuperseded) {
			m.app.Log.Debug("load failed", zap.Error(msg.err))
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.app.Controller.SetSearch(m.search.Value())
	m.refresh()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.selectFilter(m.activeFilter() + 1)
	case "shift+tab":
		m.selectFilter(m.activeFilter() - 1 + len(m.filters))
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(key[0] - '1'); i < len(m.filters) {
			m.selectFilter(i)
		}
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.app.Controller.SetSearch("")
			m.refresh()
		}
	case "r":
		m.pending++
		return m, m.load()
	case "j", "down":
		if m.cursor < len(m.view.Cards)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	}
	return m, nil
}

func (m Model) activeFilter() int {
	for i, f := range m.view.Filters {
		if f.Active {
			return i
		}
	}
	return 0
}

func (m *Model) selectFilter(i int) {
	if len(m.filters) == 0 {
		return
	}
	m.app.Controller.SetStatusFilter(m.filters[i%len(m.filters)])
	m.cursor = 0
	m.refresh()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.app.Title()))
	if m.pending > 0 {
		b.WriteString(dimStyle.Render("  loading..."))
	}
	b.WriteString("\n")

	tabs := make([]string, 0, len(m.view.Filters))
	for i, f := range m.view.Filters {
		label := fmt.Sprintf("%d %s", i+1, f.Value)
		if f.Active {
			tabs = append(tabs, activeStyle.Render(label))
		} else {
			tabs = append(tabs, filterStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.view.Failed:
		b.WriteString(errorStyle.Render(m.view.Message))
		b.WriteString("\n")
	case m.view.Message != "":
		b.WriteString(dimStyle.Render(m.view.Message))
		b.WriteString("\n")
	default:
		start, end := m.window()
		for i := start; i < end; i++ {
			b.WriteString(m.renderCard(m.view.Cards[i], i == m.cursor))
			b.WriteString("\n")
		}
		if sel, ok := m.selected(); ok {
			b.WriteString("\n")
			b.WriteString(renderActions(sel))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab/1-9 filter • / search • r reload • j/k move • q quit"))
	return b.String()
}

// window is the slice of cards that fits the terminal, keeping the cursor
// in view. Each card takes three lines.
func (m Model) window() (int, int) {
	n := len(m.view.Cards)
	if m.height <= 0 {
		return 0, n
	}
	fit := max(1, (m.height-12)/3)
	if n <= fit {
		return 0, n
	}
	start := max(0, m.cursor-fit+1)
	return start, min(n, start+fit)
}

func (m Model) selected() (board.Card, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Cards) {
		return board.Card{}, false
	}
	return m.view.Cards[m.cursor], true
}

func (m Model) renderCard(c board.Card, selected bool) string {
	head := badgeStyle(c.Kind).Render(c.Status) + " " + titleStyle.Render(c.Title)
	var meta []string
	if c.Owner != "" {
		meta = append(meta, "Owner: "+c.Owner)
	}
	for _, t := range c.Tags {
		meta = append(meta, "#"+t)
	}
	for _, u := range c.Team {
		meta = append(meta, "👤 "+u)
	}
	counts := fmt.Sprintf("Team: %d • Sign-ups: %d", c.TeamCount, c.SignupCount)
	body := head + "\n" + chipStyle.Render(strings.Join(meta, "  ")) + "\n" + dimStyle.Render(counts)
	if selected {
		return selectedStyle.Render(body)
	}
	return cardStyle.Render(body)
}

func renderActions(c board.Card) string {
	var b strings.Builder
	if c.SignUp.Enabled {
		b.WriteString(c.SignUp.Label + " " + linkStyle.Render(c.SignUp.URL))
	} else {
		b.WriteString(dimStyle.Render(c.SignUp.Label + " " + c.SignUp.URL))
	}
	b.WriteString("\n")
	b.WriteString(c.Change.Label + " " + linkStyle.Render(c.Change.URL))
	b.WriteString("\n")
	return b.String()
}

type Options struct {
	// Watch reloads when the local feed file changes.
	Watch bool
}

// Run shows the dashboard until the user quits or ctx is done.
func Run(ctx context.Context, app *board.App, opt Options) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(runCtx, app), tea.WithAltScreen(), tea.WithContext(runCtx))
	forwardChanges(runCtx, app.Controller, p.Send)

	if opt.Watch {
		if path, ok := app.Loader.LocalPath(); ok {
			w := board.NewFeedWatcher(path, func() { _ = app.Controller.Reload(runCtx) }, app.Log.Named("watch"))
			go func() {
				if err := w.Run(runCtx); err != nil {
					app.Log.Warn("feed watcher stopped", zap.Error(err))
				}
			}()
		} else {
			app.Log.Warn("feed is remote; not watching", zap.String("feed", app.Loader.Path()))
		}
	}

	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// forwardChanges sends a stateChangedMsg for controller changes until ctx
// is done. Subscribers run inside controller calls, including ones made
// from Update, so they only signal; a burst collapses into one message.
func forwardChanges(ctx context.Context, ctrl *board.Controller, send func(tea.Msg)) {
	changed := make(chan struct{}, 1)
	ctrl.OnChange(func(board.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				send(stateChangedMsg{})
			}
		}
	}()
}
