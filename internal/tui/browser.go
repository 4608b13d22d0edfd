package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/browse"
	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/fetch"
	"github.com/blackwell-systems/levelshelf/internal/grid"
	"github.com/blackwell-systems/levelshelf/internal/icons"
	"github.com/blackwell-systems/levelshelf/internal/install"
	"github.com/blackwell-systems/levelshelf/internal/queue"
	"github.com/blackwell-systems/levelshelf/internal/store"
	"github.com/blackwell-systems/levelshelf/internal/workshop"
)

// Deps are the collaborators the browser drives. Refreshers, Downloader,
// Workshop and State may be nil; the matching actions are then disabled.
type Deps struct {
	Browser    *browse.Browser
	Refreshers map[fetch.Kind]*fetch.Refresher
	Catalog    *catalog.Local
	Icons      *icons.Cache
	Queue      *queue.Queue
	State      *store.Store
	Downloader *install.Downloader
	Workshop   workshop.Service
	Log        zerolog.Logger
}

// BrowserResult holds the result of a browser session.
type BrowserResult struct {
	// Selected is the level chosen to play, or nil when the user quit.
	Selected *catalog.Level
}

type installDoneMsg struct {
	level catalog.Level
	job   *install.Job
	err   error
}

type actionDoneMsg struct {
	text    string
	err     error
	refresh []fetch.Kind
}

// BrowserModel is the Bubble Tea model for the level browser. All
// browse.Browser mutation happens in Update.
type BrowserModel struct {
	ctx  context.Context
	deps Deps
	keys BrowserKeys

	search    textinput.Model
	searching bool
	pager     paginator.Model
	spinner   spinner.Model
	help      help.Model
	protocol  TerminalImageProtocol

	// pending marks sources whose refresh was dropped while busy.
	pending    map[fetch.Kind]bool
	installing map[string]bool

	status    string
	statusErr bool
	activeCmd string

	width    int
	height   int
	selected *catalog.Level
	quitting bool
}

// NewBrowserModel creates the browser model.
func NewBrowserModel(ctx context.Context, deps Deps) BrowserModel {
	ti := textinput.New()
	ti.Placeholder = "title, artist, creator, tag or difficulty"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.PerPage = 1
	pg.ActiveDot = StyleHighlight.Render("•")
	pg.InactiveDot = StyleHelp.Render("•")

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = StyleHighlight

	return BrowserModel{
		ctx:        ctx,
		deps:       deps,
		keys:       NewBrowserKeys(),
		search:     ti,
		pager:      pg,
		spinner:    sp,
		help:       help.New(),
		protocol:   DetectImageProtocol(),
		pending:    make(map[fetch.Kind]bool),
		installing: make(map[string]bool),
	}
}

// Selected returns the level picked with enter, if any.
func (m BrowserModel) Selected() *catalog.Level { return m.selected }

func (m BrowserModel) Init() tea.Cmd {
	b := m.deps.Browser
	var cmds []tea.Cmd
	if b.NeedsLoad(b.Active()) {
		cmds = append(cmds, m.refresh(b.Active(), false))
	}
	cmds = append(cmds, m.iconCmd())
	return tea.Batch(cmds...)
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	b := m.deps.Browser

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.search.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)

	case clearedMsg:
		tab := browse.TabFor(msg.kind)
		b.ClearResults(tab)
		b.SetLoading(tab, true)
		return m, nil

	case pageLoadedMsg:
		b.ApplyResult(browse.TabFor(msg.kind), msg.res)
		return m, m.iconCmd()

	case iconLoadedMsg:
		// redraw only
		return m, nil

	case doneMsg:
		tab := browse.TabFor(msg.kind)
		b.SetLoading(tab, false)
		if m.pending[msg.kind] || errors.Is(msg.err, fetch.ErrStale) || b.Stale(tab) {
			delete(m.pending, msg.kind)
			return m, m.refresh(tab, false)
		}
		if msg.err != nil {
			m.setError(fmt.Sprintf("%s: %v", tab, msg.err))
		}
		return m, nil

	case installDoneMsg:
		delete(m.installing, msg.level.ID)
		if msg.err != nil {
			m.setError(fmt.Sprintf("install %s failed: %v", displayName(msg.level), msg.err))
			return m, nil
		}
		m.deps.Log.Info().
			Str("job", msg.job.ID.String()).
			Str("id", msg.level.ID).
			Str("sha256", msg.job.SHA256).
			Msg("level installed")
		m.setStatus(fmt.Sprintf("installed %s", displayName(msg.level)))
		b.Rebuild()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.setError(msg.err.Error())
			return m, nil
		}
		m.setStatus(msg.text)
		var cmds []tea.Cmd
		for _, kind := range msg.refresh {
			cmds = append(cmds, m.refresh(browse.TabFor(kind), true))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil
	}

	return m, nil
}

func (m BrowserModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		b := m.deps.Browser
		var cmd tea.Cmd
		if b.SetQuery(m.search.Value()) {
			cmd = m.refresh(b.Active(), true)
		}
		return m, tea.Batch(cmd, m.iconCmd())
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.deps.Browser
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, k.Search):
		m.searching = true
		if s := b.Session(b.Active()); s != nil {
			m.search.SetValue(s.Query.Raw)
			m.search.CursorEnd()
		}
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, k.Back):
		s := b.Session(b.Active())
		if s == nil || s.Query.Raw == "" {
			return m, nil
		}
		m.search.SetValue("")
		var cmd tea.Cmd
		if b.SetQuery("") {
			cmd = m.refresh(b.Active(), true)
		}
		return m, cmd

	case key.Matches(msg, k.NextTab), key.Matches(msg, k.PrevTab):
		delta := 1
		if key.Matches(msg, k.PrevTab) {
			delta = -1
		}
		var cmd tea.Cmd
		if b.SwitchBy(delta) {
			cmd = m.refresh(b.Active(), false)
		}
		m.activeCmd = "tab"
		return m, tea.Batch(cmd, m.iconCmd(), HighlightCmd())

	case key.Matches(msg, k.Up):
		b.Move(grid.DirUp)
		return m, m.iconCmd()
	case key.Matches(msg, k.Down):
		b.Move(grid.DirDown)
		return m, m.iconCmd()
	case key.Matches(msg, k.Left):
		b.Move(grid.DirLeft)
		return m, m.iconCmd()
	case key.Matches(msg, k.Right):
		b.Move(grid.DirRight)
		return m, m.iconCmd()

	case key.Matches(msg, k.NextPage), key.Matches(msg, k.PrevPage):
		var need bool
		if key.Matches(msg, k.NextPage) {
			need = b.NextPage()
		} else {
			need = b.PrevPage()
		}
		var cmd tea.Cmd
		if need {
			cmd = m.refresh(b.Active(), true)
		}
		return m, tea.Batch(cmd, m.iconCmd())

	case key.Matches(msg, k.Select):
		m.activeCmd = "enter"
		cmd := m.submit()
		return m, tea.Batch(cmd, HighlightCmd())

	case key.Matches(msg, k.Install):
		m.activeCmd = "i"
		l, ok := b.Submit()
		if !ok {
			return m, nil
		}
		cmd := m.install(*l)
		return m, tea.Batch(cmd, HighlightCmd())

	case key.Matches(msg, k.Queue):
		m.activeCmd = "a"
		m.enqueue()
		return m, HighlightCmd()

	case key.Matches(msg, k.Remove):
		cmd := m.remove()
		return m, cmd

	case key.Matches(msg, k.Shuffle):
		m.shuffle()
		return m, nil

	case key.Matches(msg, k.Refresh):
		if _, ok := b.Active().FetchKind(); ok {
			return m, m.refresh(b.Active(), true)
		}
		if err := m.deps.Catalog.Scan(); err != nil {
			m.setError(err.Error())
		}
		b.Rebuild()
		return m, m.iconCmd()
	}

	return m, nil
}

// refresh starts a cycle for tab's source. A refresh dropped because the
// source is busy is re-issued when the running cycle reports Done.
func (m BrowserModel) refresh(tab browse.Tab, invalidate bool) tea.Cmd {
	kind, ok := tab.FetchKind()
	if !ok {
		return nil
	}
	r := m.deps.Refreshers[kind]
	if r == nil {
		return nil
	}
	if invalidate {
		r.Invalidate()
	}
	if !r.Refresh(m.ctx, m.deps.Browser.Request(tab)) {
		m.pending[kind] = true
		return nil
	}
	m.deps.Browser.SetLoading(tab, true)
	return m.spinner.Tick
}

// iconCmd loads the cover of the installed level under the cursor.
// Network sources fetch their own covers during refresh.
func (m BrowserModel) iconCmd() tea.Cmd {
	if m.protocol == ProtocolNone || m.deps.Icons == nil || m.deps.Catalog == nil {
		return nil
	}
	l, ok := m.deps.Browser.Submit()
	if !ok || l.Source != catalog.SourceLocal {
		return nil
	}
	if _, cached := m.deps.Icons.Get(l.ID); cached {
		return nil
	}
	ctx, cache, cat, id := m.ctx, m.deps.Icons, m.deps.Catalog, l.ID
	return func() tea.Msg {
		cache.GetOrFetch(ctx, id, cat.Cover, nil)
		return iconLoadedMsg{id: id}
	}
}

func (m *BrowserModel) submit() tea.Cmd {
	b := m.deps.Browser
	l, ok := b.Submit()
	if !ok {
		return nil
	}
	switch b.Active() {
	case browse.TabRemote:
		return m.install(*l)
	case browse.TabWorkshop:
		return m.subscribe(*l)
	}
	if l.Locked {
		m.setError(fmt.Sprintf("%s is locked", displayName(*l)))
		return nil
	}
	m.selected = l
	m.quitting = true
	return tea.Quit
}

func (m *BrowserModel) install(l catalog.Level) tea.Cmd {
	if m.deps.Downloader == nil || l.Source != catalog.SourceRemote {
		return nil
	}
	if m.installing[l.ID] {
		return nil
	}
	if _, ok := m.deps.Catalog.ByID(l.ID); ok {
		m.setStatus(fmt.Sprintf("%s is already installed", displayName(l)))
		return nil
	}
	m.installing[l.ID] = true
	m.setStatus(fmt.Sprintf("installing %s", displayName(l)))

	ctx, d := m.ctx, m.deps.Downloader
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		job, err := d.Fetch(ctx, l.ID, nil)
		return installDoneMsg{level: l, job: job, err: err}
	})
}

func (m *BrowserModel) subscribe(l catalog.Level) tea.Cmd {
	svc := m.deps.Workshop
	if svc == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		err := svc.Subscribe(ctx, l.ID)
		return actionDoneMsg{
			text:    fmt.Sprintf("subscribed to %s", displayName(l)),
			err:     err,
			refresh: []fetch.Kind{fetch.KindSubscribed},
		}
	}
}

func (m *BrowserModel) enqueue() {
	l, ok := m.deps.Browser.Submit()
	if !ok || m.deps.Queue == nil {
		return
	}
	if _, installed := m.deps.Catalog.ByID(l.ID); !installed {
		m.setError(fmt.Sprintf("install %s before queueing it", displayName(*l)))
		return
	}
	if !m.deps.Queue.Add(l.ID) {
		m.setStatus(fmt.Sprintf("%s is already queued", displayName(*l)))
		return
	}
	m.saveQueue(fmt.Sprintf("queued %s", displayName(*l)))
}

func (m *BrowserModel) remove() tea.Cmd {
	b := m.deps.Browser
	l, ok := b.Submit()
	if !ok {
		return nil
	}
	switch b.Active() {
	case browse.TabQueue:
		if m.deps.Queue.Remove(l.ID) {
			m.saveQueue(fmt.Sprintf("removed %s from the queue", displayName(*l)))
			b.Rebuild()
		}
	case browse.TabSubscribed:
		svc := m.deps.Workshop
		if svc == nil {
			return nil
		}
		ctx := m.ctx
		return func() tea.Msg {
			err := svc.Unsubscribe(ctx, l.ID)
			return actionDoneMsg{
				text:    fmt.Sprintf("unsubscribed from %s", displayName(*l)),
				err:     err,
				refresh: []fetch.Kind{fetch.KindSubscribed},
			}
		}
	}
	return nil
}

func (m *BrowserModel) shuffle() {
	b := m.deps.Browser
	if b.Active() != browse.TabQueue || m.deps.Queue == nil {
		return
	}
	m.deps.Queue.Shuffle(m.deps.Queue.Len())
	m.saveQueue("queue shuffled")
	b.Rebuild()
}

func (m *BrowserModel) saveQueue(ok string) {
	if m.deps.State != nil {
		if err := m.deps.Queue.Save(m.deps.State); err != nil {
			m.setError(fmt.Sprintf("saving queue: %v", err))
			return
		}
	}
	m.setStatus(ok)
}

func (m *BrowserModel) setStatus(s string) { m.status, m.statusErr = s, false }

func (m *BrowserModel) setError(s string) {
	m.status, m.statusErr = s, true
	m.deps.Log.Warn().Msg(s)
}

func (m BrowserModel) busy() bool {
	if len(m.installing) > 0 {
		return true
	}
	for _, t := range m.deps.Browser.Tabs() {
		if s := m.deps.Browser.Session(t); s != nil && s.Loading {
			return true
		}
	}
	return false
}

func displayName(l catalog.Level) string {
	if l.Title != "" {
		return l.Title
	}
	return l.ID
}

// RunBrowser launches the interactive level browser. sink must be the Sink
// the deps' refreshers report to.
func RunBrowser(ctx context.Context, deps Deps, sink *Sink) (*BrowserResult, error) {
	m := NewBrowserModel(ctx, deps)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	sink.Attach(p)
	defer sink.AttachFunc(nil)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running TUI: %w", err)
	}

	if fm, ok := finalModel.(BrowserModel); ok {
		return &BrowserResult{Selected: fm.selected}, nil
	}
	return &BrowserResult{}, nil
}
