// Package tui is the interactive preview browser: a routes pane driven by
// previewtree.Navigator and a details pane showing the selected preview's
// source.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/tormodhaugland/pv/internal/cache"
	"github.com/tormodhaugland/pv/internal/config"
	"github.com/tormodhaugland/pv/internal/discover"
	"github.com/tormodhaugland/pv/internal/previewtree"
)

// discoverTimeout bounds a single rescan.
const discoverTimeout = 2 * time.Minute

// Pane represents which pane is focused.
type Pane int

const (
	PaneRoutes Pane = iota
	PaneDetails
)

// DiscoverFunc produces the preview list.
type DiscoverFunc func(ctx context.Context) (*discover.Result, error)

// Options configures the browser.
type Options struct {
	Cache    *cache.DB // nil disables the scan cache
	Logger   logrus.FieldLogger
	Expanded bool         // start in expanded mode regardless of config
	Discover DiscoverFunc // defaults to discover.Discover with Config
}

type discoveredMsg struct {
	result *discover.Result
	err    error
	manual bool
}

type refreshTickMsg time.Time

type spinnerTickMsg struct{}

type editorFinishedMsg struct {
	err error
}

// Model is the bubbletea model of the preview browser.
type Model struct {
	cfg        *config.Config
	log        logrus.FieldLogger
	discoverFn DiscoverFunc

	nav      *previewtree.Navigator
	result   *discover.Result
	scroller *rowScroller
	sources  map[string][]string // file lines by path, reset on rescan

	details      viewport.Model
	detailsID    previewtree.Identity
	filterInput  textinput.Model
	filterActive bool
	help         help.Model
	keys         keyMap

	activePane   Pane
	width        int
	height       int
	loading      bool
	loaded       bool
	spinnerFrame int

	message        string
	messageIsError bool
}

// New creates the browser. Discovery starts when the program calls Init.
func New(cfg *config.Config, opts Options) Model {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	discoverFn := opts.Discover
	if discoverFn == nil {
		db := opts.Cache
		discoverFn = func(ctx context.Context) (*discover.Result, error) {
			return discover.Discover(ctx, cfg, db, log)
		}
	}

	leavesOnly := !cfg.Compact || opts.Expanded
	nav := previewtree.New(nil, previewtree.Options{Separator: cfg.Separator, LeavesOnly: leavesOnly})

	filterInput := textinput.New()
	filterInput.Placeholder = "preview name"
	filterInput.Prompt = "/ "
	filterInput.CharLimit = 128

	keys := newKeyMap()
	keys.syncMode(leavesOnly)

	return Model{
		cfg:         cfg,
		log:         log,
		discoverFn:  discoverFn,
		nav:         nav,
		scroller:    &rowScroller{},
		sources:     make(map[string][]string),
		details:     viewport.New(40, 20),
		filterInput: filterInput,
		help:        help.New(),
		keys:        keys,
		loading:     true,
	}
}

// Navigator exposes the navigation state, mainly for tests.
func (m Model) Navigator() *previewtree.Navigator { return m.nav }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.discoverCmd(false), m.spinnerTick(), m.scheduleRefresh())
}

func (m Model) discoverCmd(manual bool) tea.Cmd {
	fn := m.discoverFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
		defer cancel()
		result, err := fn(ctx)
		return discoveredMsg{result: result, err: err, manual: manual}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	every := m.cfg.RefreshEvery()
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m Model) spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case discoveredMsg:
		return m.handleDiscovered(msg), nil

	case refreshTickMsg:
		if m.loading {
			return m, m.scheduleRefresh()
		}
		m.loading = true
		return m, tea.Batch(m.discoverCmd(false), m.spinnerTick(), m.scheduleRefresh())

	case spinnerTickMsg:
		if m.loading {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			return m, m.spinnerTick()
		}
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Editor failed: %v", msg.err)
			m.messageIsError = true
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.filterActive {
			return m.handleFilterKeys(msg)
		}
		return m.handleBrowseKeys(msg)
	}

	return m, nil
}

func (m Model) handleDiscovered(msg discoveredMsg) Model {
	m.loading = false
	m.loaded = true

	if msg.err != nil {
		m.log.WithError(msg.err).Warn("preview discovery failed")
		m.message = msg.err.Error()
		m.messageIsError = true

		// a missing directory means there is nothing to browse; other
		// failures keep the last good list on screen
		var notFound *discover.DirNotFoundError
		if errors.As(msg.err, &notFound) {
			m.result = nil
			m.nav.SetPreviews(nil)
			m.syncView()
		}
		return m
	}

	m.result = msg.result
	m.sources = make(map[string][]string)
	m.nav.SetPreviews(msg.result.Previews)
	m.syncView()

	if msg.manual {
		m.message = fmt.Sprintf("Found %d previews in %d groups", len(m.nav.Root().Leaves()), m.nav.PreviewCount())
		m.messageIsError = false
	}
	return m
}

// handleFilterKeys handles keyboard input while the filter is focused.
func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterActive = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.nav.SetFilter("")
		m.syncView()
		return m, nil

	case "enter":
		m.filterActive = false
		m.filterInput.Blur()
		return m, nil

	case "ctrl+c":
		return m, tea.Quit

	case "up", "down":
		// arrows keep moving the cursor while typing
		a := previewtree.ActionUp
		if msg.String() == "down" {
			a = previewtree.ActionDown
		}
		m.nav.Dispatch(a)
		m.syncView()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if value := m.filterInput.Value(); value != m.nav.Filter() {
		m.nav.SetFilter(value)
		m.syncView()
	}
	return m, cmd
}

// handleBrowseKeys handles keyboard input in browse mode.
func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Pane):
		if m.activePane == PaneRoutes {
			m.activePane = PaneDetails
		} else {
			m.activePane = PaneRoutes
		}
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.filterActive = true
		m.filterInput.SetValue(m.nav.Filter())
		m.filterInput.CursorEnd()
		cmd := m.filterInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Clear):
		if m.nav.Filter() != "" {
			m.filterInput.SetValue("")
			m.nav.SetFilter("")
			m.syncView()
		}
		return m, nil

	case key.Matches(msg, m.keys.Mode):
		m.setLeavesOnly(!m.nav.LeavesOnly())
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.message = "Rescanning previews..."
		m.messageIsError = false
		return m, tea.Batch(m.discoverCmd(true), m.spinnerTick())

	case key.Matches(msg, m.keys.Open):
		return m, m.openSelected()
	}

	if m.activePane == PaneDetails {
		return m.handleDetailsKeys(msg)
	}

	if a, ok := m.keys.action(msg); ok {
		if m.nav.Dispatch(a) {
			m.syncView()
		}
	}
	return m, nil
}

// handleDetailsKeys scrolls the details pane.
func (m Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.details.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.details.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.details.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.details.GotoBottom()
	case msg.String() == "h", msg.String() == "left":
		m.activePane = PaneRoutes
	default:
		var cmd tea.Cmd
		m.details, cmd = m.details.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setLeavesOnly(leavesOnly bool) {
	m.nav.SetLeavesOnly(leavesOnly)
	m.keys.syncMode(leavesOnly)
	if leavesOnly {
		m.message = "Expanded view"
	} else {
		m.message = "Compact view"
	}
	m.messageIsError = false
	m.syncView()
}

// handleMouse selects clicked rows and scrolls with the wheel.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	inRoutes := msg.X < m.leftWidth()+2

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if inRoutes {
			m.nav.Up()
		} else {
			m.details.LineUp(3)
		}
	case tea.MouseButtonWheelDown:
		if inRoutes {
			m.nav.Down()
		} else {
			m.details.LineDown(3)
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		if !inRoutes {
			m.activePane = PaneDetails
			return m, nil
		}
		m.activePane = PaneRoutes
		// account for the top border, the header and the filter line
		if row := m.scroller.rowAt(msg.Y-routesTop, m.nav.Len()); row >= 0 {
			m.nav.Navigate(row)
		}
	default:
		return m, nil
	}

	m.syncView()
	return m, nil
}

// routesTop is the screen line of the first route row.
const routesTop = 3

func (m Model) leftWidth() int {
	if m.width == 0 {
		return 0
	}
	return m.width/2 - 2
}

func (m Model) rightWidth() int {
	return m.width - m.leftWidth() - 4
}

func (m Model) paneHeight() int {
	h := m.height - 3 - lipgloss.Height(m.help.View(m.keys))
	if h < 5 {
		h = 5
	}
	return h
}

// resize recomputes pane geometry after the window or help size changes.
func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	m.help.Width = m.width
	paneHeight := m.paneHeight()

	// header, filter line and scroll indicator
	m.scroller.setHeight(paneHeight-3, m.nav.Cursor(), m.nav.Len())

	m.details.Width = m.rightWidth() - 2
	m.details.Height = paneHeight - 2
	m.syncView()
}

// syncView keeps the scroll window and the details pane in step with the
// navigator after any change.
func (m *Model) syncView() {
	m.scroller.ensureVisible(m.nav.Cursor(), m.nav.Len())

	var id previewtree.Identity
	if r, ok := m.nav.Selected(); ok {
		id = r.Node.ID()
	}
	m.details.SetContent(m.detailsContent(m.details.Width))
	if id != m.detailsID {
		m.detailsID = id
		m.details.GotoTop()
	}
}
