package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcdix/switchdeck/internal/monitor"
	"github.com/mcdix/switchdeck/internal/source"
)

// flashDuration is how long a tile border keeps its result color after a
// switch completes.
const flashDuration = 1500 * time.Millisecond

type flashKind int

const (
	flashNone flashKind = iota
	flashOK
	flashErr
)

// tileState is the per-monitor UI state. The source value is cached here so
// View never talks to hardware; it refreshes on detection and after toggles.
type tileState struct {
	source string
	busy   bool
	flash  flashKind
	gen    int // invalidates stale flash-clear ticks
}

// Messages produced by background commands.
type (
	toggleDoneMsg struct {
		index  int
		target string
		err    error
	}
	detectDoneMsg struct {
		monitors []*monitor.Monitor
		sources  []string
	}
	clearFlashMsg struct {
		index int
		gen   int
	}
)

// PanelModel is the interactive monitor grid. Digit keys toggle the matching
// monitor, `r` re-runs detection, `q` quits. All hardware work happens in
// background commands; Update and View never block.
type PanelModel struct {
	detector *monitor.Detector
	toggler  monitor.Toggler

	monitors []*monitor.Monitor
	tiles    []tileState

	spinner   spinner.Model
	detecting bool
	status    string

	windowWidth int
}

// NewPanelModel creates the panel. The first detection pass runs as part of
// Init, so callers hand over an unpopulated detector.
func NewPanelModel(detector *monitor.Detector, toggler monitor.Toggler) *PanelModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &PanelModel{
		detector:  detector,
		toggler:   toggler,
		spinner:   s,
		detecting: true,
		status:    "Detecting monitors...",
	}
}

// Run starts the panel and blocks until the user quits.
func Run(detector *monitor.Detector, toggler monitor.Toggler) error {
	p := tea.NewProgram(NewPanelModel(detector, toggler), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init starts the spinner and the initial detection pass.
func (m *PanelModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.detectCmd())
}

// Update handles messages
func (m *PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case detectDoneMsg:
		m.detecting = false
		m.monitors = msg.monitors
		m.tiles = make([]tileState, len(msg.monitors))
		for i := range m.tiles {
			m.tiles[i].source = msg.sources[i]
		}
		if len(m.monitors) == 0 {
			m.status = WarningStyle.Render("No monitors detected")
		} else {
			m.status = InfoStyle.Render(fmt.Sprintf("%d monitor(s) ready", len(m.monitors)))
		}
		return m, nil

	case toggleDoneMsg:
		if msg.index >= len(m.tiles) {
			return m, nil
		}
		tile := &m.tiles[msg.index]
		tile.busy = false
		tile.gen++
		if msg.err != nil {
			tile.flash = flashErr
			m.status = ErrorStyle.Render(msg.err.Error())
		} else {
			tile.flash = flashOK
			tile.source = msg.target
			m.status = SuccessStyle.Render(fmt.Sprintf("Monitor %d switched to %s", msg.index+1, msg.target))
		}
		gen := tile.gen
		index := msg.index
		return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
			return clearFlashMsg{index: index, gen: gen}
		})

	case clearFlashMsg:
		if msg.index < len(m.tiles) && m.tiles[msg.index].gen == msg.gen {
			m.tiles[msg.index].flash = flashNone
		}
		return m, nil
	}

	return m, nil
}

func (m *PanelModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.detecting {
			return m, nil
		}
		if m.anyBusy() {
			m.status = "Waiting for pending switches before re-detecting"
			return m, nil
		}
		m.detecting = true
		m.status = "Detecting monitors..."
		return m, m.detectCmd()
	}

	// Digit keys address monitors one-based, matching the tile titles.
	if m.detecting || len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return m, nil
	}
	index := int(key[0] - '1')
	if index >= len(m.monitors) {
		return m, nil
	}
	if m.tiles[index].busy {
		return m, nil
	}
	mon := m.monitors[index]
	if mon.InitError() != nil {
		m.status = ErrorStyle.Render(fmt.Sprintf("Monitor %d is not controllable: %v", index+1, mon.InitError()))
		return m, nil
	}

	m.tiles[index].busy = true
	m.status = fmt.Sprintf("Switching monitor %d...", index+1)
	return m, m.toggleCmd(index, mon)
}

func (m *PanelModel) anyBusy() bool {
	for _, t := range m.tiles {
		if t.busy {
			return true
		}
	}
	return false
}

// toggleCmd runs one toggle off the UI goroutine.
func (m *PanelModel) toggleCmd(index int, mon *monitor.Monitor) tea.Cmd {
	toggler := m.toggler
	return func() tea.Msg {
		target, err := toggler.Toggle(context.Background(), mon)
		return toggleDoneMsg{index: index, target: target, err: err}
	}
}

// detectCmd runs a detection pass off the UI goroutine and snapshots the
// effective sources so View stays hardware-free.
func (m *PanelModel) detectCmd() tea.Cmd {
	detector := m.detector
	return func() tea.Msg {
		ctx := context.Background()
		monitors := detector.Detect(ctx)
		sources := make([]string, len(monitors))
		for i, mon := range monitors {
			sources[i] = mon.CurrentSource(ctx)
		}
		return detectDoneMsg{monitors: monitors, sources: sources}
	}
}

// View renders the UI
func (m *PanelModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("SwitchDeck"))
	b.WriteString("\n")

	if m.detecting {
		b.WriteString(fmt.Sprintf("\n  %s Detecting monitors...\n", m.spinner.View()))
	} else if len(m.monitors) == 0 {
		b.WriteString("\n" + SubtleStyle.Render("  No monitors detected. Press r to retry.") + "\n")
	} else {
		b.WriteString(m.renderTiles())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	sepWidth := m.windowWidth
	if sepWidth <= 0 || sepWidth > 80 {
		sepWidth = 80
	}
	b.WriteString("\n" + CreateSeparator(sepWidth, "─"))
	b.WriteString("\n" + m.renderHelp() + "\n")
	return b.String()
}

func (m *PanelModel) renderTiles() string {
	tiles := make([]string, 0, len(m.monitors))
	for i, mon := range m.monitors {
		tiles = append(tiles, m.renderTile(i, mon))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func (m *PanelModel) renderTile(index int, mon *monitor.Monitor) string {
	tile := m.tiles[index]

	style := TileStyle
	switch {
	case tile.busy:
		style = TileBusyStyle
	case tile.flash == flashOK:
		style = TileOKStyle
	case tile.flash == flashErr:
		style = TileErrStyle
	}

	src := tile.source
	sourceStyle := TileValueStyle
	switch src {
	case source.ErrorValue:
		sourceStyle = ErrorStyle
	case source.Unknown:
		sourceStyle = WarningStyle
	}

	var body strings.Builder
	body.WriteString(TileTitleStyle.Render(fmt.Sprintf("[%d] %s", index+1, mon.Model)))
	body.WriteString("\n")
	body.WriteString(TileLabelStyle.Render("backend ") + TileValueStyle.Render(mon.Kind.String()))
	body.WriteString("\n")
	if tile.busy {
		body.WriteString(TileLabelStyle.Render("source  ") + m.spinner.View())
	} else {
		body.WriteString(TileLabelStyle.Render("source  ") + sourceStyle.Render(src))
	}

	return style.Render(body.String())
}

func (m *PanelModel) renderHelp() string {
	controls := []string{
		FormatControl("1-9", "toggle monitor"),
		FormatControl("r", "re-detect"),
		FormatControl("q", "quit"),
	}
	return "  " + strings.Join(controls, "  ")
}
