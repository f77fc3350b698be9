package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "pacer/internal/modules/session/dto"
	walkdto "pacer/internal/modules/walk/dto"
	"pacer/internal/ui/components"
	"pacer/internal/ui/theme"
	chartsview "pacer/internal/ui/views/charts"
	historyview "pacer/internal/ui/views/history"
	trackview "pacer/internal/ui/views/track"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	Start(ctx context.Context) (sessiondto.StartOutput, error)
	Stop(ctx context.Context) (sessiondto.StopOutput, error)
	Readout(ctx context.Context) (sessiondto.ReadoutOutput, error)
}

type walksPort interface {
	Filter(ctx context.Context, period string) ([]walkdto.WalkOutput, error)
	Stats(ctx context.Context, period string) (walkdto.StatsOutput, error)
	Chart(ctx context.Context, period string) ([]walkdto.ChartPoint, error)
	DeleteByID(ctx context.Context, walkID string) (walkdto.DeleteOutput, error)
	Export(ctx context.Context, input walkdto.ExportInput) (walkdto.ExportOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTrack tabID = iota
	tabHistory
	tabCharts
	tabCount
)

var tabLabels = [tabCount]string{"Track", "History", "Charts"}

// DefaultPeriod is the history window shown on launch.
const DefaultPeriod = "week"

// ─── async messages ───────────────────────────────────────────────────────────

type exportedMsg struct {
	out walkdto.ExportOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Toggle  key.Binding
	Week    key.Binding
	Month   key.Binding
	All     key.Binding
	Delete  key.Binding
	Reload  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop walk")),
		Week:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "this week")),
		Month:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "this month")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all walks")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete walk")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Toggle, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Toggle},
		{k.Week, k.Month, k.All, k.Delete, k.Reload},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay and the command palette. Session control and walk history are
// delegated to port interfaces; rendering is delegated to sub-views.
type Model struct {
	walks walksPort

	trackView   trackview.Model
	historyView historyview.Model
	chartsView  chartsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(session sessionPort, walks walksPort) Model {
	return Model{
		walks:       walks,
		trackView:   trackview.New(session),
		historyView: historyview.New(walks, DefaultPeriod),
		chartsView:  chartsview.New(walks, DefaultPeriod),
		activeTab:   tabTrack,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.trackView.Init(),
		m.historyView.Init(),
		m.chartsView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts key input while open; async results still flow.
	if m.palette.Visible() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case trackview.StartedMsg:
		if msg.Err != nil {
			m.status = "start failed: " + msg.Err.Error()
		} else {
			m.status = "walk started (" + msg.Out.Mode + ")"
		}

	case trackview.StoppedMsg:
		switch {
		case msg.Err != nil:
			m.status = "stop failed: " + msg.Err.Error()
		case msg.Out.Recorded:
			m.status = fmt.Sprintf("walk saved: %d steps", msg.Out.Steps)
			cmds = append(cmds, m.historyView.Reload(), m.chartsView.Reload())
		default:
			m.status = "walk too short, not saved"
		}

	case historyview.DeletedMsg:
		if msg.Err == nil && msg.Out.Deleted {
			m.status = "walk deleted"
			cmds = append(cmds, m.chartsView.Reload())
		}

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("exported %d walks to %s", msg.out.Count, msg.out.Path)
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the history list while its search filter is open.
		if m.activeTab == tabHistory && m.historyView.Filtering() {
			var cmd tea.Cmd
			m.historyView, cmd = m.historyView.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case " ":
			return m, m.trackView.Toggle()
		case "w":
			return m, m.setPeriod("week")
		case "m":
			return m, m.setPeriod("month")
		case "a":
			return m, m.setPeriod("all")
		case "r":
			return m, tea.Batch(m.historyView.Reload(), m.chartsView.Reload())
		case "d":
			if m.activeTab == tabHistory {
				return m, m.historyView.DeleteSelected()
			}
			return m, nil
		}

		// Remaining keys drive the active tab only.
		var cmd tea.Cmd
		switch m.activeTab {
		case tabTrack:
			m.trackView, cmd = m.trackView.Update(msg)
		case tabHistory:
			m.historyView, cmd = m.historyView.Update(msg)
		case tabCharts:
			m.chartsView, cmd = m.chartsView.Update(msg)
		}
		return m, cmd
	}

	// Async results are broadcast; each view ignores what it does not own.
	var cmd tea.Cmd
	m.trackView, cmd = m.trackView.Update(msg)
	cmds = append(cmds, cmd)
	m.historyView, cmd = m.historyView.Update(msg)
	cmds = append(cmds, cmd)
	m.chartsView, cmd = m.chartsView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTrack:
		return m.trackView.View()
	case tabHistory:
		return m.historyView.View()
	case tabCharts:
		return m.chartsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "pacer  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.trackView.Active() {
		left = theme.Good.Render("● walking") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "session:start":
		if m.trackView.Active() {
			m.status = "a walk is already running"
			return m, nil
		}
		return m, m.trackView.StartCmd()

	case "session:stop":
		return m, m.trackView.StopCmd()

	case "period":
		if len(parts) < 2 {
			m.status = "usage: period <week|month|all>"
			return m, nil
		}
		switch parts[1] {
		case "week", "month", "all":
			return m, m.setPeriod(parts[1])
		}
		m.status = "unknown period: " + parts[1]

	case "walks:delete":
		m.activeTab = tabHistory
		return m, m.historyView.DeleteSelected()

	case "walks:reload":
		return m, tea.Batch(m.historyView.Reload(), m.chartsView.Reload())

	case "walks:export":
		if len(parts) < 2 {
			m.status = "usage: walks:export <path.csv|path.parquet>"
			return m, nil
		}
		return m, m.exportCmd(parts[1])

	case "tab":
		if len(parts) < 2 {
			m.status = "usage: tab <track|history|charts>"
			return m, nil
		}
		for i, label := range tabLabels {
			if strings.EqualFold(label, parts[1]) {
				m.activeTab = tabID(i)
				return m, nil
			}
		}
		m.status = "unknown tab: " + parts[1]

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) setPeriod(period string) tea.Cmd {
	m.status = "period: " + period
	return tea.Batch(m.historyView.SetPeriod(period), m.chartsView.SetPeriod(period))
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.trackView, _ = m.trackView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
	m.chartsView, _ = m.chartsView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) exportCmd(path string) tea.Cmd {
	period := m.historyView.Period()
	return func() tea.Msg {
		format := "csv"
		if strings.HasSuffix(strings.ToLower(path), ".parquet") {
			format = "parquet"
		}
		out, err := m.walks.Export(context.Background(), walkdto.ExportInput{
			Format: format,
			Path:   path,
			Period: period,
		})
		return exportedMsg{out: out, err: err}
	}
}
