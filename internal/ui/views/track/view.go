package track

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "pacer/internal/modules/session/dto"
	"pacer/internal/ui/theme"
)

// RefreshInterval is how often the live readout is pulled from the engine.
const RefreshInterval = 100 * time.Millisecond

// ─── port ────────────────────────────────────────────────────────────────────

type SessionPort interface {
	Start(ctx context.Context) (sessiondto.StartOutput, error)
	Stop(ctx context.Context) (sessiondto.StopOutput, error)
	Readout(ctx context.Context) (sessiondto.ReadoutOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────
// Exactly one readout poll is in flight at a time: each ReadoutMsg schedules
// the next one.

type ReadoutMsg struct {
	Readout sessiondto.ReadoutOutput
	Err     error
}

type StartedMsg struct {
	Out sessiondto.StartOutput
	Err error
}

type StoppedMsg struct {
	Out sessiondto.StopOutput
	Err error
}

type refreshMsg struct{}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    SessionPort
	readout sessiondto.ReadoutOutput
	last    sessiondto.StopOutput
	hasLast bool
	spinner spinner.Model
	note    string
	width   int
	height  int
}

func New(port SessionPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = lipgloss.NewStyle().Foreground(theme.Green)
	return Model{port: port, spinner: sp, readout: sessiondto.ReadoutOutput{Status: "idle"}}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.readCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case refreshMsg:
		return m, m.readCmd()

	case ReadoutMsg:
		if msg.Err == nil {
			m.readout = msg.Readout
		}
		return m, tea.Tick(RefreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })

	case StartedMsg:
		if msg.Err != nil {
			m.note = msg.Err.Error()
			return m, nil
		}
		m.note = "walking · " + msg.Out.Mode
		m.hasLast = false
		m.readout.Status = "active"
		m.readout.Mode = msg.Out.Mode
		return m, nil

	case StoppedMsg:
		if msg.Err != nil {
			m.note = msg.Err.Error()
			return m, nil
		}
		m.last = msg.Out
		m.hasLast = true
		if msg.Out.Recorded {
			m.note = "walk saved"
		} else {
			m.note = "too short to save"
		}
		m.readout.Status = "idle"
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	r := m.readout
	status := theme.Muted.Render("idle")
	if m.Active() {
		status = m.spinner.View() + " " + theme.Good.Render("walking")
		if r.Mode != "" {
			status += theme.Muted.Render("  (" + r.Mode + ")")
		}
	}

	figures := lipgloss.JoinHorizontal(lipgloss.Top,
		figure("time", FormatElapsed(r.ElapsedMS)),
		figure("steps", fmt.Sprintf("%d", r.Steps)),
		figure("steps/min", fmt.Sprintf("%.1f", r.StepsPerMinute)),
	)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Track") + "  " + status + "\n\n")
	sb.WriteString(figures + "\n\n")
	if m.hasLast {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("last walk: %s  %d steps  %.1f spm",
			FormatElapsed(m.last.DurationMS), m.last.Steps, m.last.StepsPerMinute)) + "\n")
	}
	if m.note != "" {
		sb.WriteString(theme.Hot.Render(m.note) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("space: start/stop"))

	pane := theme.Pane
	if m.Active() {
		pane = theme.PaneActive
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, pane.Render(sb.String()))
}

// Active reports whether the last readout came from a running session.
func (m Model) Active() bool {
	return m.readout.Status == "active"
}

// Toggle starts a session when idle and stops it when active.
func (m Model) Toggle() tea.Cmd {
	if m.Active() {
		return m.StopCmd()
	}
	return m.StartCmd()
}

func (m Model) StartCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Start(context.Background())
		return StartedMsg{Out: out, Err: err}
	}
}

func (m Model) StopCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Stop(context.Background())
		return StoppedMsg{Out: out, Err: err}
	}
}

// FormatElapsed renders milliseconds as m:ss, or h:mm:ss past an hour.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h, mnt, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mnt, s)
	}
	return fmt.Sprintf("%d:%02d", mnt, s)
}

// ─── private ─────────────────────────────────────────────────────────────────

func figure(label, value string) string {
	return lipgloss.JoinVertical(lipgloss.Center,
		theme.Figure.Render(value),
		theme.Muted.Render(label),
	)
}

func (m Model) readCmd() tea.Cmd {
	return func() tea.Msg {
		r, err := m.port.Readout(context.Background())
		return ReadoutMsg{Readout: r, Err: err}
	}
}
