package charts

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	walkdto "pacer/internal/modules/walk/dto"
	"pacer/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ChartPort interface {
	Chart(ctx context.Context, period string) ([]walkdto.ChartPoint, error)
	Stats(ctx context.Context, period string) (walkdto.StatsOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Period string
	Points []walkdto.ChartPoint
	Stats  walkdto.StatsOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   ChartPort
	period string
	points []walkdto.ChartPoint
	stats  walkdto.StatsOutput
	err    string
	width  int
	height int
}

func New(port ChartPort, period string) Model {
	return Model{port: port, period: period}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case LoadedMsg:
		if msg.Period != m.period {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.points = msg.Points
		m.stats = msg.Stats
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Steps per day · "+m.period) + "\n\n")
	if len(m.points) == 0 {
		sb.WriteString(theme.Muted.Render("no walks in this period") + "\n")
	} else {
		for _, line := range Bars(m.points, m.barWidth()) {
			sb.WriteString(line + "\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("avg %d steps  ·  avg pace %.1f spm  ·  %d walks",
		m.stats.AverageSteps, m.stats.AveragePace, m.stats.WalkCount)))
	if m.err != "" {
		sb.WriteString("\n" + theme.Bad.Render(m.err))
	}
	return lipgloss.NewStyle().Width(m.width).Height(m.height).Padding(1, 2).Render(sb.String())
}

func (m Model) Period() string { return m.period }

func (m *Model) SetPeriod(period string) tea.Cmd {
	m.period = period
	return m.Reload()
}

func (m Model) Reload() tea.Cmd {
	period := m.period
	return func() tea.Msg {
		ctx := context.Background()
		points, err := m.port.Chart(ctx, period)
		if err != nil {
			return LoadedMsg{Period: period, Err: err}
		}
		stats, err := m.port.Stats(ctx, period)
		return LoadedMsg{Period: period, Points: points, Stats: stats, Err: err}
	}
}

// Bars renders one horizontal bar per day, scaled so the busiest day spans
// width cells. Any day with steps gets at least one cell.
func Bars(points []walkdto.ChartPoint, width int) []string {
	if width < 1 {
		width = 1
	}
	peak := 0
	for _, p := range points {
		if p.Steps > peak {
			peak = p.Steps
		}
	}
	lines := make([]string, 0, len(points))
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = p.Steps * width / peak
			if n == 0 && p.Steps > 0 {
				n = 1
			}
		}
		label := p.Day.Format("Mon 01/02")
		bar := theme.Bar.Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%s  %s %d", label, bar, p.Steps))
	}
	return lines
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) barWidth() int {
	// label, gaps and the trailing count take roughly 24 columns
	w := m.width - 28
	if w < 10 {
		w = 10
	}
	return w
}
