package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	walkdto "pacer/internal/modules/walk/dto"
	"pacer/internal/ui/theme"
	"pacer/internal/ui/views/track"
)

// ─── port ────────────────────────────────────────────────────────────────────

type WalksPort interface {
	Filter(ctx context.Context, period string) ([]walkdto.WalkOutput, error)
	Stats(ctx context.Context, period string) (walkdto.StatsOutput, error)
	DeleteByID(ctx context.Context, walkID string) (walkdto.DeleteOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Period string
	Walks  []walkdto.WalkOutput
	Stats  walkdto.StatsOutput
	Err    error
}

type DeletedMsg struct {
	Out walkdto.DeleteOutput
	Err error
}

// ─── list item ───────────────────────────────────────────────────────────────

type walkItem struct {
	walk walkdto.WalkOutput
}

func (i walkItem) Title() string {
	return i.walk.Date.Local().Format("Mon Jan 2 15:04")
}

func (i walkItem) Description() string {
	return fmt.Sprintf("%d steps  %s  %.1f spm", i.walk.Steps, track.FormatElapsed(i.walk.DurationMS), i.walk.StepsPerMinute)
}

func (i walkItem) FilterValue() string { return i.Title() }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    WalksPort
	period  string
	list    list.Model
	stats   walkdto.StatsOutput
	summary viewport.Model
	err     string
	width   int
	height  int
}

func New(port WalksPort, period string) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	m := Model{port: port, period: period, list: l, summary: viewport.New(0, 0)}
	m.list.Title = m.title()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		if msg.Period != m.period {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.stats = msg.Stats
		walks := append([]walkdto.WalkOutput(nil), msg.Walks...)
		sort.SliceStable(walks, func(i, j int) bool { return walks[i].Date.After(walks[j].Date) })
		items := make([]list.Item, len(walks))
		for i, w := range walks {
			items[i] = walkItem{walk: w}
		}
		m.list.Title = m.title()
		m.summary.SetContent(m.renderSummary())
		cmds = append(cmds, m.list.SetItems(items))
		return m, tea.Batch(cmds...)

	case DeletedMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		return m, m.Reload()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 6 / 10
	summaryW := m.width - listW

	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	summaryPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(summaryW-2, 1)).
		Height(max(m.height-2, 1)).
		Render(m.summary.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, summaryPane)
}

func (m Model) Period() string { return m.period }

// SetPeriod switches the filter and reloads.
func (m *Model) SetPeriod(period string) tea.Cmd {
	m.period = period
	m.list.Title = m.title()
	return m.Reload()
}

func (m Model) Reload() tea.Cmd {
	period := m.period
	return func() tea.Msg {
		ctx := context.Background()
		walks, err := m.port.Filter(ctx, period)
		if err != nil {
			return LoadedMsg{Period: period, Err: err}
		}
		stats, err := m.port.Stats(ctx, period)
		return LoadedMsg{Period: period, Walks: walks, Stats: stats, Err: err}
	}
}

// DeleteSelected removes the highlighted walk by id, so the sort order of the
// list never matters.
func (m Model) DeleteSelected() tea.Cmd {
	item, ok := m.list.SelectedItem().(walkItem)
	if !ok {
		return nil
	}
	walkID := item.walk.ID
	return func() tea.Msg {
		out, err := m.port.DeleteByID(context.Background(), walkID)
		return DeletedMsg{Out: out, Err: err}
	}
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) title() string {
	return "History · " + m.period
}

func (m *Model) resize() {
	listW := m.width * 6 / 10
	m.list.SetSize(listW, m.height)
	m.summary.Width = m.width - listW - 4
	m.summary.Height = m.height - 4
}

func (m Model) renderSummary() string {
	s := m.stats
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Summary") + "\n\n")
	row := func(label, value string) {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-14s", label)) + value + "\n")
	}
	row("walks", fmt.Sprintf("%d", s.WalkCount))
	row("avg steps", fmt.Sprintf("%d", s.AverageSteps))
	row("avg pace", fmt.Sprintf("%.1f spm", s.AveragePace))
	row("total steps", fmt.Sprintf("%d", s.TotalSteps))
	row("total time", track.FormatElapsed(s.TotalDurationMS))
	row("best walk", fmt.Sprintf("%d steps", s.BestSteps))
	if m.err != "" {
		sb.WriteString("\n" + theme.Bad.Render(m.err) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("w/m/a: period  d: delete"))
	return sb.String()
}
