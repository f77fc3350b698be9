package history_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	walkdto "pacer/internal/modules/walk/dto"
	"pacer/internal/ui/views/history"
)

type fakeWalks struct {
	mu      sync.Mutex
	periods []string
	deleted []string
	walks   []walkdto.WalkOutput
}

func (f *fakeWalks) Filter(_ context.Context, period string) ([]walkdto.WalkOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods = append(f.periods, period)
	return f.walks, nil
}

func (f *fakeWalks) Stats(_ context.Context, period string) (walkdto.StatsOutput, error) {
	return walkdto.StatsOutput{Period: period, WalkCount: len(f.walks)}, nil
}

func (f *fakeWalks) DeleteByID(_ context.Context, walkID string) (walkdto.DeleteOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, walkID)
	return walkdto.DeleteOutput{Deleted: true, Walk: walkdto.WalkOutput{ID: walkID}}, nil
}

var day = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func loaded(t *testing.T, port *fakeWalks) history.Model {
	t.Helper()
	m := history.New(port, "week")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	msg := m.Reload()()
	m, _ = m.Update(msg)
	return m
}

func TestDeleteSelectedUsesNewestWalkID(t *testing.T) {
	t.Parallel()
	port := &fakeWalks{walks: []walkdto.WalkOutput{
		{ID: "older", Index: 0, Date: day, Steps: 100},
		{ID: "newer", Index: 1, Date: day.Add(2 * time.Hour), Steps: 200},
	}}
	m := loaded(t, port)

	cmd := m.DeleteSelected()
	if cmd == nil {
		t.Fatal("expected a delete command with walks loaded")
	}
	msg, ok := cmd().(history.DeletedMsg)
	if !ok {
		t.Fatalf("expected DeletedMsg, got %T", msg)
	}
	if msg.Err != nil || !msg.Out.Deleted {
		t.Fatalf("unexpected delete result: %+v", msg)
	}
	if len(port.deleted) != 1 || port.deleted[0] != "newer" {
		t.Fatalf("expected the newest walk deleted by id, got %v", port.deleted)
	}
}

func TestDeleteSelectedWithoutWalksIsNil(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakeWalks{})
	if cmd := m.DeleteSelected(); cmd != nil {
		t.Fatal("expected no command for an empty list")
	}
}

func TestSetPeriodReloadsAndIgnoresStaleResults(t *testing.T) {
	t.Parallel()
	port := &fakeWalks{walks: []walkdto.WalkOutput{{ID: "a", Date: day, Steps: 10}}}
	m := loaded(t, port)
	stale := m.Reload()()

	cmd := m.SetPeriod("month")
	if m.Period() != "month" {
		t.Fatalf("expected month period, got %q", m.Period())
	}
	msg, ok := cmd().(history.LoadedMsg)
	if !ok || msg.Period != "month" {
		t.Fatalf("expected a month reload, got %+v", msg)
	}
	if last := port.periods[len(port.periods)-1]; last != "month" {
		t.Fatalf("expected filter called with month, got %q", last)
	}

	m, _ = m.Update(stale)
	if view := m.View(); !strings.Contains(view, "History · month") {
		t.Fatalf("stale week result should not change the title, got:\n%s", view)
	}
}
