package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pacer/internal/modules/walk/domain"
	"pacer/internal/modules/walk/service"
	"pacer/internal/platform/clock"
	"pacer/internal/platform/logging"
)

type memoryKV struct {
	values  map[string]string
	sets    int
	failGet bool
	failSet bool
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string]string{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.failGet {
		return "", false, errors.New("disk gone")
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.sets++
	m.values[key] = value
	return nil
}

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("walk-%d", s.n)
}

var start = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newService(kv *memoryKV) (*service.WalkService, *clock.Manual) {
	clk := clock.NewManual(start)
	return service.NewWalkService(clk, &seqID{}, kv, logging.Discard()), clk
}

func TestLoadWithNothingStoredIsEmpty(t *testing.T) {
	t.Parallel()
	svc, _ := newService(newMemoryKV())
	if got := svc.Load(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty collection, got %d", len(got))
	}
}

func TestAppendPersistsAndReloads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newMemoryKV()
	svc, _ := newService(kv)

	if _, err := svc.Append(ctx, start, 65000, 130, 120); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := svc.Append(ctx, start.Add(time.Hour), 30000, 40, 80); err != nil {
		t.Fatalf("append: %v", err)
	}
	if kv.sets != 2 {
		t.Fatalf("expected a write per mutation, got %d", kv.sets)
	}

	reloaded, _ := newService(kv)
	got := reloaded.Load(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 records after reload, got %d", len(got))
	}
	if got[0].Steps != 130 || got[0].DurationMS != 65000 || got[0].StepsPerMinute != 120 {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].ID != "walk-2" {
		t.Fatalf("insertion order not preserved: %+v", got)
	}
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	t.Parallel()
	kv := newMemoryKV()
	svc, _ := newService(kv)
	if _, err := svc.Append(context.Background(), start, 1000, -1, 0); err == nil {
		t.Fatalf("negative steps should be rejected")
	}
	if kv.sets != 0 {
		t.Fatalf("invalid record must not be persisted")
	}
}

func TestCorruptPayloadLoadsEmpty(t *testing.T) {
	t.Parallel()
	kv := newMemoryKV()
	kv.values[domain.StorageKey] = "{not json"
	svc, _ := newService(kv)
	if got := svc.Load(context.Background()); len(got) != 0 {
		t.Fatalf("corrupt payload should load as empty, got %d", len(got))
	}
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newMemoryKV()
	kv.failGet = true
	kv.failSet = true
	svc, _ := newService(kv)

	if got := svc.Load(ctx); len(got) != 0 {
		t.Fatalf("failed read should load as empty")
	}
	if _, err := svc.Append(ctx, start, 1000, 2, 120); err != nil {
		t.Fatalf("write failure must not surface: %v", err)
	}
	if got := svc.All(ctx); len(got) != 1 {
		t.Fatalf("in-memory state should still hold the walk, got %d", len(got))
	}
}

func TestDeleteByIndexAndID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newMemoryKV()
	svc, _ := newService(kv)
	for i := 0; i < 3; i++ {
		if _, err := svc.Append(ctx, start.Add(time.Duration(i)*time.Minute), 60000, 100+i, 100); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	removed, ok := svc.Delete(ctx, 1)
	if !ok || removed.ID != "walk-2" {
		t.Fatalf("expected walk-2 removed, got %+v ok=%v", removed, ok)
	}
	if _, ok := svc.Delete(ctx, 7); ok {
		t.Fatalf("out of range delete should be a no-op")
	}
	if _, ok := svc.Delete(ctx, -1); ok {
		t.Fatalf("negative index should be a no-op")
	}
	if _, index, ok := svc.DeleteByID(ctx, "missing"); ok || index != -1 {
		t.Fatalf("unknown id should be a no-op, got index=%d ok=%v", index, ok)
	}
	removed, index, ok := svc.DeleteByID(ctx, "walk-3")
	if !ok || removed.ID != "walk-3" {
		t.Fatalf("expected walk-3 removed, got %+v ok=%v", removed, ok)
	}
	if index != 1 {
		t.Fatalf("expected walk-3 at store index 1 after the first delete, got %d", index)
	}

	reloaded, _ := newService(kv)
	got := reloaded.Load(ctx)
	if len(got) != 1 || got[0].ID != "walk-1" {
		t.Fatalf("unexpected remaining records: %+v", got)
	}
}

func TestFilterUsesClock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, clk := newService(newMemoryKV())
	if _, err := svc.Append(ctx, start.Add(-10*24*time.Hour), 60000, 50, 50); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := svc.Append(ctx, start.Add(-2*24*time.Hour), 60000, 70, 70); err != nil {
		t.Fatalf("append: %v", err)
	}

	week, err := svc.Filter(ctx, domain.PeriodWeek)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(week) != 1 || week[0].Steps != 70 {
		t.Fatalf("unexpected week filter: %+v", week)
	}

	clk.Advance(6 * 24 * time.Hour)
	week, _ = svc.Filter(ctx, domain.PeriodWeek)
	if len(week) != 0 {
		t.Fatalf("records should age out of the week window, got %d", len(week))
	}
	if _, err := svc.Filter(ctx, domain.Period("year")); err == nil {
		t.Fatalf("unknown period should fail")
	}
}

func TestFailedReadNeverOverwritesStoredHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newMemoryKV()
	seeded, _ := newService(kv)
	if _, err := seeded.Append(ctx, start, 60000, 90, 90); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc, _ := newService(kv)
	kv.failGet = true
	if got := svc.Load(ctx); len(got) != 0 {
		t.Fatalf("failed read should load as empty, got %d", len(got))
	}
	if _, err := svc.Append(ctx, start.Add(time.Minute), 60000, 10, 10); err != nil {
		t.Fatalf("append during outage: %v", err)
	}
	if _, ok := svc.Delete(ctx, 0); !ok {
		t.Fatalf("delete during outage should act on the cached walks")
	}
	if kv.sets != 1 {
		t.Fatalf("no write may follow a failed read, got %d writes", kv.sets)
	}

	kv.failGet = false
	if _, err := svc.Append(ctx, start.Add(2*time.Minute), 60000, 120, 120); err != nil {
		t.Fatalf("append after recovery: %v", err)
	}
	got, _ := newService(kv)
	records := got.Load(ctx)
	if len(records) != 2 || records[0].Steps != 90 || records[1].Steps != 120 {
		t.Fatalf("stored history lost across a failed read: %+v", records)
	}
}

func TestServicesSharingAStoreKeepEachOthersWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newMemoryKV()
	first, _ := newService(kv)
	second, _ := newService(kv)

	first.Load(ctx)
	second.Load(ctx)
	if _, err := second.Append(ctx, start, 60000, 50, 50); err != nil {
		t.Fatalf("append second: %v", err)
	}
	if _, err := first.Append(ctx, start.Add(time.Minute), 60000, 60, 60); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if got := second.All(ctx); len(got) != 2 {
		t.Fatalf("expected both walks visible to the other service, got %d", len(got))
	}

	if _, ok := second.Delete(ctx, 0); !ok {
		t.Fatalf("delete: expected walk removed")
	}
	if _, err := first.Append(ctx, start.Add(2*time.Minute), 60000, 70, 70); err != nil {
		t.Fatalf("append after delete: %v", err)
	}
	fresh, _ := newService(kv)
	records := fresh.Load(ctx)
	if len(records) != 2 || records[0].Steps != 60 || records[1].Steps != 70 {
		t.Fatalf("deleted walk resurrected or write lost: %+v", records)
	}
}
