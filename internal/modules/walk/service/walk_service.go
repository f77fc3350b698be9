package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pacer/internal/modules/walk/domain"
	walkout "pacer/internal/modules/walk/port/out"
	"pacer/internal/platform/clock"
	apperrors "pacer/internal/platform/errors"
	"pacer/internal/platform/id"
)

// WalkService mirrors the stored walk collection. Every read and mutation
// starts from a fresh store read, so several processes sharing one store see
// each other's writes. The cached copy only answers reads while the store is
// failing, and a mutation applied to it is never written back. Storage
// failures are logged and never surface to callers.
type WalkService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  walkout.KVStore
	logger *slog.Logger

	mu      sync.Mutex
	records domain.Collection
}

func NewWalkService(clock clock.Clock, idGen id.Generator, store walkout.KVStore, logger *slog.Logger) *WalkService {
	return &WalkService{clock: clock, idGen: idGen, store: store, logger: logger}
}

// Load reads the stored collection. Missing or undecodable data yields an
// empty collection; a failed read yields the last collection read.
func (s *WalkService) Load(ctx context.Context) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
	return s.snapshot()
}

func (s *WalkService) Append(ctx context.Context, date time.Time, durationMS int64, steps int, pace float64) (domain.WalkRecord, error) {
	record := domain.WalkRecord{
		ID:             s.idGen.New(),
		Date:           date.UTC(),
		DurationMS:     durationMS,
		Steps:          steps,
		StepsPerMinute: pace,
	}
	if err := record.Validate(); err != nil {
		return domain.WalkRecord{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := s.refresh(ctx)
	s.records = append(s.records, record)
	s.persist(ctx, fresh)
	return record, nil
}

func (s *WalkService) All(ctx context.Context) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
	return s.snapshot()
}

func (s *WalkService) Filter(ctx context.Context, period domain.Period) (domain.Collection, error) {
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return domain.FilterByPeriod(s.All(ctx), period, s.clock.Now()), nil
}

// Delete removes by position in the unfiltered collection. An out-of-range
// index is a no-op reported through ok.
func (s *WalkService) Delete(ctx context.Context, index int) (domain.WalkRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := s.refresh(ctx)
	return s.deleteAt(ctx, index, fresh)
}

// DeleteByID removes the walk with the given id and reports the store index
// it occupied.
func (s *WalkService) DeleteByID(ctx context.Context, walkID string) (domain.WalkRecord, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := s.refresh(ctx)
	index := s.records.IndexOf(walkID)
	removed, ok := s.deleteAt(ctx, index, fresh)
	if !ok {
		return domain.WalkRecord{}, -1, false
	}
	return removed, index, true
}

func (s *WalkService) Now() time.Time {
	return s.clock.Now()
}

func (s *WalkService) deleteAt(ctx context.Context, index int, fresh bool) (domain.WalkRecord, bool) {
	next, removed, ok := s.records.Delete(index)
	if !ok {
		s.logger.Debug("delete ignored", slog.Int("index", index), slog.Any("error", apperrors.ErrInvalidIndex))
		return domain.WalkRecord{}, false
	}
	s.records = next
	s.persist(ctx, fresh)
	return removed, true
}

// refresh replaces the cache with the stored collection and reports whether
// the store could be read. On failure the cache is left as it was.
func (s *WalkService) refresh(ctx context.Context) bool {
	records, err := s.read(ctx)
	if err != nil {
		s.logger.Error("load walks", slog.Any("error", err))
		if s.records == nil {
			s.records = domain.Collection{}
		}
		return false
	}
	s.records = records
	return true
}

// read fails only when the store itself fails. An undecodable payload is
// logged and read as empty so the next write replaces it.
func (s *WalkService) read(ctx context.Context) (domain.Collection, error) {
	raw, ok, err := s.store.Get(ctx, domain.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if !ok || raw == "" {
		return domain.Collection{}, nil
	}
	var records domain.Collection
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Error("decode walks", slog.Any("error", fmt.Errorf("%w: %v", apperrors.ErrStorage, err)))
		return domain.Collection{}, nil
	}
	if records == nil {
		records = domain.Collection{}
	}
	return records, nil
}

// persist writes the cache back unless it was derived from a failed read,
// which would overwrite history the store still holds.
func (s *WalkService) persist(ctx context.Context, fresh bool) {
	if !fresh {
		s.logger.Error("save walks skipped", slog.Int("count", len(s.records)), slog.Any("error", apperrors.ErrStorage))
		return
	}
	payload, err := json.Marshal(s.records)
	if err != nil {
		s.logger.Error("encode walks", slog.Any("error", err))
		return
	}
	if err := s.store.Set(ctx, domain.StorageKey, string(payload)); err != nil {
		s.logger.Error("save walks", slog.Int("count", len(s.records)), slog.Any("error", fmt.Errorf("%w: %v", apperrors.ErrStorage, err)))
	}
}

func (s *WalkService) snapshot() domain.Collection {
	out := make(domain.Collection, len(s.records))
	copy(out, s.records)
	return out
}
