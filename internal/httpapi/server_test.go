package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pacer/internal/httpapi"
	sessiondto "pacer/internal/modules/session/dto"
	walkdto "pacer/internal/modules/walk/dto"
	apperrors "pacer/internal/platform/errors"
	"pacer/internal/platform/logging"
)

type fakeSession struct {
	startErr error
	stopErr  error
	active   bool
}

func (f *fakeSession) Start(context.Context) (sessiondto.StartOutput, error) {
	if f.startErr != nil {
		return sessiondto.StartOutput{}, f.startErr
	}
	if f.active {
		return sessiondto.StartOutput{}, apperrors.ErrActiveSessionExists
	}
	f.active = true
	return sessiondto.StartOutput{StartedAt: time.Unix(0, 0).UTC(), Mode: "synthetic"}, nil
}

func (f *fakeSession) Stop(context.Context) (sessiondto.StopOutput, error) {
	if f.stopErr != nil {
		return sessiondto.StopOutput{}, f.stopErr
	}
	if !f.active {
		return sessiondto.StopOutput{}, apperrors.ErrNoActiveSession
	}
	f.active = false
	return sessiondto.StopOutput{DurationMS: 65000, Steps: 130, StepsPerMinute: 120, Recorded: true, WalkID: "walk-1"}, nil
}

func (f *fakeSession) Readout(context.Context) (sessiondto.ReadoutOutput, error) {
	status := "idle"
	if f.active {
		status = "active"
	}
	return sessiondto.ReadoutOutput{Status: status}, nil
}

type fakeWalks struct {
	walks     []walkdto.WalkOutput
	lastQuery string
}

func (f *fakeWalks) Filter(_ context.Context, period string) ([]walkdto.WalkOutput, error) {
	f.lastQuery = period
	switch period {
	case "", "week", "month", "all":
		return f.walks, nil
	}
	return nil, fmt.Errorf("%w: unknown period %q", apperrors.ErrInvalidInput, period)
}

func (f *fakeWalks) Delete(_ context.Context, index int) (walkdto.DeleteOutput, error) {
	if index < 0 || index >= len(f.walks) {
		return walkdto.DeleteOutput{}, nil
	}
	removed := f.walks[index]
	f.walks = append(f.walks[:index], f.walks[index+1:]...)
	return walkdto.DeleteOutput{Deleted: true, Walk: removed}, nil
}

func (f *fakeWalks) DeleteByID(_ context.Context, walkID string) (walkdto.DeleteOutput, error) {
	for i, w := range f.walks {
		if w.ID == walkID {
			return f.Delete(context.Background(), i)
		}
	}
	return walkdto.DeleteOutput{}, nil
}

func (f *fakeWalks) Stats(_ context.Context, period string) (walkdto.StatsOutput, error) {
	return walkdto.StatsOutput{Period: period, WalkCount: len(f.walks)}, nil
}

func (f *fakeWalks) Chart(context.Context, string) ([]walkdto.ChartPoint, error) {
	return nil, nil
}

func newServer(session *fakeSession, walks *fakeWalks) http.Handler {
	return httpapi.New(session, walks, logging.Discard()).Handler()
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeSession{}, &fakeWalks{})

	if rec := do(t, h, http.MethodPost, "/api/session/start"); rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/session/start"); rec.Code != http.StatusConflict {
		t.Fatalf("second start: expected 409, got %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/api/session")
	var readout sessiondto.ReadoutOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &readout); err != nil {
		t.Fatalf("decode readout: %v", err)
	}
	if readout.Status != "active" {
		t.Fatalf("expected active readout, got %+v", readout)
	}

	rec = do(t, h, http.MethodPost, "/api/session/stop")
	if rec.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d", rec.Code)
	}
	var stopped sessiondto.StopOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &stopped); err != nil {
		t.Fatalf("decode stop: %v", err)
	}
	if !stopped.Recorded || stopped.Steps != 130 || stopped.DurationMS != 65000 {
		t.Fatalf("unexpected stop body: %+v", stopped)
	}
	if rec := do(t, h, http.MethodPost, "/api/session/stop"); rec.Code != http.StatusConflict {
		t.Fatalf("stop while idle: expected 409, got %d", rec.Code)
	}
}

func TestStartPermissionDenied(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeSession{startErr: fmt.Errorf("start: %w", apperrors.ErrPermissionDenied)}, &fakeWalks{})
	rec := do(t, h, http.MethodPost, "/api/session/start")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("expected error body, got %q (%v)", rec.Body.String(), err)
	}
}

func TestWalkRoutes(t *testing.T) {
	t.Parallel()
	walks := &fakeWalks{walks: []walkdto.WalkOutput{
		{ID: "a", Index: 0, Steps: 100},
		{ID: "b", Index: 1, Steps: 200},
		{ID: "c", Index: 2, Steps: 300},
	}}
	h := newServer(&fakeSession{}, walks)

	rec := do(t, h, http.MethodGet, "/api/walks?period=month")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if walks.lastQuery != "month" {
		t.Fatalf("expected period to be forwarded, got %q", walks.lastQuery)
	}
	if rec := do(t, h, http.MethodGet, "/api/walks?period=decade"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad period: expected 400, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/api/walks/1")
	var out walkdto.DeleteOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if !out.Deleted || out.Walk.ID != "b" {
		t.Fatalf("expected walk b deleted, got %+v", out)
	}

	rec = do(t, h, http.MethodDelete, "/api/walks/9")
	out = walkdto.DeleteOutput{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if rec.Code != http.StatusOK || out.Deleted {
		t.Fatalf("out of range delete should be a no-op, got %d %+v", rec.Code, out)
	}

	rec = do(t, h, http.MethodDelete, "/api/walks/id/c")
	out = walkdto.DeleteOutput{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode delete by id: %v", err)
	}
	if !out.Deleted || out.Walk.ID != "c" {
		t.Fatalf("expected walk c deleted, got %+v", out)
	}
	if len(walks.walks) != 1 || walks.walks[0].ID != "a" {
		t.Fatalf("unexpected remaining walks: %+v", walks.walks)
	}
}

func TestChartReturnsEmptyArray(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeSession{}, &fakeWalks{})
	rec := do(t, h, http.MethodGet, "/api/chart?period=week")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty json array, got %q", got)
	}
}

func TestCORSHeaders(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeSession{}, &fakeWalks{})
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	srv := httpapi.New(&fakeSession{}, &fakeWalks{}, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
