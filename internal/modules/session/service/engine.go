package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pacer/internal/modules/session/domain"
	sessionout "pacer/internal/modules/session/port/out"
	"pacer/internal/platform/clock"
	apperrors "pacer/internal/platform/errors"
)

type Options struct {
	TickInterval time.Duration
	ResetDelay   time.Duration
}

func DefaultOptions() Options {
	return Options{TickInterval: 100 * time.Millisecond, ResetDelay: 2 * time.Second}
}

// Snapshot is the engine's view of the current or last session.
type Snapshot struct {
	domain.Readout
	Mode      string
	StartedAt time.Time
}

type StopResult struct {
	Readout  domain.Readout
	Recorded bool
	WalkID   string
}

type requestKind int

const (
	reqStart requestKind = iota
	reqStop
	reqReadout
	reqMsg
)

type request struct {
	kind  requestKind
	ctx   context.Context
	msg   domain.Msg
	reply chan response
}

type response struct {
	snapshot Snapshot
	stop     StopResult
	err      error
}

// Engine owns the session state. A single goroutine started by Run applies
// every message in arrival order; tick and feed pumps only forward messages.
type Engine struct {
	machine  domain.Machine
	clock    clock.Clock
	source   sessionout.MotionSource
	recorder sessionout.WalkRecorder
	haptics  sessionout.Haptics
	logger   *slog.Logger
	opts     Options

	inbox chan request
	done  chan struct{}

	// Owned by the Run goroutine.
	runCtx context.Context
	state  domain.State
	mode   string
	cancel context.CancelFunc
	ticker *time.Ticker
}

func NewEngine(machine domain.Machine, clock clock.Clock, source sessionout.MotionSource, recorder sessionout.WalkRecorder, haptics sessionout.Haptics, logger *slog.Logger, opts Options) *Engine {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultOptions().TickInterval
	}
	if opts.ResetDelay < 0 {
		opts.ResetDelay = 0
	}
	return &Engine{
		machine:  machine,
		clock:    clock,
		source:   source,
		recorder: recorder,
		haptics:  haptics,
		logger:   logger,
		opts:     opts,
		inbox:    make(chan request),
		done:     make(chan struct{}),
		state:    machine.Initial(),
	}
}

// Run processes messages until ctx is canceled. It must be called once.
func (e *Engine) Run(ctx context.Context) error {
	e.runCtx = ctx
	defer close(e.done)
	defer e.cancelFeeds()
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-e.inbox:
			e.handle(req)
		}
	}
}

func (e *Engine) Start(ctx context.Context) (Snapshot, error) {
	resp, err := e.call(ctx, request{kind: reqStart, ctx: ctx})
	if err != nil {
		return Snapshot{}, err
	}
	return resp.snapshot, resp.err
}

func (e *Engine) Stop(ctx context.Context) (StopResult, error) {
	resp, err := e.call(ctx, request{kind: reqStop, ctx: ctx})
	if err != nil {
		return StopResult{}, err
	}
	return resp.stop, resp.err
}

func (e *Engine) Readout(ctx context.Context) (Snapshot, error) {
	resp, err := e.call(ctx, request{kind: reqReadout, ctx: ctx})
	if err != nil {
		return Snapshot{}, err
	}
	return resp.snapshot, nil
}

func (e *Engine) call(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)
	select {
	case e.inbox <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	case <-e.done:
		return response{}, apperrors.ErrEngineStopped
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	case <-e.done:
		return response{}, apperrors.ErrEngineStopped
	}
}

// post forwards a message unless the sender's context or the engine is gone.
func (e *Engine) post(ctx context.Context, msg domain.Msg) {
	select {
	case e.inbox <- request{kind: reqMsg, msg: msg}:
	case <-ctx.Done():
	case <-e.done:
	}
}

func (e *Engine) handle(req request) {
	var resp response
	switch req.kind {
	case reqStart:
		resp.snapshot, resp.err = e.start(req.ctx)
	case reqStop:
		resp.stop, resp.err = e.stop(req.ctx)
	case reqReadout:
		resp.snapshot = e.snapshot()
	case reqMsg:
		e.apply(req.msg)
		return
	}
	req.reply <- resp
}

func (e *Engine) start(ctx context.Context) (Snapshot, error) {
	if e.state.Status == domain.StatusActive {
		return Snapshot{}, apperrors.ErrActiveSessionExists
	}
	if err := e.source.Authorize(ctx); err != nil {
		e.logger.Warn("motion access refused", slog.Any("error", err))
		return Snapshot{}, err
	}
	feed, err := e.source.Open(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open motion feed: %w", err)
	}

	next, _, err := e.machine.Apply(e.state, domain.Start{At: e.clock.Now()})
	if err != nil {
		return Snapshot{}, err
	}
	e.state = next
	e.mode = feed.Mode()

	pumpCtx, cancel := context.WithCancel(e.runCtx)
	e.cancel = cancel
	e.ticker = time.NewTicker(e.opts.TickInterval)
	go e.tick(pumpCtx, e.ticker, next.Epoch)
	go e.pump(pumpCtx, feed, next.Epoch)

	e.logger.Info("session started", slog.Uint64("epoch", next.Epoch), slog.String("mode", e.mode))
	return e.snapshot(), nil
}

func (e *Engine) stop(ctx context.Context) (StopResult, error) {
	e.cancelFeeds()
	next, effects, err := e.machine.Apply(e.state, domain.Stop{At: e.clock.Now()})
	if err != nil {
		return StopResult{}, err
	}
	e.state = next
	result := StopResult{Readout: next.Readout()}
	for _, effect := range effects {
		switch v := effect.(type) {
		case domain.Record:
			walkID, err := e.recorder.Record(context.WithoutCancel(ctx), v)
			if err != nil {
				e.logger.Error("record walk", slog.Int64("duration_ms", v.DurationMS), slog.Int("steps", v.Steps), slog.Any("error", err))
				continue
			}
			result.Recorded = true
			result.WalkID = walkID
		case domain.ScheduleReset:
			e.scheduleReset(v.Epoch)
		}
	}
	e.logger.Info("session stopped",
		slog.Uint64("epoch", next.Epoch),
		slog.Int("steps", next.Steps),
		slog.Duration("elapsed", next.Elapsed),
		slog.Bool("recorded", result.Recorded),
	)
	return result, nil
}

func (e *Engine) apply(msg domain.Msg) {
	next, effects, err := e.machine.Apply(e.state, msg)
	if err != nil {
		e.logger.Debug("message rejected", slog.String("msg", fmt.Sprintf("%T", msg)), slog.Any("error", err))
		return
	}
	e.state = next
	for _, effect := range effects {
		if _, ok := effect.(domain.Haptic); ok && e.haptics != nil {
			e.haptics.Pulse()
		}
	}
}

func (e *Engine) scheduleReset(epoch uint64) {
	ctx := e.runCtx
	time.AfterFunc(e.opts.ResetDelay, func() {
		e.post(ctx, domain.Reset{Epoch: epoch})
	})
}

func (e *Engine) cancelFeeds() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) tick(ctx context.Context, ticker *time.Ticker, epoch uint64) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.post(ctx, domain.Tick{Epoch: epoch, At: e.clock.Now()})
		}
	}
}

func (e *Engine) pump(ctx context.Context, feed sessionout.Feed, epoch uint64) {
	err := feed.Run(ctx, func(m domain.Motion) {
		if m.At.IsZero() {
			m.At = e.clock.Now()
		}
		e.post(ctx, m.Tag(epoch))
	})
	if err != nil && ctx.Err() == nil {
		e.logger.Warn("motion feed ended", slog.String("mode", feed.Mode()), slog.Any("error", err))
	}
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{Readout: e.state.Readout(), Mode: e.mode, StartedAt: e.state.StartTime}
}
