package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dexcom-osc-bridge/dexosc-go/pkg/history"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/metrics"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/reading"
)

// Config configures a Loop.
type Config struct {
	Source Source
	Sender Sender

	// Endpoint labels history events, e.g. "192.168.1.20:9000".
	Endpoint string

	// Interval is the wait after each cycle. Zero means DefaultInterval.
	Interval time.Duration

	// MinDelta is the debounce threshold. Zero sends every reading.
	MinDelta int

	// History receives one event per cycle. Defaults to NoopLogger.
	History history.Logger

	// Logger for operational output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Loop polls Source and forwards changed readings to Sender.
type Loop struct {
	config Config
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	lastSent *int
	stats    Stats
}

// NewLoop validates config and returns a loop.
func NewLoop(config Config) (*Loop, error) {
	if config.Source == nil {
		return nil, ErrNoSource
	}
	if config.Sender == nil {
		return nil, ErrNoSender
	}
	if config.MinDelta < 0 {
		return nil, ErrNegativeDelta
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.History == nil {
		config.History = history.NoopLogger{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{
		config: config,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Run executes a cycle immediately and then one per interval until ctx is
// cancelled. Cycle failures never stop the loop. Run returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("bridge running",
		slog.String("endpoint", l.config.Endpoint),
		slog.Duration("interval", l.config.Interval),
		slog.Int("min_delta", l.config.MinDelta))
	l.config.History.Log(history.Event{
		Timestamp: l.now(),
		Action:    history.ActionStarted,
		Endpoint:  l.config.Endpoint,
	})

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.config.History.Log(history.Event{
				Timestamp: l.now(),
				Action:    history.ActionStopped,
				Endpoint:  l.config.Endpoint,
			})
			l.logger.Info("bridge stopped")
			return ctx.Err()
		case <-timer.C:
			if _, err := l.RunCycle(ctx); err != nil && ctx.Err() == nil {
				l.logger.Warn("cycle failed", slog.String("error", err.Error()))
			}
			timer.Reset(l.config.Interval)
		}
	}
}

// RunCycle performs one fetch, normalize, debounce and send step.
func (l *Loop) RunCycle(ctx context.Context) (Outcome, error) {
	start := l.now()
	out, err := l.safeCycle(ctx)

	event := history.Event{
		Timestamp: start,
		Action:    out.Action,
		Value:     out.Measurement.Value,
		Message:   out.Message,
		Endpoint:  l.config.Endpoint,
		Duration:  l.now().Sub(start),
	}
	if out.Measurement.Trend != reading.TrendNone {
		event.Trend = out.Measurement.Trend.String()
		event.Glyph = out.Measurement.Trend.Glyph()
	}
	if err != nil {
		event.Error = err.Error()
	}
	l.config.History.Log(event)

	l.mu.Lock()
	switch out.Action {
	case history.ActionSent:
		l.stats.Sent++
		metrics.RecordCycle(metrics.ResultSent, out.Measurement.Value)
		metrics.RecordSend(start)
	case history.ActionSuppressed:
		l.stats.Suppressed++
		metrics.RecordCycle(metrics.ResultSuppressed, out.Measurement.Value)
	default:
		l.stats.Failed++
		metrics.RecordCycle(metrics.ResultFailed, out.Measurement.Value)
	}
	l.mu.Unlock()

	return out, err
}

// safeCycle turns a panic in a collaborator into a failed cycle.
func (l *Loop) safeCycle(ctx context.Context) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Action: history.ActionFailed}
			err = fmt.Errorf("%w: %v", ErrCyclePanic, r)
		}
	}()
	return l.cycle(ctx)
}

func (l *Loop) cycle(ctx context.Context) (Outcome, error) {
	out := Outcome{Action: history.ActionFailed}

	raw, err := l.config.Source.CurrentGlucoseReading(ctx)
	if err != nil {
		return out, fmt.Errorf("fetch reading: %w", err)
	}

	m, err := reading.Normalize(ctx, l.config.Source, raw)
	if err != nil {
		return out, fmt.Errorf("normalize reading: %w", err)
	}
	out.Measurement = m
	out.Message = FormatMessage(m.Value, m.Trend.Glyph())

	if !ShouldSend(l.LastSent(), m.Value, l.config.MinDelta) {
		out.Action = history.ActionSuppressed
		l.logger.Debug("change below threshold", slog.Int("value", m.Value))
		return out, nil
	}

	if err := l.config.Sender.Send(ctx, out.Message); err != nil {
		return out, fmt.Errorf("send: %w", err)
	}

	l.mu.Lock()
	v := m.Value
	l.lastSent = &v
	l.mu.Unlock()

	out.Action = history.ActionSent
	l.logger.Info("sent", slog.String("message", out.Message))
	return out, nil
}

// LastSent returns the last delivered value, or nil before the first send.
func (l *Loop) LastSent() *int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastSent == nil {
		return nil
	}
	v := *l.lastSent
	return &v
}

// Stats returns a snapshot of the cycle counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	if l.lastSent != nil {
		v := *l.lastSent
		s.LastSent = &v
	}
	return s
}
