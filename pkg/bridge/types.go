package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/dexcom-osc-bridge/dexosc-go/pkg/history"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/reading"
)

// Loop defaults.
const (
	// DefaultInterval is the wait between cycles.
	DefaultInterval = 30 * time.Second

	// DefaultMinDelta is the smallest change in mg/dL that triggers a send.
	DefaultMinDelta = 2
)

// Loop errors.
var (
	ErrNegativeDelta = errors.New("bridge: min delta must not be negative")
	ErrNoSource      = errors.New("bridge: reading source is required")
	ErrNoSender      = errors.New("bridge: sender is required")
	ErrCyclePanic    = errors.New("bridge: cycle panicked")
)

// Source provides glucose readings. A Source that also implements
// reading.TrendProvider is asked for the trend first.
type Source interface {
	CurrentGlucoseReading(ctx context.Context) (any, error)
}

// Sender delivers a chatbox message.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// Outcome describes a completed cycle.
type Outcome struct {
	Action      history.Action
	Measurement reading.Measurement
	Message     string
}

// Stats counts cycle outcomes.
type Stats struct {
	Sent       uint64
	Suppressed uint64
	Failed     uint64
	LastSent   *int
}
