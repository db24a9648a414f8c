package history

import (
	"errors"
	"io"
	"time"
)

// Stats aggregates a stream of events.
type Stats struct {
	Total    int
	ByAction map[Action]int

	Start time.Time
	End   time.Time

	// Readings counts events that carried a glucose value.
	Readings int
	Min      int
	Max      int
	Sum      int

	LastError string
}

// NewStats returns empty stats.
func NewStats() *Stats {
	return &Stats{ByAction: make(map[Action]int)}
}

// Add folds one event into the stats.
func (s *Stats) Add(event Event) {
	s.Total++
	s.ByAction[event.Action]++

	if s.Start.IsZero() || event.Timestamp.Before(s.Start) {
		s.Start = event.Timestamp
	}
	if event.Timestamp.After(s.End) {
		s.End = event.Timestamp
	}

	if event.Value > 0 {
		if s.Readings == 0 || event.Value < s.Min {
			s.Min = event.Value
		}
		if event.Value > s.Max {
			s.Max = event.Value
		}
		s.Readings++
		s.Sum += event.Value
	}

	if event.Error != "" {
		s.LastError = event.Error
	}
}

// Mean returns the average glucose value, or 0 with no readings.
func (s *Stats) Mean() float64 {
	if s.Readings == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Readings)
}

// Collect drains r into a Stats.
func Collect(r *Reader) (*Stats, error) {
	stats := NewStats()
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return nil, err
		}
		stats.Add(event)
	}
}
