package app

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Metrics tracks session activity counters and render timing.
type Metrics struct {
	// Render timing
	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64
	renderMinNs   atomic.Int64
	renderMaxNs   atomic.Int64
	lastRenderNs  atomic.Int64

	// Input handling
	eventCount  atomic.Uint64
	moveCount   atomic.Uint64
	moveTotalNs atomic.Int64
	ignoredKeys atomic.Uint64
	rangeErrors atomic.Uint64
	resizeCount atomic.Uint64
	reloadCount atomic.Uint64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so first render will be smaller
	m.renderMinNs.Store(1<<63 - 1)
	return m
}

// RecordRender records the duration of one full repaint.
func (m *Metrics) RecordRender(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.renderCount.Add(1)
	m.renderTotalNs.Add(ns)
	m.lastRenderNs.Store(ns)

	for {
		old := m.renderMinNs.Load()
		if ns >= old || m.renderMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.renderMaxNs.Load()
		if ns <= old || m.renderMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordEvent counts one event taken from the backend.
func (m *Metrics) RecordEvent() {
	m.eventCount.Add(1)
}

// RecordMove records a completed cursor move.
func (m *Metrics) RecordMove(duration time.Duration) {
	m.moveCount.Add(1)
	m.moveTotalNs.Add(duration.Nanoseconds())
}

// RecordIgnoredKey counts a key with no binding.
func (m *Metrics) RecordIgnoredKey() {
	m.ignoredKeys.Add(1)
}

// RecordRangeError counts a move rejected with a range error.
func (m *Metrics) RecordRangeError() {
	m.rangeErrors.Add(1)
}

// RecordResize counts a handled resize.
func (m *Metrics) RecordResize() {
	m.resizeCount.Add(1)
}

// RecordReload counts a key map reload.
func (m *Metrics) RecordReload() {
	m.reloadCount.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	renderCount := m.renderCount.Load()
	moveCount := m.moveCount.Load()

	var avgRenderNs int64
	if renderCount > 0 {
		avgRenderNs = m.renderTotalNs.Load() / int64(renderCount)
	}

	var avgMoveNs int64
	if moveCount > 0 {
		avgMoveNs = m.moveTotalNs.Load() / int64(moveCount)
	}

	minRenderNs := m.renderMinNs.Load()
	if minRenderNs == 1<<63-1 {
		minRenderNs = 0
	}

	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		RenderCount:  renderCount,
		AvgRenderNs:  avgRenderNs,
		MinRenderNs:  minRenderNs,
		MaxRenderNs:  m.renderMaxNs.Load(),
		LastRenderNs: m.lastRenderNs.Load(),
		EventCount:   m.eventCount.Load(),
		MoveCount:    moveCount,
		AvgMoveNs:    avgMoveNs,
		IgnoredKeys:  m.ignoredKeys.Load(),
		RangeErrors:  m.rangeErrors.Load(),
		ResizeCount:  m.resizeCount.Load(),
		ReloadCount:  m.reloadCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	RenderCount  uint64
	AvgRenderNs  int64
	MinRenderNs  int64
	MaxRenderNs  int64
	LastRenderNs int64
	EventCount   uint64
	MoveCount    uint64
	AvgMoveNs    int64
	IgnoredKeys  uint64
	RangeErrors  uint64
	ResizeCount  uint64
	ReloadCount  uint64
}

// AvgRenderMs returns the average render time in milliseconds.
func (s MetricsSnapshot) AvgRenderMs() float64 {
	return float64(s.AvgRenderNs) / 1e6
}

// Summary formats the snapshot as a single log line.
func (s MetricsSnapshot) Summary() string {
	return fmt.Sprintf("uptime=%s events=%d moves=%d renders=%d avg_render=%.3fms resizes=%d reloads=%d ignored=%d range_errors=%d",
		s.Uptime.Round(time.Millisecond), s.EventCount, s.MoveCount, s.RenderCount,
		s.AvgRenderMs(), s.ResizeCount, s.ReloadCount, s.IgnoredKeys, s.RangeErrors)
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
