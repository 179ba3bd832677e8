// Package observability provides tracing and dispatch metrics.
package observability

import (
	"context"
	"time"
)

// Dispatch describes one handled request
type Dispatch struct {
	Module   string
	Action   string
	Status   int
	Failed   bool
	Duration time.Duration
}

// Recorder receives one observation per dispatched request
type Recorder interface {
	RecordDispatch(ctx context.Context, d Dispatch)
}

// NopRecorder discards observations
type NopRecorder struct{}

// RecordDispatch implements Recorder
func (NopRecorder) RecordDispatch(context.Context, Dispatch) {}

// MultiRecorder fans an observation out to several recorders
type MultiRecorder []Recorder

// RecordDispatch implements Recorder
func (m MultiRecorder) RecordDispatch(ctx context.Context, d Dispatch) {
	for _, r := range m {
		r.RecordDispatch(ctx, d)
	}
}
