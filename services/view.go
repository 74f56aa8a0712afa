package services

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultChartDelay defers chart activation until the tracker transition is done.
const DefaultChartDelay = 800 * time.Millisecond

type ViewOptions struct {
	PollInterval time.Duration
	ChartDelay   time.Duration
}

// View is one open tracker view. It owns the auto-submit poll and the
// deferred chart activation; Close tears both down.
type View struct {
	engine     *Engine
	timers     *Timers
	chartReady atomic.Bool
}

func OpenView(ctx context.Context, engine *Engine, opts ViewOptions) *View {
	if opts.ChartDelay <= 0 {
		opts.ChartDelay = DefaultChartDelay
	}
	v := &View{engine: engine, timers: NewTimers(ctx)}
	engine.StartAutoSubmit(v.timers, opts.PollInterval)
	v.timers.After(opts.ChartDelay, func() {
		v.chartReady.Store(true)
	})
	return v
}

func (v *View) ChartReady() bool {
	return v.chartReady.Load()
}

func (v *View) Close() {
	v.engine.StopAutoSubmit()
	v.timers.Close()
}
