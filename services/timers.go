package services

import (
	"context"
	"sync"
	"time"
)

// Timers owns deferred and periodic callbacks for one engine or view
// lifetime. Close cancels all of them and waits for running callbacks.
type Timers struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewTimers(parent context.Context) *Timers {
	ctx, cancel := context.WithCancel(parent)
	return &Timers{ctx: ctx, cancel: cancel}
}

func (t *Timers) start(run func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		run()
	}()
	return true
}

// After runs fn once after d unless the timers are closed first.
func (t *Timers) After(d time.Duration, fn func()) bool {
	return t.start(func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-t.ctx.Done():
		case <-timer.C:
			fn()
		}
	})
}

// Every calls fn each interval until fn returns false or the timers close.
func (t *Timers) Every(interval time.Duration, fn func(ctx context.Context) bool) bool {
	return t.start(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.ctx.Done():
				return
			case <-ticker.C:
				if !fn(t.ctx) {
					return
				}
			}
		}
	})
}

func (t *Timers) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}
