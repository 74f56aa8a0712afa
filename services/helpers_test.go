package services

import (
	"context"
	"sync"
	"time"

	"dailyledger/model"
	"dailyledger/storage"
)

// fakeTime is a settable wall clock.
type fakeTime struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeTime(t time.Time) *fakeTime { return &fakeTime{t: t} }

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeTime) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

func (f *fakeTime) Add(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (r *recordingNotifier) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) All() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.sent...)
}

// flakyStore fails SaveRecord while failing is set.
type flakyStore struct {
	*storage.LedgerStore
	mu      sync.Mutex
	failing error
}

func (f *flakyStore) SaveRecord(ctx context.Context, r model.DailyRecord) error {
	f.mu.Lock()
	err := f.failing
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.LedgerStore.SaveRecord(ctx, r)
}

func (f *flakyStore) setFailing(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = err
}
