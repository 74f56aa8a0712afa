package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailyledger/model"
	"dailyledger/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine   *Engine
	store    *flakyStore
	kv       *storage.MemoryKV
	time     *fakeTime
	notifier *recordingNotifier
}

func newEngineFixture(t *testing.T, start time.Time) *engineFixture {
	t.Helper()
	kv := storage.NewMemoryKV()
	return newEngineFixtureOn(t, kv, start)
}

func newEngineFixtureOn(t *testing.T, kv *storage.MemoryKV, start time.Time) *engineFixture {
	t.Helper()
	f := &engineFixture{
		kv:       kv,
		store:    &flakyStore{LedgerStore: storage.NewLedgerStore(kv, nil)},
		time:     newFakeTime(start),
		notifier: &recordingNotifier{},
	}
	f.engine = NewEngine(context.Background(), f.store, EngineOptions{
		Clock:    NewClockWithFunc(f.time.Now, time.UTC),
		Notifier: f.notifier,
	})
	return f
}

func TestNewEngineStartsUnsubmitted(t *testing.T) {
	f := newEngineFixture(t, at(1, 9, 0))
	e := f.engine

	assert.Equal(t, "2024-01-01", e.Date())
	assert.Equal(t, model.StatusUnsubmitted, e.Status())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, model.DefaultTaskList, e.TaskList())

	snap := e.Snapshot()
	assert.Equal(t, "Monday, January 1, 2024", snap.Readable)
	assert.Len(t, snap.Tasks, 6)
	assert.Nil(t, snap.Record)
}

func TestToggle(t *testing.T) {
	e := newEngineFixture(t, at(1, 9, 0)).engine

	assert.True(t, e.Toggle("DSA"))
	assert.True(t, e.Toggle("Workout"))
	assert.Equal(t, 2, e.Score())

	assert.True(t, e.Toggle("DSA"))
	assert.Equal(t, 1, e.Score())

	assert.False(t, e.Toggle("Knitting"), "unknown task is ignored")
	assert.Equal(t, 1, e.Score())
}

func TestManualSubmitRequiresProgress(t *testing.T) {
	f := newEngineFixture(t, at(1, 9, 0))

	_, err := f.engine.ManualSubmit(context.Background())
	assert.ErrorIs(t, err, ErrNothingCompleted)
	assert.Equal(t, model.StatusUnsubmitted, f.engine.Status())
	assert.Empty(t, f.store.LoadRecords(context.Background()))
}

func TestManualSubmitSeals(t *testing.T) {
	f := newEngineFixture(t, at(1, 21, 0))
	e := f.engine
	ctx := context.Background()
	e.Toggle("DSA")
	e.Toggle("Research")

	rec, err := e.ManualSubmit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", rec.Date)
	assert.Equal(t, 2, rec.DailyScore)
	assert.Equal(t, at(1, 21, 0).UnixMilli(), rec.Timestamp)
	assert.Equal(t, 1, rec.Tasks["DSA"])
	assert.Equal(t, 0, rec.Tasks["DevOps"])
	assert.Equal(t, model.StatusSealed, e.Status())

	stored := f.store.LoadRecords(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, rec, stored[0])

	// sealed days are read-only
	assert.False(t, e.Toggle("DevOps"))
	assert.Equal(t, 2, e.Score())
	_, err = e.ManualSubmit(ctx)
	assert.ErrorIs(t, err, ErrSealed)
	_, err = e.AutoSubmit(ctx)
	assert.ErrorIs(t, err, ErrSealed)
	assert.ErrorIs(t, e.BeginEdit(), ErrSealed)
	assert.Len(t, f.store.LoadRecords(ctx), 1)

	notes := f.notifier.All()
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationCelebration, notes[0].Kind)
	assert.Equal(t, 2, notes[0].Score)
	assert.False(t, notes[0].Auto)
}

func TestSealedRecordIsIsolatedFromLaterState(t *testing.T) {
	f := newEngineFixture(t, at(1, 21, 0))
	f.engine.Toggle("DSA")
	rec, err := f.engine.ManualSubmit(context.Background())
	require.NoError(t, err)

	rec.Tasks["DevOps"] = 1
	snap := f.engine.Snapshot()
	assert.Equal(t, 0, snap.Record.Tasks["DevOps"])
	snap.Record.Tasks["Workout"] = 1
	assert.Equal(t, 0, f.engine.Snapshot().Record.Tasks["Workout"])
}

func TestAutoSubmitSealsZero(t *testing.T) {
	f := newEngineFixture(t, at(1, 23, 59))

	rec, err := f.engine.AutoSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rec.DailyScore)
	assert.Equal(t, model.StatusSealed, f.engine.Status())
	assert.Empty(t, f.notifier.All(), "no celebration for an empty day")
}

func TestEditModeBlocksSubmitAndToggle(t *testing.T) {
	f := newEngineFixture(t, at(1, 9, 0))
	e := f.engine
	e.Toggle("DSA")
	require.NoError(t, e.BeginEdit())
	assert.True(t, e.Editing())

	assert.False(t, e.Toggle("DevOps"))
	_, err := e.ManualSubmit(context.Background())
	assert.ErrorIs(t, err, ErrEditing)

	e.EndEdit()
	assert.False(t, e.Editing())
	assert.Equal(t, model.StatusUnsubmitted, e.Status(), "leaving edit mode never seals")
	_, err = e.ManualSubmit(context.Background())
	assert.NoError(t, err)
}

func TestAutoSubmitOverridesEditMode(t *testing.T) {
	f := newEngineFixture(t, at(1, 23, 59))
	e := f.engine
	e.Toggle("DSA")
	require.NoError(t, e.BeginEdit())

	rec, err := e.AutoSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.DailyScore)
	assert.False(t, e.Editing())
}

func TestTaskListEditing(t *testing.T) {
	f := newEngineFixture(t, at(1, 9, 0))
	e := f.engine
	ctx := context.Background()

	assert.ErrorIs(t, e.AddTask(ctx, "Read"), ErrNotEditing)
	assert.ErrorIs(t, e.RemoveTask(ctx, "DSA"), ErrNotEditing)

	require.NoError(t, e.BeginEdit())
	assert.ErrorIs(t, e.AddTask(ctx, "Read"), model.ErrTaskLimit)

	require.NoError(t, e.RemoveTask(ctx, "Internship"))
	assert.ErrorIs(t, e.RemoveTask(ctx, "Internship"), model.ErrUnknownTask)
	assert.ErrorIs(t, e.AddTask(ctx, "   "), model.ErrEmptyTaskName)
	assert.ErrorIs(t, e.AddTask(ctx, "DSA"), model.ErrDuplicateTask)
	require.NoError(t, e.AddTask(ctx, "  Read  "))

	want := []string{"DSA", "DevOps", "Project", "Research", "Workout", "Read"}
	assert.Equal(t, want, e.TaskList())
	assert.Equal(t, want, f.store.LoadTaskList(ctx))

	for _, name := range []string{"Read", "Workout", "Research"} {
		require.NoError(t, e.RemoveTask(ctx, name))
	}
	assert.ErrorIs(t, e.RemoveTask(ctx, "DSA"), model.ErrTaskFloor)
	assert.Len(t, e.TaskList(), model.MinTasks)
}

func TestRemovedTaskDropsOutOfScore(t *testing.T) {
	f := newEngineFixture(t, at(1, 9, 0))
	e := f.engine
	ctx := context.Background()
	e.Toggle("Workout")
	e.Toggle("DSA")

	require.NoError(t, e.BeginEdit())
	require.NoError(t, e.RemoveTask(ctx, "Workout"))
	e.EndEdit()

	assert.Equal(t, 1, e.Score())
	rec, err := e.ManualSubmit(ctx)
	require.NoError(t, err)
	assert.NotContains(t, rec.Tasks, "Workout")
}

func TestWriteFailureKeepsDayOpen(t *testing.T) {
	f := newEngineFixture(t, at(1, 21, 0))
	e := f.engine
	ctx := context.Background()
	e.Toggle("DSA")

	f.store.setFailing(errors.New("quota exceeded"))
	_, err := e.ManualSubmit(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save to ledger")
	assert.Equal(t, model.StatusUnsubmitted, e.Status())
	assert.Equal(t, 1, e.Score(), "in-progress flags survive a failed write")
	assert.Empty(t, e.History())

	f.store.setFailing(nil)
	_, err = e.ManualSubmit(ctx)
	require.NoError(t, err)
	assert.Len(t, e.History(), 1)
}

func TestDuplicateDateAdoptsStoredRecord(t *testing.T) {
	kv := storage.NewMemoryKV()
	first := newEngineFixtureOn(t, kv, at(1, 20, 0))
	second := newEngineFixtureOn(t, kv, at(1, 20, 0))
	ctx := context.Background()

	first.engine.Toggle("DSA")
	first.engine.Toggle("DevOps")
	winner, err := first.engine.ManualSubmit(ctx)
	require.NoError(t, err)

	second.engine.Toggle("Workout")
	_, err = second.engine.ManualSubmit(ctx)
	assert.ErrorIs(t, err, storage.ErrDuplicateDate)

	snap := second.engine.Snapshot()
	assert.Equal(t, model.StatusSealed, snap.Status)
	require.NotNil(t, snap.Record)
	assert.Equal(t, winner, *snap.Record)
	assert.Equal(t, 2, snap.Score)
	assert.Len(t, first.store.LoadRecords(ctx), 1)
}

func TestEngineSeedsSealedDayFromLedger(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := storage.NewLedgerStore(kv, nil)
	ctx := context.Background()
	rec := model.NewDailyRecord("2024-01-01", model.TaskMap{"DSA": 1, "Project": 1}, at(1, 8, 0))
	require.NoError(t, store.SaveRecord(ctx, rec))

	f := newEngineFixtureOn(t, kv, at(1, 12, 0))
	assert.Equal(t, model.StatusSealed, f.engine.Status())
	assert.Equal(t, 2, f.engine.Score())
	assert.False(t, f.engine.Toggle("DevOps"))
}

func TestDayRollover(t *testing.T) {
	f := newEngineFixture(t, at(1, 22, 0))
	e := f.engine
	e.Toggle("DSA")
	_, err := e.ManualSubmit(context.Background())
	require.NoError(t, err)

	f.time.Set(at(2, 0, 5))
	assert.Equal(t, "2024-01-02", e.Date())
	assert.Equal(t, model.StatusUnsubmitted, e.Status())
	assert.Equal(t, 0, e.Score())
	assert.True(t, e.Toggle("DSA"))
	assert.Len(t, e.History(), 1)
}

func TestUnsealedDayIsAbandonedOnRollover(t *testing.T) {
	f := newEngineFixture(t, at(1, 22, 0))
	f.engine.Toggle("DSA")

	f.time.Set(at(3, 9, 0))
	assert.Equal(t, "2024-01-03", f.engine.Date())
	assert.Equal(t, 0, f.engine.Score())
	assert.Empty(t, f.engine.History())
}

func TestAutoSubmitPoll(t *testing.T) {
	f := newEngineFixture(t, at(1, 23, 0))
	e := f.engine
	e.Toggle("DSA")

	timers := NewTimers(context.Background())
	defer timers.Close()
	e.StartAutoSubmit(timers, 2*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, model.StatusUnsubmitted, e.Status(), "nothing happens before the cutoff")

	// the poll must see toggles made after it started
	e.Toggle("Project")
	f.time.Set(at(1, 23, 59))
	require.Eventually(t, func() bool {
		return e.Status() == model.StatusSealed
	}, time.Second, 2*time.Millisecond)

	rec := e.Snapshot().Record
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.DailyScore)

	notes := f.notifier.All()
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Auto)
}

func TestAutoSubmitPollSkipsSealedDay(t *testing.T) {
	f := newEngineFixture(t, at(1, 23, 58))
	e := f.engine
	e.Toggle("DSA")
	_, err := e.ManualSubmit(context.Background())
	require.NoError(t, err)

	timers := NewTimers(context.Background())
	defer timers.Close()
	e.StartAutoSubmit(timers, 2*time.Millisecond)

	f.time.Set(at(1, 23, 59))
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, f.store.LoadRecords(context.Background()), 1)
	assert.Len(t, f.notifier.All(), 1)
}

func TestStopAutoSubmit(t *testing.T) {
	f := newEngineFixture(t, at(1, 23, 0))
	timers := NewTimers(context.Background())
	f.engine.StartAutoSubmit(timers, 2*time.Millisecond)
	f.engine.StopAutoSubmit()
	timers.Close()

	f.time.Set(at(1, 23, 59))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, model.StatusUnsubmitted, f.engine.Status())
}

func TestEngineSeriesAndConsistency(t *testing.T) {
	f := newEngineFixture(t, at(1, 21, 0))
	e := f.engine
	ctx := context.Background()

	e.Toggle("DSA")
	_, err := e.ManualSubmit(ctx)
	require.NoError(t, err)

	f.time.Set(at(3, 21, 0))
	e.Toggle("DSA")
	e.Toggle("DevOps")
	_, err = e.ManualSubmit(ctx)
	require.NoError(t, err)

	series := e.Series()
	require.Len(t, series, 3)
	assert.Equal(t, []int{1, 0, 2}, []int{series[0].DailyScore, series[1].DailyScore, series[2].DailyScore})

	stats, days := e.Consistency()
	assert.Equal(t, 2, days)
	require.Len(t, stats, 6)
	assert.Equal(t, 100, stats[0].Percentage)
	assert.Equal(t, 50, stats[1].Percentage)
}

func TestEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	ft := newFakeTime(at(1, 21, 0))
	store := storage.NewLedgerStore(storage.NewMemoryKV(), nil)
	e := NewEngine(context.Background(), store, EngineOptions{
		Clock:   NewClockWithFunc(ft.Now, time.UTC),
		Metrics: metrics,
	})

	e.Toggle("DSA")
	e.Toggle("DevOps")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.toggles))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.score))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.tasks))

	_, err := e.ManualSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.submissions.WithLabelValues("manual", "sealed")))
}

func TestMidnightWatchRearmsPollForNextDay(t *testing.T) {
	f := newEngineFixture(t, time.Date(2024, 1, 1, 23, 59, 59, 700_000_000, time.UTC))
	e := f.engine
	ctx := context.Background()
	e.Toggle("DSA")
	_, err := e.ManualSubmit(ctx)
	require.NoError(t, err)

	timers := NewTimers(ctx)
	defer timers.Close()
	e.StartAutoSubmit(timers, 2*time.Millisecond)

	// nothing calls into the engine from here on; only its own timers run
	f.time.Set(at(2, 23, 59))
	require.Eventually(t, func() bool {
		return len(f.store.LoadRecords(ctx)) == 2
	}, 5*time.Second, 10*time.Millisecond)

	records := f.store.LoadRecords(ctx)
	assert.Equal(t, "2024-01-02", records[1].Date)
	assert.Equal(t, 0, records[1].DailyScore)
	assert.Len(t, f.notifier.All(), 1, "an empty auto-sealed day is not celebrated")
}
