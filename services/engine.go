package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dailyledger/model"
	"dailyledger/storage"

	"github.com/google/uuid"
)

var (
	ErrSealed           = errors.New("today is already sealed")
	ErrEditing          = errors.New("please finish editing tasks before submitting")
	ErrNotEditing       = errors.New("task list can only be changed in edit mode")
	ErrNothingCompleted = errors.New("complete at least 1 task")
)

// DefaultPollInterval is how often the auto-submit poll checks the wall clock.
const DefaultPollInterval = 10 * time.Second

// LedgerStore is the storage port the engine persists through.
type LedgerStore interface {
	LoadRecords(ctx context.Context) []model.DailyRecord
	SaveRecord(ctx context.Context, record model.DailyRecord) error
	LoadTaskList(ctx context.Context) []string
	SaveTaskList(ctx context.Context, tasks []string) error
}

type EngineOptions struct {
	Clock    *Clock
	Notifier Notifier
	Metrics  *Metrics
	Logger   *slog.Logger
}

// Engine is the state machine for today's record: UNSUBMITTED until it is
// sealed into the ledger, SEALED afterwards. All methods are safe for
// concurrent use; they serialise on one lock.
type Engine struct {
	store    LedgerStore
	clock    *Clock
	notifier Notifier
	metrics  *Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	date    string
	tasks   []string
	day     model.TaskMap
	record  *model.DailyRecord
	editing bool
	history []model.DailyRecord

	timers   *Timers
	interval time.Duration
	polling  bool
	watching bool
}

// NewEngine loads the ledger and task list and prepares today's state.
func NewEngine(ctx context.Context, store LedgerStore, opts EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = NewClock(time.Local)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{
		store:    store,
		clock:    opts.Clock,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", "engine"),
	}
	e.history = store.LoadRecords(ctx)
	e.tasks = store.LoadTaskList(ctx)

	e.mu.Lock()
	e.resetDayLocked(e.clock.Today())
	e.mu.Unlock()
	return e
}

// resetDayLocked seeds the in-progress state for date, read-only when the
// ledger already holds a record for it.
func (e *Engine) resetDayLocked(date string) {
	e.date = date
	e.editing = false
	if rec, ok := model.FindRecord(e.history, date); ok {
		e.record = &rec
		e.day = rec.Tasks.Clone()
	} else {
		e.record = nil
		e.day = model.NewTaskMap(e.tasks)
	}
	e.metrics.observe(e.scoreLocked(), len(e.tasks))
	e.scheduleLocked()
}

// refreshLocked rolls the engine over when the calendar day has changed.
func (e *Engine) refreshLocked() {
	today := e.clock.Today()
	if today == e.date {
		return
	}
	e.logger.Info("day rolled over", "from", e.date, "to", today, "sealed", e.record != nil)
	e.resetDayLocked(today)
}

func (e *Engine) scoreLocked() int {
	if e.record != nil {
		return e.record.DailyScore
	}
	return e.day.Sum()
}

func (e *Engine) Date() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
	return e.date
}

func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
	return e.scoreLocked()
}

func (e *Engine) Status() model.DayStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
	if e.record != nil {
		return model.StatusSealed
	}
	return model.StatusUnsubmitted
}

// Toggle flips a task for today. It is ignored (false) when the day is
// sealed, the task list is being edited, or the task is unknown.
func (e *Engine) Toggle(task string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	if e.record != nil || e.editing || !model.ContainsTask(e.tasks, task) {
		return false
	}
	e.day[task] = 1 - e.day.Get(task)
	e.metrics.toggled()
	e.metrics.observe(e.scoreLocked(), len(e.tasks))
	return true
}

// ManualSubmit seals today. At least one task must be complete.
func (e *Engine) ManualSubmit(ctx context.Context) (model.DailyRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	switch {
	case e.record != nil:
		return model.DailyRecord{}, ErrSealed
	case e.editing:
		return model.DailyRecord{}, ErrEditing
	case e.scoreLocked() < 1:
		return model.DailyRecord{}, ErrNothingCompleted
	}
	return e.sealLocked(ctx, false)
}

// AutoSubmit seals today with whatever is complete, zero included.
func (e *Engine) AutoSubmit(ctx context.Context) (model.DailyRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	if e.record != nil {
		return model.DailyRecord{}, ErrSealed
	}
	return e.sealLocked(ctx, true)
}

func (e *Engine) sealLocked(ctx context.Context, auto bool) (model.DailyRecord, error) {
	rec := model.NewDailyRecord(e.date, e.day, e.clock.Now())

	err := e.store.SaveRecord(ctx, rec)
	e.metrics.submission(auto, err)
	if errors.Is(err, storage.ErrDuplicateDate) {
		// someone else sealed this date first; the ledger wins
		e.history = e.store.LoadRecords(ctx)
		if stored, ok := model.FindRecord(e.history, e.date); ok {
			e.record = &stored
			e.day = stored.Tasks.Clone()
			e.editing = false
		}
		return model.DailyRecord{}, err
	}
	if err != nil {
		return model.DailyRecord{}, fmt.Errorf("failed to save to ledger: %w", err)
	}

	e.history = append(e.history, rec)
	model.SortRecords(e.history)
	e.record = &rec
	e.editing = false
	e.logger.Info("day sealed", "date", rec.Date, "score", rec.DailyScore, "auto", auto)

	if rec.DailyScore > 0 && e.notifier != nil {
		e.notifier.Notify(model.Notification{
			NotificationID: uuid.New().String(),
			Kind:           model.NotificationCelebration,
			Date:           rec.Date,
			Score:          rec.DailyScore,
			Auto:           auto,
			CreatedAt:      e.clock.Now(),
		})
	}
	out := rec
	out.Tasks = rec.Tasks.Clone()
	return out, nil
}

// BeginEdit enters task list edit mode. A sealed day cannot be edited.
func (e *Engine) BeginEdit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	if e.record != nil {
		return ErrSealed
	}
	e.editing = true
	return nil
}

// EndEdit leaves edit mode without scoring or sealing anything.
func (e *Engine) EndEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = false
}

func (e *Engine) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
	return e.editing
}

func (e *Engine) AddTask(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	if err := e.editableLocked(); err != nil {
		return err
	}
	name = model.NormalizeTaskName(name)
	switch {
	case name == "":
		return model.ErrEmptyTaskName
	case len(e.tasks) >= model.MaxTasks:
		return model.ErrTaskLimit
	case model.ContainsTask(e.tasks, name):
		return model.ErrDuplicateTask
	}

	next := append(append([]string(nil), e.tasks...), name)
	if err := e.store.SaveTaskList(ctx, next); err != nil {
		return fmt.Errorf("failed to save task list: %w", err)
	}
	e.tasks = next
	e.day[name] = 0
	e.metrics.observe(e.scoreLocked(), len(e.tasks))
	return nil
}

func (e *Engine) RemoveTask(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	if err := e.editableLocked(); err != nil {
		return err
	}
	if len(e.tasks) <= model.MinTasks {
		return model.ErrTaskFloor
	}
	if !model.ContainsTask(e.tasks, name) {
		return model.ErrUnknownTask
	}

	next := make([]string, 0, len(e.tasks)-1)
	for _, t := range e.tasks {
		if t != name {
			next = append(next, t)
		}
	}
	if err := e.store.SaveTaskList(ctx, next); err != nil {
		return fmt.Errorf("failed to save task list: %w", err)
	}
	e.tasks = next
	delete(e.day, name)
	e.metrics.observe(e.scoreLocked(), len(e.tasks))
	return nil
}

func (e *Engine) editableLocked() error {
	if e.record != nil {
		return ErrSealed
	}
	if !e.editing {
		return ErrNotEditing
	}
	return nil
}

type TaskFlag struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// DaySnapshot is a read-only copy of today's state.
type DaySnapshot struct {
	Date     string
	Readable string
	Status   model.DayStatus
	Editing  bool
	Score    int
	Tasks    []TaskFlag
	Record   *model.DailyRecord
}

func (e *Engine) Snapshot() DaySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	readable, _ := e.clock.FormatReadable(e.date)
	snap := DaySnapshot{
		Date:     e.date,
		Readable: readable,
		Status:   model.StatusUnsubmitted,
		Editing:  e.editing,
		Score:    e.scoreLocked(),
		Tasks:    make([]TaskFlag, 0, len(e.tasks)),
	}
	for _, t := range e.tasks {
		snap.Tasks = append(snap.Tasks, TaskFlag{Name: t, Done: e.day.Get(t) == 1})
	}
	if e.record != nil {
		rec := *e.record
		rec.Tasks = e.record.Tasks.Clone()
		snap.Status = model.StatusSealed
		snap.Record = &rec
	}
	return snap
}

func (e *Engine) TaskList() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.tasks...)
}

// History returns a copy of the ledger ascending by date.
func (e *Engine) History() []model.DailyRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.DailyRecord, len(e.history))
	for i, r := range e.history {
		r.Tasks = r.Tasks.Clone()
		out[i] = r
	}
	return out
}

// Series is the gap-filled history for charting.
func (e *Engine) Series() []model.DailyRecord {
	return FillGaps(e.History(), e.clock.Location())
}

func (e *Engine) Location() *time.Location {
	return e.clock.Location()
}

// Consistency returns per-task stats together with the number of days they
// were computed over, both taken under one lock.
func (e *Engine) Consistency() ([]TaskConsistency, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Consistency(e.history, e.tasks), len(e.history)
}

// StartAutoSubmit binds the auto-submit poll to timers. The poll runs while
// today is unsubmitted and is re-armed after midnight for the next day.
func (e *Engine) StartAutoSubmit(timers *Timers, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.timers = timers
	e.interval = interval
	e.polling = false
	e.watching = false
	e.scheduleLocked()
}

// StopAutoSubmit detaches the engine from its timers. Closing the timers
// themselves is the owner's job.
func (e *Engine) StopAutoSubmit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timers = nil
	e.polling = false
	e.watching = false
}

func (e *Engine) scheduleLocked() {
	if e.timers == nil {
		return
	}
	if e.record == nil {
		if !e.polling {
			e.polling = e.timers.Every(e.interval, e.pollTick)
		}
		return
	}
	if !e.watching {
		e.watching = e.timers.After(e.clock.UntilNextDay()+time.Second, e.midnightTick)
	}
}

// pollTick reads the live state on every tick; it never works on a copy.
func (e *Engine) pollTick(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	if e.record == nil && e.clock.AutoSubmitDue(e.clock.Now()) {
		if _, err := e.sealLocked(ctx, true); err != nil {
			e.logger.Error("auto-submit failed", "date", e.date, "error", err)
		}
	}
	if e.record != nil {
		e.polling = false
		e.scheduleLocked()
		return false
	}
	return true
}

func (e *Engine) midnightTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.watching = false
	e.refreshLocked()
	e.scheduleLocked()
}
