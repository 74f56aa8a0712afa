package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD form of a ledger date.
const DateLayout = "2006-01-02"

var ErrInvalidRecord = errors.New("invalid daily record")

// TaskMap maps task names to completion flags. A missing key reads as 0.
type TaskMap map[string]int

// Get returns the flag for name, or 0 when the task is absent.
func (m TaskMap) Get(name string) int {
	if m == nil {
		return 0
	}
	if m[name] == 1 {
		return 1
	}
	return 0
}

// Sum counts the completed entries.
func (m TaskMap) Sum() int {
	total := 0
	for name := range m {
		total += m.Get(name)
	}
	return total
}

func (m TaskMap) Clone() TaskMap {
	out := make(TaskMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NewTaskMap returns an all-zero map for the given task list.
func NewTaskMap(tasks []string) TaskMap {
	m := make(TaskMap, len(tasks))
	for _, t := range tasks {
		m[t] = 0
	}
	return m
}

// DailyRecord is one sealed calendar day.
type DailyRecord struct {
	Date       string  `json:"date" firestore:"date"`
	Tasks      TaskMap `json:"tasks" firestore:"tasks"`
	DailyScore int     `json:"dailyScore" firestore:"dailyScore"`
	Timestamp  int64   `json:"timestamp" firestore:"timestamp"`
}

// NewDailyRecord seals a copy of tasks for date. The score is derived here and never again.
func NewDailyRecord(date string, tasks TaskMap, at time.Time) DailyRecord {
	sealed := make(TaskMap, len(tasks))
	for k := range tasks {
		sealed[k] = tasks.Get(k)
	}
	return DailyRecord{
		Date:       date,
		Tasks:      sealed,
		DailyScore: sealed.Sum(),
		Timestamp:  at.UnixMilli(),
	}
}

// Validate checks the date form, the 0/1 flags and the score/flag agreement.
func (r DailyRecord) Validate() error {
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRecord, r.Date)
	}
	for name, v := range r.Tasks {
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: task %q has flag %d", ErrInvalidRecord, name, v)
		}
	}
	if r.DailyScore != r.Tasks.Sum() {
		return fmt.Errorf("%w: score %d does not match %d completed tasks", ErrInvalidRecord, r.DailyScore, r.Tasks.Sum())
	}
	return nil
}

// SortRecords orders records ascending by date in place.
func SortRecords(records []DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
}

// FindRecord returns the record for date, if any.
func FindRecord(records []DailyRecord, date string) (DailyRecord, bool) {
	for _, r := range records {
		if r.Date == date {
			return r, true
		}
	}
	return DailyRecord{}, false
}
