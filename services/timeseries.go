package services

import (
	"log/slog"
	"time"

	"dailyledger/model"
)

// FillGaps turns a sparse ledger into one entry per calendar day between the
// first and last recorded dates. Skipped days become zero-score placeholders
// so a chart drops to zero instead of drawing a line across them.
func FillGaps(records []model.DailyRecord, loc *time.Location) []model.DailyRecord {
	if loc == nil {
		loc = time.Local
	}

	byDate := make(map[string]model.DailyRecord, len(records))
	var first, last time.Time
	for _, r := range records {
		day, err := time.ParseInLocation(model.DateLayout, r.Date, loc)
		if err != nil {
			slog.Warn("skipping record with invalid date", "date", r.Date, "error", err)
			continue
		}
		if _, dup := byDate[r.Date]; dup {
			continue
		}
		byDate[r.Date] = r
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}
	if len(byDate) == 0 {
		return []model.DailyRecord{}
	}

	filled := make([]model.DailyRecord, 0, len(byDate))
	for day := first; !day.After(last); day = nextDay(day, loc) {
		iso := day.Format(model.DateLayout)
		if r, ok := byDate[iso]; ok {
			filled = append(filled, r)
			continue
		}
		filled = append(filled, model.DailyRecord{
			Date:       iso,
			Tasks:      model.TaskMap{},
			DailyScore: 0,
			Timestamp:  day.UnixMilli(),
		})
	}
	return filled
}

// nextDay steps by calendar day, so DST transitions never skip or repeat a date.
func nextDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
