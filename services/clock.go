package services

import (
	"fmt"
	"time"

	"dailyledger/model"
)

const readableLayout = "Monday, January 2, 2006"

// Clock is the single authority for "what day is it".
type Clock struct {
	now          func() time.Time
	loc          *time.Location
	cutoffHour   int
	cutoffMinute int
}

func NewClock(loc *time.Location) *Clock {
	return NewClockWithFunc(time.Now, loc)
}

// NewClockWithFunc builds a clock over an injectable time source.
func NewClockWithFunc(now func() time.Time, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{now: now, loc: loc, cutoffHour: 23, cutoffMinute: 59}
}

// WithAutoSubmitAt moves the auto-submit cutoff away from 23:59.
func (c *Clock) WithAutoSubmitAt(hour, minute int) *Clock {
	c.cutoffHour, c.cutoffMinute = hour, minute
	return c
}

func (c *Clock) Location() *time.Location { return c.loc }

func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// Today returns the local calendar date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format(model.DateLayout)
}

func (c *Clock) ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// DayStart is local midnight of date.
func (c *Clock) DayStart(date string) (time.Time, error) {
	return c.ParseDate(date)
}

// FormatReadable renders date as e.g. "Monday, January 1, 2024".
func (c *Clock) FormatReadable(date string) (string, error) {
	t, err := c.ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format(readableLayout), nil
}

// AutoSubmitDue reports whether now has reached the cutoff of its own day.
func (c *Clock) AutoSubmitDue(now time.Time) bool {
	now = now.In(c.loc)
	if now.Hour() != c.cutoffHour {
		return now.Hour() > c.cutoffHour
	}
	return now.Minute() >= c.cutoffMinute
}

// UntilNextDay is the time left before local midnight.
func (c *Clock) UntilNextDay() time.Duration {
	now := c.Now()
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
	return next.Sub(now)
}

// ParseCutoff parses an "HH:MM" auto-submit time.
func ParseCutoff(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cutoff %q, want HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
