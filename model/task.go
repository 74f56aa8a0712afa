package model

import (
	"errors"
	"strings"
)

const (
	MinTasks = 3
	MaxTasks = 6
)

var (
	ErrEmptyTaskName = errors.New("task name is required")
	ErrDuplicateTask = errors.New("task already exists")
	ErrTaskLimit     = errors.New("maximum 6 tasks allowed to maintain focus")
	ErrTaskFloor     = errors.New("you must maintain at least 3 tasks to keep the system rigorous")
	ErrUnknownTask   = errors.New("task not found")
)

// DefaultTaskList is used whenever no valid task list has been stored yet.
var DefaultTaskList = []string{"DSA", "DevOps", "Project", "Internship", "Research", "Workout"}

// DefaultTasks returns a fresh copy of DefaultTaskList.
func DefaultTasks() []string {
	return append([]string(nil), DefaultTaskList...)
}

// NormalizeTaskName trims surrounding whitespace. Names are otherwise case-sensitive.
func NormalizeTaskName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateTaskList checks the 3..6 band, empty names and duplicates.
func ValidateTaskList(tasks []string) error {
	if len(tasks) < MinTasks {
		return ErrTaskFloor
	}
	if len(tasks) > MaxTasks {
		return ErrTaskLimit
	}
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if NormalizeTaskName(t) == "" {
			return ErrEmptyTaskName
		}
		if _, ok := seen[t]; ok {
			return ErrDuplicateTask
		}
		seen[t] = struct{}{}
	}
	return nil
}

func ContainsTask(tasks []string, name string) bool {
	for _, t := range tasks {
		if t == name {
			return true
		}
	}
	return false
}
