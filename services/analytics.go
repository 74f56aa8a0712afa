package services

import (
	"math"

	"dailyledger/model"
)

// StrongConsistency is the percentage from which a task counts as a habit.
const StrongConsistency = 80

type TaskConsistency struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
	Strong     bool   `json:"strong"`
}

// Consistency computes, for every current task, the share of recorded days
// on which it was completed. Tasks missing from older records count as 0.
// It returns nil for an empty ledger.
func Consistency(records []model.DailyRecord, tasks []string) []TaskConsistency {
	total := len(records)
	if total == 0 {
		return nil
	}

	stats := make([]TaskConsistency, 0, len(tasks))
	for _, task := range tasks {
		count := 0
		for _, r := range records {
			count += r.Tasks.Get(task)
		}
		pct := int(math.Round(float64(count) / float64(total) * 100))
		stats = append(stats, TaskConsistency{
			Name:       task,
			Count:      count,
			Percentage: pct,
			Strong:     pct >= StrongConsistency,
		})
	}
	return stats
}
