package services

import (
	"testing"

	"dailyledger/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistencyEmptyLedger(t *testing.T) {
	assert.Nil(t, Consistency(nil, model.DefaultTasks()))
}

func TestConsistencySingleRecord(t *testing.T) {
	records := []model.DailyRecord{
		{Date: "2024-01-01", Tasks: model.TaskMap{"DSA": 1, "DevOps": 0}, DailyScore: 1},
	}
	stats := Consistency(records, []string{"DSA", "DevOps", "Workout"})
	require.Len(t, stats, 3)

	assert.Equal(t, TaskConsistency{Name: "DSA", Count: 1, Percentage: 100, Strong: true}, stats[0])
	assert.Equal(t, 0, stats[1].Percentage)
	assert.Equal(t, 0, stats[2].Count, "tasks missing from a record count as not done")
}

func TestConsistencyRounding(t *testing.T) {
	records := []model.DailyRecord{
		{Date: "2024-01-01", Tasks: model.TaskMap{"A": 1, "B": 1}, DailyScore: 2},
		{Date: "2024-01-02", Tasks: model.TaskMap{"A": 1}, DailyScore: 1},
		{Date: "2024-01-03", Tasks: model.TaskMap{"B": 1}, DailyScore: 1},
	}
	stats := Consistency(records, []string{"A", "B", "C"})
	require.Len(t, stats, 3)

	assert.Equal(t, 67, stats[0].Percentage)
	assert.False(t, stats[0].Strong)
	assert.Equal(t, 67, stats[1].Percentage)
	assert.Equal(t, 0, stats[2].Percentage)
}

func TestConsistencyStrongThreshold(t *testing.T) {
	var records []model.DailyRecord
	for i, done := range []int{1, 1, 1, 1, 0} {
		records = append(records, model.DailyRecord{
			Date:  []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}[i],
			Tasks: model.TaskMap{"A": done},
		})
	}
	stats := Consistency(records, []string{"A"})
	require.Len(t, stats, 1)
	assert.Equal(t, 80, stats[0].Percentage)
	assert.True(t, stats[0].Strong)
}
