package dto

import (
	"dailyledger/model"
	"dailyledger/services"
)

type HistoryResponse struct {
	Records []model.DailyRecord `json:"records"`
}

type SeriesPoint struct {
	Date        string `json:"date"`
	DailyScore  int    `json:"dailyScore"`
	Timestamp   int64  `json:"timestamp"`
	Placeholder bool   `json:"placeholder"`
}

type SeriesResponse struct {
	Points []SeriesPoint `json:"points"`
}

// NewSeriesResponse flags placeholder days by their absence from the ledger.
func NewSeriesResponse(series, history []model.DailyRecord) SeriesResponse {
	recorded := make(map[string]struct{}, len(history))
	for _, r := range history {
		recorded[r.Date] = struct{}{}
	}
	points := make([]SeriesPoint, 0, len(series))
	for _, r := range series {
		_, real := recorded[r.Date]
		points = append(points, SeriesPoint{
			Date:        r.Date,
			DailyScore:  r.DailyScore,
			Timestamp:   r.Timestamp,
			Placeholder: !real,
		})
	}
	return SeriesResponse{Points: points}
}

type ConsistencyResponse struct {
	TotalDays int                        `json:"totalDays"`
	Tasks     []services.TaskConsistency `json:"tasks"`
}
