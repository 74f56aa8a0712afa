package dto

import (
	"dailyledger/model"
	"dailyledger/services"
)

type TaskState struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

type DayResponse struct {
	Date     string             `json:"date"`
	Readable string             `json:"readable"`
	Status   model.DayStatus    `json:"status"`
	Editing  bool               `json:"editing"`
	Score    int                `json:"score"`
	Tasks    []TaskState        `json:"tasks"`
	Record   *model.DailyRecord `json:"record,omitempty"`
}

func NewDayResponse(s services.DaySnapshot) DayResponse {
	resp := DayResponse{
		Date:     s.Date,
		Readable: s.Readable,
		Status:   s.Status,
		Editing:  s.Editing,
		Score:    s.Score,
		Tasks:    make([]TaskState, 0, len(s.Tasks)),
		Record:   s.Record,
	}
	for _, t := range s.Tasks {
		resp.Tasks = append(resp.Tasks, TaskState{Name: t.Name, Done: t.Done})
	}
	return resp
}

type ViewResponse struct {
	ChartReady bool `json:"chartReady"`
}
