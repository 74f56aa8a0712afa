package dto

type CreateTaskRequest struct {
	TaskName string `json:"taskname" binding:"required"`
}

type ToggleTaskRequest struct {
	TaskName string `json:"taskname" binding:"required"`
}

type EditModeRequest struct {
	Editing *bool `json:"editing" binding:"required"`
}

type TaskListResponse struct {
	Tasks []string `json:"tasks"`
}
