package task

import (
	"net/http"
	"strings"

	"dailyledger/controller"
	"dailyledger/dto"
	"dailyledger/services"

	"github.com/gin-gonic/gin"
)

func TaskController(routes *gin.RouterGroup, engine *services.Engine) {
	tasks := routes.Group("/tasks")
	{
		tasks.GET("", func(c *gin.Context) {
			ListTasks(c, engine)
		})
		tasks.POST("", func(c *gin.Context) {
			CreateTask(c, engine)
		})
		// catch-all so names containing "/" stay deletable
		tasks.DELETE("/*name", func(c *gin.Context) {
			DeleteTask(c, engine)
		})
	}
}

func ListTasks(c *gin.Context, engine *services.Engine) {
	c.JSON(http.StatusOK, dto.TaskListResponse{Tasks: engine.TaskList()})
}

func CreateTask(c *gin.Context, engine *services.Engine) {
	var taskReq dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&taskReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := engine.AddTask(c.Request.Context(), taskReq.TaskName); err != nil {
		controller.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TaskListResponse{Tasks: engine.TaskList()})
}

func DeleteTask(c *gin.Context, engine *services.Engine) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	if err := engine.RemoveTask(c.Request.Context(), name); err != nil {
		controller.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{Tasks: engine.TaskList()})
}
