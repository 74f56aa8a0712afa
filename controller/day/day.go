package day

import (
	"net/http"

	"dailyledger/controller"
	"dailyledger/dto"
	"dailyledger/services"

	"github.com/gin-gonic/gin"
)

func DayController(routes *gin.RouterGroup, engine *services.Engine) {
	day := routes.Group("/day")
	{
		day.GET("", func(c *gin.Context) {
			GetDay(c, engine)
		})
		day.POST("/toggle", func(c *gin.Context) {
			ToggleTask(c, engine)
		})
		day.POST("/submit", func(c *gin.Context) {
			SubmitDay(c, engine)
		})
		day.POST("/edit", func(c *gin.Context) {
			SetEditMode(c, engine)
		})
	}
}

func GetDay(c *gin.Context, engine *services.Engine) {
	c.JSON(http.StatusOK, dto.NewDayResponse(engine.Snapshot()))
}

// ToggleTask is accepted even when ignored; the response carries the
// resulting state and whether the flag changed.
func ToggleTask(c *gin.Context, engine *services.Engine) {
	var req dto.ToggleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	applied := engine.Toggle(req.TaskName)
	c.JSON(http.StatusOK, gin.H{
		"applied": applied,
		"day":     dto.NewDayResponse(engine.Snapshot()),
	})
}

func SubmitDay(c *gin.Context, engine *services.Engine) {
	record, err := engine.ManualSubmit(c.Request.Context())
	if err != nil {
		controller.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Day sealed",
		"record":  record,
	})
}

func SetEditMode(c *gin.Context, engine *services.Engine) {
	var req dto.EditModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if *req.Editing {
		if err := engine.BeginEdit(); err != nil {
			controller.WriteError(c, err)
			return
		}
	} else {
		engine.EndEdit()
	}
	c.JSON(http.StatusOK, dto.NewDayResponse(engine.Snapshot()))
}
