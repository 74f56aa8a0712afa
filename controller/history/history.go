package history

import (
	"net/http"

	"dailyledger/dto"
	"dailyledger/services"

	"github.com/gin-gonic/gin"
)

func HistoryController(routes *gin.RouterGroup, engine *services.Engine) {
	history := routes.Group("/history")
	{
		history.GET("", func(c *gin.Context) {
			GetHistory(c, engine)
		})
		history.GET("/series", func(c *gin.Context) {
			GetSeries(c, engine)
		})
		history.GET("/consistency", func(c *gin.Context) {
			GetConsistency(c, engine)
		})
	}
}

func GetHistory(c *gin.Context, engine *services.Engine) {
	c.JSON(http.StatusOK, dto.HistoryResponse{Records: engine.History()})
}

func GetSeries(c *gin.Context, engine *services.Engine) {
	history := engine.History()
	series := services.FillGaps(history, engine.Location())
	c.JSON(http.StatusOK, dto.NewSeriesResponse(series, history))
}

func GetConsistency(c *gin.Context, engine *services.Engine) {
	stats, days := engine.Consistency()
	if stats == nil {
		stats = []services.TaskConsistency{}
	}
	c.JSON(http.StatusOK, dto.ConsistencyResponse{
		TotalDays: days,
		Tasks:     stats,
	})
}
