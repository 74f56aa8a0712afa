package events

import (
	"io"
	"net/http"

	"dailyledger/dto"
	"dailyledger/services"

	"github.com/gin-gonic/gin"
)

const subscriberBuffer = 8

func EventsController(routes *gin.RouterGroup, broadcaster *services.Broadcaster, view *services.View) {
	routes.GET("/events", func(c *gin.Context) {
		StreamEvents(c, broadcaster)
	})
	routes.GET("/view", func(c *gin.Context) {
		GetView(c, view)
	})
}

// StreamEvents pushes engine notifications as server-sent events until the
// client goes away or the server shuts down. Headers are flushed up front so
// clients see the stream open before the first notification.
func StreamEvents(c *gin.Context, broadcaster *services.Broadcaster) {
	ch, cancel := broadcaster.Subscribe(subscriberBuffer)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case n, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(n.Kind), n)
			return true
		}
	})
}

func GetView(c *gin.Context, view *services.View) {
	c.JSON(http.StatusOK, dto.ViewResponse{ChartReady: view.ChartReady()})
}
