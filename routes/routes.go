package routes

import (
	"net/http"

	"github.com/Cleem224/cleem-backend-sub001/controllers"
	"github.com/Cleem224/cleem-backend-sub001/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRouter(fc *controllers.FoodController, rc *controllers.RealtimeController, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	food := r.Group("/food")
	{
		food.POST("/recognize", fc.Recognize)
		food.GET("/search", fc.Search)
		food.GET("/history", fc.History)
	}

	ws := r.Group("/ws")
	{
		ws.GET("/progress", rc.ProgressWS)
	}

	return r
}
