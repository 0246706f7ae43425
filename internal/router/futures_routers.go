package router

import (
	"github.com/gin-gonic/gin"

	"github.com/nctrnlman/api-crypto/internal/handler"
)

func registerFuturesRoutes(router *gin.Engine, futuresHandler *handler.FuturesHandler) {
	router.GET("/getFuturesData", futuresHandler.GetFuturesData)
	router.POST("/saveFuturesData", futuresHandler.SaveFuturesData)
	router.GET("/stats", futuresHandler.GetStats)
}
