package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nctrnlman/api-crypto/internal/handler"
)

type Config struct {
	FuturesHandler *handler.FuturesHandler
}

// NewRouter builds the gin engine with an open CORS policy. The endpoint
// paths are part of the external contract, so routes sit at the root with no
// version prefix.
func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	registerFuturesRoutes(router, cfg.FuturesHandler)

	return router
}
