package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"staymap/internal/api/handlers"
	"staymap/internal/api/middleware"
)

type Router struct {
	queryHandler *handlers.QueryHandler
	logger       *slog.Logger
}

func NewRouter(queryHandler *handlers.QueryHandler, logger *slog.Logger) *Router {
	return &Router{
		queryHandler: queryHandler,
		logger:       logger,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(r.logger))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	{
		api.GET("/listings", r.queryHandler.ListListings)
		api.GET("/search_rectangle", r.queryHandler.SearchRectangle)
		api.GET("/nearest_higher/:id", r.queryHandler.NearestHigher)
	}
}
