package leasing

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	if public != nil {
		players := public.Group("/players")
		players.GET("", h.List)
		players.GET("/available", h.ListAvailable)
		players.GET("/:id", h.Get)
	}

	if protected != nil {
		players := protected.Group("/players")
		players.POST("", h.Create)
		players.PUT("/:id", h.Update)
		players.DELETE("/:id", adminOnly, h.Delete)
		players.POST("/:id/hire", h.Hire)
		players.POST("/:id/return", h.Return)
		players.POST("/:id/rate", h.Rate)
	}
}
