package main

import (
	"net/http"

	"playerhire/internal/middleware"
	"playerhire/internal/modules/availability"
	"playerhire/internal/modules/leasing"
	jwtsvc "playerhire/internal/pkg/jwt"
	"playerhire/internal/pkg/metrics"
	"playerhire/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type routerDeps struct {
	log            *zap.SugaredLogger
	jwt            *jwtsvc.Service
	metrics        *metrics.Leasing
	leasing        *leasing.Handler
	availability   *availability.Handler
	allowedOrigins []string
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorLogger(d.log))
	r.Use(middleware.RequestMetrics(d.metrics))
	r.Use(middleware.CORS(d.allowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		// public
		d.availability.RegisterRoutes(v1)

		// protected
		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.jwt))

		d.leasing.RegisterRoutes(v1, protected, middleware.AdminOnly())
	}

	return r
}
