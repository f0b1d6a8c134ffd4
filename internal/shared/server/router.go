package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitchdeck-backend/internal/shared/config"
	"pitchdeck-backend/internal/shared/metrics"
	"pitchdeck-backend/internal/shared/server/middleware"
	"pitchdeck-backend/internal/shared/server/respond"
)

// RouteRegistrar is implemented by domain handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// LegacyRouteRegistrar is implemented by handlers that also serve the unversioned routes.
type LegacyRouteRegistrar interface {
	RegisterLegacyRoutes(r gin.IRoutes)
}

// RouterDeps carries the handlers mounted on the engine.
type RouterDeps struct {
	Config   config.Config
	Handlers []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	for _, h := range deps.Handlers {
		if h == nil {
			continue
		}
		h.RegisterRoutes(api)
		if legacy, ok := h.(LegacyRouteRegistrar); ok {
			legacy.RegisterLegacyRoutes(r)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
