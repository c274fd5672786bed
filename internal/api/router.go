package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/nkyriakou/themis/internal/app"
	iauth "github.com/nkyriakou/themis/internal/auth"
	"github.com/nkyriakou/themis/internal/handlers"
	"github.com/nkyriakou/themis/internal/middleware"
	"github.com/nkyriakou/themis/internal/notify"
	"github.com/nkyriakou/themis/internal/realtime"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, notifications *notify.Service, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}

	notificationHandler, err := handlers.NewNotificationHandler(notifications, hub, jwt)
	if err != nil {
		return nil, err
	}

	// The websocket endpoint authenticates via token query parameter inside
	// the handler, so it sits outside the Auth middleware.
	r.GET("/api/notifications/stream", notificationHandler.Stream)

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	registerNotificationRoutes(api, notificationHandler)

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
