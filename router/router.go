package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/config"
	"github.com/yeremiapane/restaurant-console/controllers"
	"github.com/yeremiapane/restaurant-console/hub"
	"github.com/yeremiapane/restaurant-console/middlewares"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/store"
)

// SetupRouter wires the console routes. Every session's reservation store forwards its events
// to h, where that session's live views are connected.
func SetupRouter(cfg *config.Config, h *hub.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	client := services.NewClient(services.ClientConfig{
		BaseURL:  cfg.API.BaseURL,
		BasePath: cfg.API.BasePath,
		Timeout:  cfg.API.Timeout,
	})
	registry := store.NewRegistry(h.Attach)

	// Inisialisasi controller
	authCtrl := controllers.NewAuthController(client, registry, cfg.FrontendURL)
	reservationCtrl := controllers.NewReservationController(client, registry, cfg.PageSize)
	logCtrl := controllers.NewActivityLogController(client, cfg.PageSize)
	orderCtrl := controllers.NewOrderController(client, cfg.PageSize)
	liveCtrl := controllers.NewLiveController(client, registry, h, cfg.CORSOrigin)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	console := r.Group("/console")
	console.Use(middlewares.NewRateLimiter(300, time.Minute).RateLimit())
	console.Use(middlewares.SessionMiddleware())

	// Rate limiter untuk login
	login := console.Group("/")
	login.Use(middlewares.NewStrictRateLimiter(12*time.Second, 5))
	{
		login.POST("/login", authCtrl.Login)
		login.POST("/forgot-password", authCtrl.ForgotPassword)
	}

	console.POST("/logout", authCtrl.Logout)
	console.GET("/bootstrap-status", authCtrl.BootstrapStatus)
	console.POST("/bootstrap-admin", authCtrl.BootstrapAdmin)
	console.POST("/reset-password", authCtrl.ResetPassword)
	console.POST("/change-password", authCtrl.ChangePassword)

	// RESERVATIONS
	console.GET("/reservations", reservationCtrl.GetReservations)
	console.GET("/reservations/status", reservationCtrl.Status)
	console.POST("/reservations/reload", reservationCtrl.Reload)
	console.POST("/reservations", reservationCtrl.CreateReservation)
	console.PUT("/reservations/:id", reservationCtrl.UpdateReservation)
	console.POST("/reservations/:id/cancel", reservationCtrl.CancelReservation())
	console.POST("/reservations/:id/complete", reservationCtrl.CompleteReservation())
	console.POST("/reservations/:id/no-show", reservationCtrl.MarkNoShow())
	console.DELETE("/reservations/:id", reservationCtrl.DeleteReservation)

	// ACTIVITY LOGS & ORDERS
	console.GET("/activity-logs", logCtrl.GetActivityLogs)
	console.GET("/orders", orderCtrl.GetOrders)

	// WebSocket endpoint dengan middleware khusus
	ws := r.Group("/console/ws")
	ws.Use(middlewares.WebSocketSessionMiddleware())
	{
		ws.GET("", liveCtrl.WSHandler)
	}

	return r
}
