/*
Package sandbox is a small stand-in for the restaurant API. It serves the endpoints the console
talks to from a gorm database and deliberately answers in the same mix of shapes the real
deployments use: enveloped and bare JSON, snake_case fields, plain-text confirmations.
*/
package sandbox

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/yeremiapane/restaurant-console/middlewares"
	"github.com/yeremiapane/restaurant-console/utils"
	"gorm.io/gorm"
)

type Options struct {
	JWTSecret []byte
	TokenTTL  time.Duration
	// StrictDateRange makes the date-range endpoints accept only "YYYY-MM-DD HH:MM:SS" bounds.
	StrictDateRange bool
	// Now overrides the clock used for "today" and reset-link expiry.
	Now func() time.Time
}

type resetTicket struct {
	userID  uint
	expires time.Time
}

type server struct {
	db   *gorm.DB
	opts Options

	resetMu sync.Mutex
	resets  map[string]resetTicket
}

func newServer(db *gorm.DB, opts Options) *server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &server{db: db, opts: opts, resets: make(map[string]resetTicket)}
}

// NewRouter serves the sandbox API under /api.
func NewRouter(db *gorm.DB, opts Options) *gin.Engine {
	return newServer(db, opts).routes()
}

func (s *server) routes() *gin.Engine {
	opts := s.opts
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/forgot-password", s.forgotPassword)
		auth.POST("/reset-password", s.resetPassword)
		auth.GET("/user-count", s.userCount)
		auth.POST("/bootstrap-admin", s.bootstrapAdmin)
		auth.POST("/change-password", middlewares.AuthMiddleware(opts.JWTSecret), s.changePassword)
	}

	protected := api.Group("/")
	protected.Use(middlewares.AuthMiddleware(opts.JWTSecret))

	reservations := protected.Group("/reservations")
	{
		reservations.GET("", s.listReservations)
		reservations.POST("", s.createReservation)
		reservations.GET("/today", s.todayReservations)
		reservations.GET("/date-range", s.reservationsByDateRange)
		reservations.GET("/table/:tableId", s.reservationsByTable)
		reservations.GET("/salon/:salonId", s.reservationsBySalon)
		reservations.GET("/status/:statusId", s.reservationsByStatus)
		reservations.GET("/:id", s.getReservation)
		reservations.PUT("/:id", s.updateReservation)
		reservations.PUT("/:id/cancel", s.cancelReservation)
		reservations.PUT("/:id/complete", s.completeReservation)
		reservations.PUT("/:id/no-show", s.noShowReservation)
		reservations.DELETE("/:id", s.deleteReservation)
	}

	logs := protected.Group("/activity-logs")
	{
		logs.GET("", s.listActivityLogs)
		logs.GET("/recent", s.recentActivityLogs)
		logs.GET("/date-range", s.activityLogsByDateRange)
		logs.GET("/user/:userId", s.activityLogsByUser)
		logs.GET("/entity/:entityType/:entityId", s.activityLogsByEntity)
		logs.GET("/action/:actionType", s.activityLogsByAction)
	}

	protected.GET("/orders", s.listOrders)

	return r
}

// actor returns the user AuthMiddleware authenticated, or nil.
func (s *server) actor(c *gin.Context) *User {
	v, ok := c.Get("userID")
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok {
		return nil
	}
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil
	}
	return &user
}

// record appends an activity log entry. A failure is logged and otherwise ignored.
func (s *server) record(actor *User, action, entityType, entityID, message string) {
	details, _ := json.Marshal(map[string]string{"message": message})
	entry := ActivityLog{
		ActionType: action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    string(details),
		CreatedAt:  s.opts.Now(),
	}
	if actor != nil {
		id := actor.ID
		entry.UserID = &id
		entry.UserEmail = actor.Email
	}
	if err := s.db.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Errorf("Failed to record activity %s %s: %v", action, entityType, err)
	}
}
