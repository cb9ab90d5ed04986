package transport

import (
	"net/http"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

// Options configures the middleware chain
type Options struct {
	Auth           middleware.Authenticator
	RateLimiter    *middleware.RateLimiter
	RequestTimeout int
	Version        string
}

func InitRoutes(bookingHandler *BookingHandler, roomHandler *RoomHandler, userHandler *UserHandler, opts Options) *gin.Engine {

	registerValidators()
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(opts.RequestTimeout))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Limit())
	}

	// API routes
	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomHandler.SearchRooms)
			rooms.GET("/:id", roomHandler.GetRoom)
		}

		private := api.Group("")
		private.Use(middleware.Auth(opts.Auth))

		// Booking routes
		bookings := private.Group("/bookings")
		{
			bookings.POST("", bookingHandler.Book)
			bookings.GET("", bookingHandler.GetUserBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			bookings.POST("/:id/comment", bookingHandler.CommentBooking)
		}

		// User routes
		users := private.Group("/users")
		{
			users.GET("/me", userHandler.GetMe)
			users.PATCH("/me", userHandler.UpdateMe)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"version":   opts.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return router
}
