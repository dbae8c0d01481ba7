package http

import (
	"net/http"
	"project_navbat/internal/infrastructure"
	"project_navbat/internal/repository"
	"project_navbat/internal/usecases"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, auth *usecases.AuthUsecase, store *repository.Store, hub *infrastructure.Hub, fleet *infrastructure.Fleet, middleware *Middleware) {
	adminHandler := NewAdminHandler(store, hub, fleet)
	publicHandler := NewPublicHandler(store, hub)

	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20)) // 1MB max request size
	r.Use(middleware.CORSMiddleware())

	// Dashboard live feed
	r.GET("/ws/queue", publicHandler.QueueSocket)

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", func(c *gin.Context) {
			var loginReq struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&loginReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			token, err := auth.Login(c.Request.Context(), loginReq.Username, loginReq.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})

		authGroup.POST("/register", func(c *gin.Context) {
			var regReq struct {
				Username string `json:"username"`
				Password string `json:"password"`
				ShopName string `json:"shop_name"`
			}
			if err := c.ShouldBindJSON(&regReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			// Validate inputs
			if !ValidSlug(regReq.Username) || len(regReq.Password) < 6 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password (min 6 chars)"})
				return
			}
			if err := auth.Register(c.Request.Context(), regReq.Username, regReq.Password, SanitizeString(regReq.ShopName)); err != nil {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"status": "registered"})
		})
	}

	// Public tenant Routes (queue display screens, landing pages)
	public := r.Group("/api/public/:owner_id")
	{
		public.GET("/queue", publicHandler.GetQueue)
		public.GET("/services", publicHandler.GetServices)
		public.GET("/barbers", publicHandler.GetBarbers)
		public.GET("/settings", publicHandler.GetSettings)
		public.POST("/bookings", publicHandler.CreateBooking)
		public.POST("/bookings/:id/cancel", publicHandler.CancelBooking)
	}

	// Protected Dashboard Routes
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerOwner(5, 10))
	{
		api.GET("/auth/me", adminHandler.Me)
		api.GET("/dashboard/stats", adminHandler.GetStats)
		api.GET("/dashboard/status", adminHandler.GetStatus)

		// Booking Routes
		api.GET("/bookings", adminHandler.ListBookings)
		api.POST("/bookings", adminHandler.CreateBooking)
		api.POST("/bookings/:id/call", adminHandler.CallBooking)
		api.POST("/bookings/:id/start", adminHandler.StartBooking)
		api.POST("/bookings/:id/done", adminHandler.DoneBooking)
		api.POST("/bookings/:id/cancel", adminHandler.CancelBooking)

		// Catalog Routes
		api.GET("/barbers", adminHandler.ListBarbers)
		api.POST("/barbers", adminHandler.AddBarber)
		api.PUT("/barbers/:id/toggle", adminHandler.ToggleBarber)
		api.DELETE("/barbers/:id", adminHandler.DeleteBarber)
		api.GET("/services", adminHandler.ListServices)
		api.POST("/services", adminHandler.AddService)
		api.DELETE("/services/:id", adminHandler.DeleteService)

		// Settings Routes
		api.GET("/settings", adminHandler.GetSettings)
		api.PUT("/settings", adminHandler.UpdateSettings)
	}
}
