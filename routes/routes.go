package routes

import (
	"net/http"
	"time"

	"randevu/handlers"
	"randevu/middleware"
	"randevu/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers the booking endpoints. Availability and
// the service catalogue are public; committing a booking requires a verified
// identity (the service additionally rejects anonymous-provider sessions).
func RegisterAppointmentRoutes(r *gin.Engine, h *handlers.AppointmentHandler, verifier middleware.TokenVerifier) {
	api := r.Group("/api/appointments")
	{
		api.GET("/services", h.GetServices)
		api.GET("/slots", middleware.FirebaseAuthMiddleware(verifier, false), h.GetAvailability)
		api.POST("", middleware.FirebaseAuthMiddleware(verifier, true), h.CreateBooking)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
}

// RegisterRoutes wires CORS and every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, h *handlers.AppointmentHandler, verifier middleware.TokenVerifier) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAppointmentRoutes(r, h, verifier)
	RegisterHealthRoute(r)
}
