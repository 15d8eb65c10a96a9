// File: randevu/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"randevu/config"
	"randevu/cron"
	"randevu/database"
	appointmentRepo "randevu/database/repository/appointment"
	"randevu/handlers"
	"randevu/middleware"
	"randevu/routes"
	"randevu/services/booking"
	"randevu/services/calendar"
	"randevu/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	ctx := context.Background()

	mongoClient, err := database.Connect(ctx, config.AppConfig.DatabaseURL)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to MongoDB: %v", err)
	}

	cacheClient, err := utils.NewCacheClient()
	if err != nil {
		// The cache only short-circuits availability reads; run without it.
		logger.Sugar().Warnf("main: redis cache unavailable, availability reads go straight to the store: %v", err)
		cacheClient = nil
	}

	authClient, err := utils.NewFirebaseAuthClient(ctx)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize firebase auth: %v", err)
	}

	// Repository.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo(mongoClient, config.AppConfig.DatabaseName)
	if err := apptRepo.EnsureIndexes(ctx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
	}

	// Booking service over the atomic store.
	bookingService := &booking.DefaultBookingService{
		Repo:  apptRepo,
		Cache: cacheClient,
		Calendar: calendar.Config{
			StartHour:      config.AppConfig.BookingStartHour,
			EndHour:        config.AppConfig.BookingEndHour,
			SlotMinutes:    config.AppConfig.BookingSlotMinutes,
			ClosedWeekdays: closedWeekdays(config.AppConfig.BookingClosedWeekdays),
			MaxDaysAhead:   config.AppConfig.BookingMaxDaysAhead,
		},
		ServiceList: config.AppConfig.BookingServices,
	}

	appointmentHandler := handlers.NewAppointmentHandler(bookingService, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, appointmentHandler, authClient)

	// Background maintenance and health monitoring.
	cron.InitPurgeWorker(apptRepo)
	utils.StartHealthMonitor(cacheClient, mongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func closedWeekdays(days []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}
