package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/shieldtech/warranty-portal-backend/internal/config"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/handlers"
	"github.com/shieldtech/warranty-portal-backend/internal/middleware"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
	"github.com/shieldtech/warranty-portal-backend/pkg/email"
	"github.com/shieldtech/warranty-portal-backend/pkg/jwt"
	"github.com/shieldtech/warranty-portal-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting ShieldTech Warranty Portal Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize mailer
	var mailer email.Mailer
	if cfg.SMTP.Mode == "production" {
		mailer = email.NewSMTPMailer(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: "ShieldTech Warranty Portal",
			UseTLS:   cfg.SMTP.UseTLS,
		})
		logger.Infof("Mailer: SMTP via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		mailer = email.NewLogMailer(logger)
		logger.Warn("Mailer: dev mode, emails are logged instead of sent")
	}

	// Initialize repositories
	profileRepository := database.NewProfileRepository(db)
	vendorRepository := database.NewVendorRepository(db)
	manpowerRepository := database.NewManpowerRepository(db)
	warrantyRepository := database.NewWarrantyRepository(db)
	activityLogRepository := database.NewActivityLogRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	otpService := services.NewOTPService(db, services.OTPConfig{
		Length: cfg.OTP.Length,
		Expiry: time.Duration(cfg.OTP.ExpiryMinutes) * time.Minute,
	})
	phoneValidator := validator.NewPhoneValidator()
	rateLimitService := services.NewRateLimitService(db, services.RateLimitConfig{
		MaxUserRequests: cfg.RateLimit.MaxUserRequests,
		UserWindow:      time.Duration(cfg.RateLimit.UserWindowMinutes) * time.Minute,
		MaxIPRequests:   cfg.RateLimit.MaxIPRequests,
		IPWindow:        time.Duration(cfg.RateLimit.IPWindowMinutes) * time.Minute,
	})
	activityService := services.NewActivityService(activityLogRepository)
	verificationService := services.NewVerificationService(
		vendorRepository,
		profileRepository,
		activityService,
		mailer,
		logger,
		cfg.Admin.Email,
		cfg.Server.BaseURL,
		cfg.Admin.PortalURL,
	)
	warrantyService := services.NewWarrantyService(
		warrantyRepository,
		manpowerRepository,
		vendorRepository,
		activityService,
		logger,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		jwtService,
		otpService,
		rateLimitService,
		verificationService,
		phoneValidator,
		profileRepository,
		vendorRepository,
		manpowerRepository,
		mailer,
		cfg,
	)
	vendorHandler := handlers.NewVendorHandler(
		verificationService,
		manpowerRepository,
		phoneValidator,
		cfg.Admin.PortalURL,
	)
	warrantyHandler := handlers.NewWarrantyHandler(warrantyService, cfg)
	adminHandler := handlers.NewAdminHandler(
		warrantyService,
		verificationService,
		activityService,
		profileRepository,
		vendorRepository,
		manpowerRepository,
		mailer,
		cfg.Admin.PortalURL,
	)

	// Ensure upload directory exists
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logger.Fatalf("Failed to create upload directory %s: %v", cfg.Upload.Dir, err)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", healthCheckHandler(db))

	// One-click approval link from the vendor approval email. Served
	// outside /api/v1 because it is opened in a browser.
	router.GET("/vendor/verify", vendorHandler.VerifyByToken)

	// Uploaded warranty photos
	router.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/resend-otp", authHandler.ResendOTP)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/me", authHandler.Me)
			}
		}

		warranties := v1.Group("/warranties")
		warranties.Use(middleware.AuthMiddleware(jwtService))
		warranties.Use(middleware.RequireRole(models.RoleCustomer, models.RoleVendor))
		{
			warranties.POST("", warrantyHandler.Submit)
			warranties.GET("", warrantyHandler.List)
			warranties.GET("/:id", warrantyHandler.Get)
			warranties.PUT("/:id", warrantyHandler.Update)
			warranties.POST("/uploads", warrantyHandler.Upload)
		}

		vendor := v1.Group("/vendor")
		vendor.Use(middleware.AuthMiddleware(jwtService))
		vendor.Use(middleware.RequireRole(models.RoleVendor))
		{
			vendor.GET("/manpower", vendorHandler.ListManpower)
			vendor.POST("/manpower", vendorHandler.CreateManpower)
			vendor.PUT("/manpower/:id", vendorHandler.UpdateManpower)
			vendor.DELETE("/manpower/:id", vendorHandler.DeleteManpower)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/stats", adminHandler.Stats)

			admin.GET("/warranties", adminHandler.ListWarranties)
			admin.GET("/warranties/export", adminHandler.ExportWarranties)
			admin.PUT("/warranties/:id/status", adminHandler.UpdateWarrantyStatus)

			admin.GET("/vendors", adminHandler.ListVendors)
			admin.GET("/vendors/:id", adminHandler.GetVendor)
			admin.PUT("/vendors/:id/verification", adminHandler.UpdateVendorVerification)
			admin.DELETE("/vendors/:id", adminHandler.DeleteVendor)

			admin.GET("/customers", adminHandler.ListCustomers)
			admin.GET("/customers/:email", adminHandler.GetCustomer)
			admin.DELETE("/customers/:email", adminHandler.DeleteCustomer)

			admin.GET("/admins", adminHandler.ListAdmins)
			admin.POST("/admins", adminHandler.InviteAdmin)

			admin.GET("/activity-logs", adminHandler.ActivityLogs)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
