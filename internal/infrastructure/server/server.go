package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/choreboard/core/internal/adapters/http"
	"github.com/choreboard/core/internal/adapters/repository"
	"github.com/choreboard/core/internal/application/services"
	"github.com/choreboard/core/internal/infrastructure/config"
	"github.com/choreboard/core/internal/infrastructure/database"
	"github.com/choreboard/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	householdRepo := repository.NewHouseholdRepository(db.DB)
	memberRepo := repository.NewMemberRepository(db.DB)
	choreRepo := repository.NewChoreRepository(db.DB)
	scheduleRepo := repository.NewScheduleRepository(db)
	itemRepo := repository.NewItemRepository(db.DB)
	loanRepo := repository.NewLoanRepository(db.DB)
	activityRepo := repository.NewActivityRepository(db.DB)

	// Initialize services
	activityService := services.NewActivityService(activityRepo, appLogger)
	householdService := services.NewHouseholdService(householdRepo, activityService, appLogger)
	memberService := services.NewMemberService(memberRepo, householdRepo, choreRepo, activityService, appLogger)
	choreService := services.NewChoreService(choreRepo, householdRepo, activityService, appLogger)
	scheduleService := services.NewScheduleService(choreRepo, scheduleRepo, memberRepo, itemRepo, activityService, appLogger)
	loanService := services.NewLoanService(itemRepo, loanRepo, householdRepo, activityService, appLogger)

	// Initialize handlers
	householdHandler := httpHandlers.NewHouseholdHandler(householdService, activityService, appLogger)
	memberHandler := httpHandlers.NewMemberHandler(memberService, appLogger)
	choreHandler := httpHandlers.NewChoreHandler(choreService, appLogger)
	scheduleHandler := httpHandlers.NewScheduleHandler(scheduleService, appLogger)
	loanHandler := httpHandlers.NewLoanHandler(loanService, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(householdHandler, memberHandler, choreHandler, scheduleHandler, loanHandler)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(householdHandler *httpHandlers.HouseholdHandler, memberHandler *httpHandlers.MemberHandler, choreHandler *httpHandlers.ChoreHandler, scheduleHandler *httpHandlers.ScheduleHandler, loanHandler *httpHandlers.LoanHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Household routes
	householdGroup := v1.Group("/households")
	householdGroup.GET("", householdHandler.ListHouseholds)
	householdGroup.POST("", householdHandler.CreateHousehold)
	householdGroup.GET("/:id", householdHandler.GetHousehold)
	householdGroup.PUT("/:id", householdHandler.UpdateHousehold)
	householdGroup.DELETE("/:id", householdHandler.DeleteHousehold)
	householdGroup.POST("/:id/connections", householdHandler.Connect)
	householdGroup.GET("/:id/connections", householdHandler.ListConnections)
	householdGroup.DELETE("/:id/connections/:other_id", householdHandler.Disconnect)
	householdGroup.GET("/:id/members", memberHandler.ListMembers)
	householdGroup.GET("/:id/chores", choreHandler.ListChores)
	householdGroup.GET("/:id/items", loanHandler.ListItems)
	householdGroup.GET("/:id/activity", householdHandler.ListActivity)

	// Member routes
	memberGroup := v1.Group("/members")
	memberGroup.POST("", memberHandler.CreateMember)
	memberGroup.GET("/:id", memberHandler.GetMember)
	memberGroup.PUT("/:id", memberHandler.UpdateMember)
	memberGroup.DELETE("/:id", memberHandler.DeleteMember)

	// Chore routes
	choreGroup := v1.Group("/chores")
	choreGroup.POST("", choreHandler.CreateChore)
	choreGroup.GET("/:id", choreHandler.GetChore)
	choreGroup.PUT("/:id", choreHandler.UpdateChore)
	choreGroup.DELETE("/:id", choreHandler.DeleteChore)
	choreGroup.POST("/:chore_id/exclusions/:member_id", memberHandler.ExcludeFromRotation)
	choreGroup.DELETE("/:chore_id/exclusions/:member_id", memberHandler.IncludeInRotation)

	// Schedule routes
	choreGroup.GET("/:id/schedule", scheduleHandler.GetSchedule)
	choreGroup.POST("/:id/schedule", scheduleHandler.InitializeSchedule)
	choreGroup.POST("/:id/schedule/occurrences", scheduleHandler.AddOccurrence)
	choreGroup.POST("/:id/schedule/special", scheduleHandler.AddSpecialOccurrence)
	choreGroup.DELETE("/:id/schedule/occurrences/:number", scheduleHandler.DeleteOccurrence)
	choreGroup.POST("/:id/schedule/occurrences/:number/move", scheduleHandler.MoveOccurrence)
	choreGroup.POST("/:id/schedule/occurrences/:number/skip", scheduleHandler.SkipOccurrence)
	choreGroup.PUT("/:id/schedule/occurrences/:number/notes", scheduleHandler.SetNotes)
	choreGroup.PUT("/:id/schedule/occurrences/:number/date", scheduleHandler.SetOccurrenceDate)
	choreGroup.POST("/:id/schedule/occurrences/:number/reset", scheduleHandler.ResetToRegular)
	choreGroup.PUT("/:id/schedule/member", scheduleHandler.SetMember)
	choreGroup.POST("/:id/schedule/autofill", scheduleHandler.AutoFill)
	choreGroup.POST("/:id/schedule/occurrences/:number/items/:item_id", scheduleHandler.LinkItem)
	choreGroup.DELETE("/:id/schedule/occurrences/:number/items/:item_id", scheduleHandler.UnlinkItem)
	choreGroup.GET("/:id/schedule/calendar.ics", scheduleHandler.CalendarFeed)

	// Item routes
	itemGroup := v1.Group("/items")
	itemGroup.POST("", loanHandler.CreateItem)
	itemGroup.GET("/:id", loanHandler.GetItem)
	itemGroup.PUT("/:id", loanHandler.UpdateItem)
	itemGroup.DELETE("/:id", loanHandler.DeleteItem)

	// Loan routes
	loanGroup := v1.Group("/loans")
	loanGroup.GET("", loanHandler.ListLoans)
	loanGroup.POST("", loanHandler.RequestLoan)
	loanGroup.POST("/:id/accept", loanHandler.AcceptLoan)
	loanGroup.POST("/:id/decline", loanHandler.DeclineLoan)
	loanGroup.POST("/:id/return", loanHandler.ReturnLoan)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	// Database health check
	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  "1.21",
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(*validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": e.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
