package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lusail/account-service/docs"
	"github.com/lusail/account-service/internal/api/handler"
	"github.com/lusail/account-service/internal/api/middleware"
	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
	"github.com/lusail/account-service/internal/infrastructure/http/handlers"
)

// RouterConfig carries the dependencies NewRouter wires into handlers.
type RouterConfig struct {
	Accounts ports.AccountService
	Admin    ports.AdminService
	Reset    ports.PasswordResetService

	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handlers.PingFunc

	Logger zerolog.Logger
	Cookie handler.CookieOptions

	// Nil values fall back to the default Prometheus registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	registerer := cfg.MetricsRegisterer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := cfg.MetricsGatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "accounts",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	accountHandler := handler.NewAccountHandler(cfg.Accounts, cfg.Cookie)
	passwordHandler := handler.NewPasswordHandler(cfg.Reset)
	adminHandler := handler.NewAdminHandler(cfg.Admin)
	session := middleware.Session(cfg.Accounts)

	// --- Account routes ---
	e.POST("/signup", accountHandler.Signup)
	e.POST("/login", accountHandler.Login)
	e.POST("/logout", accountHandler.Logout, session)
	e.POST("/verify-email", accountHandler.VerifyEmail)
	e.PUT("/resend-verification", accountHandler.ResendVerification)
	e.GET("/my-profile", accountHandler.MyProfile, session)
	e.PUT("/update-profile", accountHandler.UpdateProfile, session)
	e.PUT("/update-password", accountHandler.UpdatePassword, session)

	// --- Password reset routes ---
	e.PUT("/forgot-password", passwordHandler.ForgotPassword)
	e.PUT("/verify-otp", passwordHandler.VerifyOTP)
	e.PUT("/reset-password", passwordHandler.ResetPassword)

	// --- Admin routes ---
	users := e.Group("/users", session, middleware.RBAC(domain.RoleAdmin))
	users.GET("", adminHandler.ListUsers)
	users.GET("/:id", adminHandler.GetUser)
	users.DELETE("/:id", adminHandler.DeleteUser)

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(cfg.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
