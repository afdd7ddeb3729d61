package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/seckernel/kernel-api/docs"
	"github.com/seckernel/kernel-api/internal/api/handler"
	"github.com/seckernel/kernel-api/internal/api/middleware"
	"github.com/seckernel/kernel-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs. main builds them
// from config; tests pass in-memory versions.
type Dependencies struct {
	Auth      ports.AuthService
	Parser    ports.ParserService
	Readiness map[string]handler.Pinger

	CORSOrigins []string
	// RateLimit is the per-client request rate for parse-url; zero disables it.
	RateLimit   float64

	// MetricsRegisterer and MetricsGatherer default to a private registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	if deps.MetricsRegisterer == nil || deps.MetricsGatherer == nil {
		reg := prometheus.NewRegistry()
		deps.MetricsRegisterer, deps.MetricsGatherer = reg, reg
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "kernel",
		Subsystem:  "http",
		Registerer: deps.MetricsRegisterer,
	}))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler()
	parserHandler := handler.NewParserHandler(deps.Parser)

	// --- Probes, metrics and docs (no auth required) ---
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.MetricsGatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- OAuth login ---
	e.GET("/auth/:provider", authHandler.Login)
	e.GET("/auth/:provider/callback", authHandler.Callback)

	// --- API v1 ---
	v1 := e.Group("/api/v1")
	v1.GET("/users/me", userHandler.Me, middleware.Auth(deps.Auth))

	var parseMiddleware []echo.MiddlewareFunc
	if deps.RateLimit > 0 {
		parseMiddleware = append(parseMiddleware, echomiddleware.RateLimiter(
			echomiddleware.NewRateLimiterMemoryStore(rate.Limit(deps.RateLimit)),
		))
	}
	v1.POST("/parse-url", parserHandler.ParseURL, parseMiddleware...)

	return e
}

// requestLogger logs one zerolog event per request. Only the path is logged:
// OAuth callbacks carry the authorization code in the query string.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURIPath:   true,
		LogMethod:    true,
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
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
