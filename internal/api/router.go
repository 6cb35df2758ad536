package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/rolegate/rolegate/docs"
	"github.com/rolegate/rolegate/internal/api/handler"
	"github.com/rolegate/rolegate/internal/api/middleware"
	"github.com/rolegate/rolegate/internal/api/sessioncookie"
	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
)

// Deps carries everything the router needs. Stores and hashing are already
// folded into the services.
type Deps struct {
	Login     ports.LoginService
	Registrar ports.Registrar
	Sessions  ports.SessionResolver
	Codec     *sessioncookie.Codec
	Health    []handler.Dependency
	Log       zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics; nil selects the
	// Prometheus defaults.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	// HTML forms can only POST; logout sends _method=DELETE.
	e.Pre(echomiddleware.MethodOverrideWithConfig(echomiddleware.MethodOverrideConfig{
		Getter: echomiddleware.MethodFromForm("_method"),
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "rolegate",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Health probes and operational endpoints (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health...)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session-aware routes ---
	authHandler := handler.NewAuthHandler(d.Login, d.Registrar, d.Codec, d.Log)
	adminHandler := handler.NewAdminHandler(d.Registrar)
	pages := handler.NewPageHandler()

	app := e.Group("", middleware.Session(d.Sessions, d.Codec, d.Log))

	guest := middleware.RequireNotAuthenticated()
	app.GET("/login", pages.LoginPage, guest)
	app.POST("/login", authHandler.Login, guest)
	app.GET("/register", pages.RegisterPage, guest)
	app.POST("/register", authHandler.Register, guest)
	app.DELETE("/logout", authHandler.Logout)
	app.POST("/logout", authHandler.Logout)

	app.GET("/", pages.Index, middleware.RequireAuthenticated())
	app.GET("/staff", pages.Staff, middleware.RequireAnyRole(domain.RoleAdmin, domain.RoleStaff))

	admin := app.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	admin.GET("", pages.Admin)
	admin.POST("/identities", adminHandler.CreateIdentity)

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
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
