package router // package router defines how HTTP routes are registered for the API

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/plant-catalog/internal/handler"
	"github.com/iliyamo/plant-catalog/internal/metrics"
	"github.com/iliyamo/plant-catalog/internal/middleware"
	"github.com/iliyamo/plant-catalog/internal/validation"
)

// Deps carries everything the routes need.  RateLimit may be nil.
type Deps struct {
	Plants      *handler.PlantHandler
	Diagnostics *handler.DiagnosticsHandler
	Metrics     *metrics.Metrics
	RateLimit   echo.MiddlewareFunc
}

// New builds the Echo instance: validator, error handler, the shared
// middleware chain and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger())
	// Cross-origin requests are permitted from any origin.
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))
	if d.Metrics != nil {
		e.Use(middleware.Metrics(d.Metrics))
	}

	RegisterRoutes(e)
	if d.Diagnostics != nil {
		RegisterDiagnostics(e, d.Diagnostics)
	}
	if d.Plants != nil {
		RegisterPlants(e, d.Plants, d.RateLimit)
	}
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	return e
}

// RegisterRoutes registers the routes that need no dependencies: the banner
// at "/" and the liveness probe at "/healthz".
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterDiagnostics exposes the database diagnostic report at "/test".
func RegisterDiagnostics(e *echo.Echo, d *handler.DiagnosticsHandler) {
	e.GET("/test", d.Test)
}

// RegisterPlants registers the catalog endpoints under /api/plants.  The
// rate limiter, when given, applies to this group only so probes and
// scrapes are never throttled.
func RegisterPlants(e *echo.Echo, p *handler.PlantHandler, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/api/plants")
	if rateLimit != nil {
		g.Use(rateLimit)
	}
	g.GET("", p.ListPlants)
	g.POST("", p.CreatePlant)
	g.POST("/seed", p.SeedPlants)
}

// requestLogger writes one line per request through the Echo logger.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Warnf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	})
}

// errorHandler renders framework errors (404, 405, panics) in the same
// {"detail": ...} shape the handlers use.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var msg any = http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = he.Message
	} else {
		c.Logger().Error(err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"detail": msg})
}
