package router

import (
	"net/http"
	"time"

	"github.com/content-services/lecho/v3"
	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/content-services/modulemd-backend/pkg/handler"
	"github.com/content-services/modulemd-backend/pkg/instrumentation"
	"github.com/content-services/modulemd-backend/pkg/middleware"
	"github.com/content-services/modulemd-backend/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func ConfigureEcho(validator validation.Validator) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	// Add global middlewares
	echoLogger := lecho.From(log.Logger,
		lecho.WithTimestamp(),
		lecho.WithCaller(),
	)
	e.Logger = echoLogger

	e.Use(middleware.AddRequestId)
	e.Use(lecho.Middleware(lecho.Config{
		Logger:              echoLogger,
		RequestIDHeader:     config.HeaderRequestId,
		RequestIDKey:        config.RequestIdLoggingKey,
		Skipper:             config.SkipLogging,
		RequestLatencyLevel: zerolog.WarnLevel,
		RequestLatencyLimit: 500 * time.Millisecond,
	}))
	e.Use(middleware.ExtractStatus) // Must be after lecho
	e.Use(middleware.EnforceYAMLContentType)
	e.Use(middleware.LogServerErrorRequest)

	// Add routes
	handler.RegisterPing(e)
	handler.RegisterRoutes(e, validator)

	// Set error handler
	e.HTTPErrorHandler = config.CustomHTTPErrorHandler
	return e
}

func ConfigureEchoWithMetrics(validator validation.Validator, metrics *instrumentation.Metrics) *echo.Echo {
	e := ConfigureEcho(validator)

	// Add additional global middlewares
	e.Use(middleware.CreateMetricsMiddleware(metrics))
	return e
}

// ConfigureMetricsEcho serves the registry of metrics on the configured metrics path.
func ConfigureMetricsEcho(metrics *instrumentation.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	handler.RegisterPing(e)
	e.Add(http.MethodGet, config.Get().Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(
		metrics.Registry(),
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
			// Pass custom registry
			Registry: metrics.Registry(),
		},
	)))
	return e
}
