package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/content-services/modulemd-backend/pkg/cache"
	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/content-services/modulemd-backend/pkg/instrumentation"
	"github.com/content-services/modulemd-backend/pkg/router"
	"github.com/content-services/modulemd-backend/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 30 * time.Second

func ServeAction(c *cli.Context) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(quit)
	return serve(c.Context, quit)
}

// serve runs the api and metrics servers until quit receives a signal or
// ctx is cancelled.
func serve(ctx context.Context, quit <-chan os.Signal) error {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conf := config.Get()
	metrics := instrumentation.NewMetrics(prometheus.NewRegistry())
	validator := validation.NewValidator(cache.Initialize(), metrics)
	apiServer := router.ConfigureEchoWithMetrics(validator, metrics)
	metricsServer := router.ConfigureMetricsEcho(metrics)

	errs := make(chan error, 2)
	start := func(name string, e *echo.Echo, port int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Str("server", name).Int("port", port).Msg("Starting server")
			err := e.Start(fmt.Sprintf(":%d", port))
			if err != nil && err != http.ErrServerClosed {
				errs <- fmt.Errorf("%s server: %w", name, err)
				cancel()
			}
			log.Info().Str("server", name).Msg("Server stopped")
		}()
	}
	start("api", apiServer, conf.Server.Port)
	start("metrics", metricsServer, conf.Metrics.Port)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info().Msg("Stopping servers")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	for _, e := range []*echo.Echo{apiServer, metricsServer} {
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Could not shutdown server")
		}
	}
	wg.Wait()

	select {
	case err := <-errs:
		return cli.Exit(err.Error(), 1)
	default:
		return nil
	}
}
