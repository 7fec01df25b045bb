package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/ridebook/api"
	"github.com/warp/ridebook/logger"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(cfgPath func() string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(cfgPath(), os.Stdout)
			if err != nil {
				return err
			}
			defer a.Close()

			if port != 0 {
				a.cfg.Server.Port = port
			}
			return serve(ctx, a)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides server.port)")
	return cmd
}

// serve runs the HTTP server and the backup scheduler until ctx is done,
// then shuts both down.
func serve(ctx context.Context, a *app) error {
	handler := api.NewHandler(a.svc, logger.Component(a.log, "api"))
	router := api.NewRouter(handler, *a.cfg, a.metrics, logger.Component(a.log, "http"))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	backups := api.NewBackupScheduler(a.svc, a.cfg.Backup, logger.Component(a.log, "backup"), a.metrics)
	backups.Start()
	defer backups.Stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Int("port", a.cfg.Server.Port).
			Bool("metrics", a.cfg.Metrics.Enabled).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info().Msg("server stopped")
	return nil
}
