package cmd

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

	"github.com/markdavies/harvest-toggl-sync/config"
	"github.com/markdavies/harvest-toggl-sync/harvest"
	"github.com/markdavies/harvest-toggl-sync/internal/logging"
	"github.com/markdavies/harvest-toggl-sync/submitter"
	"github.com/markdavies/harvest-toggl-sync/toggl"
	"github.com/markdavies/harvest-toggl-sync/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync API server",
	Long: `Start the HTTP server backing the sync UI.

Both Harvest and Toggl credentials must be configured or the server refuses
to start.`,
	Example: `
  # Start on the configured port (PORT env or 3000)
  harvest-toggl-sync serve

  # Start on an explicit port
  harvest-toggl-sync serve --port 8080
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		log := logging.Get()

		harvestClient, err := harvest.NewClient(harvest.ClientConfig{
			BaseURL:     cfg.Harvest.BaseURL,
			AccessToken: cfg.Harvest.AccessToken,
			AccountID:   cfg.Harvest.AccountID,
		})
		if err != nil {
			return fmt.Errorf("build harvest client: %w", err)
		}

		togglClient, err := toggl.NewClient(toggl.ClientConfig{
			BaseURL:  cfg.Toggl.BaseURL,
			APIToken: cfg.Toggl.APIToken,
		})
		if err != nil {
			return fmt.Errorf("build toggl client: %w", err)
		}

		submitService := submitter.NewService(togglClient, nil)

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: web.NewServer(harvestClient, togglClient, submitService, *cfg, log),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		log.Info().Int("port", cfg.Port).Msgf("listening on http://localhost:%d", cfg.Port)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides PORT env / config)")
}
