package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emmetio/lorem/pkg/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lorem expansions over HTTP",
		Long: `Start an HTTP server exposing POST /v1/lorem and GET /v1/languages.

Requests with "stream": true receive the text as Server-Sent Events; the
--chunk-size, --delay-min, --delay-max and --tokens-per-second flags set the
streaming defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr: cfg.Addr,
				Handler: server.NewRouterWithConfig(server.Config{
					Defaults: cfg.Options(),
					Stream:   cfg.StreamOptions(),
					Logger:   logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
				// Request contexts end on a signal so streams stop pausing.
				BaseContext: func(net.Listener) context.Context { return ctx },
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting lorem server", "addr", cfg.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().Bool("include-usage", false, "Send word usage with the final stream chunk")
	cmd.Flags().Int("chunk-size", 0, "Words per streamed chunk (default 3)")
	cmd.Flags().Duration("delay-min", 0, "Minimum random delay between chunks")
	cmd.Flags().Duration("delay-max", 0, "Maximum random delay between chunks")
	cmd.Flags().Float64("tokens-per-second", 0, "Throttle streaming to this many words per second")

	return cmd
}
