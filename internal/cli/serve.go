package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"raffledash/internal/handlers"
	"raffledash/internal/services"
	"raffledash/internal/view"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string

	// listening, when set, receives the bound address once the server
	// accepts connections (for testing).
	listening chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long: `Start the web dashboard and the JSON routes.

The store connection is opened once at startup and closed on shutdown.
When TELEGRAM_TOKEN is set the Telegram bot runs alongside the server.

Example:
  raffledash serve --port 3000
  STORE_DRIVER=memory FIXTURES=./fixtures.yaml raffledash serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "listen port (default $PORT or 8080)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, st, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	port := cfg.Port
	if opts.Port != "" {
		port = opts.Port
	}

	views := view.NewRegistry(cfg.ViewTTL)
	h, err := handlers.New(st, views, cfg.Store.FetchTimeout)
	if err != nil {
		return unavailable("failed to load templates", err)
	}

	var bot *services.Bot
	if cfg.Telegram.Token == "" {
		slog.Warn("TELEGRAM_TOKEN not set, bot features disabled")
	} else if api, err := services.Connect(cfg.Telegram.Token); err != nil {
		slog.Warn("failed to start telegram bot", "error", err)
	} else {
		bot = services.NewBot(api, st, cfg.Store.FetchTimeout)
		go bot.Run(ctx)
	}

	go sweepViews(ctx, views, cfg.ViewTTL)

	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return unavailable("failed to listen", err)
	}

	srv := &http.Server{
		Handler:           h.Routes(slog.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("server listening", "addr", ln.Addr().String(), "driver", cfg.Store.Driver)
	if opts.listening != nil {
		opts.listening <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return unavailable("server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	if bot != nil {
		bot.Notify("Raffle dashboard stopped.")
	}
	return nil
}

// sweepViews evicts expired views until ctx is done
func sweepViews(ctx context.Context, views *view.Registry, ttl time.Duration) {
	interval := ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := views.Sweep(); n > 0 {
				slog.Debug("expired views evicted", "count", n)
			}
		}
	}
}
