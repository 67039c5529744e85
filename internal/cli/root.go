package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"raffledash/internal/config"
	"raffledash/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	EnvFile string

	// OpenStore overrides store.Open (for testing).
	OpenStore func(ctx context.Context, cfg config.Store) (store.Store, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the raffledash CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raffledash",
		Short: "Raffle dashboard",
		Long: `Browse raffles and their buyers.

Serves the web dashboard and answers the same questions from the terminal:
how many raffles match a date range, creator and minimum floor price, what
their floor prices add up to, and who bought tickets for a raffle.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return usageError(fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "read environment from this file instead of .env")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewOwnersCommand(opts))
	cmd.AddCommand(NewBuyersCommand(opts))
	cmd.AddCommand(NewBrowseCommand(opts))

	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// connect loads the configuration and opens the configured store
func (o *RootOptions) connect(ctx context.Context) (config.Config, store.Store, error) {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return config.Config{}, nil, usageError("failed to load config", err)
	}

	open := o.OpenStore
	if open == nil {
		open = store.Open
	}
	st, err := open(ctx, cfg.Store)
	if err != nil {
		return config.Config{}, nil, usageError("failed to open store", err)
	}
	return cfg, st, nil
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing store", "error", err)
	}
}

// commandContext returns the command's context, or Background when run
// outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
