package cli

import (
	"time"

	"github.com/spf13/cobra"

	"raffledash/internal/config"
	"raffledash/internal/raffle"
)

// SummaryOptions holds flags for the summary command.
type SummaryOptions struct {
	*RootOptions
	criteriaFlags
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "List matching raffles with count and total floor price",
		Long: `Fetch the raffle set once, filter it and print the matching raffles,
most recent first, followed by their count and total floor price.
Deleted raffles are never shown.

Example:
  raffledash summary --start 2024-01-01 --creator 7xkx
  raffledash summary --min-floor 10 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runSummary(cmd *cobra.Command, opts *SummaryOptions) error {
	res, err := fetchResult(cmd, opts.RootOptions, &opts.criteriaFlags)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return writeResultJSON(cmd.OutOrStdout(), res)
	}
	return writeResult(cmd.OutOrStdout(), res)
}

// fetchResult parses the filter flags, reads the raffle set and derives the result
func fetchResult(cmd *cobra.Command, opts *RootOptions, flags *criteriaFlags) (raffle.Result, error) {
	criteria, err := flags.criteria()
	if err != nil {
		return raffle.Result{}, err
	}

	_, snap, err := fetchSnapshot(cmd, opts)
	if err != nil {
		return raffle.Result{}, err
	}
	return snap.Derive(criteria), nil
}

// fetchSnapshot reads the full raffle set once
func fetchSnapshot(cmd *cobra.Command, opts *RootOptions) (config.Config, *raffle.Snapshot, error) {
	ctx := commandContext(cmd)
	cfg, st, err := opts.connect(ctx)
	if err != nil {
		return cfg, nil, err
	}
	defer closeStore(st)

	ctx, cancel := withTimeout(ctx, cfg.Store.FetchTimeout)
	defer cancel()

	raffles, err := st.ListRaffles(ctx)
	if err != nil {
		return cfg, nil, unavailable("Failed to load raffles. Please try again later.", err)
	}
	return cfg, raffle.NewSnapshot(raffles, time.Now()), nil
}
