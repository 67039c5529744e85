package cli

import (
	"github.com/spf13/cobra"

	"raffledash/internal/models"
	"raffledash/internal/raffle"
)

// NewBuyersCommand creates the buyers command.
func NewBuyersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "buyers <raffleId>",
		Short: "List the purchase records of a raffle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuyers(cmd, rootOpts, args[0])
		},
	}
}

type buyersJSON struct {
	RaffleID   string         `json:"raffleId"`
	Purchasers int            `json:"purchasers"`
	Tickets    int            `json:"tickets"`
	Buyers     []models.Buyer `json:"buyers"`
}

func runBuyers(cmd *cobra.Command, opts *RootOptions, raffleID string) error {
	ctx := commandContext(cmd)
	cfg, st, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, cancel := withTimeout(ctx, cfg.Store.FetchTimeout)
	defer cancel()

	buyers, err := st.ListBuyers(ctx, raffleID)
	if err != nil {
		return unavailable("Failed to load buyers. Please try again later.", err)
	}

	buyers = raffle.ScopeBuyers(buyers, raffleID)
	summary := raffle.SummarizeBuyers(buyers)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), buyersJSON{
			RaffleID:   raffleID,
			Purchasers: summary.Purchasers,
			Tickets:    summary.Tickets,
			Buyers:     buyers,
		})
	}
	return writeBuyers(cmd.OutOrStdout(), buyers, summary)
}
