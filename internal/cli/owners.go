package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"raffledash/internal/raffle"
)

// OwnersOptions holds flags for the owners command.
type OwnersOptions struct {
	*RootOptions
	criteriaFlags
}

// NewOwnersCommand creates the owners command.
func NewOwnersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OwnersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "owners",
		Short: "Print the creator addresses of matching raffles",
		Long: `Print the creator address of every matching raffle, one per line,
in the same order the summary lists them. Takes the same filter flags.

Example:
  raffledash owners --start 2024-01-01 | pbcopy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := fetchResult(cmd, opts.RootOptions, &opts.criteriaFlags)
			if err != nil {
				return err
			}

			owners := raffle.OwnerAddresses(res.Raffles)
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), owners)
			}
			for _, o := range owners {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		},
	}
	opts.bind(cmd)

	return cmd
}
